// Completion: 100% - Emission interface complete, fixed primitive catalogue
package main

import (
	"fmt"
	"sort"
	"strings"
)

// Width is the operand bit width of an integer primitive.
type Width int

const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
)

// Bytes returns the storage footprint of the width.
func (w Width) Bytes() int { return int(w) >> 3 }

// ByteOrder is the multi-byte storage order of a CPU family. The coercion
// engine consults it exactly once, in the width-transition helpers, so the
// move matrix itself is written without endianness branches.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (bo ByteOrder) String() string {
	if bo == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// LowOffset returns the byte offset of the low-order part-byte run inside a
// total-byte value.
func (bo ByteOrder) LowOffset(total, part int) int {
	if bo == BigEndian {
		return total - part
	}
	return 0
}

// HighOffset returns the byte offset of the remaining high-order bytes once
// the low part bytes are accounted for.
func (bo ByteOrder) HighOffset(total, part int) int {
	if bo == BigEndian {
		return 0
	}
	return part
}

// SignByteOffset returns the byte offset of the most significant byte.
func (bo ByteOrder) SignByteOffset(total int) int {
	if bo == BigEndian {
		return 0
	}
	return total - 1
}

// Ref is a memory operand: a variable plus a byte offset into its storage.
type Ref struct {
	Var *Variable
	Off int
}

// NoRef is the absent operand (e.g. an unused remainder output).
var NoRef = Ref{}

// At returns the same operand displaced by off bytes.
func (r Ref) At(off int) Ref {
	return Ref{Var: r.Var, Off: r.Off + off}
}

// CmpMode selects the comparison a Cmp/FCmp primitive materializes.
type CmpMode int

const (
	CmpEq CmpMode = iota
	CmpNe
	CmpLt // less than
	CmpLe // less than or equal
	CmpGt // greater than
	CmpGe // greater than or equal
)

func (m CmpMode) String() string {
	switch m {
	case CmpEq:
		return "eq"
	case CmpNe:
		return "ne"
	case CmpLt:
		return "lt"
	case CmpLe:
		return "le"
	case CmpGt:
		return "gt"
	case CmpGe:
		return "ge"
	default:
		return "??"
	}
}

// Emitter is the instruction-emission interface: a fixed catalogue of
// primitives named by operation and bit width. One implementation exists per
// CPU family; it owns instruction selection and addressing quirks and writes
// assembly text to the Sink. The coercion engine assumes nothing about an
// implementation beyond primitive name and arity.
type Emitter interface {
	Name() string
	ByteOrder() ByteOrder

	// Structure
	Comment(text string)
	Label(label string)
	Jump(label string)
	JumpIfNotNegative(w Width, src Ref, label string)
	JumpIfZero(w Width, src Ref, label string)

	// Moves
	Move(w Width, dst, src Ref)
	MoveConst(w Width, dst Ref, value int64)
	ClearBytes(dst Ref, n int)
	SignFill(dst Ref, n int, signByte Ref)
	LoadAddress(dst, of Ref)

	// Integer arithmetic and logic
	Add(w Width, dst, a, b Ref)
	AddConst(w Width, dst, a Ref, value int64)
	Sub(w Width, dst, a, b Ref)
	SubConst(w Width, dst, a Ref, value int64)
	Neg(w Width, dst Ref)
	And(w Width, dst, a, b Ref)
	AndConst(w Width, dst Ref, mask int64)
	Or(w Width, dst, a, b Ref)
	Xor(w Width, dst, a, b Ref)
	ShrConst(w Width, dst Ref, bits int)
	Mul(w Width, signed bool, dst, a, b Ref)
	Div(w Width, signed bool, quot, rem, a, b Ref)
	Cmp(w Width, mode CmpMode, dst, a, b Ref)

	// Single-bit primitives (bit position and byte carried by the variable)
	BitTest(dst Ref, src *Variable)
	BitStore(dst *Variable, src Ref)
	BitTestIndexed(dst, base, byteOff, bitOff Ref)
	BitStoreIndexed(base, byteOff, bitOff, src Ref)

	// Indexed element access (runtime index in a word variable)
	LoadIndexed(w Width, dst, base, index Ref)
	StoreIndexed(w Width, base, index, src Ref)

	// Float primitives, per precision
	FMove(p FloatPrecision, dst, src Ref)
	FConv(from, to FloatPrecision, dst, src Ref)
	FAdd(p FloatPrecision, dst, a, b Ref)
	FSub(p FloatPrecision, dst, a, b Ref)
	FMul(p FloatPrecision, dst, a, b Ref)
	FDiv(p FloatPrecision, dst, a, b Ref)
	FCmp(p FloatPrecision, mode CmpMode, dst, a, b Ref)
	FToI(p FloatPrecision, w Width, signed bool, dst, src Ref)
	IToF(p FloatPrecision, w Width, signed bool, dst, src Ref)

	// Dynamic string descriptors and memory moves
	DStringAlloc(desc Ref, size Ref)
	DStringAllocConst(desc Ref, size int)
	DStringFree(desc Ref)
	DStringResize(desc Ref, size Ref)
	DStringResizeConst(desc Ref, size int)
	DStringDesc(addr, length, desc Ref)
	MemMove(dst, src, size Ref)
	MemMoveConst(dst, src Ref, size int)

	// Generic runtime routine call; arguments are passed in declaration order
	CallRuntime(routine string, args ...Ref)

	// Declarations
	DeclareVariable(v *Variable)
	DeclareString(label, value string)
	DeclareWordTable(label string, words []int)
}

// NewEmitter creates the emitter backend for the given CPU family.
func NewEmitter(cpu Cpu, sink *Sink) Emitter {
	switch cpu {
	case Cpu6502:
		return NewMOS6502Backend(sink)
	case CpuZ80:
		return NewZ80Backend(sink)
	case Cpu6809:
		return NewM6809Backend(sink)
	default:
		return nil
	}
}

// Sink is the append-only emission stream, split into the output sections
// named by Bank. Contents are kept in append order per section.
type Sink struct {
	sections map[Bank]*strings.Builder
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{sections: make(map[Bank]*strings.Builder)}
}

// Line appends one formatted line to the given bank section.
func (s *Sink) Line(bank Bank, format string, args ...interface{}) {
	sb, ok := s.sections[bank]
	if !ok {
		sb = &strings.Builder{}
		s.sections[bank] = sb
	}
	fmt.Fprintf(sb, format, args...)
	sb.WriteByte('\n')
}

// Section returns the accumulated text of one bank section.
func (s *Sink) Section(bank Bank) string {
	if sb, ok := s.sections[bank]; ok {
		return sb.String()
	}
	return ""
}

// Code returns the CODE section.
func (s *Sink) Code() string {
	return s.Section(BankCode)
}

// Assemble concatenates all sections in fixed bank order with headers, the
// shape of the final assembly output file.
func (s *Sink) Assemble() string {
	var out strings.Builder
	banks := make([]Bank, 0, len(s.sections))
	for b := range s.sections {
		banks = append(banks, b)
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i] < banks[j] })
	for _, b := range banks {
		out.WriteString("; --- section ")
		out.WriteString(b.String())
		out.WriteString(" ---\n")
		out.WriteString(s.sections[b].String())
	}
	return out.String()
}
