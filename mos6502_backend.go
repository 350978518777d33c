// Completion: 100% - 6502 backend complete, all primitives emit ca65-style text
package main

import (
	"fmt"
	"strings"
)

// MOS6502Backend emits 6502 assembly. Multi-byte values are stored
// little-endian; multi-byte arithmetic is chained per byte through the carry
// flag. Multiply, divide, float and string primitives call runtime routines
// with operand addresses passed through the fixed pointer slots P0..P3.
type MOS6502Backend struct {
	sink   *Sink
	labels int
}

// NewMOS6502Backend creates the 6502 emitter.
func NewMOS6502Backend(sink *Sink) *MOS6502Backend {
	return &MOS6502Backend{sink: sink}
}

func (b *MOS6502Backend) Name() string         { return "6502" }
func (b *MOS6502Backend) ByteOrder() ByteOrder { return LittleEndian }

// op renders a memory operand as label+offset.
func (b *MOS6502Backend) op(r Ref) string {
	if r.Off != 0 {
		return fmt.Sprintf("%s+%d", r.Var.RealName, r.Off)
	}
	return r.Var.RealName
}

func (b *MOS6502Backend) localLabel() string {
	b.labels++
	return fmt.Sprintf("_b6502_%d", b.labels)
}

func (b *MOS6502Backend) code(format string, args ...interface{}) {
	b.sink.Line(BankCode, "\t"+format, args...)
}

func (b *MOS6502Backend) Comment(text string) {
	b.sink.Line(BankCode, "\t; %s", text)
}

func (b *MOS6502Backend) Label(label string) {
	b.sink.Line(BankCode, "%s:", label)
}

func (b *MOS6502Backend) Jump(label string) {
	b.code("jmp %s", label)
}

func (b *MOS6502Backend) JumpIfNotNegative(w Width, src Ref, label string) {
	b.code("lda %s", b.op(src.At(w.Bytes()-1)))
	b.code("bpl %s", label)
}

func (b *MOS6502Backend) JumpIfZero(w Width, src Ref, label string) {
	b.code("lda %s", b.op(src))
	for i := 1; i < w.Bytes(); i++ {
		b.code("ora %s", b.op(src.At(i)))
	}
	b.code("beq %s", label)
}

func (b *MOS6502Backend) Move(w Width, dst, src Ref) {
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(src.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) MoveConst(w Width, dst Ref, value int64) {
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda #$%02x", byte(value>>(8*i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) ClearBytes(dst Ref, n int) {
	b.code("lda #$00")
	for i := 0; i < n; i++ {
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) SignFill(dst Ref, n int, signByte Ref) {
	fill := b.localLabel()
	b.code("ldx #$00")
	b.code("lda %s", b.op(signByte))
	b.code("bpl %s", fill)
	b.code("ldx #$ff")
	b.Label(fill)
	b.code("txa")
	for i := 0; i < n; i++ {
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) LoadAddress(dst, of Ref) {
	b.code("lda #<%s", b.op(of))
	b.code("sta %s", b.op(dst))
	b.code("lda #>%s", b.op(of))
	b.code("sta %s", b.op(dst.At(1)))
}

func (b *MOS6502Backend) Add(w Width, dst, a, c Ref) {
	b.code("clc")
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(a.At(i)))
		b.code("adc %s", b.op(c.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) AddConst(w Width, dst, a Ref, value int64) {
	b.code("clc")
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(a.At(i)))
		b.code("adc #$%02x", byte(value>>(8*i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) Sub(w Width, dst, a, c Ref) {
	b.code("sec")
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(a.At(i)))
		b.code("sbc %s", b.op(c.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) SubConst(w Width, dst, a Ref, value int64) {
	b.code("sec")
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(a.At(i)))
		b.code("sbc #$%02x", byte(value>>(8*i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) Neg(w Width, dst Ref) {
	b.code("sec")
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda #$00")
		b.code("sbc %s", b.op(dst.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) bitwise(mn string, w Width, dst, a, c Ref) {
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(a.At(i)))
		b.code("%s %s", mn, b.op(c.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) And(w Width, dst, a, c Ref) { b.bitwise("and", w, dst, a, c) }
func (b *MOS6502Backend) Or(w Width, dst, a, c Ref)  { b.bitwise("ora", w, dst, a, c) }
func (b *MOS6502Backend) Xor(w Width, dst, a, c Ref) { b.bitwise("eor", w, dst, a, c) }

func (b *MOS6502Backend) AndConst(w Width, dst Ref, mask int64) {
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(dst.At(i)))
		b.code("and #$%02x", byte(mask>>(8*i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) ShrConst(w Width, dst Ref, bits int) {
	for n := 0; n < bits; n++ {
		for i := w.Bytes() - 1; i >= 0; i-- {
			if i == w.Bytes()-1 {
				b.code("lsr %s", b.op(dst.At(i)))
			} else {
				b.code("ror %s", b.op(dst.At(i)))
			}
		}
	}
}

// rt stores each operand's address into the runtime pointer slots P0..P3 and
// calls the routine. An absent operand passes the null pointer.
func (b *MOS6502Backend) rt(routine string, args ...Ref) {
	for i, a := range args {
		if a.Var == nil {
			b.code("lda #$00")
			b.code("sta P%d", i)
			b.code("sta P%d+1", i)
			continue
		}
		b.code("lda #<%s", b.op(a))
		b.code("sta P%d", i)
		b.code("lda #>%s", b.op(a))
		b.code("sta P%d+1", i)
	}
	b.code("jsr %s", routine)
}

func (b *MOS6502Backend) Mul(w Width, signed bool, dst, a, c Ref) {
	b.rt(fmt.Sprintf("mul%d%s", w, signSuffix(signed)), dst, a, c)
}

func (b *MOS6502Backend) Div(w Width, signed bool, quot, rem, a, c Ref) {
	b.rt(fmt.Sprintf("div%d%s", w, signSuffix(signed)), quot, rem, a, c)
}

func (b *MOS6502Backend) Cmp(w Width, mode CmpMode, dst, a, c Ref) {
	b.rt(fmt.Sprintf("cmp%d_%s", w, mode), dst, a, c)
}

func (b *MOS6502Backend) BitTest(dst Ref, src *Variable) {
	set := b.localLabel()
	done := b.localLabel()
	b.code("lda $%04x", src.BitByte)
	b.code("and #$%02x", 1<<src.BitPosition)
	b.code("bne %s", set)
	b.code("lda #$00")
	b.code("jmp %s", done)
	b.Label(set)
	b.code("lda #$01")
	b.Label(done)
	b.code("sta %s", b.op(dst))
}

func (b *MOS6502Backend) BitStore(dst *Variable, src Ref) {
	clear := b.localLabel()
	done := b.localLabel()
	b.code("lda %s", b.op(src))
	b.code("beq %s", clear)
	b.code("lda $%04x", dst.BitByte)
	b.code("ora #$%02x", 1<<dst.BitPosition)
	b.code("jmp %s", done)
	b.Label(clear)
	b.code("lda $%04x", dst.BitByte)
	b.code("and #$%02x", byte(^(1 << dst.BitPosition)))
	b.Label(done)
	b.code("sta $%04x", dst.BitByte)
}

func (b *MOS6502Backend) BitTestIndexed(dst, base, byteOff, bitOff Ref) {
	b.rt("bittestidx", dst, base, byteOff, bitOff)
}

func (b *MOS6502Backend) BitStoreIndexed(base, byteOff, bitOff, src Ref) {
	b.rt("bitstoreidx", base, byteOff, bitOff, src)
}

// LoadIndexed and StoreIndexed go through the self-modifying indexed copy
// routines; the 6502 has no 16-bit index register to do this inline.
func (b *MOS6502Backend) LoadIndexed(w Width, dst, base, index Ref) {
	b.rt(fmt.Sprintf("loadidx%d", w), dst, base, index)
}

func (b *MOS6502Backend) StoreIndexed(w Width, base, index, src Ref) {
	b.rt(fmt.Sprintf("storeidx%d", w), base, index, src)
}

func (b *MOS6502Backend) FMove(p FloatPrecision, dst, src Ref) {
	for i := 0; i < p.Bytes(); i++ {
		b.code("lda %s", b.op(src.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *MOS6502Backend) FConv(from, to FloatPrecision, dst, src Ref) {
	b.rt(fmt.Sprintf("fconv_%s_%s", from, to), dst, src)
}

func (b *MOS6502Backend) FAdd(p FloatPrecision, dst, a, c Ref) { b.rt("fadd_"+p.String(), dst, a, c) }
func (b *MOS6502Backend) FSub(p FloatPrecision, dst, a, c Ref) { b.rt("fsub_"+p.String(), dst, a, c) }
func (b *MOS6502Backend) FMul(p FloatPrecision, dst, a, c Ref) { b.rt("fmul_"+p.String(), dst, a, c) }
func (b *MOS6502Backend) FDiv(p FloatPrecision, dst, a, c Ref) { b.rt("fdiv_"+p.String(), dst, a, c) }

func (b *MOS6502Backend) FCmp(p FloatPrecision, mode CmpMode, dst, a, c Ref) {
	b.rt(fmt.Sprintf("fcmp_%s_%s", p, mode), dst, a, c)
}

func (b *MOS6502Backend) FToI(p FloatPrecision, w Width, signed bool, dst, src Ref) {
	b.rt(fmt.Sprintf("ftoi_%s_%d%s", p, w, signSuffix(signed)), dst, src)
}

func (b *MOS6502Backend) IToF(p FloatPrecision, w Width, signed bool, dst, src Ref) {
	b.rt(fmt.Sprintf("itof_%s_%d%s", p, w, signSuffix(signed)), dst, src)
}

func (b *MOS6502Backend) DStringAlloc(desc, size Ref) { b.rt("dsalloc", desc, size) }

func (b *MOS6502Backend) DStringAllocConst(desc Ref, size int) {
	b.code("lda #$%02x", byte(size))
	b.code("sta DSSIZE")
	b.rt("dsalloc_const", desc)
}

func (b *MOS6502Backend) DStringFree(desc Ref) { b.rt("dsfree", desc) }

func (b *MOS6502Backend) DStringResize(desc, size Ref) { b.rt("dsresize", desc, size) }

func (b *MOS6502Backend) DStringResizeConst(desc Ref, size int) {
	b.code("lda #$%02x", byte(size))
	b.code("sta DSSIZE")
	b.rt("dsresize_const", desc)
}

func (b *MOS6502Backend) DStringDesc(addr, length, desc Ref) { b.rt("dsdescriptor", addr, length, desc) }

func (b *MOS6502Backend) MemMove(dst, src, size Ref) { b.rt("memmove", dst, src, size) }

func (b *MOS6502Backend) MemMoveConst(dst, src Ref, size int) {
	b.code("lda #$%02x", byte(size))
	b.code("sta MMSIZE")
	b.code("lda #$%02x", byte(size>>8))
	b.code("sta MMSIZE+1")
	b.rt("memmove_const", dst, src)
}

func (b *MOS6502Backend) CallRuntime(routine string, args ...Ref) {
	b.rt(routine, args...)
}

func (b *MOS6502Backend) DeclareVariable(v *Variable) {
	size := neededSpace(v)
	if v.Type == VTBit {
		b.sink.Line(v.Bank, "%s = $%04x ; %s (bit %d)", v.RealName, v.BitByte, v.Name, v.BitPosition)
		return
	}
	if size == 0 {
		return
	}
	if v.Temporary {
		b.sink.Line(v.Bank, "%s = $%04x ; %s temp, %d bytes", v.RealName, v.AbsoluteAddress, v.Type, size)
		return
	}
	b.sink.Line(v.Bank, "%s: .res %d ; %s %s at $%04x", v.RealName, size, v.Type, v.Name, v.AbsoluteAddress)
}

func (b *MOS6502Backend) DeclareString(label, value string) {
	b.sink.Line(BankStrings, "%s: .byte $%02x ; length", label, byte(len(value)))
	b.sink.Line(BankStrings, "\t.byte %s", asmBytes(value))
}

func (b *MOS6502Backend) DeclareWordTable(label string, words []int) {
	b.sink.Line(BankData, "%s:", label)
	for i := 0; i < len(words); i += 8 {
		end := i + 8
		if end > len(words) {
			end = len(words)
		}
		parts := make([]string, 0, 8)
		for _, w := range words[i:end] {
			parts = append(parts, fmt.Sprintf("$%04x", w))
		}
		b.sink.Line(BankData, "\t.word %s", strings.Join(parts, ", "))
	}
}

func signSuffix(signed bool) string {
	if signed {
		return "s"
	}
	return "u"
}

// asmBytes renders string bytes as a comma-separated hex list.
func asmBytes(s string) string {
	if s == "" {
		return "$00"
	}
	parts := make([]string, 0, len(s))
	for i := 0; i < len(s); i++ {
		parts = append(parts, fmt.Sprintf("$%02x", s[i]))
	}
	return strings.Join(parts, ", ")
}
