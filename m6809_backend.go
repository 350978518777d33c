// Completion: 100% - 6809 backend complete, big-endian storage throughout
package main

import (
	"fmt"
	"strings"
)

// M6809Backend emits Motorola 6809 assembly. Multi-byte values are stored
// big-endian, so the D register can load and store 16-bit words directly.
// 32-bit arithmetic chains the carry from the low word (offset 2) into the
// high word (offset 0). Runtime routines take operand addresses in X pushed
// on the S stack, first argument pushed first.
type M6809Backend struct {
	sink   *Sink
	labels int
}

// NewM6809Backend creates the 6809 emitter.
func NewM6809Backend(sink *Sink) *M6809Backend {
	return &M6809Backend{sink: sink}
}

func (b *M6809Backend) Name() string         { return "6809" }
func (b *M6809Backend) ByteOrder() ByteOrder { return BigEndian }

func (b *M6809Backend) op(r Ref) string {
	if r.Off != 0 {
		return fmt.Sprintf("%s+%d", r.Var.RealName, r.Off)
	}
	return r.Var.RealName
}

func (b *M6809Backend) localLabel() string {
	b.labels++
	return fmt.Sprintf("_b6809_%d", b.labels)
}

func (b *M6809Backend) code(format string, args ...interface{}) {
	b.sink.Line(BankCode, "\t"+format, args...)
}

func (b *M6809Backend) Comment(text string) {
	b.sink.Line(BankCode, "\t; %s", text)
}

func (b *M6809Backend) Label(label string) {
	b.sink.Line(BankCode, "%s:", label)
}

func (b *M6809Backend) Jump(label string) {
	b.code("jmp %s", label)
}

// The sign byte sits at offset 0 in big-endian storage.
func (b *M6809Backend) JumpIfNotNegative(w Width, src Ref, label string) {
	b.code("lda %s", b.op(src))
	b.code("bpl %s", label)
}

func (b *M6809Backend) JumpIfZero(w Width, src Ref, label string) {
	b.code("lda %s", b.op(src))
	for i := 1; i < w.Bytes(); i++ {
		b.code("ora %s", b.op(src.At(i)))
	}
	b.code("beq %s", label)
}

func (b *M6809Backend) Move(w Width, dst, src Ref) {
	switch w {
	case W8:
		b.code("lda %s", b.op(src))
		b.code("sta %s", b.op(dst))
	case W16:
		b.code("ldd %s", b.op(src))
		b.code("std %s", b.op(dst))
	case W32:
		b.code("ldd %s", b.op(src))
		b.code("std %s", b.op(dst))
		b.code("ldd %s", b.op(src.At(2)))
		b.code("std %s", b.op(dst.At(2)))
	}
}

func (b *M6809Backend) MoveConst(w Width, dst Ref, value int64) {
	switch w {
	case W8:
		b.code("lda #$%02x", byte(value))
		b.code("sta %s", b.op(dst))
	case W16:
		b.code("ldd #$%04x", uint16(value))
		b.code("std %s", b.op(dst))
	case W32:
		b.code("ldd #$%04x", uint16(value>>16))
		b.code("std %s", b.op(dst))
		b.code("ldd #$%04x", uint16(value))
		b.code("std %s", b.op(dst.At(2)))
	}
}

func (b *M6809Backend) ClearBytes(dst Ref, n int) {
	for i := 0; i < n; i++ {
		b.code("clr %s", b.op(dst.At(i)))
	}
}

func (b *M6809Backend) SignFill(dst Ref, n int, signByte Ref) {
	fill := b.localLabel()
	b.code("clra")
	b.code("tst %s", b.op(signByte))
	b.code("bpl %s", fill)
	b.code("lda #$ff")
	b.Label(fill)
	for i := 0; i < n; i++ {
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *M6809Backend) LoadAddress(dst, of Ref) {
	b.code("ldd #%s", b.op(of))
	b.code("std %s", b.op(dst))
}

func (b *M6809Backend) Add(w Width, dst, a, c Ref) {
	switch w {
	case W8:
		b.code("lda %s", b.op(a))
		b.code("adda %s", b.op(c))
		b.code("sta %s", b.op(dst))
	case W16:
		b.code("ldd %s", b.op(a))
		b.code("addd %s", b.op(c))
		b.code("std %s", b.op(dst))
	case W32:
		b.code("ldd %s", b.op(a.At(2)))
		b.code("addd %s", b.op(c.At(2)))
		b.code("std %s", b.op(dst.At(2)))
		b.code("lda %s", b.op(a.At(1)))
		b.code("adca %s", b.op(c.At(1)))
		b.code("sta %s", b.op(dst.At(1)))
		b.code("lda %s", b.op(a))
		b.code("adca %s", b.op(c))
		b.code("sta %s", b.op(dst))
	}
}

func (b *M6809Backend) AddConst(w Width, dst, a Ref, value int64) {
	switch w {
	case W8:
		b.code("lda %s", b.op(a))
		b.code("adda #$%02x", byte(value))
		b.code("sta %s", b.op(dst))
	case W16:
		b.code("ldd %s", b.op(a))
		b.code("addd #$%04x", uint16(value))
		b.code("std %s", b.op(dst))
	case W32:
		b.code("ldd %s", b.op(a.At(2)))
		b.code("addd #$%04x", uint16(value))
		b.code("std %s", b.op(dst.At(2)))
		b.code("lda %s", b.op(a.At(1)))
		b.code("adca #$%02x", byte(value>>16))
		b.code("sta %s", b.op(dst.At(1)))
		b.code("lda %s", b.op(a))
		b.code("adca #$%02x", byte(value>>24))
		b.code("sta %s", b.op(dst))
	}
}

func (b *M6809Backend) Sub(w Width, dst, a, c Ref) {
	switch w {
	case W8:
		b.code("lda %s", b.op(a))
		b.code("suba %s", b.op(c))
		b.code("sta %s", b.op(dst))
	case W16:
		b.code("ldd %s", b.op(a))
		b.code("subd %s", b.op(c))
		b.code("std %s", b.op(dst))
	case W32:
		b.code("ldd %s", b.op(a.At(2)))
		b.code("subd %s", b.op(c.At(2)))
		b.code("std %s", b.op(dst.At(2)))
		b.code("lda %s", b.op(a.At(1)))
		b.code("sbca %s", b.op(c.At(1)))
		b.code("sta %s", b.op(dst.At(1)))
		b.code("lda %s", b.op(a))
		b.code("sbca %s", b.op(c))
		b.code("sta %s", b.op(dst))
	}
}

func (b *M6809Backend) SubConst(w Width, dst, a Ref, value int64) {
	switch w {
	case W8:
		b.code("lda %s", b.op(a))
		b.code("suba #$%02x", byte(value))
		b.code("sta %s", b.op(dst))
	case W16:
		b.code("ldd %s", b.op(a))
		b.code("subd #$%04x", uint16(value))
		b.code("std %s", b.op(dst))
	case W32:
		b.code("ldd %s", b.op(a.At(2)))
		b.code("subd #$%04x", uint16(value))
		b.code("std %s", b.op(dst.At(2)))
		b.code("lda %s", b.op(a.At(1)))
		b.code("sbca #$%02x", byte(value>>16))
		b.code("sta %s", b.op(dst.At(1)))
		b.code("lda %s", b.op(a))
		b.code("sbca #$%02x", byte(value>>24))
		b.code("sta %s", b.op(dst))
	}
}

func (b *M6809Backend) Neg(w Width, dst Ref) {
	switch w {
	case W8:
		b.code("neg %s", b.op(dst))
	case W16:
		b.code("ldd #$0000")
		b.code("subd %s", b.op(dst))
		b.code("std %s", b.op(dst))
	case W32:
		b.rt("neg32", dst)
	}
}

func (b *M6809Backend) bitwise(mn string, w Width, dst, a, c Ref) {
	for i := 0; i < w.Bytes(); i++ {
		b.code("lda %s", b.op(a.At(i)))
		b.code("%sa %s", mn, b.op(c.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *M6809Backend) And(w Width, dst, a, c Ref) { b.bitwise("and", w, dst, a, c) }
func (b *M6809Backend) Or(w Width, dst, a, c Ref)  { b.bitwise("or", w, dst, a, c) }
func (b *M6809Backend) Xor(w Width, dst, a, c Ref) { b.bitwise("eor", w, dst, a, c) }

// The mask is given in value order, so byte i of the mask lands at the
// matching big-endian storage offset.
func (b *M6809Backend) AndConst(w Width, dst Ref, mask int64) {
	n := w.Bytes()
	for i := 0; i < n; i++ {
		b.code("lda %s", b.op(dst.At(i)))
		b.code("anda #$%02x", byte(mask>>(8*(n-1-i))))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *M6809Backend) ShrConst(w Width, dst Ref, bits int) {
	for n := 0; n < bits; n++ {
		b.code("lsr %s", b.op(dst))
		for i := 1; i < w.Bytes(); i++ {
			b.code("ror %s", b.op(dst.At(i)))
		}
	}
}

// rt pushes each operand's address on the S stack and calls the runtime
// routine, which pops its own arguments. An absent operand pushes zero.
func (b *M6809Backend) rt(routine string, args ...Ref) {
	for _, a := range args {
		if a.Var == nil {
			b.code("ldx #$0000")
		} else {
			b.code("ldx #%s", b.op(a))
		}
		b.code("pshs x")
	}
	b.code("jsr %s", routine)
}

func (b *M6809Backend) Mul(w Width, signed bool, dst, a, c Ref) {
	b.rt(fmt.Sprintf("mul%d%s", w, signSuffix(signed)), dst, a, c)
}

func (b *M6809Backend) Div(w Width, signed bool, quot, rem, a, c Ref) {
	b.rt(fmt.Sprintf("div%d%s", w, signSuffix(signed)), quot, rem, a, c)
}

func (b *M6809Backend) Cmp(w Width, mode CmpMode, dst, a, c Ref) {
	b.rt(fmt.Sprintf("cmp%d_%s", w, mode), dst, a, c)
}

func (b *M6809Backend) BitTest(dst Ref, src *Variable) {
	set := b.localLabel()
	done := b.localLabel()
	b.code("lda $%04x", src.BitByte)
	b.code("anda #$%02x", 1<<src.BitPosition)
	b.code("bne %s", set)
	b.code("clra")
	b.code("bra %s", done)
	b.Label(set)
	b.code("lda #$01")
	b.Label(done)
	b.code("sta %s", b.op(dst))
}

func (b *M6809Backend) BitStore(dst *Variable, src Ref) {
	clear := b.localLabel()
	done := b.localLabel()
	b.code("tst %s", b.op(src))
	b.code("beq %s", clear)
	b.code("lda $%04x", dst.BitByte)
	b.code("ora #$%02x", 1<<dst.BitPosition)
	b.code("bra %s", done)
	b.Label(clear)
	b.code("lda $%04x", dst.BitByte)
	b.code("anda #$%02x", byte(^(1 << dst.BitPosition)))
	b.Label(done)
	b.code("sta $%04x", dst.BitByte)
}

func (b *M6809Backend) BitTestIndexed(dst, base, byteOff, bitOff Ref) {
	b.rt("bittestidx", dst, base, byteOff, bitOff)
}

func (b *M6809Backend) BitStoreIndexed(base, byteOff, bitOff, src Ref) {
	b.rt("bitstoreidx", base, byteOff, bitOff, src)
}

func (b *M6809Backend) LoadIndexed(w Width, dst, base, index Ref) {
	b.code("ldx %s", b.op(base))
	b.code("ldd %s", b.op(index))
	b.code("leax d,x")
	switch w {
	case W8:
		b.code("lda ,x")
		b.code("sta %s", b.op(dst))
	case W16:
		b.code("ldd ,x")
		b.code("std %s", b.op(dst))
	case W32:
		b.code("ldd ,x")
		b.code("std %s", b.op(dst))
		b.code("ldd 2,x")
		b.code("std %s", b.op(dst.At(2)))
	}
}

func (b *M6809Backend) StoreIndexed(w Width, base, index, src Ref) {
	b.code("ldx %s", b.op(base))
	b.code("ldd %s", b.op(index))
	b.code("leax d,x")
	switch w {
	case W8:
		b.code("lda %s", b.op(src))
		b.code("sta ,x")
	case W16:
		b.code("ldd %s", b.op(src))
		b.code("std ,x")
	case W32:
		b.code("ldd %s", b.op(src))
		b.code("std ,x")
		b.code("ldd %s", b.op(src.At(2)))
		b.code("std 2,x")
	}
}

func (b *M6809Backend) FMove(p FloatPrecision, dst, src Ref) {
	for i := 0; i < p.Bytes(); i++ {
		b.code("lda %s", b.op(src.At(i)))
		b.code("sta %s", b.op(dst.At(i)))
	}
}

func (b *M6809Backend) FConv(from, to FloatPrecision, dst, src Ref) {
	b.rt(fmt.Sprintf("fconv_%s_%s", from, to), dst, src)
}

func (b *M6809Backend) FAdd(p FloatPrecision, dst, a, c Ref) { b.rt("fadd_"+p.String(), dst, a, c) }
func (b *M6809Backend) FSub(p FloatPrecision, dst, a, c Ref) { b.rt("fsub_"+p.String(), dst, a, c) }
func (b *M6809Backend) FMul(p FloatPrecision, dst, a, c Ref) { b.rt("fmul_"+p.String(), dst, a, c) }
func (b *M6809Backend) FDiv(p FloatPrecision, dst, a, c Ref) { b.rt("fdiv_"+p.String(), dst, a, c) }

func (b *M6809Backend) FCmp(p FloatPrecision, mode CmpMode, dst, a, c Ref) {
	b.rt(fmt.Sprintf("fcmp_%s_%s", p, mode), dst, a, c)
}

func (b *M6809Backend) FToI(p FloatPrecision, w Width, signed bool, dst, src Ref) {
	b.rt(fmt.Sprintf("ftoi_%s_%d%s", p, w, signSuffix(signed)), dst, src)
}

func (b *M6809Backend) IToF(p FloatPrecision, w Width, signed bool, dst, src Ref) {
	b.rt(fmt.Sprintf("itof_%s_%d%s", p, w, signSuffix(signed)), dst, src)
}

func (b *M6809Backend) DStringAlloc(desc, size Ref) { b.rt("dsalloc", desc, size) }

func (b *M6809Backend) DStringAllocConst(desc Ref, size int) {
	b.code("lda #$%02x", byte(size))
	b.code("sta DSSIZE")
	b.rt("dsalloc_const", desc)
}

func (b *M6809Backend) DStringFree(desc Ref) { b.rt("dsfree", desc) }

func (b *M6809Backend) DStringResize(desc, size Ref) { b.rt("dsresize", desc, size) }

func (b *M6809Backend) DStringResizeConst(desc Ref, size int) {
	b.code("lda #$%02x", byte(size))
	b.code("sta DSSIZE")
	b.rt("dsresize_const", desc)
}

func (b *M6809Backend) DStringDesc(addr, length, desc Ref) { b.rt("dsdescriptor", addr, length, desc) }

func (b *M6809Backend) MemMove(dst, src, size Ref) { b.rt("memmove", dst, src, size) }

func (b *M6809Backend) MemMoveConst(dst, src Ref, size int) {
	b.code("ldd #$%04x", uint16(size))
	b.code("std MMSIZE")
	b.rt("memmove_const", dst, src)
}

func (b *M6809Backend) CallRuntime(routine string, args ...Ref) {
	b.rt(routine, args...)
}

func (b *M6809Backend) DeclareVariable(v *Variable) {
	size := neededSpace(v)
	if v.Type == VTBit {
		b.sink.Line(v.Bank, "%s equ $%04x ; %s (bit %d)", v.RealName, v.BitByte, v.Name, v.BitPosition)
		return
	}
	if size == 0 {
		return
	}
	if v.Temporary {
		b.sink.Line(v.Bank, "%s equ $%04x ; %s temp, %d bytes", v.RealName, v.AbsoluteAddress, v.Type, size)
		return
	}
	b.sink.Line(v.Bank, "%s rmb %d ; %s %s at $%04x", v.RealName, size, v.Type, v.Name, v.AbsoluteAddress)
}

func (b *M6809Backend) DeclareString(label, value string) {
	b.sink.Line(BankStrings, "%s fcb $%02x ; length", label, byte(len(value)))
	b.sink.Line(BankStrings, "\tfcb %s", asmBytes(value))
}

func (b *M6809Backend) DeclareWordTable(label string, words []int) {
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
		b.sink.Line(BankData, "\tfdb %s", strings.Join(parts, ", "))
	}
}
