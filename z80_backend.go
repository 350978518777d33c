// Completion: 100% - Z80 backend complete, all primitives emit zasm-style text
package main

import (
	"fmt"
	"strings"
)

// Z80Backend emits Z80 assembly. Multi-byte values are stored little-endian;
// 16-bit moves and arithmetic go through HL/DE, 32-bit arithmetic chains the
// carry with adc/sbc. Runtime routines take operand addresses pushed on the
// stack, first argument pushed first.
type Z80Backend struct {
	sink   *Sink
	labels int
}

// NewZ80Backend creates the Z80 emitter.
func NewZ80Backend(sink *Sink) *Z80Backend {
	return &Z80Backend{sink: sink}
}

func (b *Z80Backend) Name() string         { return "z80" }
func (b *Z80Backend) ByteOrder() ByteOrder { return LittleEndian }

func (b *Z80Backend) op(r Ref) string {
	if r.Off != 0 {
		return fmt.Sprintf("%s+%d", r.Var.RealName, r.Off)
	}
	return r.Var.RealName
}

func (b *Z80Backend) localLabel() string {
	b.labels++
	return fmt.Sprintf("_bz80_%d", b.labels)
}

func (b *Z80Backend) code(format string, args ...interface{}) {
	b.sink.Line(BankCode, "\t"+format, args...)
}

func (b *Z80Backend) Comment(text string) {
	b.sink.Line(BankCode, "\t; %s", text)
}

func (b *Z80Backend) Label(label string) {
	b.sink.Line(BankCode, "%s:", label)
}

func (b *Z80Backend) Jump(label string) {
	b.code("jp %s", label)
}

func (b *Z80Backend) JumpIfNotNegative(w Width, src Ref, label string) {
	b.code("ld a, (%s)", b.op(src.At(w.Bytes()-1)))
	b.code("bit 7, a")
	b.code("jp z, %s", label)
}

func (b *Z80Backend) JumpIfZero(w Width, src Ref, label string) {
	b.code("ld a, (%s)", b.op(src))
	for i := 1; i < w.Bytes(); i++ {
		b.code("ld hl, %s", b.op(src.At(i)))
		b.code("or (hl)")
	}
	if w == W8 {
		b.code("or a")
	}
	b.code("jp z, %s", label)
}

func (b *Z80Backend) Move(w Width, dst, src Ref) {
	switch w {
	case W8:
		b.code("ld a, (%s)", b.op(src))
		b.code("ld (%s), a", b.op(dst))
	case W16:
		b.code("ld hl, (%s)", b.op(src))
		b.code("ld (%s), hl", b.op(dst))
	case W32:
		b.code("ld hl, (%s)", b.op(src))
		b.code("ld (%s), hl", b.op(dst))
		b.code("ld hl, (%s)", b.op(src.At(2)))
		b.code("ld (%s), hl", b.op(dst.At(2)))
	}
}

func (b *Z80Backend) MoveConst(w Width, dst Ref, value int64) {
	switch w {
	case W8:
		b.code("ld a, $%02x", byte(value))
		b.code("ld (%s), a", b.op(dst))
	case W16:
		b.code("ld hl, $%04x", uint16(value))
		b.code("ld (%s), hl", b.op(dst))
	case W32:
		b.code("ld hl, $%04x", uint16(value))
		b.code("ld (%s), hl", b.op(dst))
		b.code("ld hl, $%04x", uint16(value>>16))
		b.code("ld (%s), hl", b.op(dst.At(2)))
	}
}

func (b *Z80Backend) ClearBytes(dst Ref, n int) {
	b.code("xor a")
	for i := 0; i < n; i++ {
		b.code("ld (%s), a", b.op(dst.At(i)))
	}
}

func (b *Z80Backend) SignFill(dst Ref, n int, signByte Ref) {
	fill := b.localLabel()
	b.code("ld a, (%s)", b.op(signByte))
	b.code("and $80")
	b.code("ld a, $00")
	b.code("jp z, %s", fill)
	b.code("ld a, $ff")
	b.Label(fill)
	for i := 0; i < n; i++ {
		b.code("ld (%s), a", b.op(dst.At(i)))
	}
}

func (b *Z80Backend) LoadAddress(dst, of Ref) {
	b.code("ld hl, %s", b.op(of))
	b.code("ld (%s), hl", b.op(dst))
}

func (b *Z80Backend) Add(w Width, dst, a, c Ref) {
	switch w {
	case W8:
		b.code("ld a, (%s)", b.op(a))
		b.code("ld b, a")
		b.code("ld a, (%s)", b.op(c))
		b.code("add a, b")
		b.code("ld (%s), a", b.op(dst))
	case W16:
		b.code("ld hl, (%s)", b.op(a))
		b.code("ld de, (%s)", b.op(c))
		b.code("add hl, de")
		b.code("ld (%s), hl", b.op(dst))
	case W32:
		b.code("ld hl, (%s)", b.op(a))
		b.code("ld de, (%s)", b.op(c))
		b.code("add hl, de")
		b.code("ld (%s), hl", b.op(dst))
		b.code("ld hl, (%s)", b.op(a.At(2)))
		b.code("ld de, (%s)", b.op(c.At(2)))
		b.code("adc hl, de")
		b.code("ld (%s), hl", b.op(dst.At(2)))
	}
}

func (b *Z80Backend) AddConst(w Width, dst, a Ref, value int64) {
	switch w {
	case W8:
		b.code("ld a, (%s)", b.op(a))
		b.code("add a, $%02x", byte(value))
		b.code("ld (%s), a", b.op(dst))
	case W16:
		b.code("ld hl, (%s)", b.op(a))
		b.code("ld de, $%04x", uint16(value))
		b.code("add hl, de")
		b.code("ld (%s), hl", b.op(dst))
	case W32:
		b.code("ld hl, (%s)", b.op(a))
		b.code("ld de, $%04x", uint16(value))
		b.code("add hl, de")
		b.code("ld (%s), hl", b.op(dst))
		b.code("ld hl, (%s)", b.op(a.At(2)))
		b.code("ld de, $%04x", uint16(value>>16))
		b.code("adc hl, de")
		b.code("ld (%s), hl", b.op(dst.At(2)))
	}
}

func (b *Z80Backend) Sub(w Width, dst, a, c Ref) {
	switch w {
	case W8:
		b.code("ld a, (%s)", b.op(c))
		b.code("ld b, a")
		b.code("ld a, (%s)", b.op(a))
		b.code("sub b")
		b.code("ld (%s), a", b.op(dst))
	case W16:
		b.code("ld hl, (%s)", b.op(a))
		b.code("ld de, (%s)", b.op(c))
		b.code("or a")
		b.code("sbc hl, de")
		b.code("ld (%s), hl", b.op(dst))
	case W32:
		b.code("ld hl, (%s)", b.op(a))
		b.code("ld de, (%s)", b.op(c))
		b.code("or a")
		b.code("sbc hl, de")
		b.code("ld (%s), hl", b.op(dst))
		b.code("ld hl, (%s)", b.op(a.At(2)))
		b.code("ld de, (%s)", b.op(c.At(2)))
		b.code("sbc hl, de")
		b.code("ld (%s), hl", b.op(dst.At(2)))
	}
}

func (b *Z80Backend) SubConst(w Width, dst, a Ref, value int64) {
	switch w {
	case W8:
		b.code("ld a, (%s)", b.op(a))
		b.code("sub $%02x", byte(value))
		b.code("ld (%s), a", b.op(dst))
	default:
		b.code("ld hl, (%s)", b.op(a))
		b.code("ld de, $%04x", uint16(value))
		b.code("or a")
		b.code("sbc hl, de")
		b.code("ld (%s), hl", b.op(dst))
		if w == W32 {
			b.code("ld hl, (%s)", b.op(a.At(2)))
			b.code("ld de, $%04x", uint16(value>>16))
			b.code("sbc hl, de")
			b.code("ld (%s), hl", b.op(dst.At(2)))
		}
	}
}

func (b *Z80Backend) Neg(w Width, dst Ref) {
	switch w {
	case W8:
		b.code("ld a, (%s)", b.op(dst))
		b.code("neg")
		b.code("ld (%s), a", b.op(dst))
	case W16:
		b.code("ld de, (%s)", b.op(dst))
		b.code("ld hl, $0000")
		b.code("or a")
		b.code("sbc hl, de")
		b.code("ld (%s), hl", b.op(dst))
	case W32:
		b.rt("neg32", dst)
	}
}

func (b *Z80Backend) bitwise(mn string, w Width, dst, a, c Ref) {
	for i := 0; i < w.Bytes(); i++ {
		b.code("ld a, (%s)", b.op(a.At(i)))
		b.code("ld hl, %s", b.op(c.At(i)))
		b.code("%s (hl)", mn)
		b.code("ld (%s), a", b.op(dst.At(i)))
	}
}

func (b *Z80Backend) And(w Width, dst, a, c Ref) { b.bitwise("and", w, dst, a, c) }
func (b *Z80Backend) Or(w Width, dst, a, c Ref)  { b.bitwise("or", w, dst, a, c) }
func (b *Z80Backend) Xor(w Width, dst, a, c Ref) { b.bitwise("xor", w, dst, a, c) }

func (b *Z80Backend) AndConst(w Width, dst Ref, mask int64) {
	for i := 0; i < w.Bytes(); i++ {
		b.code("ld a, (%s)", b.op(dst.At(i)))
		b.code("and $%02x", byte(mask>>(8*i)))
		b.code("ld (%s), a", b.op(dst.At(i)))
	}
}

func (b *Z80Backend) ShrConst(w Width, dst Ref, bits int) {
	for n := 0; n < bits; n++ {
		for i := w.Bytes() - 1; i >= 0; i-- {
			if i == w.Bytes()-1 {
				b.code("ld hl, %s", b.op(dst.At(i)))
				b.code("srl (hl)")
			} else {
				b.code("ld hl, %s", b.op(dst.At(i)))
				b.code("rr (hl)")
			}
		}
	}
}

// rt pushes each operand's address and calls the runtime routine, which pops
// its own arguments. An absent operand pushes the null pointer.
func (b *Z80Backend) rt(routine string, args ...Ref) {
	for _, a := range args {
		if a.Var == nil {
			b.code("ld hl, $0000")
		} else {
			b.code("ld hl, %s", b.op(a))
		}
		b.code("push hl")
	}
	b.code("call %s", routine)
}

func (b *Z80Backend) Mul(w Width, signed bool, dst, a, c Ref) {
	b.rt(fmt.Sprintf("mul%d%s", w, signSuffix(signed)), dst, a, c)
}

func (b *Z80Backend) Div(w Width, signed bool, quot, rem, a, c Ref) {
	b.rt(fmt.Sprintf("div%d%s", w, signSuffix(signed)), quot, rem, a, c)
}

func (b *Z80Backend) Cmp(w Width, mode CmpMode, dst, a, c Ref) {
	b.rt(fmt.Sprintf("cmp%d_%s", w, mode), dst, a, c)
}

func (b *Z80Backend) BitTest(dst Ref, src *Variable) {
	set := b.localLabel()
	done := b.localLabel()
	b.code("ld a, ($%04x)", src.BitByte)
	b.code("and $%02x", 1<<src.BitPosition)
	b.code("jp nz, %s", set)
	b.code("ld a, $00")
	b.code("jp %s", done)
	b.Label(set)
	b.code("ld a, $01")
	b.Label(done)
	b.code("ld (%s), a", b.op(dst))
}

func (b *Z80Backend) BitStore(dst *Variable, src Ref) {
	clear := b.localLabel()
	done := b.localLabel()
	b.code("ld a, (%s)", b.op(src))
	b.code("or a")
	b.code("jp z, %s", clear)
	b.code("ld a, ($%04x)", dst.BitByte)
	b.code("or $%02x", 1<<dst.BitPosition)
	b.code("jp %s", done)
	b.Label(clear)
	b.code("ld a, ($%04x)", dst.BitByte)
	b.code("and $%02x", byte(^(1 << dst.BitPosition)))
	b.Label(done)
	b.code("ld ($%04x), a", dst.BitByte)
}

func (b *Z80Backend) BitTestIndexed(dst, base, byteOff, bitOff Ref) {
	b.rt("bittestidx", dst, base, byteOff, bitOff)
}

func (b *Z80Backend) BitStoreIndexed(base, byteOff, bitOff, src Ref) {
	b.rt("bitstoreidx", base, byteOff, bitOff, src)
}

func (b *Z80Backend) LoadIndexed(w Width, dst, base, index Ref) {
	b.code("ld hl, %s", b.op(base))
	b.code("ld de, (%s)", b.op(index))
	b.code("add hl, de")
	switch w {
	case W8:
		b.code("ld a, (hl)")
		b.code("ld (%s), a", b.op(dst))
	default:
		for i := 0; i < w.Bytes(); i++ {
			b.code("ld a, (hl)")
			b.code("ld (%s), a", b.op(dst.At(i)))
			if i < w.Bytes()-1 {
				b.code("inc hl")
			}
		}
	}
}

func (b *Z80Backend) StoreIndexed(w Width, base, index, src Ref) {
	b.code("ld hl, %s", b.op(base))
	b.code("ld de, (%s)", b.op(index))
	b.code("add hl, de")
	for i := 0; i < w.Bytes(); i++ {
		b.code("ld a, (%s)", b.op(src.At(i)))
		b.code("ld (hl), a")
		if i < w.Bytes()-1 {
			b.code("inc hl")
		}
	}
}

func (b *Z80Backend) FMove(p FloatPrecision, dst, src Ref) {
	for i := 0; i < p.Bytes(); i++ {
		b.code("ld a, (%s)", b.op(src.At(i)))
		b.code("ld (%s), a", b.op(dst.At(i)))
	}
}

func (b *Z80Backend) FConv(from, to FloatPrecision, dst, src Ref) {
	b.rt(fmt.Sprintf("fconv_%s_%s", from, to), dst, src)
}

func (b *Z80Backend) FAdd(p FloatPrecision, dst, a, c Ref) { b.rt("fadd_"+p.String(), dst, a, c) }
func (b *Z80Backend) FSub(p FloatPrecision, dst, a, c Ref) { b.rt("fsub_"+p.String(), dst, a, c) }
func (b *Z80Backend) FMul(p FloatPrecision, dst, a, c Ref) { b.rt("fmul_"+p.String(), dst, a, c) }
func (b *Z80Backend) FDiv(p FloatPrecision, dst, a, c Ref) { b.rt("fdiv_"+p.String(), dst, a, c) }

func (b *Z80Backend) FCmp(p FloatPrecision, mode CmpMode, dst, a, c Ref) {
	b.rt(fmt.Sprintf("fcmp_%s_%s", p, mode), dst, a, c)
}

func (b *Z80Backend) FToI(p FloatPrecision, w Width, signed bool, dst, src Ref) {
	b.rt(fmt.Sprintf("ftoi_%s_%d%s", p, w, signSuffix(signed)), dst, src)
}

func (b *Z80Backend) IToF(p FloatPrecision, w Width, signed bool, dst, src Ref) {
	b.rt(fmt.Sprintf("itof_%s_%d%s", p, w, signSuffix(signed)), dst, src)
}

func (b *Z80Backend) DStringAlloc(desc, size Ref) { b.rt("dsalloc", desc, size) }

func (b *Z80Backend) DStringAllocConst(desc Ref, size int) {
	b.code("ld a, $%02x", byte(size))
	b.code("ld (DSSIZE), a")
	b.rt("dsalloc_const", desc)
}

func (b *Z80Backend) DStringFree(desc Ref) { b.rt("dsfree", desc) }

func (b *Z80Backend) DStringResize(desc, size Ref) { b.rt("dsresize", desc, size) }

func (b *Z80Backend) DStringResizeConst(desc Ref, size int) {
	b.code("ld a, $%02x", byte(size))
	b.code("ld (DSSIZE), a")
	b.rt("dsresize_const", desc)
}

func (b *Z80Backend) DStringDesc(addr, length, desc Ref) { b.rt("dsdescriptor", addr, length, desc) }

func (b *Z80Backend) MemMove(dst, src, size Ref) { b.rt("memmove", dst, src, size) }

func (b *Z80Backend) MemMoveConst(dst, src Ref, size int) {
	b.code("ld hl, $%04x", uint16(size))
	b.code("ld (MMSIZE), hl")
	b.rt("memmove_const", dst, src)
}

func (b *Z80Backend) CallRuntime(routine string, args ...Ref) {
	b.rt(routine, args...)
}

func (b *Z80Backend) DeclareVariable(v *Variable) {
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
	b.sink.Line(v.Bank, "%s: defs %d ; %s %s at $%04x", v.RealName, size, v.Type, v.Name, v.AbsoluteAddress)
}

func (b *Z80Backend) DeclareString(label, value string) {
	b.sink.Line(BankStrings, "%s: defb $%02x ; length", label, byte(len(value)))
	b.sink.Line(BankStrings, "\tdefb %s", asmBytes(value))
}

func (b *Z80Backend) DeclareWordTable(label string, words []int) {
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
		b.sink.Line(BankData, "\tdefw %s", strings.Join(parts, ", "))
	}
}
