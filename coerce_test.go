package main

import (
	"strings"
	"testing"
)

func TestMoveSameWidthSameSign(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	a := mustDefine(t, ctx, "a", VTByte)
	b := mustDefine(t, ctx, "b", VTByte)
	if err := ctx.Move(a, b); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "lda _a")
	codeContains(t, ctx, "sta _b")
	if n := ctx.Warnings.Count(); n != 0 {
		t.Fatalf("expected no warnings, got %d", n)
	}
}

func TestUnsignedWideningClearsHighBytes(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	b := mustDefine(t, ctx, "b", VTByte)
	w := mustDefine(t, ctx, "w", VTWord)
	if err := ctx.Move(b, w); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "lda #$00")
	codeContains(t, ctx, "sta _w+1")
	if n := ctx.Warnings.Count(); n != 0 {
		t.Fatalf("widening should not warn, got %d warning(s)", n)
	}
}

func TestSignedWideningSignFills(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	sb := mustDefine(t, ctx, "sb", VTSByte)
	sw := mustDefine(t, ctx, "sw", VTSWord)
	if err := ctx.Move(sb, sw); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "ldx #$ff")
	codeContains(t, ctx, "sta _sw+1")
}

func TestUnsignedRoundTripPreservesBitPattern(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	u := mustDefine(t, ctx, "u", VTByte)
	wide := mustDefine(t, ctx, "wide", VTWord)
	back := mustDefine(t, ctx, "back", VTByte)
	if err := ctx.Move(u, wide); err != nil {
		t.Fatalf("widening move failed: %v", err)
	}
	if err := ctx.Move(wide, back); err != nil {
		t.Fatalf("narrowing move failed: %v", err)
	}
	code := ctx.Sink.Code()
	// zero-extend up, truncate back down: the low byte flows through
	// unchanged, with no complement branch and no sign-bit mask anywhere
	codeContains(t, ctx, "lda _u")
	codeContains(t, ctx, "sta _wide+1")
	codeContains(t, ctx, "sta _back")
	if strings.Contains(code, "bpl") {
		t.Fatalf("unsigned round trip must not branch on sign:\n%s", code)
	}
	if strings.Contains(code, "sbc") {
		t.Fatalf("unsigned round trip must not complement:\n%s", code)
	}
	if strings.Contains(code, "and #$7f") {
		t.Fatalf("unsigned round trip must not mask the sign bit:\n%s", code)
	}
	if n := ctx.Warnings.Count(); n != 1 {
		t.Fatalf("expected only the narrowing warning, got %d", n)
	}
}

func TestNarrowingWarns(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	w := mustDefine(t, ctx, "w", VTWord)
	b := mustDefine(t, ctx, "b", VTByte)
	if err := ctx.Move(w, b); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if n := ctx.Warnings.Count(); n != 1 {
		t.Fatalf("expected 1 narrowing warning, got %d", n)
	}
	if msg := ctx.Warnings.Warnings()[0].Message; !strings.Contains(msg, "narrowing") {
		t.Fatalf("unexpected warning message: %q", msg)
	}
}

func TestNarrowingToSignedMasksSignBit(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	w := mustDefine(t, ctx, "w", VTWord)
	sb := mustDefine(t, ctx, "sb", VTSByte)
	if err := ctx.Move(w, sb); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "and #$7f")
}

func TestNarrowingSignedSourceComplementsNegatives(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	sw := mustDefine(t, ctx, "sw", VTSWord)
	b := mustDefine(t, ctx, "b", VTByte)
	if err := ctx.Move(sw, b); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "bpl")
	codeContains(t, ctx, "sbc")
}

func TestSignedToUnsignedSameWidthClearsSign(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	sb := mustDefine(t, ctx, "sb", VTSByte)
	b := mustDefine(t, ctx, "b", VTByte)
	if err := ctx.Move(sb, b); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "and #$7f")
	if n := ctx.Warnings.Count(); n != 0 {
		t.Fatalf("same-width move should not warn, got %d warning(s)", n)
	}
}

func TestUnsignedToSignedSameWidthBranches(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	b := mustDefine(t, ctx, "b", VTByte)
	sb := mustDefine(t, ctx, "sb", VTSByte)
	if err := ctx.Move(b, sb); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "bpl")
}

func TestBigEndianWideningTouchesLowWord(t *testing.T) {
	ctx := newTestContext(t, Cpu6809)
	b := mustDefine(t, ctx, "b", VTByte)
	dw := mustDefine(t, ctx, "dw", VTDWord)
	if err := ctx.Move(b, dw); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	// big-endian: the low byte is the last storage byte, the cleared
	// high bytes start at offset 0
	codeContains(t, ctx, "sta _dw+3")
	codeContains(t, ctx, "clr _dw\n")
}

func TestBitIntoWordClearsHighByte(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	f := mustDefine(t, ctx, "f", VTBit)
	w := mustDefine(t, ctx, "w", VTWord)
	if err := ctx.Move(f, w); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "sta _w+1")
}

func TestFloatPrecisionConversion(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	fast, err := ctx.Define("ff", VTFloat, FloatFast)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	single, err := ctx.Define("fs", VTFloat, FloatSingle)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := ctx.Move(fast, single); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "jsr fconv_fast_single")
}

func TestIntToFloatUsesRuntime(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	w := mustDefine(t, ctx, "w", VTWord)
	f, err := ctx.Define("f", VTFloat, FloatSingle)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := ctx.Move(w, f); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "jsr itof_single_16u")
}

func TestCastToStringYieldsDynamicString(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("HI")
	d, err := ctx.Cast(s, VTString)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if d.Type != VTDString {
		t.Fatalf("expected dynamic string, got %s", d.Type)
	}
	if d.ValueString != "HI" || !d.InitializedByConstant {
		t.Fatalf("constant value did not propagate: %q", d.ValueString)
	}
}

func TestStaticToDynamicEmitsBoundedCopy(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("ABC")
	d := mustTemp(t, ctx, VTDString)
	if err := ctx.Move(s, d); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	codeContains(t, ctx, "jsr dsresize_const")
	codeContains(t, ctx, "jsr memmove_const")
}

func TestMoveBlockKindMismatchFails(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	img := &Variable{Name: "img", RealName: "_img", Type: VTImage, Size: 16}
	mus := &Variable{Name: "mus", RealName: "_mus", Type: VTMusic, Size: 16}
	err := ctx.Move(img, mus)
	if !ErrorIs(err, ErrCannotCast) {
		t.Fatalf("expected cannot-cast error, got %v", err)
	}
}

func TestMoveBlockGrowsUnplacedDestination(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	src := &Variable{Name: "src", RealName: "_src", Type: VTBuffer, Size: 64}
	if err := AssignStorage(ctx.Areas, src); err != nil {
		t.Fatalf("AssignStorage: %v", err)
	}
	dst := &Variable{Name: "dst", RealName: "_dst", Type: VTBuffer}
	if err := ctx.Move(src, dst); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if dst.Size != 64 {
		t.Fatalf("expected destination to grow to 64 bytes, got %d", dst.Size)
	}
	if dst.MemoryArea == nil {
		t.Fatal("grown destination was not placed")
	}
}

func TestMoveBlockPlacedTooSmallFails(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	src := &Variable{Name: "src", RealName: "_src", Type: VTBuffer, Size: 64}
	dst := &Variable{Name: "dst", RealName: "_dst", Type: VTBuffer, Size: 16}
	for _, v := range []*Variable{src, dst} {
		if err := AssignStorage(ctx.Areas, v); err != nil {
			t.Fatalf("AssignStorage: %v", err)
		}
	}
	err := ctx.Move(src, dst)
	if !ErrorIs(err, ErrBufferSizeMismatch) {
		t.Fatalf("expected buffer size mismatch, got %v", err)
	}
}
