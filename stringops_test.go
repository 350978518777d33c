package main

import (
	"strings"
	"testing"
)

func foldedString(t testing.TB, v *Variable, err error) string {
	t.Helper()
	if err != nil {
		t.Fatalf("string function failed: %v", err)
	}
	if v.Type != VTDString {
		t.Fatalf("expected a dynamic string result, got %s", v.Type)
	}
	if !v.InitializedByConstant {
		t.Fatal("expected a folded constant result")
	}
	return v.ValueString
}

func TestLeftFoldsConstants(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TEST")
	v, err := ctx.StrLeft(s, constByte(t, ctx, 2))
	if got := foldedString(t, v, err); got != "TE" {
		t.Fatalf("LEFT$(\"TEST\", 2) = %q, want \"TE\"", got)
	}
}

func TestLeftOfZeroIsEmpty(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TEST")
	v, err := ctx.StrLeft(s, constByte(t, ctx, 0))
	if got := foldedString(t, v, err); got != "" {
		t.Fatalf("LEFT$(\"TEST\", 0) = %q, want \"\"", got)
	}
}

func TestLeftClampsToLength(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TEST")
	v, err := ctx.StrLeft(s, constByte(t, ctx, 9))
	if got := foldedString(t, v, err); got != "TEST" {
		t.Fatalf("LEFT$(\"TEST\", 9) = %q, want \"TEST\"", got)
	}
}

func TestRightFoldsConstants(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TEST")
	v, err := ctx.StrRight(s, constByte(t, ctx, 3))
	if got := foldedString(t, v, err); got != "EST" {
		t.Fatalf("RIGHT$(\"TEST\", 3) = %q, want \"EST\"", got)
	}
}

func TestMidWithoutLengthRunsToEnd(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TEST")
	v, err := ctx.StrMid(s, constByte(t, ctx, 2), nil)
	if got := foldedString(t, v, err); got != "EST" {
		t.Fatalf("MID$(\"TEST\", 2) = %q, want \"EST\"", got)
	}
}

func TestMidWithLength(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TEST")
	v, err := ctx.StrMid(s, constByte(t, ctx, 2), constByte(t, ctx, 2))
	if got := foldedString(t, v, err); got != "ES" {
		t.Fatalf("MID$(\"TEST\", 2, 2) = %q, want \"ES\"", got)
	}
}

func TestMidPastEndIsEmpty(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TEST")
	v, err := ctx.StrMid(s, constByte(t, ctx, 9), nil)
	if got := foldedString(t, v, err); got != "" {
		t.Fatalf("MID$(\"TEST\", 9) = %q, want \"\"", got)
	}
}

func TestInstrFolds(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("TESTING")
	v, err := ctx.StrInstr(s, ctx.StaticStringVar("TI"), nil)
	if err != nil {
		t.Fatalf("INSTR failed: %v", err)
	}
	if v.Value != 4 || !v.InitializedByConstant {
		t.Fatalf("INSTR(\"TESTING\", \"TI\") = %d, want 4", v.Value)
	}
}

func TestInstrWithStartSkipsEarlierHit(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("ABAB")
	v, err := ctx.StrInstr(s, ctx.StaticStringVar("AB"), constByte(t, ctx, 2))
	if err != nil {
		t.Fatalf("INSTR failed: %v", err)
	}
	if v.Value != 3 {
		t.Fatalf("INSTR(\"ABAB\", \"AB\", 2) = %d, want 3", v.Value)
	}
}

func TestInstrMissIsZero(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := ctx.StaticStringVar("ABC")
	v, err := ctx.StrInstr(s, ctx.StaticStringVar("Z"), nil)
	if err != nil {
		t.Fatalf("INSTR failed: %v", err)
	}
	if v.Value != 0 {
		t.Fatalf("INSTR miss = %d, want 0", v.Value)
	}
}

func TestCaseAndFlipFold(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	v, err := ctx.StrUpper(ctx.StaticStringVar("abc"))
	if got := foldedString(t, v, err); got != "ABC" {
		t.Fatalf("UPPER$ = %q", got)
	}
	v, err = ctx.StrLower(ctx.StaticStringVar("ABC"))
	if got := foldedString(t, v, err); got != "abc" {
		t.Fatalf("LOWER$ = %q", got)
	}
	v, err = ctx.StrFlip(ctx.StaticStringVar("ABC"))
	if got := foldedString(t, v, err); got != "CBA" {
		t.Fatalf("FLIP$ = %q", got)
	}
}

func TestChrAndAscFold(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	v, err := ctx.StrChr(constByte(t, ctx, 65))
	if got := foldedString(t, v, err); got != "A" {
		t.Fatalf("CHR$(65) = %q, want \"A\"", got)
	}
	a, err := ctx.StrAsc(ctx.StaticStringVar("A"))
	if err != nil {
		t.Fatalf("ASC failed: %v", err)
	}
	if a.Value != 65 {
		t.Fatalf("ASC(\"A\") = %d, want 65", a.Value)
	}
}

func TestStrFoldsInteger(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	v, err := ctx.StrStr(constByte(t, ctx, 123))
	if got := foldedString(t, v, err); got != "123" {
		t.Fatalf("STR$(123) = %q", got)
	}
}

func TestHexAndBinFoldWithPadding(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	v, err := ctx.StrHex(constByte(t, ctx, 255), constByte(t, ctx, 4))
	if got := foldedString(t, v, err); got != "00FF" {
		t.Fatalf("HEX$(255, 4) = %q, want \"00FF\"", got)
	}
	v, err = ctx.StrBin(constByte(t, ctx, 5), nil)
	if got := foldedString(t, v, err); got != "101" {
		t.Fatalf("BIN$(5) = %q, want \"101\"", got)
	}
}

func TestLenOfConstant(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	v, err := ctx.StrLen(ctx.StaticStringVar("TEST"))
	if err != nil {
		t.Fatalf("LEN failed: %v", err)
	}
	if v.Type != VTByte || v.Value != 4 {
		t.Fatalf("LEN(\"TEST\") = %d (%s), want 4 (byte)", v.Value, v.Type)
	}
}

func TestLenOfDynamicStringReadsDescriptor(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := mustTemp(t, ctx, VTDString)
	if _, err := ctx.StrLen(s); err != nil {
		t.Fatalf("LEN failed: %v", err)
	}
	codeContains(t, ctx, "jsr dsdescriptor")
}

func TestRuntimeLeftEmitsBoundedCopy(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := mustTemp(t, ctx, VTDString)
	n := mustDefine(t, ctx, "n", VTByte)
	v, err := ctx.StrLeft(s, n)
	if err != nil {
		t.Fatalf("LEFT$ failed: %v", err)
	}
	if v.InitializedByConstant {
		t.Fatal("runtime LEFT$ must not fold")
	}
	codeContains(t, ctx, "jsr dsresize")
	codeContains(t, ctx, "jsr memmove")
}

func TestLeftKeepsCountVariableIntact(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := mustTemp(t, ctx, VTDString)
	n := mustDefine(t, ctx, "n", VTByte)
	if _, err := ctx.StrLeft(s, n); err != nil {
		t.Fatalf("LEFT$ failed: %v", err)
	}
	code := ctx.Sink.Code()
	if !strings.Contains(code, "lda _n") {
		t.Fatalf("count variable never read:\n%s", code)
	}
	if strings.Contains(code, "sta _n") {
		t.Fatalf("clamp wrote back into the count variable:\n%s", code)
	}
}

func TestRuntimeUpperUsesRoutine(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	s := mustTemp(t, ctx, VTDString)
	if _, err := ctx.StrUpper(s); err != nil {
		t.Fatalf("UPPER$ failed: %v", err)
	}
	codeContains(t, ctx, "jsr dstrupper")
}

func TestValReturnsFloat(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	v, err := ctx.StrVal(ctx.StaticStringVar("3.14"))
	if err != nil {
		t.Fatalf("VAL failed: %v", err)
	}
	if v.Type != VTFloat {
		t.Fatalf("expected float, got %s", v.Type)
	}
	codeContains(t, ctx, "jsr dstrval")
}

func TestStringFunctionsRejectNumbers(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	_, err := ctx.StrLen(constByte(t, ctx, 7))
	if !ErrorIs(err, ErrUnsupportedOperationForType) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
}

func TestMidAssignFolds(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	target := mustTemp(t, ctx, VTDString)
	if err := ctx.Move(ctx.StaticStringVar("ABCD"), target); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	err := ctx.StrMidAssign(target, constByte(t, ctx, 2), constByte(t, ctx, 2),
		ctx.StaticStringVar("XY"))
	if err != nil {
		t.Fatalf("MID$ assignment failed: %v", err)
	}
	if target.ValueString != "AXYD" {
		t.Fatalf("MID$ assignment produced %q, want \"AXYD\"", target.ValueString)
	}
}

func TestMidAssignRuntimeClearsConstant(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	target := mustTemp(t, ctx, VTDString)
	if err := ctx.Move(ctx.StaticStringVar("ABCD"), target); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	pos := mustDefine(t, ctx, "p", VTByte)
	err := ctx.StrMidAssign(target, pos, nil, ctx.StaticStringVar("XY"))
	if err != nil {
		t.Fatalf("MID$ assignment failed: %v", err)
	}
	if target.InitializedByConstant {
		t.Fatal("runtime MID$ assignment must drop the constant flag")
	}
	codeContains(t, ctx, "jsr dstrmidassign")
}

func TestStringConstantsAreInterned(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	a := ctx.StaticStringVar("SAME")
	b := ctx.StaticStringVar("SAME")
	if a.RealName != b.RealName {
		t.Fatalf("identical literals got distinct pool labels %s and %s", a.RealName, b.RealName)
	}
	c := ctx.StaticStringVar("OTHER")
	if c.RealName == a.RealName {
		t.Fatal("distinct literals share a pool label")
	}
}
