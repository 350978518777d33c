package main

import (
	"strings"
	"testing"
)

func mustArray(t testing.TB, ctx *CompilationContext, name string, elem VarType, extents ...int) *Variable {
	t.Helper()
	v, err := ctx.DefineArray(name, elem, FloatSingle, extents)
	if err != nil {
		t.Fatalf("DefineArray %s: %v", name, err)
	}
	return v
}

func TestOneDimensionalConstantIndex(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "a", VTByte, 10)
	access, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(3)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if access.ConstOffset != 3 || access.Offset != nil || access.Packed {
		t.Fatalf("expected folded offset 3, got %+v", access)
	}
}

func TestRowMajorTwoDimensional(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "m", VTWord, 4, 5)
	access, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(2), ConstIndex(3)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	// ((2*5)+3) elements of 2 bytes
	if access.ConstOffset != 26 {
		t.Fatalf("expected byte offset 26, got %d", access.ConstOffset)
	}
}

func TestThreeDimensional(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "c", VTByte, 2, 3, 4)
	access, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(1), ConstIndex(2), ConstIndex(3)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	// ((1*3)+2)*4+3 = 23 elements of 1 byte
	if access.ConstOffset != 23 {
		t.Fatalf("expected byte offset 23, got %d", access.ConstOffset)
	}
}

func TestIndexCountMustMatchDimensions(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "m", VTWord, 4, 5)
	_, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(2)})
	if !ErrorIs(err, ErrArraySizeMismatch) {
		t.Fatalf("expected array size mismatch, got %v", err)
	}
}

func TestOffsetRejectsNonArrays(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	v := mustDefine(t, ctx, "v", VTByte)
	_, err := ctx.Offset(v, []ArrayIndex{ConstIndex(0)})
	if !ErrorIs(err, ErrUnsupportedOperationForType) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
}

func TestRuntimeIndexByteArrayNeedsNoScaling(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "a", VTByte, 10)
	idx := mustDefine(t, ctx, "i", VTWord)
	access, err := ctx.Offset(arr, []ArrayIndex{VarIndex(idx)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if access.Offset != idx {
		t.Fatal("byte elements must use the index directly")
	}
	if len(ctx.offsetTables) != 0 {
		t.Fatal("no scaling table expected for unit element size")
	}
}

func TestRuntimeIndexWordArrayUsesSharedTable(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "a", VTWord, 10)
	idx := mustDefine(t, ctx, "i", VTWord)
	access, err := ctx.Offset(arr, []ArrayIndex{VarIndex(idx)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if access.Offset == nil {
		t.Fatal("expected a runtime offset")
	}
	table, ok := ctx.offsetTables[2]
	if !ok {
		t.Fatal("expected the shared 2-byte scaling table")
	}
	if len(table.Refs) != 1 {
		t.Fatalf("expected 1 recorded table reference, got %d", len(table.Refs))
	}
	codeContains(t, ctx, "#<_offsets2")
	codeContains(t, ctx, "jsr loadidx16")

	// a second word array shares the same table
	arr2 := mustArray(t, ctx, "b", VTWord, 20)
	if _, err := ctx.Offset(arr2, []ArrayIndex{VarIndex(idx)}); err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if len(ctx.offsetTables) != 1 {
		t.Fatalf("expected one shared table, got %d", len(ctx.offsetTables))
	}
	if len(table.Refs) != 2 {
		t.Fatalf("expected 2 recorded references, got %d", len(table.Refs))
	}

	ctx.Finalize()
	data := ctx.Sink.Section(BankData)
	if !strings.Contains(data, "_offsets2:") {
		t.Fatalf("table not declared in the data section:\n%s", data)
	}
}

func TestLargeArrayFallsBackToMultiply(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "big", VTWord, 300)
	idx := mustDefine(t, ctx, "i", VTWord)
	if _, err := ctx.Offset(arr, []ArrayIndex{VarIndex(idx)}); err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if len(ctx.offsetTables) != 0 {
		t.Fatal("arrays beyond the table bound must not allocate a table")
	}
	codeContains(t, ctx, "jsr mul16u")
}

func TestMixedConstantAndRuntimeIndexes(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "m", VTWord, 4, 5)
	col := mustDefine(t, ctx, "col", VTWord)
	access, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(2), VarIndex(col)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	// the constant row folds to (2*5) elements of 2 bytes
	if access.ConstOffset != 20 {
		t.Fatalf("expected folded part 20, got %d", access.ConstOffset)
	}
	if access.Offset == nil {
		t.Fatal("expected a scaled runtime part")
	}
}

func TestRuntimeIndexScalesByStride(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "m", VTByte, 4, 5)
	row := mustDefine(t, ctx, "row", VTWord)
	access, err := ctx.Offset(arr, []ArrayIndex{VarIndex(row), ConstIndex(0)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if access.Offset == nil {
		t.Fatal("expected a runtime part")
	}
	// row index is scaled by the stride of 5 before accumulation
	codeContains(t, ctx, "lda #$05")
	codeContains(t, ctx, "jsr mul16u")
}

func TestPackedBitConstantIndexDecomposes(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "flags", VTBit, 20)
	access, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(11)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if !access.Packed {
		t.Fatal("expected a packed access")
	}
	if access.ConstOffset != 1 || access.ConstBit != 3 {
		t.Fatalf("expected byte 1 bit 3, got byte %d bit %d", access.ConstOffset, access.ConstBit)
	}
}

func TestPackedBitRuntimeIndexDecomposes(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "flags", VTBit, 64)
	idx := mustDefine(t, ctx, "i", VTWord)
	access, err := ctx.Offset(arr, []ArrayIndex{VarIndex(idx)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if !access.Packed || access.BitOffset == nil || access.BitPos == nil {
		t.Fatalf("expected runtime packed operands, got %+v", access)
	}
	codeContains(t, ctx, "lsr")
	codeContains(t, ctx, "and #$07")
}

func TestPackedArrayFootprintRoundsUp(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "flags", VTBit, 20)
	if arr.Size != 3 {
		t.Fatalf("20 bits need 3 bytes, got %d", arr.Size)
	}
}

func TestLoadElementConstantIndex(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "m", VTWord, 4, 5)
	access, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(2), ConstIndex(3)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	res, err := ctx.LoadElement(access)
	if err != nil {
		t.Fatalf("LoadElement failed: %v", err)
	}
	if res.Type != VTWord {
		t.Fatalf("expected a word element, got %s", res.Type)
	}
	codeContains(t, ctx, "lda _m+26")
}

func TestStoreElementCastsSource(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "m", VTWord, 10)
	idx := mustDefine(t, ctx, "i", VTWord)
	src := mustDefine(t, ctx, "b", VTByte)
	access, err := ctx.Offset(arr, []ArrayIndex{VarIndex(idx)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if err := ctx.StoreElement(access, src); err != nil {
		t.Fatalf("StoreElement failed: %v", err)
	}
	codeContains(t, ctx, "jsr storeidx16")
}

func TestPackedLoadAndStoreUseIndexedBitOps(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	arr := mustArray(t, ctx, "flags", VTBit, 64)
	access, err := ctx.Offset(arr, []ArrayIndex{ConstIndex(13)})
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if _, err := ctx.LoadElement(access); err != nil {
		t.Fatalf("LoadElement failed: %v", err)
	}
	codeContains(t, ctx, "jsr bittestidx")
	src := constByte(t, ctx, 1)
	if err := ctx.StoreElement(access, src); err != nil {
		t.Fatalf("StoreElement failed: %v", err)
	}
	codeContains(t, ctx, "jsr bitstoreidx")
}
