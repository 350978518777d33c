package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestSymbolMapSkipsTemporariesAndImports(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	mustDefine(t, ctx, "x", VTByte)
	mustTemp(t, ctx, VTWord)
	if _, err := ctx.Import("chrout", VTByte, 1); err != nil {
		t.Fatalf("Import: %v", err)
	}
	m := BuildSymbolMap(ctx)
	if len(m.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(m.Symbols))
	}
	if m.Symbols[0].Name != "x" || m.Symbols[0].Label != "_x" {
		t.Fatalf("unexpected symbol %+v", m.Symbols[0])
	}
	if m.Machine != "test" || m.CPU != "6502" {
		t.Fatalf("bad header: %s/%s", m.Machine, m.CPU)
	}
}

func TestSymbolMapSortedByAddress(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	// the array spills past the zero page into main RAM, the byte stays
	// in the zero page; definition order is the reverse of address order
	if _, err := ctx.DefineArray("big", VTByte, FloatSingle, []int{300}); err != nil {
		t.Fatalf("DefineArray: %v", err)
	}
	mustDefine(t, ctx, "x", VTByte)
	m := BuildSymbolMap(ctx)
	if len(m.Symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(m.Symbols))
	}
	if m.Symbols[0].Name != "x" || m.Symbols[1].Name != "big" {
		t.Fatalf("symbols not sorted by address: %+v", m.Symbols)
	}
	if m.Symbols[0].Area != "zp" || m.Symbols[1].Area != "main" {
		t.Fatalf("bad area names: %+v", m.Symbols)
	}
}

func TestSymbolMapBitEntry(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	f := mustDefine(t, ctx, "f", VTBit)
	m := BuildSymbolMap(ctx)
	if len(m.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(m.Symbols))
	}
	e := m.Symbols[0]
	if e.Address != f.BitByte {
		t.Fatalf("bit entry must report the flags byte, got $%04x", e.Address)
	}
	if e.Bit != f.BitPosition+1 {
		t.Fatalf("expected 1-based bit %d, got %d", f.BitPosition+1, e.Bit)
	}
}

func TestSymbolMapRoundTrip(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	mustDefine(t, ctx, "x", VTByte)
	mustDefine(t, ctx, "w", VTWord)
	m := BuildSymbolMap(ctx)
	data, err := MarshalSymbolMap(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalSymbolMap(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Machine != m.Machine || got.CPU != m.CPU {
		t.Fatalf("header changed in round trip: %+v", got)
	}
	if len(got.Symbols) != len(m.Symbols) {
		t.Fatalf("symbol count changed: %d vs %d", len(got.Symbols), len(m.Symbols))
	}
	for i := range m.Symbols {
		if got.Symbols[i] != m.Symbols[i] {
			t.Fatalf("symbol %d changed: %+v vs %+v", i, got.Symbols[i], m.Symbols[i])
		}
	}
}

func TestSymbolMapEncodingIsDeterministic(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	mustDefine(t, ctx, "x", VTByte)
	mustDefine(t, ctx, "w", VTWord)
	m := BuildSymbolMap(ctx)
	a, err := MarshalSymbolMap(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := MarshalSymbolMap(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("canonical encoding must be byte-identical across runs")
	}
}

func TestWriteAndReadSymbolMap(t *testing.T) {
	ctx := newTestContext(t, Cpu6502)
	mustDefine(t, ctx, "x", VTByte)
	path := filepath.Join(t.TempDir(), "out.map")
	if err := WriteSymbolMap(path, ctx); err != nil {
		t.Fatalf("WriteSymbolMap: %v", err)
	}
	m, err := ReadSymbolMap(path)
	if err != nil {
		t.Fatalf("ReadSymbolMap: %v", err)
	}
	if len(m.Symbols) != 1 || m.Symbols[0].Name != "x" {
		t.Fatalf("unexpected contents: %+v", m)
	}
}
