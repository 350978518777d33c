// Completion: 100% - Symbol map artifact, canonical CBOR for reproducible builds
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical encoding so the same program always produces a
// byte-identical symbol map.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// SymbolEntry describes one placed variable in the output image.
type SymbolEntry struct {
	Name    string `cbor:"name"`
	Label   string `cbor:"label"`
	Type    string `cbor:"type"`
	Address int    `cbor:"address"`
	Size    int    `cbor:"size"`
	Area    string `cbor:"area"`
	Bit     int    `cbor:"bit,omitempty"`
}

// SymbolMap is the debugger-facing artifact written next to the assembly
// output. Entries are sorted by address, then by label.
type SymbolMap struct {
	Machine string        `cbor:"machine"`
	CPU     string        `cbor:"cpu"`
	Symbols []SymbolEntry `cbor:"symbols"`
}

// BuildSymbolMap collects every placed variable from the context. Temporaries
// and imported externals are skipped, bit variables report the address of the
// byte they are packed into.
func BuildSymbolMap(ctx *CompilationContext) *SymbolMap {
	m := &SymbolMap{
		Machine: ctx.Machine.Name,
		CPU:     ctx.Machine.CPU.String(),
	}
	for _, v := range ctx.declOrder {
		if v.Temporary || v.Imported {
			continue
		}
		area := ""
		if v.MemoryArea != nil {
			area = v.MemoryArea.Name
		}
		e := SymbolEntry{
			Name:    v.Name,
			Label:   v.RealName,
			Type:    v.Type.String(),
			Address: v.AbsoluteAddress,
			Size:    neededSpace(v),
			Area:    area,
		}
		if v.Type == VTBit {
			e.Address = v.BitByte
			e.Bit = v.BitPosition + 1
		}
		m.Symbols = append(m.Symbols, e)
	}
	sort.Slice(m.Symbols, func(i, j int) bool {
		if m.Symbols[i].Address != m.Symbols[j].Address {
			return m.Symbols[i].Address < m.Symbols[j].Address
		}
		return m.Symbols[i].Label < m.Symbols[j].Label
	})
	return m
}

// MarshalSymbolMap serializes a SymbolMap to canonical CBOR bytes.
func MarshalSymbolMap(m *SymbolMap) ([]byte, error) {
	return cborEncMode.Marshal(m)
}

// UnmarshalSymbolMap deserializes a SymbolMap from CBOR bytes.
func UnmarshalSymbolMap(data []byte) (*SymbolMap, error) {
	var m SymbolMap
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal symbol map: %w", err)
	}
	return &m, nil
}

// WriteSymbolMap writes the map for the given context to path.
func WriteSymbolMap(path string, ctx *CompilationContext) error {
	data, err := MarshalSymbolMap(BuildSymbolMap(ctx))
	if err != nil {
		return fmt.Errorf("marshal symbol map: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSymbolMap loads a symbol map written by WriteSymbolMap.
func ReadSymbolMap(path string) (*SymbolMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalSymbolMap(data)
}
