// Completion: 100% - Memory area allocator complete, first-fit with bump cursors
package main

// Bank names an output section. Banks classify where emitted text ends up;
// they are orthogonal to MemoryArea, which models the address space of the
// target machine.
type Bank int

const (
	BankCode Bank = iota
	BankVariables
	BankTemporary
	BankData
	BankStrings
)

func (b Bank) String() string {
	switch b {
	case BankCode:
		return "CODE"
	case BankVariables:
		return "VARIABLES"
	case BankTemporary:
		return "TEMPORARY"
	case BankData:
		return "DATA"
	case BankStrings:
		return "STRINGS"
	default:
		return "UNKNOWN"
	}
}

// AreaKind tells general-purpose RAM apart from areas dedicated to resource
// data (strings, buffers, images, music).
type AreaKind int

const (
	AreaGeneral AreaKind = iota
	AreaDedicated
)

func (k AreaKind) String() string {
	if k == AreaDedicated {
		return "dedicated"
	}
	return "general"
}

// MemoryArea is one region of the target address space with a shrinking
// free-size counter and a bump cursor. Areas form a priority-ordered list
// searched first-fit; non-overlap inside an area is guaranteed by the
// monotonic cursor, never by overlap checking.
type MemoryArea struct {
	Name   string
	Kind   AreaKind
	Start  int
	Size   int
	Free   int
	Cursor int
}

// NewMemoryArea creates an area with its full size free.
func NewMemoryArea(name string, kind AreaKind, start, size int) *MemoryArea {
	return &MemoryArea{Name: name, Kind: kind, Start: start, Size: size, Free: size}
}

// neededSpace returns the byte footprint storage assignment must reserve for
// v: arrays use their precomputed size, dynamic strings one descriptor byte,
// block resources their size, floats their precision footprint, integer
// scalars width>>3 bytes. Static string constants live in the string pool and
// packed bits in the flags region, so both need nothing here.
func neededSpace(v *Variable) int {
	switch v.Type {
	case VTArray:
		return v.Size
	case VTDString:
		return 1
	case VTFloat:
		return v.Precision.Bytes()
	case VTString:
		return 0
	case VTBit:
		return 0
	default:
		if w := v.Type.WidthClass(); w > 0 {
			return w >> 3
		}
		return v.Size
	}
}

// AssignStorage walks the area list in priority order and gives v an address
// via first-fit. Resource-bearing types skip general RAM areas; they need a
// dedicated area. An area qualifies when its remaining free size is strictly
// greater than the needed space. A zero footprint is a no-op.
func AssignStorage(areas []*MemoryArea, v *Variable) error {
	needed := neededSpace(v)
	if needed == 0 {
		return nil
	}
	for _, area := range areas {
		if v.Type.IsResource() && area.Kind == AreaGeneral {
			continue
		}
		if area.Free > needed {
			v.MemoryArea = area
			v.AbsoluteAddress = area.Start + area.Cursor
			area.Cursor += needed
			area.Free -= needed
			return nil
		}
	}
	return compileErr(ErrOutOfMemory,
		"no memory area can hold %d byte(s) for %s (%s)", needed, v.Name, v.Type)
}
