// Completion: 100% - Type lattice complete, all width classes and resource kinds covered
package main

// VarType is the type tag of a bas8 variable. Integer types are classified
// along two axes: a bit-width class (1, 8, 16 or 32) and signedness. Floats
// have width class 0 and carry a separate precision. Resource types (strings,
// buffers, graphics, music) all have width class 0 and are told apart by tag.
type VarType int

const (
	VTNone    VarType = iota
	VTBit             // single bit, packed into a flags byte
	VTByte            // unsigned 8-bit
	VTSByte           // signed 8-bit
	VTWord            // unsigned 16-bit
	VTSWord           // signed 16-bit
	VTDWord           // unsigned 32-bit
	VTSDWord          // signed 32-bit
	VTFloat           // float, precision in Variable.Precision
	VTString          // static string: length byte + inline bytes
	VTDString         // dynamic string: (address, length) descriptor
	VTBuffer          // raw byte buffer
	VTImage           // single image
	VTImages          // image sequence
	VTMusic           // music data
	VTSprite          // hardware/software sprite
	VTTile            // single tile
	VTTileset         // tileset
	VTTilemap         // tilemap
	VTTiles           // tiles array (16-bit tile indices)
	VTArray           // N-dimensional array, element type in Variable.ArrayType
)

// FloatPrecision selects one of the two supported float representations.
type FloatPrecision int

const (
	FloatSingle FloatPrecision = iota // 4-byte single precision
	FloatFast                         // 3-byte fast format
)

func (p FloatPrecision) String() string {
	if p == FloatFast {
		return "fast"
	}
	return "single"
}

// Bytes returns the storage footprint of a float of this precision.
func (p FloatPrecision) Bytes() int {
	if p == FloatFast {
		return 3
	}
	return 4
}

func (t VarType) String() string {
	switch t {
	case VTBit:
		return "bit"
	case VTByte:
		return "byte"
	case VTSByte:
		return "signed byte"
	case VTWord:
		return "word"
	case VTSWord:
		return "signed word"
	case VTDWord:
		return "dword"
	case VTSDWord:
		return "signed dword"
	case VTFloat:
		return "float"
	case VTString:
		return "string"
	case VTDString:
		return "dynamic string"
	case VTBuffer:
		return "buffer"
	case VTImage:
		return "image"
	case VTImages:
		return "images"
	case VTMusic:
		return "music"
	case VTSprite:
		return "sprite"
	case VTTile:
		return "tile"
	case VTTileset:
		return "tileset"
	case VTTilemap:
		return "tilemap"
	case VTTiles:
		return "tiles"
	case VTArray:
		return "array"
	default:
		return "unknown"
	}
}

// WidthClass returns the coarse bit-width class used to key the coercion
// matrix: 1, 8, 16 or 32 for integers, 0 for everything else.
func (t VarType) WidthClass() int {
	switch t {
	case VTBit:
		return 1
	case VTByte, VTSByte:
		return 8
	case VTWord, VTSWord:
		return 16
	case VTDWord, VTSDWord:
		return 32
	default:
		return 0
	}
}

// Signed reports whether t is a signed integer type.
func (t VarType) Signed() bool {
	switch t {
	case VTSByte, VTSWord, VTSDWord:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t has a nonzero width class.
func (t VarType) IsInteger() bool {
	return t.WidthClass() > 0
}

// IsString reports whether t is one of the two string representations.
func (t VarType) IsString() bool {
	return t == VTString || t == VTDString
}

// IsResource reports whether variables of this type must live in a dedicated
// memory area rather than general RAM.
func (t VarType) IsResource() bool {
	switch t {
	case VTString, VTDString, VTBuffer, VTImage, VTImages, VTMusic:
		return true
	default:
		return false
	}
}

// IsBlock reports whether t is a sized blob copied with memory moves when
// moved between variables of the same concrete type.
func (t VarType) IsBlock() bool {
	switch t {
	case VTBuffer, VTImage, VTImages, VTMusic, VTSprite, VTTile, VTTileset, VTTilemap, VTTiles:
		return true
	default:
		return false
	}
}

// integerType returns the integer type with the given width class and
// signedness. Width 1 has no signedness.
func integerType(width int, signed bool) VarType {
	switch width {
	case 1:
		return VTBit
	case 8:
		if signed {
			return VTSByte
		}
		return VTByte
	case 16:
		if signed {
			return VTSWord
		}
		return VTWord
	case 32:
		if signed {
			return VTSDWord
		}
		return VTDWord
	}
	return VTNone
}

// elementBytes returns the per-element byte footprint of an array of the
// given element type: 0 for packed bits, 1 for the byte class and the
// byte-sized graphics kinds, 2 for the 16-bit class and tiles, 4 for the
// 32-bit class, and the precision footprint for floats.
func elementBytes(t VarType, prec FloatPrecision) int {
	switch t {
	case VTBit:
		return 0
	case VTByte, VTSByte, VTSprite, VTTile:
		return 1
	case VTWord, VTSWord, VTTiles:
		return 2
	case VTDWord, VTSDWord:
		return 4
	case VTFloat:
		return prec.Bytes()
	default:
		return 1
	}
}

// ParseVarType maps a source-level type name to its tag.
func ParseVarType(s string) (VarType, bool) {
	switch s {
	case "BIT":
		return VTBit, true
	case "BYTE":
		return VTByte, true
	case "SBYTE":
		return VTSByte, true
	case "WORD":
		return VTWord, true
	case "SWORD", "INT":
		return VTSWord, true
	case "DWORD":
		return VTDWord, true
	case "SDWORD", "LONG":
		return VTSDWord, true
	case "FLOAT":
		return VTFloat, true
	case "STRING":
		return VTString, true
	case "DSTRING":
		return VTDString, true
	case "BUFFER":
		return VTBuffer, true
	case "IMAGE":
		return VTImage, true
	case "IMAGES":
		return VTImages, true
	case "MUSIC":
		return VTMusic, true
	case "SPRITE":
		return VTSprite, true
	case "TILE":
		return VTTile, true
	case "TILESET":
		return VTTileset, true
	case "TILEMAP":
		return VTTilemap, true
	case "TILES":
		return VTTiles, true
	}
	return VTNone, false
}
