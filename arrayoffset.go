// Completion: 100% - Array offset calculator complete, folding + tables + packed bits
package main

import (
	"fmt"
	"sort"
)

// offsetTableEntries bounds the precomputed scaling tables; arrays with more
// cells fall back to a runtime multiply.
const offsetTableEntries = 256

// OffsetTable is a precomputed index*size lookup table, shared across all
// arrays and resources with the same element byte size. Refs records the
// code labels that read the table, for later patching passes.
type OffsetTable struct {
	ElemSize int
	Label    string
	Refs     []string
	base     *Variable
}

// Base returns the table as an addressable operand.
func (t *OffsetTable) Base() Ref {
	return t.base.Ref()
}

// Declare emits the table words into the DATA bank.
func (t *OffsetTable) Declare(e Emitter) {
	words := make([]int, offsetTableEntries)
	for i := range words {
		words[i] = i * t.ElemSize
	}
	e.DeclareWordTable(t.Label, words)
}

// offsetTable returns the shared table for one element size, creating it on
// first use.
func (ctx *CompilationContext) offsetTable(elemSize int) *OffsetTable {
	if t, ok := ctx.offsetTables[elemSize]; ok {
		return t
	}
	label := fmt.Sprintf("_offsets%d", elemSize)
	t := &OffsetTable{
		ElemSize: elemSize,
		Label:    label,
		base:     &Variable{Name: label, RealName: label, Type: VTArray, ArrayType: VTWord},
	}
	ctx.offsetTables[elemSize] = t
	return t
}

func sortedTableSizes(tables map[int]*OffsetTable) []int {
	sizes := make([]int, 0, len(tables))
	for s := range tables {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}

// ArrayIndex is one index of an array access: a compile-time constant when
// Var is nil, otherwise a runtime value.
type ArrayIndex struct {
	Const int
	Var   *Variable
}

// ConstIndex wraps a compile-time index.
func ConstIndex(v int) ArrayIndex {
	return ArrayIndex{Const: v}
}

// VarIndex wraps a runtime index.
func VarIndex(v *Variable) ArrayIndex {
	return ArrayIndex{Var: v}
}

// ArrayAccess is a resolved element address: the array base plus a byte
// offset split into a folded constant part and an optional runtime part.
// Packed-bit arrays additionally carry the decomposed bit position.
type ArrayAccess struct {
	Array       *Variable
	ConstOffset int       // folded, already scaled to bytes
	Offset      *Variable // scaled runtime part, word; nil when fully constant
	Packed      bool
	ConstBit    int       // packed-bit: folded bit position
	BitOffset   *Variable // packed-bit: runtime byte offset, word
	BitPos      *Variable // packed-bit: runtime bit position, byte
}

// Offset computes the linear element offset of an N-dimensional, row-major
// array access. The supplied index count must equal the declared
// dimensionality. A single dimension uses the index directly; for more,
// each dimension's index is scaled by the extent product of the dimensions
// after it. Constant indices fold into an inline addition; variable indices
// emit a runtime multiply-accumulate. The element offset is then scaled by
// the per-element byte size, with packed-bit arrays decomposed into a byte
// offset (divide by 8) and a bit position (mod 8).
func (ctx *CompilationContext) Offset(arr *Variable, indexes []ArrayIndex) (*ArrayAccess, error) {
	if arr.Type != VTArray {
		return nil, compileErr(ErrUnsupportedOperationForType,
			"%s (%s) is not an array", arr.Name, arr.Type)
	}
	if len(indexes) != arr.ArrayDimensions {
		return nil, compileErr(ErrArraySizeMismatch,
			"%s has %d dimension(s), %d index(es) given", arr.Name, arr.ArrayDimensions, len(indexes))
	}
	e := ctx.Emit

	strides := make([]int, arr.ArrayDimensions)
	stride := 1
	for i := arr.ArrayDimensions - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= arr.ArrayExtents[i]
	}
	cells := stride

	constPart := 0
	var acc *Variable
	for i, idx := range indexes {
		if idx.Var == nil {
			constPart += idx.Const * strides[i]
			continue
		}
		idxWord, err := ctx.castTo(idx.Var, VTWord, FloatSingle)
		if err != nil {
			return nil, err
		}
		term := idxWord
		if strides[i] != 1 {
			k, err := ctx.Temporary(VTWord, FloatSingle, "stride")
			if err != nil {
				return nil, err
			}
			e.MoveConst(W16, k.Ref(), int64(strides[i]))
			scaled, err := ctx.Temporary(VTWord, FloatSingle, "scaled index")
			if err != nil {
				return nil, err
			}
			e.Mul(W16, false, scaled.Ref(), idxWord.Ref(), k.Ref())
			term = scaled
		}
		if acc == nil {
			acc = term
		} else {
			sum, err := ctx.Temporary(VTWord, FloatSingle, "offset accumulator")
			if err != nil {
				return nil, err
			}
			e.Add(W16, sum.Ref(), acc.Ref(), term.Ref())
			acc = sum
		}
	}

	elemSize := arr.ElementBytes()
	if arr.ArrayType == VTBit {
		return ctx.packedBitAccess(arr, constPart, acc)
	}

	access := &ArrayAccess{Array: arr, ConstOffset: constPart * elemSize}
	if acc == nil {
		return access, nil
	}
	if elemSize == 1 {
		access.Offset = acc
		return access, nil
	}
	scaled, err := ctx.Temporary(VTWord, FloatSingle, "scaled offset")
	if err != nil {
		return nil, err
	}
	if cells <= offsetTableEntries && (elemSize == 2 || elemSize == 4) {
		table := ctx.offsetTable(elemSize)
		site := ctx.NewLabel()
		e.Label(site)
		table.Refs = append(table.Refs, site)
		// table rows are words: double the element index into a byte offset
		doubled, err := ctx.Temporary(VTWord, FloatSingle, "table offset")
		if err != nil {
			return nil, err
		}
		e.Add(W16, doubled.Ref(), acc.Ref(), acc.Ref())
		e.LoadIndexed(W16, scaled.Ref(), table.Base(), doubled.Ref())
	} else {
		k, err := ctx.Temporary(VTWord, FloatSingle, "element size")
		if err != nil {
			return nil, err
		}
		e.MoveConst(W16, k.Ref(), int64(elemSize))
		e.Mul(W16, false, scaled.Ref(), acc.Ref(), k.Ref())
	}
	access.Offset = scaled
	return access, nil
}

// packedBitAccess decomposes a packed-bit element offset into (byte offset,
// bit position).
func (ctx *CompilationContext) packedBitAccess(arr *Variable, constPart int, acc *Variable) (*ArrayAccess, error) {
	e := ctx.Emit
	access := &ArrayAccess{Array: arr, Packed: true}
	if acc == nil {
		access.ConstOffset = constPart >> 3
		access.ConstBit = constPart & 7
		return access, nil
	}
	if constPart != 0 {
		sum, err := ctx.Temporary(VTWord, FloatSingle, "offset accumulator")
		if err != nil {
			return nil, err
		}
		e.AddConst(W16, sum.Ref(), acc.Ref(), int64(constPart))
		acc = sum
	}
	byteOff, err := ctx.Temporary(VTWord, FloatSingle, "bit byte offset")
	if err != nil {
		return nil, err
	}
	e.Move(W16, byteOff.Ref(), acc.Ref())
	e.ShrConst(W16, byteOff.Ref(), 3)
	bitPos, err := ctx.Temporary(VTByte, FloatSingle, "bit position")
	if err != nil {
		return nil, err
	}
	bo := e.ByteOrder()
	e.Move(W8, bitPos.Ref(), acc.Ref().At(bo.LowOffset(2, 1)))
	e.AndConst(W8, bitPos.Ref(), 7)
	access.BitOffset = byteOff
	access.BitPos = bitPos
	return access, nil
}

// LoadElement reads the addressed element into a fresh temporary of the
// array's element type.
func (ctx *CompilationContext) LoadElement(access *ArrayAccess) (*Variable, error) {
	arr := access.Array
	e := ctx.Emit
	if access.Packed {
		res, err := ctx.Temporary(VTByte, FloatSingle, "bit element of "+arr.Name)
		if err != nil {
			return nil, err
		}
		byteOff, bitPos, err := ctx.packedOperands(access)
		if err != nil {
			return nil, err
		}
		e.BitTestIndexed(res.Ref(), arr.Ref(), byteOff.Ref(), bitPos.Ref())
		return res, nil
	}
	res, err := ctx.Temporary(arr.ArrayType, arr.ArrayPrecision, "element of "+arr.Name)
	if err != nil {
		return nil, err
	}
	base := arr.Ref().At(access.ConstOffset)
	elemSize := arr.ElementBytes()
	switch {
	case access.Offset == nil && arr.ArrayType == VTFloat:
		e.FMove(arr.ArrayPrecision, res.Ref(), base)
	case access.Offset == nil:
		e.Move(Width(elemSize*8), res.Ref(), base)
	case arr.ArrayType == VTFloat:
		return nil, compileErr(ErrUnsupportedOperationForType,
			"runtime-indexed float array %s needs a constant index", arr.Name)
	default:
		e.LoadIndexed(Width(elemSize*8), res.Ref(), base, access.Offset.Ref())
	}
	return res, nil
}

// StoreElement writes src (cast to the element type first) into the
// addressed element.
func (ctx *CompilationContext) StoreElement(access *ArrayAccess, src *Variable) error {
	arr := access.Array
	e := ctx.Emit
	if access.Packed {
		sb, err := ctx.castTo(src, VTByte, FloatSingle)
		if err != nil {
			return err
		}
		byteOff, bitPos, err := ctx.packedOperands(access)
		if err != nil {
			return err
		}
		e.BitStoreIndexed(arr.Ref(), byteOff.Ref(), bitPos.Ref(), sb.Ref())
		return nil
	}
	elem, err := ctx.castTo(src, arr.ArrayType, arr.ArrayPrecision)
	if err != nil {
		return err
	}
	base := arr.Ref().At(access.ConstOffset)
	elemSize := arr.ElementBytes()
	switch {
	case access.Offset == nil && arr.ArrayType == VTFloat:
		e.FMove(arr.ArrayPrecision, base, elem.Ref())
	case access.Offset == nil:
		e.Move(Width(elemSize*8), base, elem.Ref())
	case arr.ArrayType == VTFloat:
		return compileErr(ErrUnsupportedOperationForType,
			"runtime-indexed float array %s needs a constant index", arr.Name)
	default:
		e.StoreIndexed(Width(elemSize*8), base, access.Offset.Ref(), elem.Ref())
	}
	return nil
}

// packedOperands materializes constant byte/bit positions into operands.
func (ctx *CompilationContext) packedOperands(access *ArrayAccess) (*Variable, *Variable, error) {
	if access.BitOffset != nil {
		return access.BitOffset, access.BitPos, nil
	}
	byteOff, err := ctx.Temporary(VTWord, FloatSingle, "bit byte offset")
	if err != nil {
		return nil, nil, err
	}
	ctx.Emit.MoveConst(W16, byteOff.Ref(), int64(access.ConstOffset))
	bitPos, err := ctx.Temporary(VTByte, FloatSingle, "bit position")
	if err != nil {
		return nil, nil, err
	}
	ctx.Emit.MoveConst(W8, bitPos.Ref(), int64(access.ConstBit))
	return byteOff, bitPos, nil
}
