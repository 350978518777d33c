// Completion: 100% - Coercion engine complete, full move matrix
package main

// The coercion engine. Cast and Move are pure decision logic over the
// (source width class, target width class) pair; everything they decide is
// expressed as emission primitives, or a hard CannotCast failure when no
// rule exists for the type pair.

// Cast converts src to the given type. Identity when the types already
// match. Casting to the static string representation redirects to a dynamic
// string: a static string is never a cast target. Otherwise a fresh
// temporary of the target type receives the converted value.
func (ctx *CompilationContext) Cast(src *Variable, t VarType) (*Variable, error) {
	if t == VTString {
		t = VTDString
	}
	if src.Type == t {
		return src, nil
	}
	prec := src.Precision
	tmp, err := ctx.Temporary(t, prec, "cast of "+src.Name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Move(src, tmp); err != nil {
		return nil, err
	}
	return tmp, nil
}

// Move emits the conversion of src into dst, dispatching on the bit-width
// classes of the two types.
func (ctx *CompilationContext) Move(src, dst *Variable) error {
	sw, dw := src.WidthClass(), dst.WidthClass()
	switch {
	case sw >= 8 && dw >= 8:
		return ctx.moveInteger(src, dst)
	case sw == 1 || dw == 1:
		return ctx.moveBit(src, dst)
	case sw >= 8 && dst.Type == VTFloat:
		ctx.Emit.IToF(dst.Precision, Width(sw), src.Type.Signed(), dst.Ref(), src.Ref())
		return nil
	case src.Type == VTFloat && dw >= 8:
		ctx.Emit.FToI(src.Precision, Width(dw), dst.Type.Signed(), dst.Ref(), src.Ref())
		return nil
	default:
		return ctx.moveWidthZero(src, dst)
	}
}

// moveInteger implements the integer-by-integer quadrant of the matrix.
func (ctx *CompilationContext) moveInteger(src, dst *Variable) error {
	e := ctx.Emit
	bo := e.ByteOrder()
	sw, dw := src.WidthClass(), dst.WidthClass()
	sBytes, dBytes := sw>>3, dw>>3

	switch {
	case sw == dw && src.Type.Signed() == dst.Type.Signed():
		e.Move(Width(sw), dst.Ref(), src.Ref())

	case sw == dw && src.Type.Signed():
		// signed -> unsigned of the same width: copy, clear the sign bit
		e.Move(Width(sw), dst.Ref(), src.Ref())
		e.AndConst(W8, dst.Ref().At(bo.SignByteOffset(dBytes)), 0x7f)

	case sw == dw:
		// unsigned -> signed of the same width: copy, and when the sign bit
		// turns out set, correct with a two's complement
		e.Move(Width(sw), dst.Ref(), src.Ref())
		done := ctx.NewLabel()
		e.JumpIfNotNegative(Width(dw), dst.Ref(), done)
		e.Neg(Width(dw), dst.Ref())
		e.Label(done)

	case sw > dw:
		// narrowing: branch on the source sign, conditionally complement,
		// truncate to the low bytes, mask the sign bit
		ctx.Warnings.Warnf("narrowing %s (%s) into %s (%s) may lose significant bits",
			src.Name, src.Type, dst.Name, dst.Type)
		scratch, err := ctx.Temporary(src.Type, src.Precision, "narrowing scratch for "+src.Name)
		if err != nil {
			return err
		}
		e.Move(Width(sw), scratch.Ref(), src.Ref())
		if src.Type.Signed() {
			keep := ctx.NewLabel()
			e.JumpIfNotNegative(Width(sw), scratch.Ref(), keep)
			e.Neg(Width(sw), scratch.Ref())
			e.Label(keep)
		}
		e.Move(Width(dw), dst.Ref(), scratch.Ref().At(bo.LowOffset(sBytes, dBytes)))
		if dst.Type.Signed() {
			e.AndConst(W8, dst.Ref().At(bo.SignByteOffset(dBytes)), 0x7f)
		}

	default:
		// widening: move the low part, zero- or sign-extend the added bytes
		// per the source signedness
		e.Move(Width(sw), dst.Ref().At(bo.LowOffset(dBytes, sBytes)), src.Ref())
		high := dst.Ref().At(bo.HighOffset(dBytes, sBytes))
		if src.Type.Signed() {
			e.SignFill(high, dBytes-sBytes, src.Ref().At(bo.SignByteOffset(sBytes)))
		} else {
			e.ClearBytes(high, dBytes-sBytes)
		}
	}
	return nil
}

// moveBit handles every pair with the 1-bit flag width on either side.
func (ctx *CompilationContext) moveBit(src, dst *Variable) error {
	e := ctx.Emit
	sw, dw := src.WidthClass(), dst.WidthClass()
	switch {
	case sw == 1 && dw == 1:
		scratch, err := ctx.Temporary(VTByte, FloatSingle, "bit transfer")
		if err != nil {
			return err
		}
		e.BitTest(scratch.Ref(), src)
		e.BitStore(dst, scratch.Ref())
	case sw == 1 && dw >= 8:
		bo := e.ByteOrder()
		dBytes := dw >> 3
		low := dst.Ref().At(bo.LowOffset(dBytes, 1))
		e.BitTest(low, src)
		if dBytes > 1 {
			e.ClearBytes(dst.Ref().At(bo.HighOffset(dBytes, 1)), dBytes-1)
		}
	case sw >= 8 && dw == 1:
		bo := e.ByteOrder()
		sBytes := sw >> 3
		e.BitStore(dst, src.Ref().At(bo.LowOffset(sBytes, 1)))
	default:
		return compileErr(ErrCannotCast, "no rule to move %s (%s) into %s (%s)",
			src.Name, src.Type, dst.Name, dst.Type)
	}
	return nil
}

// moveWidthZero dispatches on the concrete type tags of the width-0 types:
// floats, the two string representations, and the sized resource blobs.
func (ctx *CompilationContext) moveWidthZero(src, dst *Variable) error {
	e := ctx.Emit
	switch {
	case src.Type == VTFloat && dst.Type == VTFloat:
		if src.Precision == dst.Precision {
			e.FMove(src.Precision, dst.Ref(), src.Ref())
		} else {
			e.FConv(src.Precision, dst.Precision, dst.Ref(), src.Ref())
		}
		return nil

	case src.Type == VTString && dst.Type == VTDString:
		return ctx.moveStaticToDynamic(src, dst)

	case src.Type == VTDString && dst.Type == VTDString:
		return ctx.moveDynamicToDynamic(src, dst)

	case src.Type.IsBlock() && src.Type == dst.Type:
		return ctx.moveBlock(src, dst)

	case src.Type == VTArray && dst.Type == VTArray &&
		src.ArrayType == dst.ArrayType && src.Size == dst.Size:
		return ctx.moveBlock(src, dst)

	default:
		return compileErr(ErrCannotCast, "no rule to move %s (%s) into %s (%s)",
			src.Name, src.Type, dst.Name, dst.Type)
	}
}

// moveStaticToDynamic copies a static string (length byte + inline bytes)
// into a dynamic string descriptor, reallocating the backing storage to the
// source length.
func (ctx *CompilationContext) moveStaticToDynamic(src, dst *Variable) error {
	e := ctx.Emit
	n := len(src.ValueString)
	e.DStringResizeConst(dst.Ref(), n)
	if n > 0 {
		dstAddr, _, err := ctx.descriptorOf(dst)
		if err != nil {
			return err
		}
		srcPtr, err := ctx.Temporary(VTWord, FloatSingle, "address of "+src.Name)
		if err != nil {
			return err
		}
		e.LoadAddress(srcPtr.Ref(), src.Ref().At(1))
		e.MemMoveConst(dstAddr.Ref(), srcPtr.Ref(), n)
	}
	if src.InitializedByConstant {
		dst.ValueString = src.ValueString
		dst.InitializedByConstant = true
	}
	return nil
}

// moveDynamicToDynamic copies one descriptor's bytes into another after
// resizing the destination to the source length.
func (ctx *CompilationContext) moveDynamicToDynamic(src, dst *Variable) error {
	e := ctx.Emit
	srcAddr, srcLen, err := ctx.descriptorOf(src)
	if err != nil {
		return err
	}
	e.DStringResize(dst.Ref(), srcLen.Ref())
	dstAddr, _, err := ctx.descriptorOf(dst)
	if err != nil {
		return err
	}
	e.MemMove(dstAddr.Ref(), srcAddr.Ref(), srcLen.Ref())
	if src.InitializedByConstant {
		dst.ValueString = src.ValueString
		dst.InitializedByConstant = true
	}
	return nil
}

// descriptorOf materializes the (address, length) pair of a dynamic string
// into two fresh temporaries.
func (ctx *CompilationContext) descriptorOf(s *Variable) (*Variable, *Variable, error) {
	addr, err := ctx.Temporary(VTWord, FloatSingle, "address of "+s.Name)
	if err != nil {
		return nil, nil, err
	}
	length, err := ctx.Temporary(VTByte, FloatSingle, "length of "+s.Name)
	if err != nil {
		return nil, nil, err
	}
	ctx.Emit.DStringDesc(addr.Ref(), length.Ref(), s.Ref())
	return addr, length, nil
}

// moveBlock copies a sized resource blob. An undersized destination that has
// not been placed yet grows to fit; an already placed one cannot grow and
// the move fails with a buffer size mismatch.
func (ctx *CompilationContext) moveBlock(src, dst *Variable) error {
	e := ctx.Emit
	if dst.Size < src.Size {
		if dst.MemoryArea != nil {
			return compileErr(ErrBufferSizeMismatch,
				"%s holds %d byte(s), %d needed for %s", dst.Name, dst.Size, src.Size, src.Name)
		}
		dst.Size = src.Size
		if err := AssignStorage(ctx.Areas, dst); err != nil {
			return err
		}
	}
	dstPtr, err := ctx.Temporary(VTWord, FloatSingle, "address of "+dst.Name)
	if err != nil {
		return err
	}
	srcPtr, err := ctx.Temporary(VTWord, FloatSingle, "address of "+src.Name)
	if err != nil {
		return err
	}
	e.LoadAddress(dstPtr.Ref(), dst.Ref())
	e.LoadAddress(srcPtr.Ref(), src.Ref())
	e.MemMoveConst(dstPtr.Ref(), srcPtr.Ref(), src.Size)
	if src.InitializedByConstant {
		dst.ValueBuffer = src.ValueBuffer
		dst.InitializedByConstant = true
	}
	return nil
}
