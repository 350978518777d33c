// Completion: 100% - Temporary pool complete, reuse queues and resident slots
package main

import (
	"fmt"
)

// tempPrefix returns the naming prefix of synthesized temporaries per type.
func tempPrefix(t VarType) string {
	switch t {
	case VTBit:
		return "Tbit"
	case VTByte:
		return "Tbyte"
	case VTSByte:
		return "Tsbyte"
	case VTWord:
		return "Tword"
	case VTSWord:
		return "Tsword"
	case VTDWord:
		return "Tdword"
	case VTSDWord:
		return "Tsdword"
	case VTFloat:
		return "Tfloat"
	case VTString, VTDString:
		return "Tstr"
	case VTBuffer:
		return "Tbuf"
	default:
		return "Tres"
	}
}

// tempPool returns the active temporary pool: the current procedure's, or
// the main program's pool which doubles as the temporaries-for-main.
func (ctx *CompilationContext) tempPool() *scope {
	return ctx.currentScope()
}

// Temporary finds or allocates a scratch variable of the exact type (and,
// for floats, the exact precision) in the active pool. A recycled slot is
// relabeled with the new meaning. Every returned temporary is marked used;
// resource-bearing types come back locked so reset never reclaims them.
func (ctx *CompilationContext) Temporary(t VarType, prec FloatPrecision, meaning string) (*Variable, error) {
	pool := ctx.tempPool()
	key := tempKey{Type: t}
	if t == VTFloat {
		key.Precision = prec
	}
	queue := pool.tempQueues[key]
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if !v.Used && !v.Locked {
			pool.tempQueues[key] = queue
			v.Meaning = meaning
			v.Used = true
			if t.IsResource() {
				v.Locked = true
			}
			v.InitializedByConstant = false
			v.ValueString = ""
			v.ValueBuffer = nil
			return v, nil
		}
	}
	pool.tempQueues[key] = queue

	ctx.tempCounter++
	name := fmt.Sprintf("%s%d", tempPrefix(t), ctx.tempCounter)
	procName := ctx.CurrentProcedure
	v := &Variable{
		Name:      name,
		RealName:  mangle(procName, name),
		Type:      t,
		Precision: prec,
		Meaning:   meaning,
		Temporary: true,
		Used:      true,
		Bank:      BankTemporary,
	}
	if t.IsResource() {
		v.Locked = true
	}
	if t == VTBit {
		if err := ctx.allocateBit(v); err != nil {
			return nil, err
		}
	} else if err := AssignStorage(ctx.Areas, v); err != nil {
		return nil, err
	}
	pool.temps = append(pool.temps, v)
	pool.tempIndex[name] = v
	ctx.declOrder = append(ctx.declOrder, v)
	return v, nil
}

// Resident allocates a temporary that reset never touches, for scratch state
// that must survive generated-program suspension points.
func (ctx *CompilationContext) Resident(t VarType, prec FloatPrecision, meaning string) (*Variable, error) {
	ctx.tempCounter++
	name := fmt.Sprintf("R%s%d", tempPrefix(t), ctx.tempCounter)
	v := &Variable{
		Name:      name,
		RealName:  mangle("", name),
		Type:      t,
		Precision: prec,
		Meaning:   meaning,
		Temporary: true,
		Used:      true,
		Bank:      BankTemporary,
	}
	if t == VTBit {
		if err := ctx.allocateBit(v); err != nil {
			return nil, err
		}
	} else if err := AssignStorage(ctx.Areas, v); err != nil {
		return nil, err
	}
	ctx.resident = append(ctx.resident, v)
	ctx.residentIndex[name] = v
	ctx.declOrder = append(ctx.declOrder, v)
	return v, nil
}

// ResetPool clears the used flag on every non-locked temporary of the active
// pool and queues the slots for reuse. The driver invokes it between
// statements, bounding the lifetime of an unlocked temporary to one
// statement. Resident variables are untouched.
func (ctx *CompilationContext) ResetPool() {
	pool := ctx.tempPool()
	for _, v := range pool.temps {
		if v.Locked || !v.Used {
			continue
		}
		v.Used = false
		key := tempKey{Type: v.Type}
		if v.Type == VTFloat {
			key.Precision = v.Precision
		}
		pool.tempQueues[key] = append(pool.tempQueues[key], v)
	}
}

// ReleaseTemporary explicitly unlocks a locked temporary and queues it for
// reuse. Locked slots are never reclaimed any other way.
func (ctx *CompilationContext) ReleaseTemporary(v *Variable) {
	if !v.Temporary {
		return
	}
	v.Locked = false
	v.Used = false
	key := tempKey{Type: v.Type}
	if v.Type == VTFloat {
		key.Precision = v.Precision
	}
	pool := ctx.tempPool()
	pool.tempQueues[key] = append(pool.tempQueues[key], v)
}
