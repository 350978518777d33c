// context.go - Central state management for one compilation run
package main

import (
	"fmt"
	"os"
)

// VerboseMode enables detailed diagnostics on stderr
var VerboseMode bool

// tempKey indexes the free-temporary queues: exact type, and for floats the
// exact precision.
type tempKey struct {
	Type      VarType
	Precision FloatPrecision
}

// scope is one variable pool: the named variables of a procedure (or of the
// main program) plus the temporaries synthesized while compiling it.
type scope struct {
	name       string
	vars       []*Variable
	index      map[string]*Variable
	temps      []*Variable
	tempIndex  map[string]*Variable
	tempQueues map[tempKey][]*Variable
}

func newScope(name string) *scope {
	return &scope{
		name:       name,
		index:      make(map[string]*Variable),
		tempIndex:  make(map[string]*Variable),
		tempQueues: make(map[tempKey][]*Variable),
	}
}

// CompilationContext carries all mutable state of one compilation run. It is
// created once, threaded explicitly through every registry/coercion call, and
// discarded when the run ends. Not safe for concurrent use: one statement is
// processed to completion before the next.
type CompilationContext struct {
	Machine  *Machine
	Emit     Emitter
	Sink     *Sink
	Areas    []*MemoryArea
	Warnings WarningSink

	globals          *scope
	procs            map[string]*scope
	CurrentProcedure string // "" while compiling the main program

	resident      []*Variable
	residentIndex map[string]*Variable

	globalPatterns []string
	constants      map[string]*Variable

	declOrder []*Variable // non-temporary, non-imported variables, in definition order

	tempCounter  int
	labelCounter int

	// Packed single-bit allocation: bits share flag bytes carved out of the
	// first general area, eight at a time.
	bitAddr int
	bitPos  int

	offsetTables map[int]*OffsetTable

	stringLabels []string
	stringIndex  map[string]string // literal -> pool label
}

// NewCompilationContext wires a fresh context for the given machine. The
// emitter is created for the machine's CPU family and writes into sink.
func NewCompilationContext(machine *Machine, sink *Sink) *CompilationContext {
	ctx := &CompilationContext{
		Machine:       machine,
		Sink:          sink,
		Areas:         machine.Areas(),
		globals:       newScope(""),
		procs:         make(map[string]*scope),
		residentIndex: make(map[string]*Variable),
		constants:     make(map[string]*Variable),
		offsetTables:  make(map[int]*OffsetTable),
		stringIndex:   make(map[string]string),
		bitAddr:       -1,
	}
	ctx.Emit = NewEmitter(machine.CPU, sink)
	return ctx
}

// currentScope returns the pool new procedure-local definitions go to.
func (ctx *CompilationContext) currentScope() *scope {
	if ctx.CurrentProcedure == "" {
		return ctx.globals
	}
	sc, ok := ctx.procs[ctx.CurrentProcedure]
	if !ok {
		sc = newScope(ctx.CurrentProcedure)
		ctx.procs[ctx.CurrentProcedure] = sc
	}
	return sc
}

// EnterProcedure switches definitions and temporaries to the named procedure.
func (ctx *CompilationContext) EnterProcedure(name string) {
	ctx.CurrentProcedure = name
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "entering procedure %s\n", name)
	}
}

// LeaveProcedure switches back to the main program.
func (ctx *CompilationContext) LeaveProcedure() {
	ctx.CurrentProcedure = ""
}

// RegisterGlobalPattern adds a pattern to the globalness test. A trailing
// '*' matches any suffix.
func (ctx *CompilationContext) RegisterGlobalPattern(pattern string) {
	ctx.globalPatterns = append(ctx.globalPatterns, pattern)
}

// DefineConstant registers a named compile-time constant. Constants collide
// with variable definitions of the same name.
func (ctx *CompilationContext) DefineConstant(name string, t VarType, value int64) (*Variable, error) {
	if c, ok := ctx.constants[name]; ok {
		if c.Type != t {
			return nil, compileErr(ErrRedefinedWithDifferentType,
				"constant %s already defined as %s, redefined as %s", name, c.Type, t)
		}
		return c, nil
	}
	c := &Variable{
		Name:                  name,
		RealName:              mangle("", name),
		Type:                  t,
		Value:                 value,
		ReadOnly:              true,
		InitializedByConstant: true,
	}
	ctx.constants[name] = c
	return c, nil
}

// Constant resolves a named constant; a mandatory miss is an error.
func (ctx *CompilationContext) Constant(name string) (*Variable, error) {
	if c, ok := ctx.constants[name]; ok {
		return c, nil
	}
	return nil, compileErr(ErrUndefinedConstant, "constant %s is not defined", name)
}

// NewLabel returns a fresh process-unique assembly label.
func (ctx *CompilationContext) NewLabel() string {
	ctx.labelCounter++
	return fmt.Sprintf("_L%d", ctx.labelCounter)
}

// allocateBit carves one packed bit out of the current flags byte, starting a
// new byte in the first general area when the current one is full.
func (ctx *CompilationContext) allocateBit(v *Variable) error {
	if ctx.bitAddr < 0 || ctx.bitPos > 7 {
		slot := &Variable{Name: v.Name + "(flags)", Type: VTByte}
		if err := AssignStorage(ctx.Areas, slot); err != nil {
			return err
		}
		ctx.bitAddr = slot.AbsoluteAddress
		ctx.bitPos = 0
	}
	v.BitByte = ctx.bitAddr
	v.BitPosition = ctx.bitPos
	ctx.bitPos++
	return nil
}

// StringConstant interns a static string literal into the constant pool,
// first-use order, and returns its pool label.
func (ctx *CompilationContext) StringConstant(s string) string {
	if label, ok := ctx.stringIndex[s]; ok {
		return label
	}
	label := fmt.Sprintf("_str%d", len(ctx.stringLabels))
	ctx.stringIndex[s] = label
	ctx.stringLabels = append(ctx.stringLabels, label)
	ctx.Emit.DeclareString(label, s)
	return label
}

// Finalize emits the per-unit persisted state: one storage declaration per
// live non-imported variable in definition order, and the shared offset
// tables. Temporaries declare as address equates in the TEMPORARY section so
// every label the code references is defined. String constants were already
// emitted in first-use order.
func (ctx *CompilationContext) Finalize() {
	for _, v := range ctx.declOrder {
		if v.Imported {
			continue
		}
		ctx.Emit.DeclareVariable(v)
	}
	for _, size := range sortedTableSizes(ctx.offsetTables) {
		ctx.offsetTables[size].Declare(ctx.Emit)
	}
}
