package machine

import (
	"context"
	"io"
	"os"
	"sync/atomic"
)

// Thread is one execution of the virtual machine: its operand stack, its
// call-frame stack, the set of currently open upvalues, and the knobs that
// bound a runaway program. A Thread is used for exactly one Run call; the
// REPL creates a fresh Thread per submission but keeps reusing the same
// Module so that global bindings persist across them.
type Thread struct {
	// Name optionally identifies the thread for diagnostics.
	Name string

	// Stdout is where ECHO writes. Defaults to os.Stdout.
	Stdout io.Writer

	// MaxSteps bounds the number of opcodes dispatched before the thread is
	// cancelled, a deliberately coarse measure of execution time. <= 0 means
	// no limit.
	MaxSteps int

	ctx       context.Context
	ctxCancel context.CancelFunc
	cancelled atomic.Bool

	steps, maxSteps uint64

	stack      []Variant
	frames     []*Frame
	openUpvals map[int]*Upvalue // absolute stack index -> upvalue, for open upvalues only

	stdout io.Writer
}

func (th *Thread) init(ctx context.Context) {
	if th.MaxSteps <= 0 {
		th.maxSteps--
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}
	th.openUpvals = make(map[int]*Upvalue)

	ctx, cancel := context.WithCancel(ctx)
	th.ctx = ctx
	th.ctxCancel = cancel
	go func() {
		<-ctx.Done()
		th.cancelled.Store(true)
	}()
}

// Run executes prog's top-level chunk against module (reused across REPL
// submissions so its globals persist) and returns the top-level chunk's
// result (always nil, since a chunk implicitly returns nil, but echo
// statements along the way already printed to Stdout).
func (th *Thread) Run(ctx context.Context, prog *Program, module *Module) (Variant, error) {
	th.init(ctx)
	defer th.ctxCancel()

	module.Program = prog
	proto := prog.Functions[0]
	top := &Function{Proto: &proto, Program: prog}

	th.stack = append(th.stack, FunctionVal(top))
	th.frames = append(th.frames, &Frame{fn: top, base: 1})

	return th.loop(module)
}
