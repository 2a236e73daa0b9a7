package machine

import (
	"encoding/binary"
	"fmt"

	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
)

// loop is the fetch-decode-dispatch loop: it runs until the thread's frame
// stack empties (the top-level chunk returned) or a handler reports an
// error, in which case every still-open frame on the way out gets a trace
// site appended before the error is handed back.
func (th *Thread) loop(module *Module) (result Variant, err error) {
	for len(th.frames) > 0 {
		fr := th.frames[len(th.frames)-1]
		code := fr.Chunk().Code

		if th.cancelled.Load() {
			return Variant{}, &RuntimeError{Kind: Other, Message: "execution cancelled"}
		}
		th.steps++
		if th.steps > th.maxSteps {
			return Variant{}, &RuntimeError{Kind: Other, Message: "step limit exceeded"}
		}

		op := compiler.Opcode(code[fr.ip])
		startIP := fr.ip
		fr.ip++

		ret, retVal, rerr := th.step(fr, module, op, code)
		if rerr != nil {
			re, ok := rerr.(*RuntimeError)
			if !ok {
				re = &RuntimeError{Kind: Other, Cause: rerr}
			}
			th.appendTrace(re, fr, startIP)
			for i := len(th.frames) - 2; i >= 0; i-- {
				// a caller's ip sits just past its CALL instruction
				caller := th.frames[i]
				th.appendTrace(re, caller, caller.ip-1)
			}
			return Variant{}, re
		}
		if ret {
			if len(th.frames) == 0 {
				return retVal, nil
			}
			continue
		}
	}
	return Variant{}, nil
}

func (th *Thread) appendTrace(re *RuntimeError, fr *Frame, ip int) {
	var pos token.Position
	if start, _, ok := fr.Chunk().SymbolAt(ip); ok && fr.fn.Program.FileSet != nil {
		pos = fr.fn.Program.FileSet.Position(start)
	}
	re.Trace = append(re.Trace, TraceSite{FuncName: fr.fn.Name(), Pos: pos})
}

// step decodes and executes one instruction in fr. It reports ret=true when
// this instruction popped fr (a RET), in which case retVal is the value
// returned to the (now current) caller frame, or to the Run caller if the
// call stack just emptied.
func (th *Thread) step(fr *Frame, module *Module, op compiler.Opcode, code []byte) (ret bool, retVal Variant, err error) {
	switch op {
	case compiler.NOP:

	case compiler.POP:
		th.pop()
	case compiler.DUP:
		th.push(th.top())

	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD,
		compiler.SHL, compiler.SHR, compiler.BAND, compiler.BXOR, compiler.BOR,
		compiler.LT, compiler.LE, compiler.GT, compiler.GE, compiler.EQL, compiler.NEQ:
		y := th.pop()
		x := th.pop()
		v, berr := binary(op, x, y)
		if berr != nil {
			return false, Variant{}, berr
		}
		th.push(v)

	case compiler.NEG:
		x := th.pop()
		v, nerr := unaryNeg(x)
		if nerr != nil {
			return false, Variant{}, nerr
		}
		th.push(v)
	case compiler.NOT:
		x := th.pop()
		th.push(Bool(!x.Truthy()))
	case compiler.BNOT:
		x := th.pop()
		v, nerr := unaryBnot(x)
		if nerr != nil {
			return false, Variant{}, nerr
		}
		th.push(v)

	case compiler.CONST:
		idx := code[fr.ip]
		fr.ip++
		th.push(th.constant(fr, uint16(idx)))
	case compiler.CONSTW:
		idx := binary.LittleEndian.Uint16(code[fr.ip:])
		fr.ip += 2
		th.push(th.constant(fr, idx))
	case compiler.NILV:
		th.push(NilV)
	case compiler.TRUEV:
		th.push(Bool(true))
	case compiler.FALSEV:
		th.push(Bool(false))
	case compiler.EMPTYTUPLE:
		th.push(EmptyTuple)

	case compiler.LOCAL:
		slot := int(code[fr.ip])
		fr.ip++
		th.push(th.stack[fr.base+slot])
	case compiler.LOCALW:
		slot := int(binary.LittleEndian.Uint16(code[fr.ip:]))
		fr.ip += 2
		th.push(th.stack[fr.base+slot])
	case compiler.SETLOCAL:
		slot := int(code[fr.ip])
		fr.ip++
		th.stack[fr.base+slot] = th.top()
	case compiler.SETLOCALW:
		slot := int(binary.LittleEndian.Uint16(code[fr.ip:]))
		fr.ip += 2
		th.stack[fr.base+slot] = th.top()

	case compiler.GLOBAL:
		idx := binary.LittleEndian.Uint16(code[fr.ip:])
		fr.ip += 2
		sym := th.nameSym(fr, idx)
		v, ok := module.lookup(sym)
		if !ok {
			return false, Variant{}, &RuntimeError{Kind: NameNotDefined, Name: strtable.Global.Resolve(sym)}
		}
		th.push(v)
	case compiler.DEFGLOBAL:
		idx := binary.LittleEndian.Uint16(code[fr.ip:])
		fr.ip += 2
		sym := th.nameSym(fr, idx)
		module.define(sym, th.pop(), true)
	case compiler.DEFCONSTGLOBAL:
		idx := binary.LittleEndian.Uint16(code[fr.ip:])
		fr.ip += 2
		sym := th.nameSym(fr, idx)
		module.define(sym, th.pop(), false)
	case compiler.SETGLOBAL:
		idx := binary.LittleEndian.Uint16(code[fr.ip:])
		fr.ip += 2
		sym := th.nameSym(fr, idx)
		if aerr := module.assign(sym, th.top()); aerr != nil {
			return false, Variant{}, aerr
		}

	case compiler.UPVAL:
		idx := code[fr.ip]
		fr.ip++
		th.push(fr.fn.Upvals[idx].Get())
	case compiler.SETUPVAL:
		idx := code[fr.ip]
		fr.ip++
		fr.fn.Upvals[idx].Set(th.top())
	case compiler.CLOSEUPVAL:
		slot := int(code[fr.ip])
		fr.ip++
		abs := fr.base + slot
		if uv, ok := th.openUpvals[abs]; ok {
			uv.Close()
			delete(th.openUpvals, abs)
		}

	case compiler.JMP:
		rel := int16(binary.LittleEndian.Uint16(code[fr.ip:]))
		fr.ip = fr.ip + 2 + int(rel)
	case compiler.JMPFALSE:
		rel := int16(binary.LittleEndian.Uint16(code[fr.ip:]))
		next := fr.ip + 2
		if !th.top().Truthy() {
			fr.ip = next + int(rel)
		} else {
			fr.ip = next
		}
	case compiler.JMPTRUE:
		rel := int16(binary.LittleEndian.Uint16(code[fr.ip:]))
		next := fr.ip + 2
		if th.top().Truthy() {
			fr.ip = next + int(rel)
		} else {
			fr.ip = next
		}
	case compiler.POPJMPFALSE:
		rel := int16(binary.LittleEndian.Uint16(code[fr.ip:]))
		next := fr.ip + 2
		cond := th.pop()
		if !cond.Truthy() {
			fr.ip = next + int(rel)
		} else {
			fr.ip = next
		}

	case compiler.MAKETUPLE:
		n := int(code[fr.ip])
		fr.ip++
		elems := make([]Variant, n)
		copy(elems, th.stack[len(th.stack)-n:])
		th.stack = th.stack[:len(th.stack)-n]
		th.push(Tuple(elems))

	case compiler.MAKECLOSURE:
		idx := binary.LittleEndian.Uint16(code[fr.ip:])
		fr.ip += 2
		proto := &fr.fn.Program.Functions[idx]
		upvals := make([]*Upvalue, len(proto.Upvalues))
		for i := range upvals {
			descFlag := code[fr.ip]
			descIdx := binary.LittleEndian.Uint16(code[fr.ip+1:])
			fr.ip += 3
			if descFlag != 0 {
				abs := fr.base + int(descIdx)
				uv, ok := th.openUpvals[abs]
				if !ok {
					uv = newOpenUpvalue(th, abs)
					th.openUpvals[abs] = uv
				}
				upvals[i] = uv
			} else {
				upvals[i] = fr.fn.Upvals[descIdx]
			}
		}
		th.push(FunctionVal(&Function{Proto: proto, Upvals: upvals, Program: fr.fn.Program}))

	case compiler.GETINDEX:
		index := th.pop()
		base := th.pop()
		v, ierr := getIndex(base, index)
		if ierr != nil {
			return false, Variant{}, ierr
		}
		th.push(v)
	case compiler.LEN:
		x := th.pop()
		n, lerr := length(x)
		if lerr != nil {
			return false, Variant{}, lerr
		}
		th.push(Int(int64(n)))

	case compiler.CALL:
		argc := int(code[fr.ip])
		fr.ip++
		if cerr := th.call(argc); cerr != nil {
			return false, Variant{}, cerr
		}

	case compiler.RET:
		v := th.pop()
		th.closeUpvaluesFrom(fr.base)
		th.frames = th.frames[:len(th.frames)-1]
		// drop the callee slot and every local: the stack shrinks back to
		// just below where this frame's callee value sat.
		th.stack = th.stack[:fr.base-1]
		if len(th.frames) == 0 {
			return true, v, nil
		}
		th.push(v)

	case compiler.ECHO:
		v := th.pop()
		fmt.Fprintln(th.stdout, v.String())

	case compiler.ASSERT:
		hasMsg := code[fr.ip]
		fr.ip++
		var msg string
		if hasMsg != 0 {
			msg = th.pop().String()
		}
		cond := th.pop()
		if !cond.Truthy() {
			return false, Variant{}, &RuntimeError{Kind: AssertFailed, Message: msg}
		}

	default:
		return false, Variant{}, &RuntimeError{Kind: Other, Message: fmt.Sprintf("illegal opcode %v", op)}
	}
	return false, Variant{}, nil
}

func (th *Thread) push(v Variant) { th.stack = append(th.stack, v) }
func (th *Thread) pop() Variant {
	n := len(th.stack) - 1
	v := th.stack[n]
	th.stack = th.stack[:n]
	return v
}
func (th *Thread) top() Variant { return th.stack[len(th.stack)-1] }

func (th *Thread) constant(fr *Frame, idx uint16) Variant {
	c := fr.fn.Program.Constants[idx]
	switch c.Kind {
	case ConstInt:
		return Int(c.Int)
	case ConstFloat:
		return Float(c.Float)
	case ConstString:
		return String(c.Sym)
	case ConstFunction:
		proto := &fr.fn.Program.Functions[c.FuncID]
		return FunctionVal(&Function{Proto: proto, Program: fr.fn.Program})
	default:
		return NilV
	}
}

// nameSym resolves a GLOBAL/DEFGLOBAL/SETGLOBAL instruction's constant-pool
// operand to the global interned symbol naming the binding. The compiler
// always emits a string constant for these, so the constant pool is reused
// as the name table rather than inventing a separate one.
func (th *Thread) nameSym(fr *Frame, idx uint16) strtable.Symbol {
	c := fr.fn.Program.Constants[idx]
	return c.Sym
}

func (th *Thread) closeUpvaluesFrom(base int) {
	for abs, uv := range th.openUpvals {
		if abs >= base {
			uv.Close()
			delete(th.openUpvals, abs)
		}
	}
}

// call implements the CALL opcode: pop argc arguments (left in place on the
// stack, just validated and padded) and the callee beneath them, push a new
// Frame whose base points at the first argument.
func (th *Thread) call(argc int) error {
	calleeIdx := len(th.stack) - argc - 1
	callee := th.stack[calleeIdx]
	if callee.Kind != KindFunction {
		return &RuntimeError{Kind: Other, Message: fmt.Sprintf("value of type %s is not callable", callee.Kind)}
	}
	fn := callee.Fn
	proto := fn.Proto

	if argc < proto.MinArity() {
		return &RuntimeError{Kind: MissingArguments, Signature: fn.Name(), NArgs: argc}
	}
	if !proto.Variadic && argc > proto.MaxArity() {
		return &RuntimeError{Kind: TooManyArguments, Signature: fn.Name(), NArgs: argc}
	}

	nonVariadic := proto.RequiredParams + proto.OptionalParams
	argsStart := calleeIdx + 1

	if proto.Variadic {
		var extra []Variant
		if argc > nonVariadic {
			extra = append([]Variant(nil), th.stack[argsStart+nonVariadic:]...)
			th.stack = th.stack[:argsStart+nonVariadic]
		}
		for len(th.stack)-argsStart < nonVariadic {
			th.push(NilV)
		}
		th.push(Tuple(extra))
	} else {
		for len(th.stack)-argsStart < nonVariadic {
			th.push(NilV)
		}
	}

	th.frames = append(th.frames, &Frame{fn: fn, base: argsStart})
	return nil
}
