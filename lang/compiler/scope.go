package compiler

// localVar is one slot of a function's local variable space.
type localVar struct {
	name    string
	mutable bool
	slot    int
}

// loopCtx tracks the patch lists for break/continue inside one loop, closed
// once the loop finishes emitting.
type loopCtx struct {
	// continueTarget is the chunk offset `continue` jumps back to directly,
	// valid only when continueForward is false (a while loop, where that
	// offset - the condition recheck - is already known). A for-in loop's
	// continue target (the cursor increment step) isn't known until after
	// the body is compiled, so continueForward is true there and continue
	// instead emits a forward placeholder collected in continuePatches,
	// patched once the increment step's offset is known.
	continueTarget  int
	continueForward bool
	continuePatches []int

	breakPatches []int // operand offsets of pending `break` jumps to patch at loop exit

	// breakLocalBase/continueLocalBase are the local-slot counts a break or
	// continue jump must unwind down to before it jumps, since both skip the
	// normal block-exit path that would otherwise emit those pops. Both
	// loop kinds set them equal: a for-in loop's hidden cursor/iterable
	// locals are left alone by break as well, because break lands on the
	// loop's exit, where the for-in block's own exit pops them.
	breakLocalBase    int
	continueLocalBase int
}

// funcScope holds the compiler state local to one function (or the
// synthetic top-level chunk function): its bytecode buffer, its locals, its
// upvalues, and its loop nesting.
type funcScope struct {
	parent  *funcScope
	proto   *FuncProto
	chunkID uint16
	chunk   *chunk

	// isModule is true only for the outermost, top-level scope: its
	// declarations go to the module's global environment rather than a local
	// slot, so they survive across separate REPL compilations.
	isModule bool

	blockDepth int
	locals     []localVar
	blockMarks []int // locals length recorded at each nested block's entry

	// capturedSlots marks which local slots have been captured as an upvalue
	// by some nested closure, so the block/function that owns them knows to
	// emit CLOSEUPVAL for that slot before it leaves scope.
	capturedSlots map[int]bool

	upvalues     []UpvalueDesc
	upvalueNames []string

	loops []loopCtx
}

func newFuncScope(parent *funcScope, chunkID uint16, c *chunk, proto *FuncProto, isModule bool) *funcScope {
	return &funcScope{parent: parent, chunkID: chunkID, chunk: c, proto: proto, isModule: isModule}
}

func (s *funcScope) enterBlock() {
	s.blockDepth++
	s.blockMarks = append(s.blockMarks, len(s.locals))
}

// leaveBlock closes the innermost block: any of its locals captured by a
// nested closure get a CLOSEUPVAL so the closure keeps its own copy once the
// stack slot is gone, then every local the block declared is popped off the
// stack, in reverse declaration order. Locals recorded at the module's
// outermost block are an exception: they were never pushed as locals (they
// went to DEFGLOBAL instead), so this is a no-op for them.
func (s *funcScope) leaveBlock() {
	mark := s.blockMarks[len(s.blockMarks)-1]
	s.blockMarks = s.blockMarks[:len(s.blockMarks)-1]
	for i := len(s.locals) - 1; i >= mark; i-- {
		slot := s.locals[i].slot
		if s.capturedSlots[slot] {
			s.chunk.emit8(CLOSEUPVAL, uint8(slot))
		}
		s.chunk.emit(POP)
	}
	s.locals = s.locals[:mark]
	s.blockDepth--
}

// declareLocal adds a new local to the current (innermost) block and returns
// its slot index.
func (s *funcScope) declareLocal(name string, mutable bool) (int, error) {
	if len(s.locals) >= 1<<16 {
		return 0, errLimit("locals", 1<<16)
	}
	slot := len(s.locals)
	s.locals = append(s.locals, localVar{name: name, mutable: mutable, slot: slot})
	if slot+1 > s.proto.NumLocals {
		s.proto.NumLocals = slot + 1
	}
	return slot, nil
}

// resolveLocal searches this scope's active locals, innermost declaration
// first (so shadowing picks the most recent binding).
func (s *funcScope) resolveLocal(name string) (int, bool, bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].name == name {
			return s.locals[i].slot, s.locals[i].mutable, true
		}
	}
	return 0, false, false
}

// resolveUpvalue recursively searches enclosing function scopes for name,
// adding an upvalue descriptor at each frame along the way (deduplicated by
// source slot/index), and returns this function's dense upvalue index for
// it.
func (s *funcScope) resolveUpvalue(name string) (int, bool, error) {
	if s.parent == nil {
		return 0, false, nil
	}
	if slot, _, ok := s.parent.resolveLocal(name); ok {
		if s.parent.capturedSlots == nil {
			s.parent.capturedSlots = make(map[int]bool)
		}
		s.parent.capturedSlots[slot] = true
		return s.addUpvalue(name, true, uint16(slot))
	}
	if idx, ok, err := s.parent.resolveUpvalue(name); err != nil {
		return 0, false, err
	} else if ok {
		return s.addUpvalue(name, false, uint16(idx))
	}
	return 0, false, nil
}

func (s *funcScope) addUpvalue(name string, fromParentLocal bool, index uint16) (int, bool, error) {
	for i, n := range s.upvalueNames {
		if n == name && s.upvalues[i].FromParentLocal == fromParentLocal && s.upvalues[i].Index == index {
			return i, true, nil
		}
	}
	if len(s.upvalues) >= 1<<16 {
		return 0, false, errLimit("upvalues", 1<<16)
	}
	idx := len(s.upvalues)
	s.upvalues = append(s.upvalues, UpvalueDesc{FromParentLocal: fromParentLocal, Index: index})
	s.upvalueNames = append(s.upvalueNames, name)
	s.proto.Upvalues = s.upvalues
	return idx, true, nil
}
