package machine

// Upvalue is a cell captured by a closure. While its defining frame is still
// live, it is "open": it reads and writes through to its owning thread's
// operand stack at a fixed absolute slot, so the upvalue and the local
// variable it was captured from see the same value even as that thread's
// stack grows and its backing array is reallocated underneath it. Once the
// defining frame exits, the upvalue is "closed" exactly once: its current
// value is copied into the cell's own storage, and every function sharing
// this Upvalue (there may be several, by construction: MAKECLOSURE dedups by
// source slot) continues to see the same, now heap-resident, cell.
type Upvalue struct {
	open bool
	th   *Thread // the owning thread, while open; nil once closed
	slot int     // absolute index into th.stack, while open
	val  Variant // the closed value, once closed
}

func newOpenUpvalue(th *Thread, slot int) *Upvalue {
	return &Upvalue{open: true, th: th, slot: slot}
}

// Get reads the upvalue's current value.
func (u *Upvalue) Get() Variant {
	if u.open {
		return u.th.stack[u.slot]
	}
	return u.val
}

// Set writes the upvalue's current value.
func (u *Upvalue) Set(v Variant) {
	if u.open {
		u.th.stack[u.slot] = v
		return
	}
	u.val = v
}

// Close transitions the upvalue from open to closed, snapshotting the stack
// slot's current value into the cell's own storage. Closing an already
// closed upvalue is a no-op, matching the invariant that the transition
// happens exactly once but letting callers close defensively.
func (u *Upvalue) Close() {
	if !u.open {
		return
	}
	u.val = u.th.stack[u.slot]
	u.open = false
	u.th = nil
}
