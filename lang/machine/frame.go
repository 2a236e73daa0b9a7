package machine

// Frame records one active call: the function executing, its instruction
// pointer (a byte offset into that function's chunk), and the base index
// into the thread's operand stack at which its locals begin (base+0 is the
// first parameter, matching the compiler's local-slot numbering).
type Frame struct {
	fn   *Function
	ip   int
	base int
}

// Chunk returns the bytecode chunk this frame is executing.
func (f *Frame) Chunk() *Chunk {
	return f.fn.Program.Chunks[f.fn.Proto.ChunkID]
}
