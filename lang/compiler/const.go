package compiler

import "math"

// ConstKind tags the payload carried by a Constant.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstFunction
)

// Constant is one entry of a chunk's constant pool: an integer, a float
// (compared and hashed by its bit pattern so dedup is exact), a build-local
// string-pool index, or a function reference (chunk id + function id).
type Constant struct {
	Kind     ConstKind
	Int      int64
	FloatBit uint64 // math.Float64bits(f)
	StrIdx   uint32
	ChunkID  uint16
	FuncID   uint16
}

// constPool deduplicates constants by structural equality as they are
// appended, returning a dense, monotonically assigned id for each distinct
// value.
type constPool struct {
	entries []Constant
	byInt   map[int64]uint16
	byFloat map[uint64]uint16
	byStr   map[uint32]uint16
	byFunc  map[[2]uint16]uint16
}

func newConstPool() *constPool {
	return &constPool{
		byInt:   make(map[int64]uint16),
		byFloat: make(map[uint64]uint16),
		byStr:   make(map[uint32]uint16),
		byFunc:  make(map[[2]uint16]uint16),
	}
}

func (p *constPool) intConst(v int64) (uint16, error) {
	if id, ok := p.byInt[v]; ok {
		return id, nil
	}
	id, err := p.append(Constant{Kind: ConstInt, Int: v})
	if err != nil {
		return 0, err
	}
	p.byInt[v] = id
	return id, nil
}

func (p *constPool) floatConst(v float64) (uint16, error) {
	bits := math.Float64bits(v)
	if id, ok := p.byFloat[bits]; ok {
		return id, nil
	}
	id, err := p.append(Constant{Kind: ConstFloat, FloatBit: bits})
	if err != nil {
		return 0, err
	}
	p.byFloat[bits] = id
	return id, nil
}

func (p *constPool) stringConst(strIdx uint32) (uint16, error) {
	if id, ok := p.byStr[strIdx]; ok {
		return id, nil
	}
	id, err := p.append(Constant{Kind: ConstString, StrIdx: strIdx})
	if err != nil {
		return 0, err
	}
	p.byStr[strIdx] = id
	return id, nil
}

func (p *constPool) functionConst(chunkID, funcID uint16) (uint16, error) {
	key := [2]uint16{chunkID, funcID}
	if id, ok := p.byFunc[key]; ok {
		return id, nil
	}
	id, err := p.append(Constant{Kind: ConstFunction, ChunkID: chunkID, FuncID: funcID})
	if err != nil {
		return 0, err
	}
	p.byFunc[key] = id
	return id, nil
}

func (p *constPool) append(c Constant) (uint16, error) {
	if len(p.entries) >= 1<<16 {
		return 0, errLimit("constant-pool", 1<<16)
	}
	id := uint16(len(p.entries))
	p.entries = append(p.entries, c)
	return id, nil
}
