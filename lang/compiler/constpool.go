package compiler

import "github.com/vex-lang/vex/lang/value"

// constPool is the per-prototype constant table being built. Primitive
// constants (nil/bool/i64/f64) intern by value; strings intern by their
// Go string content.
type constPool struct {
	values []value.Value
	prim   map[value.Value]int
	strs   map[string]int
}

func newConstPool() *constPool {
	return &constPool{prim: make(map[value.Value]int)}
}

func (p *constPool) internPrim(v value.Value) int {
	if i, ok := p.prim[v]; ok {
		return i
	}
	i := len(p.values)
	p.values = append(p.values, v)
	p.prim[v] = i
	return i
}

func (p *constPool) internString(s string) int {
	if p.strs == nil {
		p.strs = make(map[string]int)
	}
	if i, ok := p.strs[s]; ok {
		return i
	}
	i := len(p.values)
	p.values = append(p.values, value.NewConstString(s))
	p.strs[s] = i
	return i
}
