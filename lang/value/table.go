package value

import "github.com/dolthub/swiss"

// Table is the language's only associative structure: an insertion-ordered
// mapping from string keys to values. Lookup uses a swiss-table hash index
// keyed by the raw string; insertion order is tracked separately so
// iteration (the standard library's pretty-printer, any deterministic
// foreach) observes keys in the order they were first set.
type Table struct {
	index  *swiss.Map[string, int] // key -> index into order/values
	order  []string
	values []Value
}

// NewTable allocates a fresh, empty table object with refcount 1.
func NewTable() Value {
	obj := newHeapObject(KindTable)
	obj.table = &Table{index: swiss.NewMap[string, int](8)}
	return NewDyn(obj)
}

// IsTable reports whether v is a dyn value wrapping a table object.
func IsTable(v Value) bool { return v.Tag == Dyn && v.obj != nil && v.obj.Kind == KindTable }

// Get looks up key, returning its value and whether it was present.
func (t *Table) Get(key string) (Value, bool) {
	i, ok := t.index.Get(key)
	if !ok {
		return Value{}, false
	}
	return t.values[i], true
}

// Set stores value under key, dropping any value previously stored there.
// A new key is appended to the insertion order; an existing key keeps its
// original position. There is no cycle collector: a table that holds
// itself, directly or through other tables, never reaches a refcount of
// zero and is never destroyed.
func (t *Table) Set(key string, v Value) {
	if i, ok := t.index.Get(key); ok {
		Drop(t.values[i])
		t.values[i] = v
		return
	}
	i := len(t.order)
	t.order = append(t.order, key)
	t.values = append(t.values, v)
	t.index.Put(key, i)
}

// Len returns the number of entries currently in the table.
func (t *Table) Len() int { return len(t.order) }

// Keys returns the table's keys in insertion order. The returned slice
// must not be mutated by the caller.
func (t *Table) Keys() []string { return t.order }

// Each calls fn for every entry in insertion order.
func (t *Table) Each(fn func(key string, v Value)) {
	for i, k := range t.order {
		fn(k, t.values[i])
	}
}
