package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is one alias pair in a PortMap. The key side is the port where a
// value question arrives; the value side is the port it is forwarded to.
// For exposed inputs the key is the inner node's input and the value the
// graph's boundary input; for exposed outputs the key is the graph's
// boundary output and the value the inner node's output.
type Entry struct {
	Key   *Port
	Value *Port
}

// PortMap is the alias table between a graph's boundary ports and ports
// of its nested content.
//
// Entries are bucketed by the key's field name and resolved inside a
// bucket by full map-equality (value type, owning node, direction, field
// name). Collisions between differently-owned ports sharing a field name
// are expected and tolerated. Bucket order is insertion order, which
// keeps snapshots deterministic.
type PortMap struct {
	buckets *orderedmap.OrderedMap[string, []*Entry]
	size    int
}

// NewPortMap returns an empty alias table.
func NewPortMap() *PortMap {
	return &PortMap{buckets: orderedmap.New[string, []*Entry]()}
}

// Len returns the number of entries.
func (m *PortMap) Len() int { return m.size }

// Insert stores a fresh alias. It is a no-op when an entry with a
// map-equal key already exists; callers that want overwrite semantics
// must remove first.
func (m *PortMap) Insert(key, value *Port) {
	if key == nil || value == nil {
		return
	}
	if _, ok := m.Lookup(key); ok {
		return
	}
	bucket, _ := m.buckets.Get(key.field)
	m.buckets.Set(key.field, append(bucket, &Entry{Key: key, Value: value}))
	m.size++
}

// Lookup resolves a port by exact map-equality against entry keys.
func (m *PortMap) Lookup(p *Port) (*Port, bool) {
	if p == nil {
		return nil, false
	}
	bucket, _ := m.buckets.Get(p.field)
	for _, e := range bucket {
		if e.Key.sameIdentity(p) {
			return e.Value, true
		}
	}
	return nil, false
}

// ByValue returns every entry whose value side is map-equal to p, in
// insertion order. Multiple entries may share a value.
func (m *PortMap) ByValue(p *Port) []*Entry {
	var out []*Entry
	for pair := m.buckets.Oldest(); pair != nil; pair = pair.Next() {
		for _, e := range pair.Value {
			if e.Value.sameIdentity(p) {
				out = append(out, e)
			}
		}
	}
	return out
}

// RemoveByKey drops the entry whose key is map-equal to p.
// Reports whether an entry was removed.
func (m *PortMap) RemoveByKey(p *Port) bool {
	if p == nil {
		return false
	}
	bucket, ok := m.buckets.Get(p.field)
	if !ok {
		return false
	}
	for i, e := range bucket {
		if e.Key.sameIdentity(p) {
			m.setBucket(p.field, append(bucket[:i], bucket[i+1:]...))
			m.size--
			return true
		}
	}
	return false
}

// RemoveByValue drops every entry whose value side is map-equal to p.
// Returns the number of entries removed.
func (m *PortMap) RemoveByValue(p *Port) int {
	if p == nil {
		return 0
	}
	removed := 0
	for pair := m.buckets.Oldest(); pair != nil; pair = pair.Next() {
		kept := pair.Value[:0]
		for _, e := range pair.Value {
			if e.Value.sameIdentity(p) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		pair.Value = kept
	}
	m.pruneEmpty()
	m.size -= removed
	return removed
}

// Entries returns every alias pair in deterministic order.
func (m *PortMap) Entries() []Entry {
	out := make([]Entry, 0, m.size)
	for pair := m.buckets.Oldest(); pair != nil; pair = pair.Next() {
		for _, e := range pair.Value {
			out = append(out, *e)
		}
	}
	return out
}

// clone returns a map with the same entries. The entries still reference
// the source graph's ports; the deep-copy repair pass rewrites them.
func (m *PortMap) clone() *PortMap {
	cp := NewPortMap()
	for pair := m.buckets.Oldest(); pair != nil; pair = pair.Next() {
		bucket := make([]*Entry, len(pair.Value))
		for i, e := range pair.Value {
			bucket[i] = &Entry{Key: e.Key, Value: e.Value}
			cp.size++
		}
		cp.buckets.Set(pair.Key, bucket)
	}
	return cp
}

// retain keeps only the entries the predicate accepts.
func (m *PortMap) retain(keep func(*Entry) bool) {
	for pair := m.buckets.Oldest(); pair != nil; pair = pair.Next() {
		kept := pair.Value[:0]
		for _, e := range pair.Value {
			if keep(e) {
				kept = append(kept, e)
			} else {
				m.size--
			}
		}
		pair.Value = kept
	}
	m.pruneEmpty()
}

// reset drops every entry.
func (m *PortMap) reset() {
	m.buckets = orderedmap.New[string, []*Entry]()
	m.size = 0
}

func (m *PortMap) setBucket(field string, bucket []*Entry) {
	if len(bucket) == 0 {
		m.buckets.Delete(field)
		return
	}
	m.buckets.Set(field, bucket)
}

func (m *PortMap) pruneEmpty() {
	var empty []string
	for pair := m.buckets.Oldest(); pair != nil; pair = pair.Next() {
		if len(pair.Value) == 0 {
			empty = append(empty, pair.Key)
		}
	}
	for _, field := range empty {
		m.buckets.Delete(field)
	}
}
