package collection

import "github.com/kbukum/aggregator/value"

// IDField is the output field that carries a group's key.
const IDField = "_id"

type group struct {
	key  []value.Value
	vals []value.Value
}

// GroupMap maps a key tuple to a value tuple. Put replaces the stored
// value; combining old and new values is the caller's job. Groups iterate in
// the order their keys were first seen.
type GroupMap struct {
	keyFields   []string
	valueFields []string
	index       map[string]int
	groups      []group
}

// NewGroupMap returns an empty map with the given key and value layouts.
func NewGroupMap(keyFields, valueFields []string) *GroupMap {
	return &GroupMap{
		keyFields:   copyFields(keyFields),
		valueFields: copyFields(valueFields),
		index:       make(map[string]int),
	}
}

// Get returns the value record stored for key.
func (m *GroupMap) Get(key *value.Record) (*value.Record, bool) {
	i, ok := m.index[value.Key(tuple(m.keyFields, key))]
	if !ok {
		return nil, false
	}
	return toRecord(m.valueFields, m.groups[i].vals), true
}

// Put stores vals under key, replacing any previous value.
func (m *GroupMap) Put(key, vals *value.Record) {
	k := tuple(m.keyFields, key)
	v := tuple(m.valueFields, vals)
	id := value.Key(k)
	if i, ok := m.index[id]; ok {
		m.groups[i].vals = v
		return
	}
	m.index[id] = len(m.groups)
	m.groups = append(m.groups, group{key: k, vals: v})
}

// Size returns the number of groups.
func (m *GroupMap) Size() int { return len(m.groups) }

// Iterator yields one record per group. The key is exposed under _id: as a
// scalar when the only key field is _id itself, otherwise as a record of the
// key fields. Value fields follow.
func (m *GroupMap) Iterator() Iterator {
	scalar := len(m.keyFields) == 1 && m.keyFields[0] == IDField
	i := 0
	return IteratorFunc(func() (*value.Record, bool) {
		if i >= len(m.groups) {
			return nil, false
		}
		g := m.groups[i]
		i++
		rec := value.NewRecord(1 + len(m.valueFields))
		if scalar {
			rec.Set(IDField, g.key[0])
		} else {
			rec.Set(IDField, value.RecordOf(toRecord(m.keyFields, g.key)))
		}
		for j, f := range m.valueFields {
			rec.Set(f, g.vals[j])
		}
		return rec, true
	})
}
