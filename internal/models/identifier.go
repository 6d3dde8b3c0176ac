package models

// Identifier is a patient or accession number being searched for.
type Identifier struct {
	// Key is the identifier exactly as supplied. It keys the MatchMap and
	// names the per-identifier output directory.
	Key string

	// Needle is the normalized form handed to the matcher: trimmed, and for
	// all-digit identifiers stripped of leading zeros.
	Needle string
}

// String returns the identifier's original key.
func (id Identifier) String() string {
	return id.Key
}

// MatchMap maps each identifier key to the paths matched for it, in the
// order they were discovered. Keys keep their input order.
type MatchMap struct {
	keys  []string
	ids   map[string]Identifier
	paths map[string][]string
}

// NewMatchMap creates a MatchMap with one empty entry per distinct key.
// Repeated keys collapse into one entry; distinct keys with the same needle
// each keep their own entry.
func NewMatchMap(ids []Identifier) *MatchMap {
	m := &MatchMap{
		keys:  make([]string, 0, len(ids)),
		ids:   make(map[string]Identifier, len(ids)),
		paths: make(map[string][]string, len(ids)),
	}
	for _, id := range ids {
		if _, exists := m.ids[id.Key]; exists {
			continue
		}
		m.keys = append(m.keys, id.Key)
		m.ids[id.Key] = id
		m.paths[id.Key] = []string{}
	}
	return m
}

// Keys returns identifier keys in input order.
func (m *MatchMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Identifiers returns the identifiers backing the map, in input order.
func (m *MatchMap) Identifiers() []Identifier {
	out := make([]Identifier, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.ids[k])
	}
	return out
}

// Paths returns the matched paths for key. The returned slice is a copy.
func (m *MatchMap) Paths(key string) []string {
	p := m.paths[key]
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// Has reports whether key is one of the map's identifiers.
func (m *MatchMap) Has(key string) bool {
	_, ok := m.ids[key]
	return ok
}

// Append records path as a match for key. Unknown keys are ignored and
// reported as false so the key set never drifts from the input set.
func (m *MatchMap) Append(key, path string) bool {
	if _, ok := m.ids[key]; !ok {
		return false
	}
	m.paths[key] = append(m.paths[key], path)
	return true
}

// Len returns the number of identifier entries.
func (m *MatchMap) Len() int {
	return len(m.keys)
}

// Total returns the number of matched paths across all identifiers.
func (m *MatchMap) Total() int {
	n := 0
	for _, k := range m.keys {
		n += len(m.paths[k])
	}
	return n
}

// WithMatches returns the keys that have at least one matched path.
func (m *MatchMap) WithMatches() []string {
	var out []string
	for _, k := range m.keys {
		if len(m.paths[k]) > 0 {
			out = append(out, k)
		}
	}
	return out
}
