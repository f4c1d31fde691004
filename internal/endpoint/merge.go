package endpoint

// Merger combines records from several variants. The first variant to
// contribute a (path, method) owns it entirely; later duplicates are counted
// and discarded, never merged field by field. Callers feed variants in
// discovery order with the default variant first.
type Merger struct {
	seen    map[Key]string
	records []*Record

	// Duplicates counts discarded records per variant.
	Duplicates map[string]int
}

func NewMerger() *Merger {
	return &Merger{
		seen:       map[Key]string{},
		Duplicates: map[string]int{},
	}
}

// Add merges one variant's records and returns how many were kept.
func (m *Merger) Add(records []*Record) int {
	kept := 0
	for _, r := range records {
		k := r.Key()
		if _, dup := m.seen[k]; dup {
			m.Duplicates[r.Variant]++
			continue
		}
		m.seen[k] = r.Variant
		m.records = append(m.records, r)
		kept++
	}
	return kept
}

// Owner returns the variant that owns key.
func (m *Merger) Owner(k Key) (string, bool) {
	v, ok := m.seen[k]
	return v, ok
}

// Records returns merged records in insertion order.
func (m *Merger) Records() []*Record {
	return m.records
}
