package layout

import "github.com/matzehuels/genetrack/pkg/genome"

// Key identifies the inputs of a layout pass. Revision must change whenever
// the caller swaps or edits the feature set.
type Key struct {
	Revision       uint64
	Region         genome.Region
	Width          float64
	MaxRows        int
	LabelCharWidth float64
}

// Memo skips layout passes whose inputs did not change since the last one.
// It holds a single entry and is not safe for concurrent use.
type Memo struct {
	key    Key
	layout Layout
	valid  bool
	hits   int
}

// Do returns the cached layout if key equals the previous key, otherwise
// it calls compute and remembers the result.
func (m *Memo) Do(key Key, compute func() Layout) Layout {
	if m.valid && m.key == key {
		m.hits++
		return m.layout
	}
	m.key, m.layout, m.valid = key, compute(), true
	return m.layout
}

// Changed reports whether key differs from the last computed key.
func (m *Memo) Changed(key Key) bool { return !m.valid || m.key != key }

// Hits returns how many passes were skipped.
func (m *Memo) Hits() int { return m.hits }

// Reset forgets the cached layout.
func (m *Memo) Reset() { *m = Memo{} }
