// Buffer memory contents.
//
// A Snapshot holds a copy of a span of word-addressed memory so that
// a destructive test can put the memory back the way it found it.
// Storage is a fixed-size array big enough for the whole 64k OCRAM;
// all access goes through bounds-checked slices of it.
package buffer

// SNAPSHOT_WORDS is the capacity of a Snapshot, in 32-bit words.
const SNAPSHOT_WORDS = 16 * 1024

// Memory is a span of word-addressed memory, e.g. an fpga.Window.
type Memory interface {
	Len() int              // number of words
	Load(i int) uint32     // read word i
	Store(i int, v uint32) // write word i
}

// Slice is a Memory backed by ordinary process memory.
type Slice []uint32

func (s Slice) Len() int              { return len(s) }
func (s Slice) Load(i int) uint32     { return s[i] }
func (s Slice) Store(i int, v uint32) { s[i] = v }

// Snapshot is a saved copy of up to SNAPSHOT_WORDS words of memory.
type Snapshot struct {
	words [SNAPSHOT_WORDS]uint32 // saved contents
	n     int                    // number of valid words in words
}

// Save copies m into the snapshot.  Returns false, leaving the
// snapshot empty, if m is larger than SNAPSHOT_WORDS.
func (s *Snapshot) Save(m Memory) bool {
	n := m.Len()
	if n > len(s.words) {
		s.n = 0
		return false
	}
	saved := s.words[:n]
	for i := range saved {
		saved[i] = m.Load(i)
	}
	s.n = n
	return true
}

// Words returns the saved contents.
func (s *Snapshot) Words() []uint32 {
	return s.words[:s.n]
}

// Len is the number of words saved.
func (s *Snapshot) Len() int {
	return s.n
}

// Restore copies the snapshot back into m.  Returns false, without
// writing anything, if m is not the size of the snapshot.
func (s *Snapshot) Restore(m Memory) bool {
	if m.Len() != s.n {
		return false
	}
	for i, v := range s.Words() {
		m.Store(i, v)
	}
	return true
}

// Compare returns the index of the first word of m that differs from
// the snapshot, or -1 if they are identical.  A size difference counts
// as a difference at the end of the shorter of the two.
func (s *Snapshot) Compare(m Memory) int {
	saved := s.Words()
	n := m.Len()
	if n > len(saved) {
		n = len(saved)
	}
	for i := 0; i < n; i++ {
		if m.Load(i) != saved[i] {
			return i
		}
	}
	if m.Len() != len(saved) {
		return n
	}
	return -1
}
