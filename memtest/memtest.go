// Package memtest runs a destructive read/write test over a span of
// word-addressed memory, restoring the original contents afterwards.
//
// Every word is written with its own index and read back, then with
// the complement of its index.  Between them the two patterns drive
// every bit of every word to both 0 and 1, so stuck-at faults show up
// as mismatches, and because each word's value is unique, so do
// address lines that alias two words.
package memtest

import (
	"errors"
	"fmt"
	"io"

	"github.com/jbrzusto/ocramtest/buffer"
)

var (
	// ErrSnapshot means the saved copy differs from memory right after
	// it was taken, so the memory cannot be restored reliably.
	ErrSnapshot = errors.New("memcmp original copy")

	// ErrRestore means memory differs from the saved copy after it was
	// written back.
	ErrRestore = errors.New("memcmp restore copy")
)

// Pattern is the value written to each word in one pass of the test.
type Pattern struct {
	Name string             // used in progress messages
	Word func(i int) uint32 // value for word i
}

// Sequential writes each word's index.
var Sequential = Pattern{
	Name: "sequential",
	Word: func(i int) uint32 { return uint32(i) },
}

// Complemented writes the bitwise complement of each word's index.
var Complemented = Pattern{
	Name: "complemented sequential",
	Word: func(i int) uint32 { return ^uint32(i) },
}

// Patterns are run in this order.
var Patterns = []Pattern{Sequential, Complemented}

// Mismatch is a word that did not read back what was written.
type Mismatch struct {
	Pattern  string // name of the pattern being verified
	Word     int    // index of the word in the span
	Expected uint32
	Got      uint32
}

// Reporter receives progress messages and mismatches as a test runs.
type Reporter interface {
	Step(msg string)
	Mismatch(m Mismatch)
}

// Fill writes pattern p to every word of m.
func Fill(m buffer.Memory, p Pattern) {
	n := m.Len()
	for i := 0; i < n; i++ {
		m.Store(i, p.Word(i))
	}
}

// Verify reads every word of m and returns those which don't hold
// pattern p.
func Verify(m buffer.Memory, p Pattern) (bad []Mismatch) {
	n := m.Len()
	for i := 0; i < n; i++ {
		want := p.Word(i)
		if got := m.Load(i); got != want {
			bad = append(bad, Mismatch{Pattern: p.Name, Word: i, Expected: want, Got: got})
		}
	}
	return
}

// Result is the outcome of a completed test.
type Result struct {
	Words      int        // number of words tested
	Mismatches []Mismatch // every mismatch, in the order found
}

// OK is true if every word read back correctly under every pattern.
func (r *Result) OK() bool {
	return len(r.Mismatches) == 0
}

// Tester runs the test.  Its zero value is not usable; use New.
type Tester struct {
	Name   string   // name of the memory, e.g. "ocram 64k", for progress messages
	Report Reporter // where progress and mismatches go
	snap   buffer.Snapshot
}

// New returns a Tester which reports to r.
func New(name string, r Reporter) *Tester {
	return &Tester{Name: name, Report: r}
}

func (t *Tester) step(format string, args ...interface{}) {
	t.Report.Step(fmt.Sprintf(format, args...))
}

// Run saves m, runs each of Patterns over it, then restores it.
//
// Mismatches are reported as they are found and do not stop the
// test.  An error is returned only if m can't be saved or isn't
// restored exactly; in the second case the Result is still valid.
func (t *Tester) Run(m buffer.Memory) (*Result, error) {
	if !t.snap.Save(m) {
		return nil, fmt.Errorf("%d words will not fit in a %d word snapshot", m.Len(), buffer.SNAPSHOT_WORDS)
	}
	if i := t.snap.Compare(m); i >= 0 {
		return nil, fmt.Errorf("%w: word %d", ErrSnapshot, i)
	}
	t.step("Saved initial %s values", t.Name)

	res := &Result{Words: m.Len()}
	for _, p := range Patterns {
		t.step("Writing %s word values to %s", p.Name, t.Name)
		Fill(m, p)
		t.step("Verifying %s word values in %s", p.Name, t.Name)
		for _, bad := range Verify(m, p) {
			t.Report.Mismatch(bad)
			res.Mismatches = append(res.Mismatches, bad)
		}
	}

	t.snap.Restore(m)
	if i := t.snap.Compare(m); i >= 0 {
		return res, fmt.Errorf("%w: word %d", ErrRestore, i)
	}
	t.step("Restored initial %s values", t.Name)
	return res, nil
}

// Console is a Reporter that prints to a terminal.
type Console struct {
	W io.Writer
}

func (c Console) Step(msg string) {
	fmt.Fprintln(c.W, msg)
}

func (c Console) Mismatch(m Mismatch) {
	fmt.Fprintf(c.W, "mismatch at word %d\nexpected 0x%08X\ngot 0x%08X\n", m.Word, m.Expected, m.Got)
}
