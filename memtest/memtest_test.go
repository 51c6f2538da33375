package memtest

import (
	"bytes"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/jbrzusto/ocramtest/buffer"
)

// stuckMemory has bits in one word which ignore writes.
type stuckMemory struct {
	buffer.Slice
	word  int
	mask  uint32 // bits that are stuck
	value uint32 // what the stuck bits read as
}

func (m *stuckMemory) Load(i int) uint32 {
	v := m.Slice[i]
	if i == m.word {
		v = v&^m.mask | m.value&m.mask
	}
	return v
}

// aliasedMemory has address lines stuck at 1, so words share storage.
type aliasedMemory struct {
	buffer.Slice
	stuck int
}

func (m aliasedMemory) Load(i int) uint32     { return m.Slice[i|m.stuck] }
func (m aliasedMemory) Store(i int, v uint32) { m.Slice[i|m.stuck] = v }

// floatingMemory never reads the same value twice.
type floatingMemory struct {
	buffer.Slice
	reads uint32
}

func (m *floatingMemory) Load(i int) uint32 {
	m.reads++
	return m.reads
}

// lockingMemory ignores writes once limit of them have been made.
type lockingMemory struct {
	buffer.Slice
	stores, limit int
}

func (m *lockingMemory) Store(i int, v uint32) {
	m.stores++
	if m.stores <= m.limit {
		m.Slice[i] = v
	}
}

var _ = ginkgo.Describe("Pattern", func() {
	ginkgo.It("should round-trip every word of the OCRAM with both patterns", func() {
		mem := make(buffer.Slice, 16*1024)
		for _, p := range Patterns {
			Fill(mem, p)
			Expect(Verify(mem, p)).To(BeEmpty())
		}
		Expect(mem[0]).To(Equal(uint32(0xFFFFFFFF)))
		Expect(mem[16383]).To(Equal(^uint32(16383)))
	})

	ginkgo.It("should give every word a distinct value", func() {
		seen := make(map[uint32]bool)
		for i := 0; i < 16*1024; i++ {
			v := Sequential.Word(i)
			Expect(seen).NotTo(HaveKey(v))
			seen[v] = true
			Expect(Complemented.Word(i)).To(Equal(^v))
		}
	})
})

var _ = ginkgo.Describe("Tester", func() {
	var (
		mockCtrl *gomock.Controller
		reporter *MockReporter
		tester   *Tester
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		reporter = NewMockReporter(mockCtrl)
		tester = New("ocram 64k", reporter)
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should report each step and restore good memory", func() {
		mem := make(buffer.Slice, 1024)
		for i := range mem {
			mem[i] = 0xA5A50000 | uint32(i)
		}
		orig := append(buffer.Slice(nil), mem...)

		gomock.InOrder(
			reporter.EXPECT().Step("Saved initial ocram 64k values"),
			reporter.EXPECT().Step("Writing sequential word values to ocram 64k"),
			reporter.EXPECT().Step("Verifying sequential word values in ocram 64k"),
			reporter.EXPECT().Step("Writing complemented sequential word values to ocram 64k"),
			reporter.EXPECT().Step("Verifying complemented sequential word values in ocram 64k"),
			reporter.EXPECT().Step("Restored initial ocram 64k values"),
		)

		res, err := tester.Run(mem)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.OK()).To(BeTrue())
		Expect(res.Words).To(Equal(1024))
		Expect(mem).To(Equal(orig))
	})

	ginkgo.It("should find a bit stuck at 0 with the complemented pattern", func() {
		mem := &stuckMemory{Slice: make(buffer.Slice, 64), word: 5, mask: 0x10}
		want := Mismatch{Pattern: "complemented sequential", Word: 5, Expected: 0xFFFFFFFA, Got: 0xFFFFFFEA}

		reporter.EXPECT().Step(gomock.Any()).AnyTimes()
		reporter.EXPECT().Mismatch(want)

		res, err := tester.Run(mem)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Mismatches).To(ConsistOf(want))
	})

	ginkgo.It("should find a bit stuck at 1 with the sequential pattern", func() {
		mem := &stuckMemory{Slice: make(buffer.Slice, 64), word: 2, mask: 0x80000000, value: 0x80000000}
		want := Mismatch{Pattern: "sequential", Word: 2, Expected: 2, Got: 0x80000002}

		reporter.EXPECT().Step(gomock.Any()).AnyTimes()
		reporter.EXPECT().Mismatch(want)

		res, err := tester.Run(mem)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Mismatches).To(ConsistOf(want))
	})

	ginkgo.It("should keep going after a mismatch and find aliased words", func() {
		mem := aliasedMemory{Slice: make(buffer.Slice, 4), stuck: 2}

		reporter.EXPECT().Step(gomock.Any()).AnyTimes()
		reporter.EXPECT().Mismatch(gomock.Any()).Times(4)

		res, err := tester.Run(mem)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.OK()).To(BeFalse())
		Expect(res.Mismatches).To(Equal([]Mismatch{
			{Pattern: "sequential", Word: 0, Expected: 0, Got: 2},
			{Pattern: "sequential", Word: 1, Expected: 1, Got: 3},
			{Pattern: "complemented sequential", Word: 0, Expected: 0xFFFFFFFF, Got: 0xFFFFFFFD},
			{Pattern: "complemented sequential", Word: 1, Expected: 0xFFFFFFFE, Got: 0xFFFFFFFC},
		}))
	})

	ginkgo.It("should fail before writing if the snapshot can't be verified", func() {
		mem := &floatingMemory{Slice: make(buffer.Slice, 8)}

		res, err := tester.Run(mem)

		Expect(res).To(BeNil())
		Expect(err).To(MatchError(ErrSnapshot))
		Expect(mem.Slice).To(Equal(make(buffer.Slice, 8)))
	})

	ginkgo.It("should fail if the memory isn't restored", func() {
		mem := &lockingMemory{Slice: make(buffer.Slice, 8), limit: 16}

		reporter.EXPECT().Step(gomock.Any()).Times(5)

		res, err := tester.Run(mem)

		Expect(err).To(MatchError(ErrRestore))
		Expect(err.Error()).To(Equal("memcmp restore copy: word 0"))
		Expect(res).NotTo(BeNil())
		Expect(res.OK()).To(BeTrue())
	})

	ginkgo.It("should refuse memory larger than the snapshot", func() {
		res, err := tester.Run(make(buffer.Slice, buffer.SNAPSHOT_WORDS+1))

		Expect(res).To(BeNil())
		Expect(err).To(HaveOccurred())
	})
})

var _ = ginkgo.Describe("Console", func() {
	ginkgo.It("should print steps and mismatches", func() {
		var out bytes.Buffer
		c := Console{W: &out}

		c.Step("Saved initial ocram 64k values")
		c.Mismatch(Mismatch{Word: 7, Expected: 7, Got: 0x107})

		Expect(out.String()).To(Equal("Saved initial ocram 64k values\n" +
			"mismatch at word 7\nexpected 0x00000007\ngot 0x00000107\n"))
	})
})
