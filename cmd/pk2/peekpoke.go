package main

import (
	"fmt"
	"io"

	"github.com/jbrzusto/ocramtest/buffer"
	"github.com/jbrzusto/ocramtest/fpga"
)

// peek prints count words of m starting at word, one per line, with
// their physical addresses.
func peek(out io.Writer, m buffer.Memory, word, count int) {
	for i := word; i < word+count; i++ {
		fmt.Fprintf(out, "word %5d @ 0x%08X: 0x%08X\n", i, fpga.OCRAM_BASE+uint64(i)*fpga.WORD_SIZE, m.Load(i))
	}
}

// poke writes val to word of m and prints what reads back.  Returns
// true if that is val.
func poke(out io.Writer, m buffer.Memory, word int, val uint32) bool {
	m.Store(word, val)
	got := m.Load(word)
	fmt.Fprintf(out, "word %5d @ 0x%08X: wrote 0x%08X read 0x%08X\n", word, fpga.OCRAM_BASE+uint64(word)*fpga.WORD_SIZE, val, got)
	return got == val
}
