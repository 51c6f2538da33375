// Interface to the on-chip RAM behind the HPS-to-FPGA bridge.
//
// The OCRAM is a block of FPGA-side memory which the hard processor
// system (HPS) reaches through the H2F bridge.  It is only valid once
// the FPGA manager reports the fabric as configured and the bridge
// is enabled; reading it before then hangs or faults the bus, so
// callers must check Ready() before calling Open().
//
// The OCRAM is accessed by mmap()ing a segment of /dev/mem and
// viewing the returned []byte as a []uint32, in the same way the
// radar digitizer registers are reached on the redpitaya.
package fpga

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/tebeka/atexit"
	"golang.org/x/sys/unix"
)

const (
	DEV_MEM_PATH = "/dev/mem"             // device through which physical memory is mapped
	OCRAM_BASE   = 0xc0000000             // Starting physical address of the 64k OCRAM (start of H2F bridge window)
	OCRAM_SPAN   = 64 * 1024              // Size of OCRAM in bytes
	WORD_SIZE    = 4                      // OCRAM is tested as 32-bit words
	OCRAM_WORDS  = OCRAM_SPAN / WORD_SIZE // Number of words in OCRAM
	MAX_SPAN     = OCRAM_SPAN             // Largest span Open will map
)

// Window is a mapping of a span of physical memory.  The span is
// viewed as words starting exactly at Base, even when Base is not
// page-aligned.
type Window struct {
	Base     uint64   // physical address of first word
	Span     int      // bytes in window
	pageOff  int      // offset of Base within the first mapped page
	mapSlice []byte   // whole mapping, starting at the page containing Base
	words    []uint32 // the span; aliases mapSlice[pageOff:]
	memfile  *os.File // open memory device
}

// Open maps span bytes of physical memory starting at base, through
// device (normally DEV_MEM_PATH).  base must be word-aligned and span
// a positive multiple of the word size no larger than MAX_SPAN.
//
// The window's Close is registered as an exit handler, so the mapping
// is also released when the program leaves through atexit.Exit.
func Open(device string, base uint64, span int) (*Window, error) {
	if base%WORD_SIZE != 0 {
		return nil, fmt.Errorf("base address 0x%08X is not word aligned", base)
	}
	if span <= 0 || span%WORD_SIZE != 0 || span > MAX_SPAN {
		return nil, fmt.Errorf("bad span %d: must be a multiple of %d in 1...%d", span, WORD_SIZE, MAX_SPAN)
	}
	var err error
	w := &Window{Base: base, Span: span}
	w.memfile, err = os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	pageMask := uint64(unix.Getpagesize() - 1)
	w.pageOff = int(base & pageMask)
	w.mapSlice, err = unix.Mmap(int(w.memfile.Fd()), int64(base&^pageMask), w.pageOff+span, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		w.memfile.Close()
		return nil, fmt.Errorf("mmap %s: %w", device, err)
	}
	w.words = unsafe.Slice((*uint32)(unsafe.Pointer(&w.mapSlice[w.pageOff])), span/WORD_SIZE)
	atexit.Register(func() { _ = w.Close() })
	return w, nil
}

// Close unmaps the window and closes the memory device.  It is safe
// to call more than once.
func (w *Window) Close() error {
	if w.memfile == nil {
		return nil
	}
	name := w.memfile.Name()
	w.words = nil
	err := unix.Munmap(w.mapSlice)
	w.mapSlice = nil
	if cerr := w.memfile.Close(); err == nil {
		err = cerr
	}
	w.memfile = nil
	if err != nil {
		return fmt.Errorf("munmap %s: %w", name, err)
	}
	return nil
}

// Len is the number of words in the window; 0 once closed.
func (w *Window) Len() int {
	return len(w.words)
}

// Load reads word i of the window.
//
//go:noinline
func (w *Window) Load(i int) uint32 {
	return w.words[i]
}

// Store writes word i of the window.
//
//go:noinline
func (w *Window) Store(i int, v uint32) {
	w.words[i] = v
}

// Addr returns the physical address of word i.
func (w *Window) Addr(i int) uint64 {
	return w.Base + uint64(i)*WORD_SIZE
}
