package main

// target describes the memory to be tested.
type target struct {
	Name   string // name used in messages, e.g. "ocram 64k"
	Base   uint64 // physical address of the first word
	Span   int    // number of bytes to test
	Device string // device through which physical memory is mapped
}
