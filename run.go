package main

import (
	"fmt"
	"io"

	"github.com/jbrzusto/ocramtest/fpga"
	"github.com/jbrzusto/ocramtest/memtest"
	"github.com/rs/xid"
)

// run checks that the FPGA is configured and the H2F bridge enabled,
// then maps tgt and tests it, writing progress to out.  Nothing is
// mapped unless every status check passes.
//
// Word mismatches are reported to out and returned in the result;
// they are not errors.
func run(out io.Writer, tgt target, sf fpga.Sysfs) (*memtest.Result, error) {
	fmt.Fprint(out, "\nStart of program...\n\n")
	fmt.Fprintf(out, "Testing %s at 0x%08X (run %s)\n", tgt.Name, tgt.Base, xid.New())

	if err := sf.Ready(); err != nil {
		return nil, err
	}

	win, err := fpga.Open(tgt.Device, tgt.Base, tgt.Span)
	if err != nil {
		return nil, err
	}
	defer win.Close()

	res, err := memtest.New(tgt.Name, memtest.Console{W: out}).Run(win)
	if err != nil {
		return res, err
	}
	if err = win.Close(); err != nil {
		return res, err
	}

	fmt.Fprint(out, "\nEnd of program...\n\n")
	return res, nil
}
