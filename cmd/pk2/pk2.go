package main

// Peek/Poke words of the OCRAM.
//
// Usage:
//
//    pk2 peek WORD [COUNT]
//    pk2 poke WORD VALUE
//
// where WORD is the index of a 32-bit word in the OCRAM, COUNT is the
// number of words to show (default 1) and VALUE is the value to
// write.  Numbers may be given in decimal, or in hex with a leading 0x.
// The FPGA must be configured and the H2F bridge enabled.

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jbrzusto/ocramtest/fpga"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:           "pk2",
	Short:         "Peek and poke words of the on-chip RAM behind the H2F bridge.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var peekCmd = &cobra.Command{
	Use:   "peek WORD [COUNT]",
	Short: "Show COUNT words starting at WORD.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		word, err := parseWord(args[0])
		if err != nil {
			return err
		}
		count := uint64(1)
		if len(args) > 1 {
			if count, err = strconv.ParseUint(args[1], 0, 32); err != nil {
				return fmt.Errorf("bad count %q", args[1])
			}
		}
		if word+int(count) > fpga.OCRAM_WORDS {
			return fmt.Errorf("words %d...%d are not all in the OCRAM", word, word+int(count)-1)
		}
		win, err := open()
		if err != nil {
			return err
		}
		defer win.Close()
		peek(cmd.OutOrStdout(), win, word, int(count))
		return win.Close()
	},
}

var pokeCmd = &cobra.Command{
	Use:   "poke WORD VALUE",
	Short: "Write VALUE to WORD, then read it back.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		word, err := parseWord(args[0])
		if err != nil {
			return err
		}
		val, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			return fmt.Errorf("bad value %q", args[1])
		}
		win, err := open()
		if err != nil {
			return err
		}
		defer win.Close()
		if !poke(cmd.OutOrStdout(), win, word, uint32(val)) {
			fmt.Fprintln(cmd.OutOrStdout(), "mismatch")
		}
		return win.Close()
	},
}

// parseWord returns the word index given by s, which must be in the
// OCRAM.
func parseWord(s string) (int, error) {
	w, err := strconv.ParseUint(s, 0, 32)
	if err != nil || w >= fpga.OCRAM_WORDS {
		return 0, fmt.Errorf("bad word index %q: must be in 0...%d", s, fpga.OCRAM_WORDS-1)
	}
	return int(w), nil
}

// open maps the whole OCRAM, after checking it is safe to touch.
func open() (*fpga.Window, error) {
	if err := fpga.DefaultSysfs.Ready(); err != nil {
		return nil, err
	}
	return fpga.Open(fpga.DEV_MEM_PATH, fpga.OCRAM_BASE, fpga.OCRAM_SPAN)
}

func init() {
	rootCmd.AddCommand(peekCmd, pokeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pk2: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
