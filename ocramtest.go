package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:   "ocramtest",
	Short: "Test the on-chip RAM behind the HPS-to-FPGA bridge.",
	Long: `Test the on-chip RAM behind the HPS-to-FPGA bridge.  The FPGA ` +
		`must be configured and the bridge enabled.  Every word is ` +
		`written and verified with two patterns, then the original ` +
		`contents are put back.  Must be run as root, for /dev/mem.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultConfig()
		if _, err := loadConfig("/opt", "."); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		_, err := run(cmd.OutOrStdout(), Target, Sysfs)
		return err
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ocramtest: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
