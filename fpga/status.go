package fpga

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Expected system environment, as reported through sysfs.
const (
	SYSFS_FPGA0_STATE_PATH      = "/sys/class/fpga_manager/fpga0/state" // FPGA manager state
	SYSFS_FPGA0_STATE           = "operating"                           // fabric is configured and running
	SYSFS_H2F_BRIDGE_NAME_PATH  = "/sys/class/fpga_bridge/br1/name"     // name of bridge br1
	SYSFS_H2F_BRIDGE_NAME       = "hps2fpga"                            // br1 must be the HPS-to-FPGA bridge
	SYSFS_H2F_BRIDGE_STATE_PATH = "/sys/class/fpga_bridge/br1/state"    // state of bridge br1
	SYSFS_H2F_BRIDGE_STATE      = "enabled"                             // bridge is passing transactions
)

// ErrNotReady is wrapped by every StatusError.
var ErrNotReady = errors.New("fpga not ready")

// Status is one sysfs file whose contents must begin with Want.
type Status struct {
	What string // used in I/O error messages, e.g. "FPGA state"
	Path string // sysfs file
	Want string // expected contents; only the first len(Want) bytes are compared
	Fail string // message reported on mismatch
}

// StatusError reports a status file whose contents did not match.
type StatusError struct {
	Status
	Got string // the bytes actually read, at most len(Want) of them
}

func (e *StatusError) Error() string {
	return e.Fail
}

func (e *StatusError) Unwrap() error {
	return ErrNotReady
}

// Check reads the first len(s.Want) bytes of s.Path and compares them
// with s.Want.  Anything after that, e.g. a trailing newline, is
// ignored.  A file shorter than Want is a mismatch.
func (s Status) Check() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("open sysfs %s: %w", s.What, err)
	}
	defer f.Close()
	buf := make([]byte, len(s.Want))
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("read sysfs %s: %w", s.What, err)
	}
	if string(buf[:n]) != s.Want {
		return &StatusError{Status: s, Got: string(buf[:n])}
	}
	return nil
}

// Sysfs holds the locations of the status files checked by Ready.
// The mapstructure tags name the keys of the [fpga] config table.
type Sysfs struct {
	StatePath       string `mapstructure:"state_path"`
	BridgeNamePath  string `mapstructure:"bridge_name_path"`
	BridgeStatePath string `mapstructure:"bridge_state_path"`
}

// DefaultSysfs is where the Linux FPGA manager framework puts things
// on the Cyclone V / Arria 10 SoC kernels.
var DefaultSysfs = Sysfs{
	StatePath:       SYSFS_FPGA0_STATE_PATH,
	BridgeNamePath:  SYSFS_H2F_BRIDGE_NAME_PATH,
	BridgeStatePath: SYSFS_H2F_BRIDGE_STATE_PATH,
}

// Checks returns the status checks in the order they must pass.
func (sf Sysfs) Checks() []Status {
	return []Status{
		{What: "FPGA state", Path: sf.StatePath, Want: SYSFS_FPGA0_STATE, Fail: "FPGA not in operate state"},
		{What: "H2F bridge name", Path: sf.BridgeNamePath, Want: SYSFS_H2F_BRIDGE_NAME, Fail: "bad H2F bridge name"},
		{What: "H2F bridge state", Path: sf.BridgeStatePath, Want: SYSFS_H2F_BRIDGE_STATE, Fail: "H2F bridge not enabled"},
	}
}

// Ready returns nil if the fabric is operating and the H2F bridge is
// enabled; otherwise the error from the first check that failed.
// Nothing should touch the bridge window unless Ready returns nil.
func (sf Sysfs) Ready() error {
	for _, s := range sf.Checks() {
		if err := s.Check(); err != nil {
			return err
		}
	}
	return nil
}
