package main

// this file contains all the code that directly uses the viper package
import (
	"errors"

	"github.com/jbrzusto/ocramtest/fpga"
	"github.com/spf13/viper"
)

var (
	Target target     // memory to test
	Sysfs  fpga.Sysfs // where to find FPGA and bridge status
)

// loadConfig reads configuration from a TOML-formatted file called
// 'ocramtest.toml', looking for it in each of dirs in turn.  On the
// SoC boards the top level of the SD card is mounted at /opt, so the
// usual list is "/opt" then ".".
//
// Values from the [ocram] table override Target, and those from the
// [fpga] table override Sysfs; missing keys keep their current value,
// so call setDefaultConfig first.
//
// Returns true if a config file was read.  A missing file is not an
// error; a file that can't be parsed is.
func loadConfig(dirs ...string) (bool, error) {
	viper.SetConfigName("ocramtest") // name of config file (without extension)
	viper.SetConfigType("toml")
	for _, d := range dirs {
		viper.AddConfigPath(d)
	}
	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	if err = viper.UnmarshalKey("ocram", &Target); err != nil {
		return false, err
	}
	if err = viper.UnmarshalKey("fpga", &Sysfs); err != nil {
		return false, err
	}
	return true, nil
}

// setDefaultConfig sets values for the 64k OCRAM at the start of the
// H2F bridge window, as built by the Altera/Intel "My First HPS
// System" design, and the standard sysfs locations.
func setDefaultConfig() {
	Target = target{
		Name:   "ocram 64k",
		Base:   fpga.OCRAM_BASE,
		Span:   fpga.OCRAM_SPAN,
		Device: fpga.DEV_MEM_PATH,
	}
	Sysfs = fpga.DefaultSysfs
}
