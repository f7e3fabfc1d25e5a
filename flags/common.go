package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// Global flag names.
const (
	ConfigFlag       = "config"
	RefdataFlag      = "refdata"
	StrictFlag       = "strict"
	LogFormatFlag    = "log.format"
	LogVerbosityFlag = "log.verbosity"
	LogColorFlag     = "log.color"
)

// CommonFlags returns the base set of CLI flags shared across commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  ConfigFlag,
			Usage: "TOML configuration file",
		},
		cli.StringFlag{
			Name:  RefdataFlag,
			Usage: "YAML reference tables replacing the built-in ones",
		},
		cli.BoolFlag{
			Name:  StrictFlag,
			Usage: "Refuse to open files whose checksum does not match",
		},
		cli.StringFlag{
			Name:  LogFormatFlag,
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  LogVerbosityFlag,
			Usage: "Logging verbosity (0=fatal,1=error,2=warn,3=info,4=debug,5=trace)",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  LogColorFlag,
			Usage: "Enable colored log output",
		},
	}
}
