package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp returns the base application with the shared global flags.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "d2s"
	app.Usage = "inspect, edit and convert character save files"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.Flags = append(CommonFlags(), SaveFlags()...)
	return app
}
