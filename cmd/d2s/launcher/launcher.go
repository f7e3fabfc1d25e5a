package launcher

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/d2s-asset/flags"
	"github.com/rony4d/d2s-asset/refdata"
)

// launcher holds what the global flags resolve to; commands read it after
// setup has run.
type launcher struct {
	out    io.Writer
	errOut io.Writer

	cfg Config
	log *logrus.Logger
	ref refdata.Source
}

func newApp(out, errOut io.Writer) *cli.App {
	l := &launcher{out: out, errOut: errOut}
	app := flags.NewApp()
	app.Writer = out
	app.ErrWriter = errOut
	app.Before = l.setup
	app.Commands = l.commands()
	return app
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return newApp(os.Stdout, os.Stderr).Run(args)
}

func (l *launcher) setup(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	l.cfg = cfg

	if l.log, err = makeLogger(cfg.Logging, l.errOut); err != nil {
		return err
	}

	if cfg.Reference.Path != "" {
		tables, err := refdata.LoadFile(cfg.Reference.Path)
		if err != nil {
			return err
		}
		l.ref = tables
	} else {
		l.ref = refdata.Default()
	}

	l.log.WithFields(logrus.Fields{
		"profile": cfg.Preset.Name,
		"backup":  cfg.Preset.Backup,
		"strict":  cfg.Preset.Strict,
		"refdata": cfg.Reference.Path,
	}).Debug("Configuration loaded")
	return nil
}
