package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// Save flag names.
const (
	ProfileFlag = "profile"
	BackupFlag  = "backup"
	OutFlag     = "out"
	VersionFlag = "version"
	ShapeFlag   = "shape"
)

// SaveFlags select how modified characters are written back.
func SaveFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  ProfileFlag,
			Usage: "Save profile (default|safe|fast|dry|backup)",
		},
		cli.StringFlag{
			Name:  BackupFlag,
			Usage: "Backup policy (none|save|backup|backup-only), overrides the profile",
		},
	}
}

// OutputFlags are the per-command output selectors.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  OutFlag,
			Usage: "Output file, derived from the input name when empty",
		},
		cli.StringFlag{
			Name:  VersionFlag,
			Usage: "Target file version (e.g. v1.10, 0x60)",
		},
		cli.StringFlag{
			Name:  ShapeFlag,
			Usage: "JSON shape (compact|full)",
		},
	}
}
