package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// Character edit flag names.
const (
	NameFlag       = "name"
	ClassFlag      = "class"
	HardcoreFlag   = "hardcore"
	DeadFlag       = "dead"
	ExpansionFlag  = "expansion"
	LadderFlag     = "ladder"
	TitleFlag      = "title"
	DifficultyFlag = "difficulty"
	ActFlag        = "act"
	LevelFlag      = "level"
	GoldFlag       = "gold"
)

// CharacterFlags holds the fields the set command can change. Boolean
// fields take "true" or "false" so they can be cleared as well as set.
func CharacterFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  NameFlag,
			Usage: "Character name",
		},
		cli.StringFlag{
			Name:  ClassFlag,
			Usage: "Class name or id",
		},
		cli.StringFlag{
			Name:  HardcoreFlag,
			Usage: "Hardcore status (true|false)",
		},
		cli.StringFlag{
			Name:  DeadFlag,
			Usage: "Died status (true|false)",
		},
		cli.StringFlag{
			Name:  ExpansionFlag,
			Usage: "Expansion status (true|false)",
		},
		cli.StringFlag{
			Name:  LadderFlag,
			Usage: "Ladder status (true|false)",
		},
		cli.IntFlag{
			Name:  TitleFlag,
			Usage: "Progression title value",
		},
		cli.StringFlag{
			Name:  DifficultyFlag,
			Usage: "Starting difficulty (normal|nightmare|hell)",
		},
		cli.IntFlag{
			Name:  ActFlag,
			Usage: "Starting act, 1 based",
			Value: 1,
		},
		cli.UintFlag{
			Name:  LevelFlag,
			Usage: "Character level",
		},
		cli.Uint64Flag{
			Name:  GoldFlag,
			Usage: "Gold carried",
		},
	}
}
