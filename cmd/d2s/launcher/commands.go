package launcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/d2s-asset/character"
	"github.com/rony4d/d2s-asset/flags"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/stats"
)

var difficultyNames = []string{"normal", "nightmare", "hell"}

var errNoVersion = errors.New("--version is required")

func (l *launcher) commands() []cli.Command {
	return []cli.Command{
		{
			Name:      "info",
			Usage:     "Print a summary of a character file",
			ArgsUsage: "<file>",
			Action:    l.info,
		},
		{
			Name:      "verify",
			Usage:     "Check the stored checksum of a character file",
			ArgsUsage: "<file>",
			Action:    l.verify,
		},
		{
			Name:      "fix",
			Usage:     "Rewrite a character file with a recomputed size and checksum",
			ArgsUsage: "<file>",
			Action:    l.fix,
		},
		{
			Name:      "export",
			Usage:     "Write the JSON form of a character file",
			ArgsUsage: "<file>",
			Flags:     flags.OutputFlags(),
			Action:    l.export,
		},
		{
			Name:      "import",
			Usage:     "Build a character file from its JSON form",
			ArgsUsage: "<file.json>",
			Flags:     flags.OutputFlags(),
			Action:    l.importJSON,
		},
		{
			Name:      "convert",
			Usage:     "Rewrite a character file in another version",
			ArgsUsage: "<file>",
			Flags:     flags.OutputFlags(),
			Action:    l.convert,
		},
		{
			Name:      "set",
			Usage:     "Change character fields in place",
			ArgsUsage: "<file>",
			Flags:     flags.CharacterFlags(),
			Action:    l.set,
		},
	}
}

func fileArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one file argument, got %d", ctx.Command.Name, ctx.NArg())
	}
	return resolvePath(ctx.Args().First()), nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func (l *launcher) open(path string, strict bool) (*character.Record, error) {
	r := character.New(
		character.WithReference(l.ref),
		character.WithLogger(l.log.WithField("file", filepath.Base(path))),
		character.WithStrictChecksum(strict),
	)
	var err error
	if isJSON(path) {
		err = r.OpenJSON(path)
	} else {
		err = r.Open(path)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (l *launcher) saved(path string) {
	if l.cfg.Preset.Backup == character.NoSave {
		fmt.Fprintf(l.out, "%s: not written (%s)\n", path, l.cfg.Preset.Backup)
		return
	}
	l.log.WithFields(logrus.Fields{"path": path, "backup": l.cfg.Preset.Backup}).Info("Character saved")
	fmt.Fprintf(l.out, "%s: written\n", path)
}

func (l *launcher) info(ctx *cli.Context) error {
	path, err := fileArg(ctx)
	if err != nil {
		return err
	}
	r, err := l.open(path, l.cfg.Preset.Strict)
	if err != nil {
		return err
	}
	defer r.Close()

	var status []string
	for _, s := range []struct {
		on   bool
		name string
	}{
		{r.IsExpansion(), "expansion"},
		{r.IsHardcore(), "hardcore"},
		{r.IsDead(), "dead"},
		{r.IsLadder(), "ladder"},
	} {
		if s.on {
			status = append(status, s.name)
		}
	}
	if len(status) == 0 {
		status = append(status, "classic")
	}
	difficulty, act := r.DifficultyLastPlayed()

	w := l.out
	fmt.Fprintf(w, "Name:       %s\n", r.Name())
	fmt.Fprintf(w, "Version:    %s\n", r.Version())
	fmt.Fprintf(w, "Class:      %s\n", r.ClassName())
	fmt.Fprintf(w, "Level:      %d\n", r.Level())
	fmt.Fprintf(w, "Status:     %s\n", strings.Join(status, ", "))
	fmt.Fprintf(w, "Title:      %d (%s)\n", r.Title(), r.TitleName())
	fmt.Fprintf(w, "Difficulty: %s, act %d\n", difficultyName(difficulty), act+1)
	if r.StatsDecoded() {
		fmt.Fprintf(w, "Gold:       %d\n", r.Stat(stats.Gold))
	}
	fmt.Fprintf(w, "Items:      %d\n", r.ItemCount())
	if r.Version().HasChecksum() {
		fmt.Fprintf(w, "Checksum:   %#08x\n", r.ChecksumBytes())
	}
	return nil
}

func (l *launcher) verify(ctx *cli.Context) error {
	path, err := fileArg(ctx)
	if err != nil {
		return err
	}
	r, err := l.open(path, false)
	if err != nil {
		return err
	}
	defer r.Close()

	switch {
	case !r.Version().HasChecksum():
		fmt.Fprintf(l.out, "%s: %s files carry no checksum\n", path, r.Version())
	case r.LastError() != nil:
		fmt.Fprintf(l.out, "%s: %v\n", path, r.LastError())
		return r.LastError()
	case r.ActsCorrected():
		fmt.Fprintf(l.out, "%s: quest data will be corrected on save\n", path)
	default:
		fmt.Fprintf(l.out, "%s: ok\n", path)
	}
	return nil
}

func (l *launcher) fix(ctx *cli.Context) error {
	path, err := fileArg(ctx)
	if err != nil {
		return err
	}
	r, err := l.open(path, false)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.SaveAsD2S(path, l.cfg.Preset.Backup); err != nil {
		return err
	}
	l.saved(path)
	return nil
}

func (l *launcher) export(ctx *cli.Context) error {
	path, err := fileArg(ctx)
	if err != nil {
		return err
	}
	shape := l.cfg.Preset.Shape
	if s := ctx.String(flags.ShapeFlag); s != "" {
		if shape, err = character.ParseShape(s); err != nil {
			return err
		}
	}
	r, err := l.open(path, l.cfg.Preset.Strict)
	if err != nil {
		return err
	}
	defer r.Close()

	out := ctx.String(flags.OutFlag)
	if out == "" {
		out = withExt(path, ".json")
	}
	out = resolvePath(out)
	if err := r.SaveAsJSON(out, shape, l.cfg.Preset.Backup); err != nil {
		return err
	}
	l.saved(out)
	return nil
}

// writeVersion saves r to out, converting first when a version flag names a
// different one.
func (l *launcher) writeVersion(ctx *cli.Context, r *character.Record, out string) error {
	if s := ctx.String(flags.VersionFlag); s != "" {
		v, err := format.ParseVersion(s)
		if err != nil {
			return err
		}
		if v != r.Version() {
			return r.SaveAsVersion(out, v, l.cfg.Preset.Backup)
		}
	}
	return r.SaveAsD2S(out, l.cfg.Preset.Backup)
}

func (l *launcher) importJSON(ctx *cli.Context) error {
	path, err := fileArg(ctx)
	if err != nil {
		return err
	}
	r, err := l.open(path, l.cfg.Preset.Strict)
	if err != nil {
		return err
	}
	defer r.Close()

	out := ctx.String(flags.OutFlag)
	if out == "" {
		out = withExt(path, ".d2s")
	}
	out = resolvePath(out)
	if err := l.writeVersion(ctx, r, out); err != nil {
		return err
	}
	l.saved(out)
	return nil
}

func (l *launcher) convert(ctx *cli.Context) error {
	path, err := fileArg(ctx)
	if err != nil {
		return err
	}
	if ctx.String(flags.VersionFlag) == "" {
		return errNoVersion
	}
	r, err := l.open(path, l.cfg.Preset.Strict)
	if err != nil {
		return err
	}
	defer r.Close()

	out := path
	if o := ctx.String(flags.OutFlag); o != "" {
		out = resolvePath(o)
	}
	if err := l.writeVersion(ctx, r, out); err != nil {
		return err
	}
	l.saved(out)
	return nil
}

func difficultyName(d int) string {
	if d < 0 || d >= len(difficultyNames) {
		return fmt.Sprintf("difficulty(%d)", d)
	}
	return difficultyNames[d]
}

func parseDifficulty(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range difficultyNames {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q (valid: %s)", s, strings.Join(difficultyNames, ", "))
}

func boolFlag(ctx *cli.Context, name string, apply func(bool) error) error {
	if !ctx.IsSet(name) {
		return nil
	}
	on, err := strconv.ParseBool(ctx.String(name))
	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	return apply(on)
}

// applyEdits changes r from the set command's flags. Expansion goes first so
// expansion-only classes and acts are accepted in the same run, and the title
// goes last so it is checked against the final progress.
func applyEdits(ctx *cli.Context, r *character.Record) error {
	if err := boolFlag(ctx, flags.ExpansionFlag, r.SetExpansion); err != nil {
		return err
	}
	if ctx.IsSet(flags.ClassFlag) {
		c, err := character.ParseClass(ctx.String(flags.ClassFlag))
		if err != nil {
			return err
		}
		if err := r.SetClass(c); err != nil {
			return err
		}
	}
	for _, b := range []struct {
		name  string
		apply func(bool) error
	}{
		{flags.HardcoreFlag, r.SetHardcore},
		{flags.DeadFlag, r.SetDead},
		{flags.LadderFlag, r.SetLadder},
	} {
		if err := boolFlag(ctx, b.name, b.apply); err != nil {
			return err
		}
	}
	if ctx.IsSet(flags.NameFlag) {
		if err := r.SetName(ctx.String(flags.NameFlag)); err != nil {
			return err
		}
	}
	if ctx.IsSet(flags.LevelFlag) {
		if err := r.SetStat(stats.Level, uint64(ctx.Uint(flags.LevelFlag))); err != nil {
			return err
		}
	}
	if ctx.IsSet(flags.GoldFlag) {
		if err := r.SetStat(stats.Gold, ctx.Uint64(flags.GoldFlag)); err != nil {
			return err
		}
	}
	if ctx.IsSet(flags.DifficultyFlag) || ctx.IsSet(flags.ActFlag) {
		difficulty, act := r.DifficultyLastPlayed()
		if ctx.IsSet(flags.DifficultyFlag) {
			d, err := parseDifficulty(ctx.String(flags.DifficultyFlag))
			if err != nil {
				return err
			}
			difficulty = d
		}
		if ctx.IsSet(flags.ActFlag) {
			act = ctx.Int(flags.ActFlag) - 1
		}
		if err := r.SetDifficultyLastPlayed(difficulty, act); err != nil {
			return err
		}
	}
	if ctx.IsSet(flags.TitleFlag) {
		t := ctx.Int(flags.TitleFlag)
		if t < 0 || t > 0xFF {
			return fmt.Errorf("--%s %d: %w", flags.TitleFlag, t, character.ErrValueOutOfRange)
		}
		if err := r.SetTitle(uint8(t)); err != nil {
			return err
		}
	}
	return nil
}

func (l *launcher) set(ctx *cli.Context) error {
	path, err := fileArg(ctx)
	if err != nil {
		return err
	}
	r, err := l.open(path, l.cfg.Preset.Strict)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := applyEdits(ctx, r); err != nil {
		return err
	}
	if isJSON(path) {
		err = r.SaveAsJSON(path, l.cfg.Preset.Shape, l.cfg.Preset.Backup)
	} else {
		err = r.SaveAsD2S(path, l.cfg.Preset.Backup)
	}
	if err != nil {
		return err
	}
	l.saved(path)
	return nil
}
