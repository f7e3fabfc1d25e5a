package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/d2s-asset/character"
	"github.com/rony4d/d2s-asset/flags"
	"github.com/rony4d/d2s-asset/integration"
)

// Config aggregates everything the commands need.
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Save      SaveConfig      `toml:"save"`
	Reference ReferenceConfig `toml:"reference"`

	// Preset is resolved from Save after all sources are merged.
	Preset integration.PresetConfig `toml:"-"`
}

type LoggingConfig struct {
	Verbosity int    `toml:"verbosity"`
	Format    string `toml:"format"`
	Color     bool   `toml:"color"`
}

type SaveConfig struct {
	Profile string `toml:"profile"`
	Backup  string `toml:"backup"` // overrides the profile's policy when set
	Strict  bool   `toml:"strict"`
}

type ReferenceConfig struct {
	Path string `toml:"path"`
}

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
		},
		Save: SaveConfig{
			Profile: d.Save.Profile,
			Strict:  d.Save.Strict,
		},
		Reference: ReferenceConfig{Path: d.Reference.Path},
	}
}

// MakeAllConfigs merges defaults, the optional config file, then CLI flag
// overrides, and resolves the save profile last.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString(flags.ConfigFlag); file != "" {
		if err := loadConfigFile(resolvePath(file), &cfg); err != nil {
			return cfg, err
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if err := resolvePreset(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Reference.Path != "" && !filepath.IsAbs(cfg.Reference.Path) {
		cfg.Reference.Path = filepath.Join(filepath.Dir(path), cfg.Reference.Path)
	}
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(flags.LogFormatFlag) {
		cfg.Logging.Format = ctx.GlobalString(flags.LogFormatFlag)
	}
	if ctx.GlobalIsSet(flags.LogVerbosityFlag) {
		cfg.Logging.Verbosity = ctx.GlobalInt(flags.LogVerbosityFlag)
	}
	if ctx.GlobalIsSet(flags.LogColorFlag) {
		cfg.Logging.Color = ctx.GlobalBool(flags.LogColorFlag)
	}

	if ctx.GlobalIsSet(flags.ProfileFlag) {
		cfg.Save.Profile = ctx.GlobalString(flags.ProfileFlag)
	}
	if ctx.GlobalIsSet(flags.BackupFlag) {
		cfg.Save.Backup = ctx.GlobalString(flags.BackupFlag)
	}
	if ctx.GlobalBool(flags.StrictFlag) {
		cfg.Save.Strict = true
	}

	if ctx.GlobalIsSet(flags.RefdataFlag) {
		cfg.Reference.Path = resolvePath(ctx.GlobalString(flags.RefdataFlag))
	}
}

func resolvePreset(cfg *Config) error {
	preset, err := integration.GetPresetByName(cfg.Save.Profile)
	if err != nil {
		return err
	}
	cfg.Preset = integration.PresetConfig{Strict: cfg.Save.Strict}
	integration.ApplyPreset(&cfg.Preset, preset)
	if cfg.Save.Backup != "" {
		policy, err := character.ParseBackupPolicy(cfg.Save.Backup)
		if err != nil {
			return err
		}
		cfg.Preset.Backup = policy
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
