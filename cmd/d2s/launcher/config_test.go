package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/d2s-asset/character"
	"github.com/rony4d/d2s-asset/flags"
)

// runConfigFromArgs runs MakeAllConfigs inside a synthetic app carrying the
// global flags.
func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := flags.NewApp()
	app.HideHelp = true
	app.HideVersion = true

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"d2s"}, args...)))
	return got, cfgErr
}

func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, 3, cfg.Logging.Verbosity)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, "default", cfg.Preset.Name)
				assert.Equal(t, character.SaveWithBackup, cfg.Preset.Backup)
				assert.False(t, cfg.Preset.Strict)
				assert.Empty(t, cfg.Reference.Path)
			},
		},
		{
			name: "profile",
			args: []string{"--profile", "safe"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, "safe", cfg.Preset.Name)
				assert.True(t, cfg.Preset.Strict)
				assert.Equal(t, character.ShapeFull, cfg.Preset.Shape)
			},
		},
		{
			name: "backup overrides profile",
			args: []string{"--profile", "fast", "--backup", "backup"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, "fast", cfg.Preset.Name)
				assert.Equal(t, character.SaveWithBackup, cfg.Preset.Backup)
			},
		},
		{
			name: "strict",
			args: []string{"--strict", "--profile", "fast"},
			want: func(t *testing.T, cfg Config) {
				assert.True(t, cfg.Preset.Strict)
			},
		},
		{
			name: "logging",
			args: []string{"--log.format", "json", "--log.verbosity", "5", "--log.color"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, 5, cfg.Logging.Verbosity)
				assert.True(t, cfg.Logging.Color)
			},
		},
		{
			name: "refdata",
			args: []string{"--refdata", "tables.yaml"},
			want: func(t *testing.T, cfg Config) {
				wd, err := os.Getwd()
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(wd, "tables.yaml"), cfg.Reference.Path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, tt.args)
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestMakeAllConfigs_configFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "d2s.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[logging]
verbosity = 1
format = "json"

[save]
profile = "dry"
strict = true

[reference]
path = "tables.yaml"
`), 0o644))

	cfg, err := runConfigFromArgs(t, []string{"--config", file})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Logging.Verbosity)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, character.NoSave, cfg.Preset.Backup)
	assert.True(t, cfg.Preset.Strict)
	assert.Equal(t, filepath.Join(dir, "tables.yaml"), cfg.Reference.Path)

	// flags win over the file
	cfg, err = runConfigFromArgs(t, []string{"--config", file, "--profile", "fast", "--log.verbosity", "4"})
	require.NoError(t, err)
	assert.Equal(t, character.SaveOnly, cfg.Preset.Backup)
	assert.Equal(t, 4, cfg.Logging.Verbosity)
	assert.True(t, cfg.Preset.Strict)
}

func TestMakeAllConfigs_errors(t *testing.T) {
	for _, args := range [][]string{
		{"--profile", "turbo"},
		{"--backup", "sometimes"},
		{"--config", filepath.Join(t.TempDir(), "missing.toml")},
	} {
		_, err := runConfigFromArgs(t, args)
		assert.Error(t, err, args)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[save\n"), 0o644))
	_, err := runConfigFromArgs(t, []string{"--config", bad})
	assert.Error(t, err)
}

func TestMakeLogger(t *testing.T) {
	log, err := makeLogger(LoggingConfig{Verbosity: 9, Format: "json"}, os.Stderr)
	require.NoError(t, err)
	assert.Equal(t, "trace", log.GetLevel().String())

	log, err = makeLogger(LoggingConfig{Verbosity: -1, Format: "TEXT"}, os.Stderr)
	require.NoError(t, err)
	assert.Equal(t, "fatal", log.GetLevel().String())

	_, err = makeLogger(LoggingConfig{Format: "xml"}, os.Stderr)
	assert.Error(t, err)
}
