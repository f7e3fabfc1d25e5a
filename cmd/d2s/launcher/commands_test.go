package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/d2s-asset/character"
	"github.com/rony4d/d2s-asset/format"
	"github.com/rony4d/d2s-asset/sections/stats"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	app := newApp(&out, &logs)
	err := app.Run(append([]string{"d2s", "--log.verbosity", "1"}, args...))
	return out.String(), err
}

func writeCharacter(t *testing.T, v format.Version, c character.Class) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Tester.d2s")
	r := character.New()
	require.NoError(t, r.Create(v, c))
	require.NoError(t, r.SetName("Tester"))
	require.NoError(t, r.SaveAsD2S(path, character.SaveOnly))
	return path
}

func reopen(t *testing.T, path string) *character.Record {
	t.Helper()
	r := character.New()
	require.NoError(t, r.Open(path))
	return r
}

func corruptChecksum(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[12] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestInfo(t *testing.T) {
	path := writeCharacter(t, format.V110, character.Sorceress)
	out, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:       Tester")
	assert.Contains(t, out, "Version:    v1.10")
	assert.Contains(t, out, "Class:      Sorceress")
	assert.Contains(t, out, "Status:     expansion")
	assert.Contains(t, out, "Difficulty: normal, act 1")
	assert.Contains(t, out, "Checksum:")

	_, err = run(t, "info")
	assert.Error(t, err)
	_, err = run(t, "info", filepath.Join(t.TempDir(), "missing.d2s"))
	assert.Equal(t, character.CannotOpenFile, character.KindOf(err))
}

func TestInfoClampsStoredDifficulty(t *testing.T) {
	path := writeCharacter(t, format.V100, character.Amazon)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	d, ok := format.LayoutFor(format.V100).Field(format.FieldDifficulty)
	require.True(t, ok)
	data[d.Offset] = 0x30
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Difficulty: hell, act 1")
	assert.Equal(t, "difficulty(7)", difficultyName(7))
}

func TestVerifyAndFix(t *testing.T) {
	path := writeCharacter(t, format.V110, character.Paladin)
	out, err := run(t, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	corruptChecksum(t, path)
	_, err = run(t, "verify", path)
	assert.Equal(t, character.InvalidChecksum, character.KindOf(err))
	_, err = run(t, "--strict", "info", path)
	assert.Equal(t, character.InvalidChecksum, character.KindOf(err))

	_, err = run(t, "--profile", "fast", "fix", path)
	require.NoError(t, err)
	out, err = run(t, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Len(t, listFiles(t, filepath.Dir(path)), 1)
}

func TestVerifyShortHeader(t *testing.T) {
	path := writeCharacter(t, format.V107, character.Necromancer)
	out, err := run(t, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no checksum")
}

func TestFixKeepsBackup(t *testing.T) {
	path := writeCharacter(t, format.V110, character.Paladin)
	corruptChecksum(t, path)
	_, err := run(t, "fix", path)
	require.NoError(t, err)

	files := listFiles(t, filepath.Dir(path))
	require.Len(t, files, 2)
	var bak string
	for _, f := range files {
		if strings.HasSuffix(f, ".bak") {
			bak = f
		}
	}
	require.NotEmpty(t, bak)
	r := character.New()
	require.NoError(t, r.Open(filepath.Join(filepath.Dir(path), bak)))
	assert.NotNil(t, r.LastError())
}

func TestExportImport(t *testing.T) {
	path := writeCharacter(t, format.V110, character.Barbarian)
	dir := filepath.Dir(path)

	_, err := run(t, "--profile", "fast", "export", path)
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "Tester.json")
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	shape, err := character.DetectShape(data)
	require.NoError(t, err)
	assert.Equal(t, character.ShapeCompact, shape)

	full := filepath.Join(dir, "full.json")
	_, err = run(t, "--profile", "fast", "export", "--shape", "full", "--out", full, path)
	require.NoError(t, err)
	data, err = os.ReadFile(full)
	require.NoError(t, err)
	shape, err = character.DetectShape(data)
	require.NoError(t, err)
	assert.Equal(t, character.ShapeFull, shape)

	out := filepath.Join(dir, "old.d2s")
	_, err = run(t, "--profile", "fast", "import", "--version", "v1.09", "--out", out, full)
	require.NoError(t, err)
	r := reopen(t, out)
	assert.Equal(t, format.V109, r.Version())
	assert.Equal(t, character.Barbarian, r.Class())
	assert.Nil(t, r.LastError())

	_, err = run(t, "export", "--shape", "round", path)
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	path := writeCharacter(t, format.V100R, character.Druid)

	_, err := run(t, "convert", path)
	assert.Equal(t, errNoVersion, err)

	_, err = run(t, "--profile", "fast", "convert", "--version", "0x63", path)
	require.NoError(t, err)
	r := reopen(t, path)
	assert.Equal(t, format.V140, r.Version())
	assert.Equal(t, "Tester", r.Name())

	_, err = run(t, "convert", "--version", "v1.08", path)
	assert.Equal(t, character.UnsupportedVersion, character.KindOf(err))
}

func TestSet(t *testing.T) {
	path := writeCharacter(t, format.V110, character.Amazon)

	_, err := run(t, "--profile", "fast", "set",
		"--class", "Druid", "--hardcore", "true", "--level", "40", "--gold", "500",
		"--difficulty", "nightmare", "--act", "3", "--name", "Leaf", path)
	require.NoError(t, err)

	r := reopen(t, path)
	assert.Equal(t, character.Druid, r.Class())
	assert.Equal(t, "Leaf", r.Name())
	assert.True(t, r.IsHardcore())
	assert.EqualValues(t, 40, r.Level())
	assert.EqualValues(t, 500, r.Stat(stats.Gold))
	diff, act := r.DifficultyLastPlayed()
	assert.Equal(t, character.Nightmare, diff)
	assert.Equal(t, 2, act)
	assert.GreaterOrEqual(t, r.Title(), r.StartingActTitle())

	// a difficulty alone keeps the current act
	_, err = run(t, "--profile", "fast", "set", "--difficulty", "hell", path)
	require.NoError(t, err)
	r = reopen(t, path)
	diff, act = r.DifficultyLastPlayed()
	assert.Equal(t, character.Hell, diff)
	assert.Equal(t, 2, act)

	// turning the expansion off moves the class back
	_, err = run(t, "--profile", "fast", "set", "--expansion", "false", path)
	require.NoError(t, err)
	r = reopen(t, path)
	assert.False(t, r.IsExpansion())
	assert.Equal(t, character.DefaultClass, r.Class())
}

func TestSetRejects(t *testing.T) {
	path := writeCharacter(t, format.V110, character.Amazon)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	for _, args := range [][]string{
		{"--hardcore", "maybe"},
		{"--difficulty", "nightmarish"},
		{"--act", "9"},
		{"--title", "300"},
		{"--class", "Bard"},
		{"--level", "0"},
	} {
		_, err := run(t, append(append([]string{"--profile", "fast", "set"}, args...), path)...)
		assert.Error(t, err, args)
	}
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDryProfileWritesNothing(t *testing.T) {
	path := writeCharacter(t, format.V110, character.Amazon)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	out, err := run(t, "--profile", "dry", "set", "--gold", "42", path)
	require.NoError(t, err)
	assert.Contains(t, out, "not written")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, listFiles(t, filepath.Dir(path)), 1)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
