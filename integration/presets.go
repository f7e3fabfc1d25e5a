// Package integration provides named save profiles. A profile bundles the
// settings that decide how a modified character reaches the disk (backup
// policy, checksum strictness, default JSON shape) so a single --profile flag
// replaces several individual ones.
//
// Usage:
//
//	cfg := integration.SafePreset() // backups and strict checksums
//	cfg := integration.DryPreset()  // run commands without writing
package integration

import (
	"fmt"
	"strings"

	"github.com/rony4d/d2s-asset/character"
)

// PresetConfig captures the settings that vary across profiles.
type PresetConfig struct {
	Name   string                 // identifier used by --profile
	Backup character.BackupPolicy // what a save does with the target file
	Strict bool                   // refuse files with a mismatched checksum
	Shape  character.Shape        // JSON layout for export
}

// DefaultPreset keeps a backup of every file it replaces.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:   "default",
		Backup: character.SaveWithBackup,
		Strict: false,
		Shape:  character.ShapeCompact,
	}
}

// SafePreset also refuses files whose checksum does not verify, so nothing
// is rewritten from a damaged read.
func SafePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "safe"
	cfg.Strict = true
	cfg.Shape = character.ShapeFull
	return cfg
}

// FastPreset replaces files without a backup.
func FastPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "fast"
	cfg.Backup = character.SaveOnly
	return cfg
}

// DryPreset runs every command without writing anything.
func DryPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "dry"
	cfg.Backup = character.NoSave
	return cfg
}

// BackupPreset only copies targets aside.
func BackupPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "backup"
	cfg.Backup = character.BackupOnly
	return cfg
}

// GetPresetByName looks up a preset by its identifier.
func GetPresetByName(name string) (PresetConfig, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "default", "":
		return DefaultPreset(), nil
	case "safe":
		return SafePreset(), nil
	case "fast":
		return FastPreset(), nil
	case "dry":
		return DryPreset(), nil
	case "backup":
		return BackupPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: default, safe, fast, dry, backup)", name)
	}
}

// ApplyPreset merges preset into target. Strictness only ever turns on, so a
// strict config file is not weakened by a lenient profile.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	target.Backup = preset.Backup
	target.Shape = preset.Shape
	target.Strict = target.Strict || preset.Strict
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
