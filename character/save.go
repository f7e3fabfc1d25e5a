package character

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/d2s-asset/format"
)

// BackupPolicy selects what a save does with the target file.
type BackupPolicy int

const (
	// NoSave writes nothing.
	NoSave BackupPolicy = iota
	// SaveOnly replaces the target.
	SaveOnly
	// SaveWithBackup copies the existing target aside, then replaces it.
	SaveWithBackup
	// BackupOnly copies the existing target aside and writes nothing else.
	BackupOnly
)

var policyNames = map[BackupPolicy]string{
	NoSave:         "none",
	SaveOnly:       "save",
	SaveWithBackup: "backup",
	BackupOnly:     "backup-only",
}

func (p BackupPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseBackupPolicy resolves a policy by its String form.
func ParseBackupPolicy(s string) (BackupPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return NoSave, fmt.Errorf("unknown backup policy %q", s)
}

// now is replaced in tests.
var now = time.Now

// BackupName returns the backup file name for path at t.
func BackupName(path string, t time.Time) string {
	return fmt.Sprintf("%s.%d.bak", path, t.Unix())
}

// Save writes the character back to the file it was opened from.
func (r *Record) Save(backup bool) error {
	policy := SaveOnly
	if backup {
		policy = SaveWithBackup
	}
	return r.SaveAsD2S(r.path, policy)
}

// SaveAsD2S writes the binary image to path and makes path the record's file.
func (r *Record) SaveAsD2S(path string, policy BackupPolicy) error {
	r.lastErr = nil
	if err := r.requireOpen(); err != nil {
		return err
	}
	if path == "" {
		return r.fail(CannotOpenFile, path, fmt.Errorf("no file name"))
	}
	image, err := r.Serialize()
	if err != nil {
		return r.fail(InvalidHeader, path, err)
	}
	if err := r.writeFile(path, image, policy, FileRenameError); err != nil {
		return err
	}
	if policy == SaveOnly || policy == SaveWithBackup {
		r.path = path
	}
	return nil
}

// SaveAsVersion converts the character to v and writes it to path. The
// record itself keeps its version.
func (r *Record) SaveAsVersion(path string, v format.Version, policy BackupPolicy) error {
	r.lastErr = nil
	out, err := r.ConvertTo(v)
	if err != nil {
		return err
	}
	image, err := out.Serialize()
	if err != nil {
		return r.fail(InvalidHeader, path, err)
	}
	return r.writeFile(path, image, policy, FileRenameError)
}

// SaveAsJSON writes the JSON projection of the character to path.
func (r *Record) SaveAsJSON(path string, shape Shape, policy BackupPolicy) error {
	r.lastErr = nil
	data, err := r.ToJSON(shape)
	if err != nil {
		return r.fail(InvalidHeader, path, err)
	}
	return r.writeFile(path, data, policy, AuxFileRenameError)
}

// writeFile applies policy: an optional best-effort backup of the existing
// file, then a temp file in the target directory renamed over path.
func (r *Record) writeFile(path string, data []byte, policy BackupPolicy, renameKind ErrorKind) error {
	if policy == NoSave {
		return nil
	}
	if policy == SaveWithBackup || policy == BackupOnly {
		r.backup(path)
	}
	if policy == BackupOnly {
		return nil
	}

	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+ksuid.New().String()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return r.fail(CannotOpenFile, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return r.fail(renameKind, path, err)
	}
	r.log.WithFields(logrus.Fields{"path": path, "size": len(data)}).Debug("Saved character")
	return nil
}

// backup copies an existing file aside. Failures are logged and ignored.
func (r *Record) backup(path string) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return
	}
	name := BackupName(path, now())
	if err == nil {
		err = os.WriteFile(name, data, 0o644)
	}
	if err != nil {
		r.log.WithError(err).WithField("path", path).Warn("Failed to back up character")
		return
	}
	r.log.WithField("backup", name).Debug("Backed up character")
}
