// Package workspace locates the workspace root and derives the fixed
// record-store paths beneath it.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/models"
)

// Marker is the directory whose presence identifies a workspace root.
const Marker = ".claude"

// Fixed names below the marker directory.
const (
	recordsDir  = "memory"
	activeDir   = "active"
	archiveDir  = "archive"
	indexName   = "INDEX.md"
	configName  = "config.yaml"
	SummaryName = "summary.md"
	FullLogName = "full-log.md"
)

var skillPath = []string{"skills", "memory", "SKILL.md"}

// Layout holds the resolved workspace root. All paths are computed on
// demand from Root.
type Layout struct {
	Root string
}

// New builds a Layout for an explicit root. The marker directory must exist.
func New(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	if !hasMarker(abs) {
		return nil, fmt.Errorf("workspace: %s has no %s directory: %w", abs, Marker, apperr.ErrConfiguration)
	}
	return &Layout{Root: abs}, nil
}

// Find searches start and its ancestors for the marker directory.
func Find(start string) (*Layout, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve start: %w", err)
	}
	for {
		if hasMarker(dir) {
			return &Layout{Root: dir}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("workspace: no %s directory above %s: %w", Marker, start, apperr.ErrConfiguration)
		}
		dir = parent
	}
}

func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, Marker))
	return err == nil && info.IsDir()
}

// RecordsRoot is the directory holding the index and both partitions.
func (l *Layout) RecordsRoot() string {
	return filepath.Join(l.Root, Marker, recordsDir)
}

// Active is the active partition directory.
func (l *Layout) Active() string {
	return filepath.Join(l.RecordsRoot(), activeDir)
}

// Archive is the archive partition directory.
func (l *Layout) Archive() string {
	return filepath.Join(l.RecordsRoot(), archiveDir)
}

// Partition returns the directory for p.
func (l *Layout) Partition(p models.Partition) string {
	if p == models.Archive {
		return l.Archive()
	}
	return l.Active()
}

// IndexFile is the generated index document.
func (l *Layout) IndexFile() string {
	return filepath.Join(l.RecordsRoot(), indexName)
}

// ConfigFile is the optional per-workspace configuration file.
func (l *Layout) ConfigFile() string {
	return filepath.Join(l.RecordsRoot(), configName)
}

// SkillFile is the external metadata document whose keyword line is
// rewritten on every rebuild.
func (l *Layout) SkillFile() string {
	return filepath.Join(append([]string{l.Root, Marker}, skillPath...)...)
}

// RecordDir is the directory of record id inside partition p.
func (l *Layout) RecordDir(p models.Partition, id string) string {
	return filepath.Join(l.Partition(p), id)
}

// Ensure creates any missing directories and, if the index document does
// not exist yet, writes seed() to it. It is safe to call before every
// mutating operation.
func Ensure(l *Layout, seed func() []byte) error {
	for _, dir := range []string{l.RecordsRoot(), l.Active(), l.Archive()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.WrapIO("mkdir", dir, err)
		}
	}
	if _, err := os.Stat(l.IndexFile()); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return apperr.WrapIO("stat", l.IndexFile(), err)
	}
	if seed == nil {
		return nil
	}
	if err := os.WriteFile(l.IndexFile(), seed(), 0o644); err != nil {
		return apperr.WrapIO("write", l.IndexFile(), err)
	}
	return nil
}
