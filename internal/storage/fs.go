package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/workspace"
)

// FS implements Provider on top of a workspace layout.
type FS struct {
	layout *workspace.Layout
}

// NewFS creates a new FS provider for the given layout.
func NewFS(layout *workspace.Layout) *FS {
	return &FS{layout: layout}
}

func (f *FS) dir(name string, p models.Partition) string {
	return f.layout.RecordDir(p, name)
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create makes the record directory in the active partition and writes the
// summary and full-log templates into it.
func (f *FS) Create(name string, now time.Time) (*models.Record, error) {
	if name == "" {
		name = models.NewID(now)
	}
	if !models.ValidID(name) {
		return nil, fmt.Errorf("storage: %q: %w", name, apperr.ErrInvalidName)
	}
	for _, p := range []models.Partition{models.Active, models.Archive} {
		ok, err := exists(f.dir(name, p))
		if err != nil {
			return nil, apperr.WrapIO("stat", f.dir(name, p), err)
		}
		if ok {
			return nil, fmt.Errorf("storage: %s in %s: %w", name, p, apperr.ErrDuplicateRecord)
		}
	}

	dir := f.dir(name, models.Active)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, apperr.WrapIO("mkdir", filepath.Dir(dir), err)
	}
	// Mkdir, not MkdirAll: a concurrent create of the same name must fail.
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("storage: %s: %w", name, apperr.ErrDuplicateRecord)
		}
		return nil, apperr.WrapIO("mkdir", dir, err)
	}
	if err := f.WriteFile(filepath.Join(dir, workspace.SummaryName), renderSummary(now)); err != nil {
		return nil, err
	}
	if err := f.WriteFile(filepath.Join(dir, workspace.FullLogName), renderFullLog(name)); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, apperr.WrapIO("stat", dir, err)
	}
	return &models.Record{ID: name, Partition: models.Active, Dir: dir, ModTime: info.ModTime()}, nil
}

// List returns the records in p. Entries that are not directories or whose
// names do not follow the record id scheme are skipped.
func (f *FS) List(p models.Partition) ([]models.Record, error) {
	base := f.layout.Partition(p)
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.WrapIO("list", base, err)
	}
	var out []models.Record
	for _, e := range entries {
		if !e.IsDir() || !models.ValidID(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, apperr.WrapIO("stat", filepath.Join(base, e.Name()), err)
		}
		out = append(out, models.Record{
			ID:        e.Name(),
			Partition: p,
			Dir:       filepath.Join(base, e.Name()),
			ModTime:   info.ModTime(),
		})
	}
	return out, nil
}

// Locate returns the partition holding name, checking active first.
func (f *FS) Locate(name string) (models.Partition, error) {
	for _, p := range []models.Partition{models.Active, models.Archive} {
		ok, err := exists(f.dir(name, p))
		if err != nil {
			return "", apperr.WrapIO("stat", f.dir(name, p), err)
		}
		if ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("storage: record %s: %w", name, apperr.ErrNotFound)
}

// Relocate renames a record directory from one partition into the other.
// It is a no-op when the record already sits in to and is gone from from.
// A record present in both partitions is left alone and reported as
// ErrDuplicateRecord.
func (f *FS) Relocate(name string, from, to models.Partition) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("storage: relocate %s: bad partition: %w", name, apperr.ErrInvalidArgument)
	}
	if from == to {
		return nil
	}
	src, dst := f.dir(name, from), f.dir(name, to)
	srcOK, err := exists(src)
	if err != nil {
		return apperr.WrapIO("stat", src, err)
	}
	dstOK, err := exists(dst)
	if err != nil {
		return apperr.WrapIO("stat", dst, err)
	}
	switch {
	case srcOK && dstOK:
		return fmt.Errorf("storage: record %s in both %s and %s: %w", name, from, to, apperr.ErrDuplicateRecord)
	case dstOK:
		return nil
	case !srcOK:
		return fmt.Errorf("storage: record %s in %s: %w", name, from, apperr.ErrNotFound)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return apperr.WrapIO("mkdir", filepath.Dir(dst), err)
	}
	if err := os.Rename(src, dst); err != nil {
		return apperr.WrapIO("rename", src, err)
	}
	return nil
}

// Touch sets both access and modification time of the record directory.
func (f *FS) Touch(name string, p models.Partition, t time.Time) error {
	dir := f.dir(name, p)
	if err := os.Chtimes(dir, t, t); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: record %s in %s: %w", name, p, apperr.ErrNotFound)
		}
		return apperr.WrapIO("chtimes", dir, err)
	}
	return nil
}

// SummaryPath returns the summary document path of a record.
func (f *FS) SummaryPath(name string, p models.Partition) string {
	return filepath.Join(f.dir(name, p), workspace.SummaryName)
}

// ReadSummary returns the summary document of a record.
func (f *FS) ReadSummary(name string, p models.Partition) ([]byte, error) {
	return readDoc(f.SummaryPath(name, p))
}

// ReadFullLog returns the full-log document of a record.
func (f *FS) ReadFullLog(name string, p models.Partition) ([]byte, error) {
	return readDoc(filepath.Join(f.dir(name, p), workspace.FullLogName))
}

func readDoc(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: %s: %w", path, apperr.ErrNotFound)
		}
		return nil, apperr.WrapIO("read", path, err)
	}
	return data, nil
}

// WriteFile atomically writes content: tmp file → fsync → rename.
func (f *FS) WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.WrapIO("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".recall-tmp-*")
	if err != nil {
		return apperr.WrapIO("create temp", dir, err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return apperr.WrapIO("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return apperr.WrapIO("fsync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return apperr.WrapIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return apperr.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperr.WrapIO("rename", tmpName, err)
	}
	success = true
	return nil
}

var _ Provider = (*FS)(nil)
