// Package testutil provides shared test helpers for setting up workspaces
// and records.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/storage"
	"github.com/starford/recall/internal/workspace"
)

// TestWorkspace creates a temporary workspace with its partitions in place.
func TestWorkspace(t *testing.T) (*workspace.Layout, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, workspace.Marker), 0o755); err != nil {
		t.Fatal(err)
	}
	layout, err := workspace.New(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := workspace.Ensure(layout, nil); err != nil {
		t.Fatal(err)
	}
	return layout, storage.NewFS(layout)
}

// Summary renders a filled-in summary document.
func Summary(topic, keywords, date string) string {
	return "# Memory Summary\n\n## Topic\n" + topic +
		"\n\n**Keywords**: " + keywords +
		"\n**Time**: " + date +
		"\n\n## Key Points\n- something happened\n"
}

// WriteRecord creates record id in partition p with the given summary and
// full-log bodies, and sets its directory mtime to modTime when non-zero.
func WriteRecord(t *testing.T, layout *workspace.Layout, p models.Partition, id, summary, fullLog string, modTime time.Time) {
	t.Helper()
	dir := layout.RecordDir(p, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, workspace.SummaryName), []byte(summary), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, workspace.FullLogName), []byte(fullLog), 0o644); err != nil {
		t.Fatal(err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(dir, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}
}
