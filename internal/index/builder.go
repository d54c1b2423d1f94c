package index

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/checksum"
	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/parser"
	"github.com/starford/recall/internal/storage"
	"github.com/starford/recall/internal/workspace"
)

// Rebuilder is what mutating components need from the index builder.
type Rebuilder interface {
	Rebuild() (*Result, error)
}

// Result describes one rebuild.
type Result struct {
	Records      int      `json:"records"`
	Keywords     []string `json:"keywords"`
	IndexChanged bool     `json:"index_changed"`
	SkillUpdated bool     `json:"skill_updated"`
}

// Builder collects active record metadata and rewrites the index document.
type Builder struct {
	layout *workspace.Layout
	store  storage.Provider
	logger *slog.Logger

	mu sync.Mutex
}

// NewBuilder creates a new index builder.
func NewBuilder(layout *workspace.Layout, store storage.Provider, logger *slog.Logger) *Builder {
	return &Builder{layout: layout, store: store, logger: logger}
}

// Collect extracts the metadata of every active record, newest id first.
// A record without a readable summary keeps the default metadata.
func (b *Builder) Collect() ([]models.Metadata, error) {
	recs, err := b.store.List(models.Active)
	if err != nil {
		return nil, err
	}
	out := make([]models.Metadata, 0, len(recs))
	for _, r := range recs {
		md, err := parser.ExtractFile(b.store.SummaryPath(r.ID, models.Active))
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			b.logger.Warn("index: summary missing", slog.String("record", r.ID))
			md = parser.Extract(nil)
		}
		md.ID = r.ID
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Rebuild regenerates the index document and the skill keyword line.
func (b *Builder) Rebuild() (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := workspace.Ensure(b.layout, Seed); err != nil {
		return nil, err
	}
	records, err := b.Collect()
	if err != nil {
		return nil, fmt.Errorf("index: collect: %w", err)
	}
	keywords := AggregateKeywords(records)
	res := &Result{Records: len(records), Keywords: keywords}

	doc := RenderIndex(records, keywords)
	if !checksum.Same(b.layout.IndexFile(), doc) {
		if err := b.store.WriteFile(b.layout.IndexFile(), doc); err != nil {
			return nil, fmt.Errorf("index: write: %w", err)
		}
		res.IndexChanged = true
	}

	updated, err := b.updateSkill(RenderDescriptionKeywords(keywords))
	if err != nil {
		return nil, err
	}
	res.SkillUpdated = updated

	b.logger.Debug("index: rebuilt",
		slog.Int("records", res.Records),
		slog.Int("keywords", len(keywords)),
		slog.Bool("changed", res.IndexChanged))
	return res, nil
}

func (b *Builder) updateSkill(value string) (bool, error) {
	path := b.layout.SkillFile()
	doc, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			b.logger.Debug("index: skill document absent", slog.String("path", path))
			return false, nil
		}
		return false, apperr.WrapIO("read", path, err)
	}
	out, ok := SpliceDescription(doc, value)
	if !ok {
		b.logger.Warn("index: keyword line not found in skill document", slog.String("path", path))
		return false, nil
	}
	if checksum.Sum(out) == checksum.Sum(doc) {
		return false, nil
	}
	if err := b.store.WriteFile(path, out); err != nil {
		return false, fmt.Errorf("index: write skill: %w", err)
	}
	return true, nil
}

var _ Rebuilder = (*Builder)(nil)
