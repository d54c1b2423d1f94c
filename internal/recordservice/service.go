// Package recordservice coordinates the record store and the index builder
// for the create, reactivate, list-archived and search operations.
package recordservice

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/index"
	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/parser"
	"github.com/starford/recall/internal/storage"
)

// Outcome tells whether a reactivation moved anything.
type Outcome string

const (
	Reactivated   Outcome = "reactivated"
	AlreadyActive Outcome = "already-active"
)

// Service coordinates storage and index operations.
type Service struct {
	store   storage.Provider
	builder index.Rebuilder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new record service.
func NewService(store storage.Provider, builder index.Rebuilder, logger *slog.Logger) *Service {
	return &Service{store: store, builder: builder, logger: logger, now: time.Now}
}

// Create makes a new active record and rebuilds the index.
func (s *Service) Create(name string) (*models.Record, error) {
	rec, err := s.store.Create(name, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("record created", slog.String("record", rec.ID))
	if _, err := s.builder.Rebuild(); err != nil {
		return rec, fmt.Errorf("rebuild index: %w", err)
	}
	return rec, nil
}

// Reactivate moves an archived record back to the active partition. A
// record that is already active is reported as such and left alone.
func (s *Service) Reactivate(name string) (Outcome, error) {
	if name == "" {
		return "", fmt.Errorf("reactivate: record name: %w", apperr.ErrInvalidArgument)
	}
	p, err := s.store.Locate(name)
	if err != nil {
		return "", err
	}
	if p == models.Active {
		return AlreadyActive, nil
	}
	if err := s.store.Relocate(name, models.Archive, models.Active); err != nil {
		return "", err
	}
	// Restart the age clock so the next archive run does not move it back.
	if err := s.store.Touch(name, models.Active, s.now()); err != nil {
		return "", err
	}
	s.logger.Info("record reactivated", slog.String("record", name))
	if _, err := s.builder.Rebuild(); err != nil {
		return Reactivated, fmt.Errorf("rebuild index: %w", err)
	}
	return Reactivated, nil
}

func (s *Service) metadata(r models.Record) (models.Metadata, error) {
	data, err := s.store.ReadSummary(r.ID, r.Partition)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return models.Metadata{}, err
	}
	md := parser.Extract(data)
	md.ID = r.ID
	return md, nil
}

// ListArchived returns the metadata of archived records, newest id first.
func (s *Service) ListArchived() ([]models.Metadata, error) {
	recs, err := s.store.List(models.Archive)
	if err != nil {
		return nil, err
	}
	out := make([]models.Metadata, 0, len(recs))
	for _, r := range recs {
		md, err := s.metadata(r)
		if err != nil {
			return nil, err
		}
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Search returns records of both partitions matching keyword
// case-insensitively. Active hits come first, each partition in
// enumeration order.
func (s *Service) Search(keyword string) ([]models.SearchHit, error) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil, fmt.Errorf("search: keyword: %w", apperr.ErrInvalidArgument)
	}
	var hits []models.SearchHit
	for _, p := range []models.Partition{models.Active, models.Archive} {
		recs, err := s.store.List(p)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			md, err := s.metadata(r)
			if err != nil {
				return nil, err
			}
			field, err := s.match(r, md, needle)
			if err != nil {
				return nil, err
			}
			if field == "" {
				continue
			}
			hits = append(hits, models.SearchHit{
				ID:        r.ID,
				Partition: p,
				Topic:     md.Topic,
				Date:      md.Date,
				MatchedIn: field,
			})
		}
	}
	return hits, nil
}

// match checks the cheap fields first; the full log is read only when
// nothing else matched.
func (s *Service) match(r models.Record, md models.Metadata, needle string) (string, error) {
	switch {
	case strings.Contains(strings.ToLower(r.ID), needle):
		return models.MatchName, nil
	case strings.Contains(strings.ToLower(md.Topic), needle):
		return models.MatchTopic, nil
	case strings.Contains(strings.ToLower(md.Keywords), needle):
		return models.MatchKeywords, nil
	}
	log, err := s.store.ReadFullLog(r.ID, r.Partition)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if strings.Contains(strings.ToLower(string(log)), needle) {
		return models.MatchFullLog, nil
	}
	return "", nil
}

// Read returns the summary document of a record in either partition.
func (s *Service) Read(name string) (models.Partition, []byte, error) {
	p, err := s.store.Locate(name)
	if err != nil {
		return "", nil, err
	}
	data, err := s.store.ReadSummary(name, p)
	if err != nil {
		return "", nil, err
	}
	return p, data, nil
}

// Rebuild regenerates the index from the active partition.
func (s *Service) Rebuild() (*index.Result, error) {
	return s.builder.Rebuild()
}
