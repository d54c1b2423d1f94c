// Package storage defines the record store: record directories and the
// documents inside them.
package storage

import (
	"time"

	"github.com/starford/recall/internal/models"
)

// Provider is the interface for record file operations.
type Provider interface {
	// Create makes a new active record. An empty name is synthesized from now.
	Create(name string, now time.Time) (*models.Record, error)
	// List enumerates the records of partition p in directory order.
	List(p models.Partition) ([]models.Record, error)
	// Locate returns the partition that currently holds name.
	Locate(name string) (models.Partition, error)
	// Relocate moves name from one partition to the other.
	Relocate(name string, from, to models.Partition) error
	// Touch sets the modification time of a record directory.
	Touch(name string, p models.Partition, t time.Time) error
	// ReadSummary returns the summary document of a record.
	ReadSummary(name string, p models.Partition) ([]byte, error)
	// ReadFullLog returns the full-log document of a record.
	ReadFullLog(name string, p models.Partition) ([]byte, error)
	// SummaryPath returns the summary document path of a record.
	SummaryPath(name string, p models.Partition) string
	// WriteFile atomically replaces the file at an absolute path.
	WriteFile(path string, content []byte) error
}
