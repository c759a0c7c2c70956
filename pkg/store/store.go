// Package store is the data-access layer behind the dashboard.
//
// A [Repository] holds the indicator items and the current panel metrics.
// The pipeline, the HTTP server and the terminal dashboard only depend on
// the interface; [Open] picks a backend by driver name:
//
//   - "memory": process-local, used by tests and one-shot CLI runs
//   - "sqlite": a local database file (modernc.org/sqlite, no cgo)
//   - "mongo":  a shared MongoDB deployment
//
// All backends return items in insertion order and apply [filter.Criteria]
// with the same semantics as [filter.Apply].
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// ErrNotFound is returned (wrapped) when an item does not exist.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "item not found")

// Repository stores dashboard items and metrics.
type Repository interface {
	// ListItems returns the items matching c in insertion order.
	ListItems(ctx context.Context, c filter.Criteria) ([]treemap.Item, error)

	// GetItem returns one item. Missing items yield an error wrapping
	// [ErrNotFound].
	GetItem(ctx context.Context, id string) (treemap.Item, error)

	// PutItems inserts or replaces items by ID. New items are appended;
	// replaced items keep their position.
	PutItems(ctx context.Context, items []treemap.Item) error

	// Metrics returns the current panel metrics, zero when none were stored.
	Metrics(ctx context.Context) (panels.Metrics, error)

	// PutMetrics replaces the panel metrics.
	PutMetrics(ctx context.Context, m panels.Metrics) error

	// Close releases backend resources.
	Close() error
}

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is one of memory, sqlite or mongo. Empty selects memory.
	Driver string `mapstructure:"driver" json:"driver"`

	// DSN is the sqlite file path or the mongodb:// URI.
	DSN string `mapstructure:"dsn" json:"dsn"`

	// Database is the MongoDB database name. Defaults to "popdyn".
	Database string `mapstructure:"database" json:"database"`
}

// DefaultMongoDatabase is used when Config.Database is empty.
const DefaultMongoDatabase = "popdyn"

// Open creates the repository described by cfg.
func Open(ctx context.Context, cfg Config) (Repository, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if cfg.DSN == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "sqlite store needs a database path")
		}
		return OpenSQLite(ctx, cfg.DSN)
	case DriverMongo:
		if cfg.DSN == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongo store needs a connection URI")
		}
		db := cfg.Database
		if db == "" {
			db = DefaultMongoDatabase
		}
		return OpenMongo(ctx, cfg.DSN, db)
	}
	return nil, errors.New(errors.ErrCodeUnsupported,
		"unknown store driver %q (must be one of: memory, sqlite, mongo)", cfg.Driver)
}

func notFound(id string) error {
	return fmt.Errorf("item %q: %w", id, ErrNotFound)
}

func storageError(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}

func validateItems(items []treemap.Item) error {
	for _, it := range items {
		if err := errors.ValidateID(it.ID); err != nil {
			return err
		}
		if err := errors.ValidateWeight(it.ID, it.Weight); err != nil {
			return err
		}
	}
	return nil
}
