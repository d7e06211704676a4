// Package store provides country-scoped read/write access to notification
// records behind a single contract, regardless of physical storage. Two
// backends exist: tabular CSV files and an embedded bbolt document database.
//
// I/O failures are handled at the backend boundary: operations degrade to
// empty results instead of propagating faults, and callers probe
// availability through IsConnected before relying on results.
package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regwatch-hq/regwatch-summarizer/internal/domain"
	"github.com/regwatch-hq/regwatch-summarizer/internal/logger"
	"github.com/regwatch-hq/regwatch-summarizer/pkg/sources"
)

// Store is the data-access contract shared by both backends.
type Store interface {
	Close() error

	// IsConnected reports whether the backend reached its source at least
	// once (file presence check or database ping).
	IsConnected() bool

	// ListOptions returns the lightweight dropdown projection for a country,
	// capped at limit entries (backend default when limit <= 0).
	ListOptions(country string, limit int) []domain.Option

	// GetByID resolves one record by its normalized string id.
	GetByID(country, id string) (domain.Notification, bool)

	// SaveSummary persists the summary for the matching record. It reports
	// false when no record matched; the caller treats that as a recoverable
	// condition, never a fatal error.
	SaveSummary(country, id, summary string) bool

	// Insert adds a new record to the partition. Used by the migration path.
	Insert(country string, n domain.Notification) bool

	// All returns every record in the partition, in storage order.
	All(country string) []domain.Notification

	// Stats returns aggregate counts for the partition.
	Stats(country string) domain.Stats
}

// Options controls backend construction.
type Options struct {
	// DataDir holds the tabular source files.
	DataDir string
	// Sources describes per-country file layouts; defaults to the built-in
	// India/USA registry when nil.
	Sources *sources.Registry
	// Path is the bbolt database file.
	Path string
	// OptionLimit caps ListOptions when the caller passes no limit.
	OptionLimit int
	Logger      logger.Logger
}

const (
	defaultFileOptionLimit = 100
	defaultDocOptionLimit  = 1000
)

// NewStore creates the configured storage backend.
func NewStore(typ string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "csv", "file":
		return newCSVStore(opts), nil
	case "bbolt", "document":
		if strings.TrimSpace(opts.Path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(opts.Path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Sources == nil {
		opts.Sources = sources.DefaultRegistry()
	}
	if opts.DataDir == "" {
		opts.DataDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	return opts
}

// normalizeID canonicalizes the string form of a record id. Sources that
// store ids numerically round-trip through forms like "42.0"; those collapse
// to the integer string.
func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if !strings.Contains(id, ".") {
		return id
	}
	f, err := strconv.ParseFloat(id, 64)
	if err != nil {
		return id
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return id
}
