package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/regwatch-hq/regwatch-summarizer/internal/domain"
	"github.com/regwatch-hq/regwatch-summarizer/internal/logger"
	bolt "go.etcd.io/bbolt"
)

const (
	notificationBucketSuffix = "_notifications"
	dateIndexBucketSuffix    = "_date_index"
)

// boltStore implements Store backed by a bbolt document database. Each
// country maps to one bucket keyed by record id (unique by construction)
// with a secondary date index bucket. Documents are stored as JSON and carry
// created_at/updated_at stamps.
type boltStore struct {
	db    *bolt.DB
	limit int
	log   logger.Logger
}

// openBolt initializes the bbolt-backed store. The database file and its
// directory are created when missing.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}

	limit := opts.OptionLimit
	if limit <= 0 {
		limit = defaultDocOptionLimit
	}
	return &boltStore{db: db, limit: limit, log: opts.Logger}, nil
}

// Close closes the underlying database.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// IsConnected probes the database with a no-op read transaction.
func (b *boltStore) IsConnected() bool {
	if b == nil || b.db == nil {
		return false
	}
	return b.db.View(func(*bolt.Tx) error { return nil }) == nil
}

func notificationBucket(country string) []byte {
	return []byte(domain.NormalizeCountry(country) + notificationBucketSuffix)
}

func dateIndexBucket(country string) []byte {
	return []byte(domain.NormalizeCountry(country) + dateIndexBucketSuffix)
}

func (b *boltStore) ListOptions(country string, limit int) []domain.Option {
	if !b.IsConnected() {
		return nil
	}
	if limit <= 0 {
		limit = b.limit
	}

	var options []domain.Option
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(notificationBucket(country))
		if bucket == nil {
			return nil
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil && len(options) < limit; k, v = cursor.Next() {
			var n domain.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			options = append(options, domain.Option{
				ID:         n.ID,
				Title:      n.Title,
				Date:       n.Date,
				HasSummary: n.HasSummary(),
			})
		}
		return nil
	})
	if err != nil {
		b.logError(country, "list options", err)
		return nil
	}
	return options
}

func (b *boltStore) GetByID(country, id string) (domain.Notification, bool) {
	if !b.IsConnected() {
		return domain.Notification{}, false
	}

	var (
		n     domain.Notification
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(notificationBucket(country))
		if bucket == nil {
			return nil
		}
		value := bucket.Get([]byte(normalizeID(id)))
		if value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &n); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		b.logError(country, "get by id", err)
		return domain.Notification{}, false
	}
	return n, found
}

// SaveSummary updates the summary field of the matching document and stamps
// updated_at. It reports false when no document matched or nothing actually
// changed, so re-saving identical text is a no-op "failure"; callers that
// want idempotent success compare against the fetched record first.
func (b *boltStore) SaveSummary(country, id, summary string) bool {
	if !b.IsConnected() {
		return false
	}

	changed := false
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(notificationBucket(country))
		if bucket == nil {
			return nil
		}
		key := []byte(normalizeID(id))
		value := bucket.Get(key)
		if value == nil {
			return nil
		}
		var n domain.Notification
		if err := json.Unmarshal(value, &n); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		if n.Summary == summary {
			return nil
		}
		now := time.Now().UTC()
		n.Summary = summary
		n.UpdatedAt = &now
		doc, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		if err := bucket.Put(key, doc); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		b.logError(country, "save summary", err)
		return false
	}
	return changed
}

// Insert adds a new document. The id acts as the unique key; inserting a
// duplicate id reports false instead of overwriting.
func (b *boltStore) Insert(country string, n domain.Notification) bool {
	if !b.IsConnected() {
		return false
	}

	inserted := false
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(notificationBucket(country))
		if err != nil {
			return fmt.Errorf("init bucket: %w", err)
		}
		dateIdx, err := tx.CreateBucketIfNotExists(dateIndexBucket(country))
		if err != nil {
			return fmt.Errorf("init date index: %w", err)
		}

		n.ID = normalizeID(n.ID)
		key := []byte(n.ID)
		if bucket.Get(key) != nil {
			return nil
		}

		now := time.Now().UTC()
		n.CreatedAt = &now
		n.UpdatedAt = &now
		doc, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		if err := bucket.Put(key, doc); err != nil {
			return err
		}
		if err := dateIdx.Put(dateIndexKey(n.Date, n.ID), key); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		b.logError(country, "insert", err)
		return false
	}
	return inserted
}

func (b *boltStore) All(country string) []domain.Notification {
	if !b.IsConnected() {
		return nil
	}

	var notes []domain.Notification
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(notificationBucket(country))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var n domain.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				return nil
			}
			notes = append(notes, n)
			return nil
		})
	})
	if err != nil {
		b.logError(country, "list all", err)
		return nil
	}
	return notes
}

func (b *boltStore) Stats(country string) domain.Stats {
	if !b.IsConnected() {
		return domain.Stats{}
	}

	var stats domain.Stats
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(notificationBucket(country))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var n domain.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				return nil
			}
			stats.Total++
			if n.HasSummary() {
				stats.WithSummary++
			}
			return nil
		})
	})
	if err != nil {
		b.logError(country, "stats", err)
		return domain.Stats{}
	}
	stats.WithoutSummary = stats.Total - stats.WithSummary
	return stats
}

// dateIndexKey builds the secondary index key: date first so range scans by
// date stay cheap, id appended for uniqueness.
func dateIndexKey(date, id string) []byte {
	return []byte(date + "\x00" + id)
}

func (b *boltStore) logError(country, op string, err error) {
	b.log.WarnObj("document store operation degraded", "store_error", map[string]any{
		"country":   domain.NormalizeCountry(country),
		"operation": op,
		"error":     err.Error(),
	})
}
