package app

import (
	"context"
	"fmt"

	"github.com/regwatch-hq/regwatch-summarizer/internal/logger"
	"github.com/regwatch-hq/regwatch-summarizer/internal/store"
)

const migrationProgressEvery = 1000

// Migrator copies every record from a tabular source store into the
// document backend. It is a one-shot batch operation, not part of the live
// serving path.
type Migrator struct {
	src store.Store
	dst store.Store
	log logger.Logger
}

// MigrationResult reports per-country outcome counts.
type MigrationResult struct {
	Country  string
	Total    int
	Migrated int
	Failed   int
}

// NewMigrator builds a migrator between the two stores.
func NewMigrator(src, dst store.Store, log logger.Logger) *Migrator {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Migrator{src: src, dst: dst, log: log}
}

// MigrateCountry copies one country partition record by record. Inserts
// that fail (including duplicate ids in the source) count as failures
// rather than aborting the batch.
func (m *Migrator) MigrateCountry(ctx context.Context, country string) (MigrationResult, error) {
	result := MigrationResult{Country: country}
	if m == nil || m.src == nil || m.dst == nil {
		return result, fmt.Errorf("migrator is not initialized")
	}
	if !m.dst.IsConnected() {
		return result, fmt.Errorf("destination store is not connected")
	}

	records := m.src.All(country)
	result.Total = len(records)
	m.log.InfoObj("migration started", "migration_meta", map[string]any{
		"country": country,
		"records": result.Total,
	})

	for _, n := range records {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if m.dst.Insert(country, n) {
			result.Migrated++
		} else {
			result.Failed++
			m.log.WarnObj("record migration failed", "migration_record", map[string]any{
				"country": country,
				"id":      n.ID,
			})
		}

		if done := result.Migrated + result.Failed; done%migrationProgressEvery == 0 {
			m.log.InfoObj("migration progress", "migration_meta", map[string]any{
				"country":  country,
				"done":     done,
				"migrated": result.Migrated,
				"failed":   result.Failed,
			})
		}
	}

	m.log.InfoObj("migration completed", "migration_meta", map[string]any{
		"country":  country,
		"records":  result.Total,
		"migrated": result.Migrated,
		"failed":   result.Failed,
	})
	return result, nil
}

// MigrateAll migrates every listed country in order.
func (m *Migrator) MigrateAll(ctx context.Context, countries []string) ([]MigrationResult, error) {
	results := make([]MigrationResult, 0, len(countries))
	for _, country := range countries {
		result, err := m.MigrateCountry(ctx, country)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
