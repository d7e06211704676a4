package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/regwatch-hq/regwatch-summarizer/internal/domain"
	"github.com/regwatch-hq/regwatch-summarizer/internal/logger"
	"github.com/regwatch-hq/regwatch-summarizer/pkg/sources"
)

// csvStore implements Store on top of per-country CSV files. Each partition
// is loaded whole into memory on first access and cached for the process
// lifetime; external edits after load are not observed. Saving rewrites the
// entire partition file, so concurrent writers race.
type csvStore struct {
	dir   string
	reg   *sources.Registry
	limit int
	log   logger.Logger

	mu         sync.Mutex
	partitions map[string]*csvPartition
	ready      bool
}

// csvPartition holds one country's rows: the raw cells for faithful
// rewrites plus the parsed records and an id index.
type csvPartition struct {
	src   sources.Source
	rows  [][]string
	notes []domain.Notification
	byID  map[string][]int
}

func newCSVStore(opts Options) *csvStore {
	limit := opts.OptionLimit
	if limit <= 0 {
		limit = defaultFileOptionLimit
	}
	return &csvStore{
		dir:        opts.DataDir,
		reg:        opts.Sources,
		limit:      limit,
		log:        opts.Logger,
		partitions: make(map[string]*csvPartition),
	}
}

func (s *csvStore) Close() error { return nil }

// IsConnected reports whether any registered source file has been reachable.
// Once ready, the store stays ready for the process lifetime.
func (s *csvStore) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return true
	}
	for _, src := range s.reg.All() {
		if _, err := os.Stat(filepath.Join(s.dir, src.File)); err == nil {
			s.ready = true
			return true
		}
	}
	return false
}

func (s *csvStore) ListOptions(country string, limit int) []domain.Option {
	if limit <= 0 {
		limit = s.limit
	}
	part, ok := s.partition(country)
	if !ok {
		return nil
	}

	if limit > len(part.notes) {
		limit = len(part.notes)
	}
	options := make([]domain.Option, 0, limit)
	for _, n := range part.notes[:limit] {
		options = append(options, domain.Option{
			ID:         n.ID,
			Title:      strings.TrimSpace(n.Title),
			Date:       strings.TrimSpace(n.Date),
			HasSummary: n.HasSummary(),
		})
	}
	return options
}

func (s *csvStore) GetByID(country, id string) (domain.Notification, bool) {
	part, ok := s.partition(country)
	if !ok {
		return domain.Notification{}, false
	}
	rows := part.byID[normalizeID(id)]
	if len(rows) == 0 {
		return domain.Notification{}, false
	}
	return part.notes[rows[0]], true
}

// SaveSummary writes the summary to every row matching the id (source data
// is not guaranteed duplicate-free) and rewrites the partition file. It
// reports false when no row matched or the rewrite failed.
func (s *csvStore) SaveSummary(country, id, summary string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	part, ok := s.partitionLocked(country)
	if !ok {
		return false
	}
	rows := part.byID[normalizeID(id)]
	if len(rows) == 0 {
		return false
	}

	for _, i := range rows {
		part.notes[i].Summary = summary
		part.rows[i] = padRow(part.rows[i], len(part.src.Columns)+1)
		part.rows[i][len(part.src.Columns)] = summary
	}

	if err := s.rewrite(part); err != nil {
		s.log.ErrorObj("csv partition rewrite failed", "csv_error", map[string]any{
			"country": domain.NormalizeCountry(country),
			"file":    part.src.File,
			"error":   err.Error(),
		})
		return false
	}
	return true
}

// Insert appends a record to the partition and rewrites the file. The
// tabular format has no unique-id constraint, matching the source data.
func (s *csvStore) Insert(country string, n domain.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	part, ok := s.partitionLocked(country)
	if !ok {
		return false
	}

	n.ID = normalizeID(n.ID)
	row := make([]string, len(part.src.Columns)+1)
	for i, col := range part.src.Columns {
		switch col {
		case sources.ColumnIndex:
			row[i] = strconv.Itoa(len(part.rows))
		case sources.ColumnID:
			row[i] = n.ID
		case sources.ColumnDate:
			row[i] = n.Date
		case sources.ColumnTitle:
			row[i] = n.Title
		case sources.ColumnURL:
			row[i] = n.URL
		case sources.ColumnText:
			row[i] = n.Text
		}
	}
	row[len(part.src.Columns)] = n.Summary

	if part.src.SynthesizesID() {
		n.ID = strconv.Itoa(len(part.rows))
	}

	idx := len(part.rows)
	part.rows = append(part.rows, row)
	part.notes = append(part.notes, n)
	part.byID[n.ID] = append(part.byID[n.ID], idx)

	if err := s.rewrite(part); err != nil {
		s.log.ErrorObj("csv partition rewrite failed", "csv_error", map[string]any{
			"country": domain.NormalizeCountry(country),
			"file":    part.src.File,
			"error":   err.Error(),
		})
		return false
	}
	return true
}

func (s *csvStore) All(country string) []domain.Notification {
	part, ok := s.partition(country)
	if !ok {
		return nil
	}
	out := make([]domain.Notification, len(part.notes))
	copy(out, part.notes)
	return out
}

func (s *csvStore) Stats(country string) domain.Stats {
	part, ok := s.partition(country)
	if !ok {
		return domain.Stats{}
	}
	stats := domain.Stats{Total: len(part.notes)}
	for _, n := range part.notes {
		if n.HasSummary() {
			stats.WithSummary++
		}
	}
	stats.WithoutSummary = stats.Total - stats.WithSummary
	return stats
}

func (s *csvStore) partition(country string) (*csvPartition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partitionLocked(country)
}

// partitionLocked returns the cached partition, loading it on first access.
// Load failures are not cached so a later call can retry.
func (s *csvStore) partitionLocked(country string) (*csvPartition, bool) {
	key := domain.NormalizeCountry(country)
	if part, ok := s.partitions[key]; ok {
		return part, true
	}

	src, ok := s.reg.ByCountry(key)
	if !ok {
		return nil, false
	}

	part, err := s.loadPartition(src)
	if err != nil {
		s.log.WarnObj("csv partition unavailable", "csv_error", map[string]any{
			"country": key,
			"file":    src.File,
			"error":   err.Error(),
		})
		return nil, false
	}

	s.partitions[key] = part
	s.ready = true
	return part, true
}

func (s *csvStore) loadPartition(src sources.Source) (*csvPartition, error) {
	file, err := os.Open(filepath.Join(s.dir, src.File))
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse source file: %w", err)
	}
	if len(records) > 0 {
		// First row is the header; the registry, not the header, defines
		// the column layout.
		records = records[1:]
	}

	part := &csvPartition{
		src:   src,
		rows:  records,
		notes: make([]domain.Notification, 0, len(records)),
		byID:  make(map[string][]int, len(records)),
	}

	idCol := -1
	if !src.SynthesizesID() {
		idCol = src.ColumnIndexOf(src.IDColumn)
	}
	dateCol := src.ColumnIndexOf(sources.ColumnDate)
	titleCol := src.ColumnIndexOf(sources.ColumnTitle)
	urlCol := src.ColumnIndexOf(sources.ColumnURL)
	textCol := src.ColumnIndexOf(sources.ColumnText)
	summaryCol := len(src.Columns)

	for i, row := range records {
		id := strconv.Itoa(i)
		if idCol >= 0 {
			id = normalizeID(cellAt(row, idCol))
		}
		n := domain.Notification{
			ID:      id,
			Date:    cellAt(row, dateCol),
			Title:   cellAt(row, titleCol),
			URL:     cellAt(row, urlCol),
			Text:    cellAt(row, textCol),
			Summary: cellAt(row, summaryCol),
		}
		part.notes = append(part.notes, n)
		part.byID[id] = append(part.byID[id], i)
	}

	return part, nil
}

// rewrite persists the whole partition back to disk: canonical header first,
// then every row padded to the full width including the summary column.
func (s *csvStore) rewrite(part *csvPartition) error {
	path := filepath.Join(s.dir, part.src.File)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create source file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := append(append([]string(nil), part.src.Columns...), sources.ColumnSummary)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	width := len(part.src.Columns) + 1
	for _, row := range part.rows {
		if err := writer.Write(padRow(row, width)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
