// Package sources declares the per-country tabular source registry: which
// file holds a country's notifications and how its columns map onto the
// common record shape.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Column names every source must provide, in some order.
const (
	ColumnIndex   = "index"
	ColumnID      = "id"
	ColumnDate    = "date"
	ColumnTitle   = "title"
	ColumnURL     = "url"
	ColumnText    = "text"
	ColumnSummary = "summary"
)

// Source describes one country partition's file and column layout.
// When IDColumn is empty the record id is synthesized from the row's
// positional index, rendered as a decimal string.
type Source struct {
	Country  string   `json:"country" yaml:"country"`
	File     string   `json:"file" yaml:"file"`
	Columns  []string `json:"columns" yaml:"columns"`
	IDColumn string   `json:"id_column" yaml:"id_column"`
}

// configFile represents the structure of the sources configuration file.
type configFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry materializes source definitions loaded from config files.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

// DefaultRegistry returns the built-in India/USA source layouts.
func DefaultRegistry() *Registry {
	reg, err := newRegistry([]Source{
		{
			Country:  "india",
			File:     "IND_data.csv",
			Columns:  []string{ColumnIndex, ColumnID, ColumnDate, ColumnTitle, ColumnURL, ColumnText},
			IDColumn: ColumnID,
		},
		{
			Country: "usa",
			File:    "USA_data.csv",
			Columns: []string{ColumnIndex, ColumnDate, ColumnTitle, ColumnURL, ColumnText},
		},
	})
	if err != nil {
		// Built-in layouts are validated by tests; this is unreachable.
		panic(err)
	}
	return reg
}

// LoadRegistry loads the source registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Sources) == 0 {
		return nil, errors.New("sources file contains no source entries")
	}
	return newRegistry(fileReg.Sources)
}

func newRegistry(entries []Source) (*Registry, error) {
	reg := &Registry{
		sources: make([]Source, 0, len(entries)),
		idx:     make(map[string]Source, len(entries)),
	}
	for i := range entries {
		src := sanitizeSource(entries[i])
		if err := validateSource(src); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[src.Country]; exists {
			return nil, fmt.Errorf("duplicate source country %q", src.Country)
		}
		reg.sources = append(reg.sources, src)
		reg.idx[src.Country] = src
	}
	return reg, nil
}

// parseRegistry attempts to decode the sources file content.
func parseRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yamlUnmarshal},
		{name: "yaml", ext: ".yml", fn: yamlUnmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func yamlUnmarshal(data []byte, out any) error {
	return yaml.Unmarshal(data, out)
}

// sanitizeSource trims and normalizes the source fields.
func sanitizeSource(src Source) Source {
	src.Country = strings.ToLower(strings.TrimSpace(src.Country))
	src.File = strings.TrimSpace(src.File)
	src.IDColumn = strings.ToLower(strings.TrimSpace(src.IDColumn))
	cols := make([]string, 0, len(src.Columns))
	for _, c := range src.Columns {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			cols = append(cols, c)
		}
	}
	src.Columns = cols
	return src
}

// validateSource checks that required fields are present.
func validateSource(src Source) error {
	if src.Country == "" {
		return errors.New("country is required")
	}
	if src.File == "" {
		return fmt.Errorf("file is required for source %q", src.Country)
	}
	required := []string{ColumnIndex, ColumnDate, ColumnTitle, ColumnURL, ColumnText}
	for _, want := range required {
		if src.ColumnIndexOf(want) < 0 {
			return fmt.Errorf("source %q is missing column %q", src.Country, want)
		}
	}
	if src.IDColumn != "" && src.ColumnIndexOf(src.IDColumn) < 0 {
		return fmt.Errorf("source %q declares id_column %q not present in columns", src.Country, src.IDColumn)
	}
	return nil
}

// ColumnIndexOf returns the position of the named column, or -1.
func (s Source) ColumnIndexOf(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// SynthesizesID reports whether record ids come from row position rather
// than a source column.
func (s Source) SynthesizesID() bool {
	return s.IDColumn == ""
}

// ByCountry returns the source entry for the given country, if present.
func (r *Registry) ByCountry(country string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}

	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.idx[country]
	return src, ok
}

// All returns all configured sources.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}
