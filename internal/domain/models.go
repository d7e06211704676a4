package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared across store backends and the UI layer.

// Notification is one regulatory notification record. ID is unique within a
// (country, backend) partition. CreatedAt/UpdatedAt are populated only by the
// document backend.
type Notification struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Text      string     `json:"text"`
	Summary   string     `json:"summary,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// HasSummary reports whether the record carries a real summary. An empty or
// whitespace-only summary counts as "no summary".
func (n Notification) HasSummary() bool {
	return strings.TrimSpace(n.Summary) != ""
}

// Option is the lightweight projection of a Notification used for list
// rendering.
type Option struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	HasSummary bool   `json:"has_summary"`
}

// Stats holds aggregate counts for one country partition.
type Stats struct {
	Total          int `json:"total"`
	WithSummary    int `json:"with_summary"`
	WithoutSummary int `json:"without_summary"`
}

// NormalizeCountry canonicalizes a country name for partition lookup.
func NormalizeCountry(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}
