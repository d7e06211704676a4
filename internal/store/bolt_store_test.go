package store

import (
	"testing"

	"github.com/regwatch-hq/regwatch-summarizer/internal/domain"
)

func newTestBoltStore(t *testing.T) Store {
	t.Helper()
	s, err := NewStore("bbolt", Options{Path: t.TempDir() + "/notifications.db"})
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStoreInsertAndGet(t *testing.T) {
	s := newTestBoltStore(t)

	ok := s.Insert("india", domain.Notification{
		ID:    "n-1",
		Date:  "2024-01-02",
		Title: "Circular",
		URL:   "http://a",
		Text:  "Text",
	})
	if !ok {
		t.Fatalf("Insert returned false")
	}

	n, found := s.GetByID("india", "n-1")
	if !found {
		t.Fatalf("GetByID: not found")
	}
	if n.Title != "Circular" || n.Date != "2024-01-02" {
		t.Fatalf("unexpected record: %+v", n)
	}
	if n.CreatedAt == nil || n.UpdatedAt == nil {
		t.Fatalf("document backend must stamp created_at/updated_at")
	}
}

func TestBoltStoreRejectsDuplicateID(t *testing.T) {
	s := newTestBoltStore(t)

	if !s.Insert("india", domain.Notification{ID: "n-1", Title: "first"}) {
		t.Fatalf("first insert failed")
	}
	if s.Insert("india", domain.Notification{ID: "n-1", Title: "second"}) {
		t.Fatalf("duplicate insert should report false")
	}
	n, _ := s.GetByID("india", "n-1")
	if n.Title != "first" {
		t.Fatalf("duplicate insert overwrote the document: %+v", n)
	}
}

func TestBoltStoreSaveSummarySemantics(t *testing.T) {
	s := newTestBoltStore(t)
	s.Insert("usa", domain.Notification{ID: "7", Title: "Rule", Text: "Body"})

	if !s.SaveSummary("usa", "7", "generated summary") {
		t.Fatalf("save for existing id failed")
	}
	n, _ := s.GetByID("usa", "7")
	if n.Summary != "generated summary" {
		t.Fatalf("round-trip summary = %q", n.Summary)
	}

	// Re-saving identical text changes nothing and reports a no-op.
	if s.SaveSummary("usa", "7", "generated summary") {
		t.Fatalf("identical re-save should report false")
	}
	if stats := s.Stats("usa"); stats.WithSummary != 1 {
		t.Fatalf("stats after no-op save: %+v", stats)
	}

	if s.SaveSummary("usa", "missing-id", "text") {
		t.Fatalf("save for missing id should report false")
	}
	if stats := s.Stats("usa"); stats.Total != 1 {
		t.Fatalf("failed save created a record: %+v", stats)
	}
}

func TestBoltStorePartitionsAreIndependent(t *testing.T) {
	s := newTestBoltStore(t)
	s.Insert("india", domain.Notification{ID: "1", Title: "india record"})
	s.Insert("usa", domain.Notification{ID: "1", Title: "usa record"})

	in, _ := s.GetByID("india", "1")
	us, _ := s.GetByID("usa", "1")
	if in.Title == us.Title {
		t.Fatalf("partitions leaked: %q vs %q", in.Title, us.Title)
	}
	if stats := s.Stats("india"); stats.Total != 1 {
		t.Fatalf("india stats: %+v", stats)
	}
}

func TestBoltStoreOptionLimitAndProjection(t *testing.T) {
	s := newTestBoltStore(t)
	s.Insert("india", domain.Notification{ID: "a", Title: "A", Date: "2024-01-01", Summary: "  "})
	s.Insert("india", domain.Notification{ID: "b", Title: "B", Date: "2024-01-02", Summary: "done"})
	s.Insert("india", domain.Notification{ID: "c", Title: "C", Date: "2024-01-03"})

	options := s.ListOptions("india", 2)
	if len(options) != 2 {
		t.Fatalf("limit not applied: %d", len(options))
	}

	all := s.ListOptions("india", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 options, got %d", len(all))
	}
	for _, opt := range all {
		switch opt.ID {
		case "a":
			if opt.HasSummary {
				t.Fatalf("whitespace summary marked HasSummary")
			}
		case "b":
			if !opt.HasSummary {
				t.Fatalf("summary not marked")
			}
		}
		if _, ok := s.GetByID("india", opt.ID); !ok {
			t.Fatalf("listed option %q does not resolve", opt.ID)
		}
	}
}

func TestBoltStoreDisconnectedDegrades(t *testing.T) {
	s, err := NewStore("bbolt", Options{Path: t.TempDir() + "/notifications.db"})
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	s.Insert("india", domain.Notification{ID: "1", Title: "A"})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if s.IsConnected() {
		t.Fatalf("closed store should not report connected")
	}
	if options := s.ListOptions("india", 0); len(options) != 0 {
		t.Fatalf("disconnected store returned options")
	}
	if stats := s.Stats("india"); stats.Total != 0 || stats.WithSummary != 0 || stats.WithoutSummary != 0 {
		t.Fatalf("disconnected store returned stats: %+v", stats)
	}
	if s.SaveSummary("india", "1", "text") {
		t.Fatalf("disconnected store accepted a write")
	}
}
