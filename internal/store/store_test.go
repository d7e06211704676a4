package store

import "testing"

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("dynamo", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}

func TestNewStoreBoltRequiresPath(t *testing.T) {
	if _, err := NewStore("bbolt", Options{}); err == nil {
		t.Fatalf("expected error when bbolt path is empty")
	}
}

func TestNewStoreDefaultsToCSV(t *testing.T) {
	s, err := NewStore("", Options{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := s.(*csvStore); !ok {
		t.Fatalf("default backend is %T, want *csvStore", s)
	}
}

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"42":     "42",
		" 42 ":   "42",
		"42.0":   "42",
		"42.5":   "42.5",
		"n-100":  "n-100",
		"1.2.3":  "1.2.3",
		"":       "",
		" abc  ": "abc",
	}
	for in, want := range cases {
		if got := normalizeID(in); got != want {
			t.Fatalf("normalizeID(%q) = %q, want %q", in, got, want)
		}
	}
}
