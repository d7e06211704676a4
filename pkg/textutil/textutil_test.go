package textutil

import "testing"

func TestFlattenPlainTextPassesThrough(t *testing.T) {
	got := Flatten("A plain   sentence\nwith   spacing.")
	if got != "A plain sentence with spacing." {
		t.Fatalf("Flatten = %q", got)
	}
}

func TestFlattenStripsMarkup(t *testing.T) {
	input := `<div>
  <h1>Notice</h1>
  <p>New <b>filing</b> rules apply.</p>
  <script>alert(1)</script>
</div>`
	got := Flatten(input)
	if got != "Notice New filing rules apply." {
		t.Fatalf("Flatten = %q", got)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if LooksLikeHTML("3 < 5 and 7 > 2") {
		t.Fatalf("comparison operators misdetected as markup")
	}
	if !LooksLikeHTML("<p>hi</p>") {
		t.Fatalf("markup not detected")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate shortened text under the limit: %q", got)
	}
	got := Truncate("abcdefghij", 4)
	if got != "abcd…" {
		t.Fatalf("Truncate = %q", got)
	}
	if Truncate("anything", 0) != "" {
		t.Fatalf("non-positive limit should yield empty text")
	}
}
