// Package textutil normalizes notification text before it is shown or
// sent to the summarization service. Source rows occasionally carry scraped
// HTML fragments rather than plain text.
package textutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tagPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// LooksLikeHTML reports whether the text appears to contain markup.
func LooksLikeHTML(text string) bool {
	return tagPattern.MatchString(text)
}

// Flatten reduces HTML-bearing text to plain text. Plain text passes
// through unchanged apart from whitespace normalization.
func Flatten(text string) string {
	if !LooksLikeHTML(text) {
		return collapseWhitespace(text)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(text)))
	if err != nil {
		return collapseWhitespace(text)
	}
	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

// Truncate shortens text to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

func collapseWhitespace(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}
