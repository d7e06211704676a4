package summarizer

import "context"

// Summarizer turns a notification's text into a short generated summary.
type Summarizer interface {
	// Generate produces a summary for the given text, with the title as
	// context. It blocks until the external service responds or errors.
	Generate(ctx context.Context, text, title string) (string, error)

	// IsAvailable reports whether the gateway was initialized with a
	// usable credential. It is decided once at startup, independent of any
	// particular call.
	IsAvailable() bool
}
