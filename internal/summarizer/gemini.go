package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/regwatch-hq/regwatch-summarizer/pkg/httpclient"
	"github.com/regwatch-hq/regwatch-summarizer/pkg/textutil"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash-exp"
	defaultTimeout = 60 * time.Second

	// maxPromptChars caps how much notification text goes into the prompt.
	maxPromptChars = 4000
)

// ErrUnavailable is returned when the gateway was built without a credential.
var ErrUnavailable = errors.New("summarizer is not available (missing API key)")

// GeminiConfig configures the Gemini gateway.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Client  httpclient.Client
}

// Gemini calls the Gemini generateContent REST endpoint.
type Gemini struct {
	client    httpclient.Client
	baseURL   string
	model     string
	apiKey    string
	available bool
}

// NewGemini builds the gateway. Availability is decided here, once, from
// the presence of the API key.
func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = httpclient.NewRestyClient(cfg.Timeout)
	}

	key := strings.TrimSpace(cfg.APIKey)
	return &Gemini{
		client:    cfg.Client,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		apiKey:    key,
		available: key != "",
	}
}

// IsAvailable reports whether a credential was configured at startup.
func (g *Gemini) IsAvailable() bool {
	return g != nil && g.available
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate calls the model with the summarization prompt and returns the
// trimmed summary text.
func (g *Gemini) Generate(ctx context.Context, text, title string) (string, error) {
	if !g.IsAvailable() {
		return "", ErrUnavailable
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(text, title)}}}},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	resp, err := g.client.PostJSON(ctx, url, nil, body)
	if err != nil {
		return "", fmt.Errorf("call generate endpoint: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if resp.StatusCode() >= 300 {
		msg := "unknown error"
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("generate endpoint status %d: %s", resp.StatusCode(), msg)
	}

	for _, cand := range decoded.Candidates {
		for _, p := range cand.Content.Parts {
			if summary := strings.TrimSpace(p.Text); summary != "" {
				return summary, nil
			}
		}
	}
	return "", errors.New("generate response contained no summary text")
}

// buildPrompt assembles the fixed summarization prompt. Notification text is
// flattened to plain text first since some source rows carry scraped HTML.
func buildPrompt(text, title string) string {
	flattened := textutil.Truncate(textutil.Flatten(text), maxPromptChars)

	var b strings.Builder
	b.WriteString("Please provide a concise summary of the following regulatory notification:\n\n")
	b.WriteString("Title: ")
	b.WriteString(strings.TrimSpace(title))
	b.WriteString("\n\nContent: ")
	b.WriteString(flattened)
	b.WriteString("\n\nRequirements:\n")
	b.WriteString("- Summarize in 2-3 sentences\n")
	b.WriteString("- Focus on key regulatory changes or requirements\n")
	b.WriteString("- Use clear, professional language\n")
	b.WriteString("- Highlight important dates or deadlines if mentioned\n")
	return b.String()
}
