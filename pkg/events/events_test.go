package events

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSinksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sinks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sinks file: %v", err)
	}
	return path
}

func TestLoadRegistryParsesAndSanitizes(t *testing.T) {
	path := writeSinksFile(t, `sinks:
  - id: "  hook  "
    type: HTTP
    http:
      url: " https://example.test/sink "
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.test/q
      region: us-east-1
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	hook, ok := reg.ByID("hook")
	if !ok {
		t.Fatalf("hook sink not indexed by trimmed id")
	}
	if hook.Type != TypeHTTP {
		t.Fatalf("type not lower-cased: %q", hook.Type)
	}
	if hook.HTTP.URL != "https://example.test/sink" {
		t.Fatalf("url not trimmed: %q", hook.HTTP.URL)
	}
	if hook.HTTP.Method != httpDefaultMethod || hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %+v", hook.HTTP)
	}

	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "hook" {
		t.Fatalf("Enabled should exclude the disabled queue sink: %+v", enabled)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"missing id": `sinks:
  - type: http
    http: {url: https://x}
`,
		"missing type": `sinks:
  - id: a
`,
		"http without url": `sinks:
  - id: a
    type: http
    http: {}
`,
		"sqs without region": `sinks:
  - id: a
    type: sqs
    sqs: {uri: https://x}
`,
		"sns without topic": `sinks:
  - id: a
    type: sns
    sns: {region: us-east-1}
`,
		"pubsub without topic": `sinks:
  - id: a
    type: pubsub
    pubsub: {project_id: p}
`,
		"duplicate id": `sinks:
  - id: a
    type: http
    http: {url: https://x}
  - id: a
    type: http
    http: {url: https://y}
`,
	}

	for name, content := range cases {
		path := writeSinksFile(t, content)
		if _, err := LoadRegistry(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestRegistryBuildsKnownTypes(t *testing.T) {
	reg := DefaultRegistry()
	if _, err := reg.SinkFor(nil, SinkConfig{ID: "x", Type: "carrier-pigeon"}, nil); err == nil {
		t.Fatalf("expected error for unknown sink type")
	}

	sink, err := reg.SinkFor(nil, sanitizeSinkConfig(SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{URL: "https://example.test"},
	}), nil)
	if err != nil {
		t.Fatalf("SinkFor http: %v", err)
	}
	if sink.ID() != "hook" || sink.Type() != TypeHTTP {
		t.Fatalf("sink identity: %s/%s", sink.ID(), sink.Type())
	}
}
