package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/regwatch-hq/regwatch-summarizer/internal/config"
	"github.com/regwatch-hq/regwatch-summarizer/internal/domain"
	"github.com/regwatch-hq/regwatch-summarizer/internal/logger"
	"github.com/regwatch-hq/regwatch-summarizer/internal/store"
	"github.com/regwatch-hq/regwatch-summarizer/internal/summarizer"
	"github.com/regwatch-hq/regwatch-summarizer/pkg/events"
	"github.com/regwatch-hq/regwatch-summarizer/pkg/sources"
)

// App is the interactive session runtime. It owns the store backend, the
// summarizer gateway, and the event broadcaster; all three are constructed
// here and live for exactly one session.
type App struct {
	cfg         *config.Config
	store       store.Store
	summarizer  summarizer.Summarizer
	broadcaster *events.Broadcaster
	countries   []string
	log         logger.Logger

	in  io.Reader
	out io.Writer
}

// NewApp wires the session runtime from config.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	srcReg := sources.DefaultRegistry()
	if cfg.SourcesFile != "" {
		loaded, err := sources.LoadRegistry(cfg.SourcesFile)
		if err != nil {
			return nil, fmt.Errorf("load sources registry: %w", err)
		}
		srcReg = loaded
	}
	countries := make([]string, 0, len(srcReg.All()))
	for _, src := range srcReg.All() {
		countries = append(countries, src.Country)
	}

	optionLimit := cfg.FileOptionLimit
	if storageIsDocument(cfg.StorageType) {
		optionLimit = cfg.DocOptionLimit
	}
	st, err := store.NewStore(cfg.StorageType, store.Options{
		DataDir:     cfg.DataDir,
		Sources:     srcReg,
		Path:        cfg.BBoltPath,
		OptionLimit: optionLimit,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":         cfg.StorageType,
		"data_dir":     cfg.DataDir,
		"bbolt_path":   cfg.BBoltPath,
		"option_limit": optionLimit,
		"connected":    st.IsConnected(),
	})

	gen := summarizer.NewGemini(summarizer.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	if !gen.IsAvailable() {
		// Reported once; summary generation stays disabled for the session.
		log.WarnObj("summarizer credential missing, generation disabled", "summarizer_config", map[string]any{
			"model": cfg.GeminiModel,
		})
	}

	broadcaster := events.NewBroadcaster(nil)
	if cfg.EventsFile != "" {
		sinkReg, err := events.LoadRegistry(cfg.EventsFile)
		if err != nil {
			return nil, fmt.Errorf("load event sinks registry: %w", err)
		}
		sinks, err := events.BuildAll(ctx, events.DefaultRegistry(), sinkReg.Enabled(), log)
		if err != nil {
			return nil, fmt.Errorf("build event sinks: %w", err)
		}
		broadcaster = events.NewBroadcaster(sinks)
		log.InfoObj("event sinks loaded", "sinks_meta", map[string]any{
			"count": broadcaster.Size(),
		})
	}

	return &App{
		cfg:         cfg,
		store:       st,
		summarizer:  gen,
		broadcaster: broadcaster,
		countries:   countries,
		log:         log,
		in:          os.Stdin,
		out:         os.Stdout,
	}, nil
}

func storageIsDocument(typ string) bool {
	switch strings.TrimSpace(strings.ToLower(typ)) {
	case "bbolt", "document":
		return true
	}
	return false
}

// Run drives the interactive session until quit or context cancellation.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.store == nil {
		return fmt.Errorf("app is not initialized")
	}
	defer a.closeStore()

	if !a.store.IsConnected() {
		fmt.Fprintln(a.out, "warning: storage backend is not reachable; listings will be empty")
	}
	fmt.Fprintf(a.out, "regulatory notification summarizer (countries: %s)\n", strings.Join(a.countries, ", "))
	fmt.Fprintln(a.out, `type "help" for commands`)

	country := ""
	if len(a.countries) > 0 {
		country = a.countries[0]
		fmt.Fprintf(a.out, "active country: %s\n", country)
	}

	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		select {
		case <-ctx.Done():
			a.log.InfoObj("session exiting", "reason", ctx.Err())
			return nil
		default:
		}

		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg := splitCommand(line)

		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			a.printHelp()
		case "countries":
			fmt.Fprintln(a.out, strings.Join(a.countries, "\n"))
		case "use":
			if arg == "" {
				fmt.Fprintln(a.out, "usage: use <country>")
				continue
			}
			country = domain.NormalizeCountry(arg)
			fmt.Fprintf(a.out, "active country: %s\n", country)
		case "list":
			a.listOptions(country, arg)
		case "show":
			a.showNotification(country, arg)
		case "summarize":
			a.summarize(ctx, country, arg, false)
		case "resummarize":
			a.summarize(ctx, country, arg, true)
		case "stats":
			a.printStats(country)
		default:
			fmt.Fprintf(a.out, "unknown command %q (try \"help\")\n", cmd)
		}
	}
}

func splitCommand(line string) (string, string) {
	fields := strings.SplitN(line, " ", 2)
	cmd := strings.ToLower(strings.TrimSpace(fields[0]))
	arg := ""
	if len(fields) > 1 {
		arg = strings.TrimSpace(fields[1])
	}
	return cmd, arg
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, `commands:
  countries            list available countries
  use <country>        switch the active country
  list [n]             list notification options (✓ marks an existing summary)
  show <id>            print one notification in full
  summarize <id>       generate and persist a summary (skips when one exists)
  resummarize <id>     regenerate and overwrite the summary
  stats                aggregate counts for the active country
  quit                 exit`)
}

func (a *App) listOptions(country, arg string) {
	limit := 0
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			fmt.Fprintln(a.out, "usage: list [n]")
			return
		}
		limit = n
	}

	options := a.store.ListOptions(country, limit)
	if len(options) == 0 {
		fmt.Fprintln(a.out, "no notifications found")
		return
	}
	for _, opt := range options {
		marker := " "
		if opt.HasSummary {
			marker = "✓"
		}
		fmt.Fprintf(a.out, "%s %-12s %-12s %s\n", marker, opt.ID, opt.Date, opt.Title)
	}
}

func (a *App) showNotification(country, id string) {
	if id == "" {
		fmt.Fprintln(a.out, "usage: show <id>")
		return
	}
	n, ok := a.store.GetByID(country, id)
	if !ok {
		fmt.Fprintf(a.out, "notification %q not found\n", id)
		return
	}
	fmt.Fprintf(a.out, "id:    %s\ndate:  %s\ntitle: %s\nurl:   %s\n\n%s\n", n.ID, n.Date, n.Title, n.URL, n.Text)
	if n.HasSummary() {
		fmt.Fprintf(a.out, "\nsummary: %s\n", n.Summary)
	}
}

func (a *App) summarize(ctx context.Context, country, id string, force bool) {
	if id == "" {
		fmt.Fprintln(a.out, "usage: summarize <id>")
		return
	}

	n, ok := a.store.GetByID(country, id)
	if !ok {
		fmt.Fprintf(a.out, "notification %q not found\n", id)
		return
	}
	if n.HasSummary() && !force {
		fmt.Fprintf(a.out, "summary already exists (use \"resummarize %s\" to overwrite):\n%s\n", n.ID, n.Summary)
		return
	}
	if !a.summarizer.IsAvailable() {
		fmt.Fprintln(a.out, "summary generation is disabled: no API key was configured at startup")
		return
	}

	fmt.Fprintln(a.out, "generating summary...")
	summary, err := a.summarizer.Generate(ctx, n.Text, n.Title)
	if err != nil {
		// Nothing was written; the caller may simply retry.
		fmt.Fprintf(a.out, "summary generation failed: %v\n", err)
		return
	}

	if !a.store.SaveSummary(country, n.ID, summary) {
		fmt.Fprintln(a.out, "could not save the summary; please retry")
		return
	}
	fmt.Fprintf(a.out, "summary saved:\n%s\n", summary)

	if a.broadcaster.Size() > 0 {
		evt := events.NewEvent(domain.NormalizeCountry(country), n.ID, n.Title, summary)
		delivered, err := a.broadcaster.Broadcast(ctx, evt)
		if err != nil {
			a.log.WarnObj("event broadcast incomplete", "broadcast_result", map[string]any{
				"delivered": delivered,
				"sinks":     a.broadcaster.Size(),
				"error":     err.Error(),
			})
		}
	}
}

func (a *App) printStats(country string) {
	stats := a.store.Stats(country)
	fmt.Fprintf(a.out, "total: %d  with summary: %d  without summary: %d\n",
		stats.Total, stats.WithSummary, stats.WithoutSummary)
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (a *App) closeStore() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("storage close failed", "error", err)
	}
}
