package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/distill"
	"github.com/fwojciec/distill/crawl"
	"github.com/fwojciec/distill/goquery"
	distillhttp "github.com/fwojciec/distill/http"
	"github.com/fwojciec/distill/rod"
	distillslog "github.com/fwojciec/distill/slog"
	"github.com/fwojciec/distill/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when --db and DISTILL_DB are unset.
	DBPath string

	// Document source when no --url is given.
	Stdin io.Reader

	// SQLite database, opened only by commands that need it.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  m.Stdin,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("distill"),
		kong.Description("Extract structured records from HTML with CSS selector templates"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided. Run 'distill --help' for usage")
	}
	if len(args) == 1 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	needsDB := cmd == "runs" || cmd == "show" || cmd == "delete" || (cmd == "extract" && cli.Extract.Save)
	if needsDB {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set DISTILL_DB or --db to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()
		deps.Runs = distillslog.NewLoggingRunService(sqlite.NewRunService(m.DB), deps.Logger)
	}

	if cmd == "extract" {
		crawler, closeFn, err := newCrawler(&cli.Extract, deps)
		if err != nil {
			return err
		}
		defer closeFn()
		deps.Crawler = crawler
	}

	return kongCtx.Run(deps)
}

// newCrawler wires the fetch and extraction pipeline for the extract
// command. The browser or HTTP client is only created when URLs are given.
func newCrawler(c *ExtractCmd, deps *Dependencies) (*crawl.Crawler, func(), error) {
	logger := deps.Logger
	crawler := &crawl.Crawler{
		Extractor:   distillslog.NewLoggingExtractor(goquery.NewExtractor(), logger),
		Runs:        deps.Runs,
		Concurrency: c.Concurrency,
		RetryDelays: crawl.RetryDelays(c.Retries),
		OnRetry: func(url string, attempt int, err error) {
			logger.Warn("retry", "url", url, "attempt", attempt, "err", err)
		},
	}
	if c.Rate > 0 {
		crawler.RateLimiter = crawl.NewDomainLimiter(c.Rate, 1)
	}

	if len(c.URL) == 0 {
		return crawler, func() {}, nil
	}

	var fetcher distill.Fetcher
	if c.Render {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = distillhttp.NewFetcher(distillhttp.WithTimeout(c.Timeout))
	}
	crawler.Fetcher = distillslog.NewLoggingFetcher(fetcher, logger)

	return crawler, func() { _ = crawler.Fetcher.Close() }, nil
}

// newLogger returns a text logger on w when verbose, otherwise a logger
// that discards everything.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "distill.db"
	}
	dir := filepath.Join(home, ".distill")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "distill.db")
}
