package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scrapedoc"
	"github.com/fwojciec/scrapedoc/crawl"
	"github.com/fwojciec/scrapedoc/fs"
	"github.com/fwojciec/scrapedoc/goquery"
	"github.com/fwojciec/scrapedoc/htmltomarkdown"
	sdhttp "github.com/fwojciec/scrapedoc/http"
	"github.com/fwojciec/scrapedoc/readability"
	"github.com/fwojciec/scrapedoc/rod"
	sdslog "github.com/fwojciec/scrapedoc/slog"
	"github.com/fwojciec/scrapedoc/sqlite"
	"github.com/fwojciec/scrapedoc/trafilatura"
	"github.com/fwojciec/scrapedoc/yaml"
)

//go:embed sites.yaml
var defaultCatalog []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// RendererFunc starts the renderer used for dynamic sources.
type RendererFunc func(cfg scrapedoc.Config, logger *slog.Logger) (scrapedoc.Fetcher, error)

// Main represents the program.
type Main struct {
	// History database path. Set before calling Run().
	DBPath string

	// SQLite database backing the record history.
	DB *sqlite.DB

	// NewRenderer starts the dynamic-page renderer. Defaults to headless Chrome.
	NewRenderer RendererFunc
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:      defaultDBPath(),
		NewRenderer: newRodRenderer,
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
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scrapedoc"),
		kong.Description("Scrape blog and guide listings into Markdown records"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scrapedoc --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Catalog, err = loadCatalog(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	switch cmd := kongCtx.Command(); {
	case cmd == "run":
		defer m.Close()
		if err := m.wireRun(deps, &cli.Run); err != nil {
			return err
		}
		defer deps.Scraper.Fetcher.Close()
		if deps.Scraper.Renderer != nil {
			defer deps.Scraper.Renderer.Close()
		}
	case cmd == "history":
		if err := m.openDB(stderr); err != nil {
			return err
		}
		defer m.Close()
		deps.Records = sqlite.NewRecordService(m.DB)
	case strings.HasPrefix(cmd, "convert"):
		deps.Converter = htmltomarkdown.NewConverter(htmltomarkdown.WithLogger(deps.Logger))
	}

	return kongCtx.Run(deps)
}

// wireRun builds the scraping pipeline and the record store for cmd.
func (m *Main) wireRun(deps *Dependencies, cmd *RunCmd) error {
	cfg := deps.Catalog.Config
	logger := deps.Logger

	if cmd.Byline {
		cfg.Byline = true
	}
	if cmd.Out != "" {
		cfg.Output.Dir = cmd.Out
	}
	if cmd.Format != "" {
		cfg.Output.Format = cmd.Format
	}

	store, output, err := newStore(cfg.Output)
	if err != nil {
		return err
	}
	deps.Store = sdslog.NewLoggingRecordStore(store, logger)
	deps.Output = output

	if !cmd.NoHistory {
		if err := m.openDB(deps.Stderr); err != nil {
			return err
		}
		deps.Records = sqlite.NewRecordService(m.DB)
	}

	var fieldOpts []goquery.FieldExtractorOption
	fieldOpts = append(fieldOpts, goquery.WithLogger(logger))
	if fallback := newContentExtractor(cfg.Processing.ContentFallback); fallback != nil {
		fieldOpts = append(fieldOpts, goquery.WithContentExtractor(fallback))
	}
	fields := goquery.NewFieldExtractor(cfg, goquery.NewCleaner(cfg.Processing), fieldOpts...)

	fetcher := sdhttp.NewFetcher(
		sdhttp.WithTimeout(cfg.Request.Timeout),
		sdhttp.WithUserAgent(cfg.Request.UserAgent),
	)

	deps.Scraper = &crawl.Scraper{
		Fetcher:   sdslog.NewLoggingFetcher(fetcher, logger),
		Links:     sdslog.NewLoggingLinkResolver(goquery.NewLinkResolver(), logger),
		Fields:    sdslog.NewLoggingFieldExtractor(fields, logger),
		Converter: sdslog.NewLoggingConverter(htmltomarkdown.NewConverter(htmltomarkdown.WithLogger(logger)), logger),
		Limiter:   crawl.NewDomainLimiter(cfg.PolitenessDelay),
		Retry: crawl.RetryPolicy{
			MaxAttempts: cfg.Request.MaxAttempts,
			BaseDelay:   cfg.Request.RetryDelay,
		},
		Byline: cfg.Byline,
		Logger: logger,
	}

	sites, err := selectSites(deps.Catalog, cmd.Site)
	if err != nil {
		return err
	}
	deps.Catalog = &scrapedoc.Catalog{Config: cfg, Sites: sites}

	// Dynamic sources fall back to static fetching when no browser is available.
	if hasDynamicSource(sites) {
		renderer, err := m.NewRenderer(cfg, logger)
		if err != nil {
			logger.Warn("renderer unavailable, fetching dynamic sources statically", "err", err)
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed to render dynamic sources")
		} else {
			deps.Scraper.Renderer = sdslog.NewLoggingFetcher(renderer, logger)
		}
	}

	return nil
}

func (m *Main) openDB(stderr io.Writer) error {
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		m.DB = nil
		fmt.Fprintf(stderr, "Hint: Set SCRAPEDOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	return nil
}

func loadCatalog(path string) (*scrapedoc.Catalog, error) {
	if path == "" {
		return yaml.LoadCatalog(bytes.NewReader(defaultCatalog))
	}
	return yaml.LoadFile(path)
}

// newStore returns the record store for the configured format and the path
// it writes to.
func newStore(cfg scrapedoc.OutputConfig) (scrapedoc.RecordStore, string, error) {
	switch cfg.Format {
	case "json":
		path := filepath.Join(cfg.Dir, cfg.Filename)
		return fs.NewJSONStore(path, fs.WithPretty(cfg.Pretty)), path, nil
	case "markdown":
		name := strings.TrimSuffix(cfg.Filename, filepath.Ext(cfg.Filename))
		return fs.NewMarkdownStore(cfg.Dir, name), filepath.Join(cfg.Dir, name), nil
	default:
		return nil, "", scrapedoc.Errorf(scrapedoc.EINVALID, "unknown output format %q", cfg.Format)
	}
}

func newContentExtractor(name string) scrapedoc.ContentExtractor {
	switch name {
	case yaml.FallbackTrafilatura:
		return trafilatura.NewExtractor()
	case yaml.FallbackReadability:
		return readability.NewExtractor()
	default:
		return nil
	}
}

func newRodRenderer(cfg scrapedoc.Config, logger *slog.Logger) (scrapedoc.Fetcher, error) {
	f, err := rod.NewFetcher(
		rod.WithFetchTimeout(cfg.Render.Timeout),
		rod.WithViewport(cfg.Render.Width, cfg.Render.Height),
		rod.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// selectSites returns the named sites in the order given, or every site when
// names is empty.
func selectSites(catalog *scrapedoc.Catalog, names []string) ([]scrapedoc.Site, error) {
	if len(names) == 0 {
		return catalog.Sites, nil
	}
	sites := make([]scrapedoc.Site, 0, len(names))
	for _, name := range names {
		site, err := catalog.FindSite(name)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	return sites, nil
}

func hasDynamicSource(sites []scrapedoc.Site) bool {
	for _, site := range sites {
		for _, src := range site.Sources {
			if src.Dynamic {
				return true
			}
		}
	}
	return false
}

func defaultDBPath() string {
	if path := os.Getenv("SCRAPEDOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "scrapedoc.db"
	}
	dir := filepath.Join(home, ".scrapedoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}
