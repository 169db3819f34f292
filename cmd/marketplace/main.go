package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marketplace/internal/catalog"
	"marketplace/internal/config"
	"marketplace/internal/detail"
	"marketplace/internal/dummyjson"
	"marketplace/internal/logging"
	"marketplace/internal/logs"
	"marketplace/internal/tui"
)

func main() {
	var serve, tuiMode, help bool
	var addr string
	var logHours int
	var opts cliOptions

	flag.BoolVar(&serve, "serve", false, "Run HTTP server mode")
	flag.StringVar(&addr, "addr", ":8080", "Address to bind in server mode")
	flag.BoolVar(&tuiMode, "tui", false, "Browse the catalog in the terminal")
	flag.StringVar(&opts.Search, "q", "", "Search term for title, description, category and brand")
	flag.StringVar(&opts.Category, "category", "", "Only show this category")
	flag.StringVar(&opts.Brand, "brand", "", "Only show this brand")
	flag.IntVar(&opts.Page, "page", 1, "Page of the filtered list")
	flag.IntVar(&opts.ID, "id", 0, "Show the details of one product")
	flag.IntVar(&logHours, "logs", 0, "Print the last N hours of logs from the blob log sink")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.BoolVar(&help, "h", false, "Show help message")
	flag.Parse()

	if help {
		showHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	var logOut io.Writer = os.Stderr
	if tuiMode && cfg.Logging.File == "" {
		// the terminal belongs to the UI
		logOut = io.Discard
	}
	shutdownLogs, err := logging.Setup(ctx, cfg, logOut)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer func() {
		if err := shutdownLogs(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}()

	if logHours > 0 {
		if err := printLogs(ctx, os.Stdout, cfg, logHours); err != nil {
			log.Fatalf("failed to read logs: %v", err)
		}
		return
	}

	api, err := newAPI(cfg)
	if err != nil {
		log.Fatalf("failed to create catalog client: %v", err)
	}

	switch {
	case serve:
		err = runServer(cfg, api, addr)
	case tuiMode:
		err = runTUI(ctx, cfg, api)
	default:
		store := catalog.NewStore(api, nil, 0)
		err = runCLI(ctx, os.Stdout, store, api, opts, cfg.UI.PageSize)
	}
	if err != nil {
		// log.Fatalf would skip the deferred flush
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = shutdownLogs(context.Background())
		os.Exit(1)
	}
}

// api is the catalog source every surface reads from.
type api interface {
	catalog.Fetcher
	detail.Fetcher
	Ready(ctx context.Context) error
}

func newAPI(cfg *config.Config) (api, error) {
	if cfg.Mocks.Enable {
		return dummyjson.NewMock(), nil
	}
	client, err := dummyjson.NewClient(cfg.Catalog, nil)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func runTUI(ctx context.Context, cfg *config.Config, api api) error {
	store := catalog.NewStore(api, nil, 0)
	p := tea.NewProgram(tui.New(ctx, store, api, cfg.UI), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

func showHelp() {
	fmt.Println("Marketplace - product catalog browser")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  marketplace [-q term] [-category c] [-brand b] [-page n]")
	fmt.Println("  marketplace -id <product id>")
	fmt.Println("  marketplace -tui")
	fmt.Println("  marketplace -serve [-addr :8080]")
	fmt.Println("  marketplace -logs 24")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -q          Search term")
	fmt.Println("  -category   Filter by category")
	fmt.Println("  -brand      Filter by brand")
	fmt.Println("  -page       Page of the filtered list (default 1)")
	fmt.Println("  -id         Show one product's details")
	fmt.Println("  -tui        Browse in the terminal")
	fmt.Println("  -serve      Run the web storefront")
	fmt.Println("  -addr       Address to bind in server mode")
	fmt.Println("  -logs N     Print the last N hours of logs from blob storage")
	fmt.Println("  -help, -h   Show this help message")
}

func printLogs(ctx context.Context, w io.Writer, cfg *config.Config, hours int) error {
	reader, err := logs.NewReader(cfg.Azure)
	if err != nil {
		return err
	}
	now := time.Now()
	entries, err := reader.Since(ctx, now.Add(-time.Duration(hours)*time.Hour), now)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(w, e.String())
	}
	return nil
}
