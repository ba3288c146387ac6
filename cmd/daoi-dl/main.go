package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/QuesoDad/DownloadAllOfIt/internal/batch"
	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	"github.com/QuesoDad/DownloadAllOfIt/internal/diag"
	"github.com/QuesoDad/DownloadAllOfIt/internal/download"
	"github.com/QuesoDad/DownloadAllOfIt/internal/ledger"
	"github.com/QuesoDad/DownloadAllOfIt/internal/model"
	"github.com/QuesoDad/DownloadAllOfIt/internal/resolve"
	"github.com/QuesoDad/DownloadAllOfIt/internal/ytdlp"
)

func main() {
	// Command line flags
	var (
		urlsFlag    = flag.String("url", "", "Video or playlist URL(s), comma- or newline-separated")
		outputFlag  = flag.String("output", "", "Output directory (overrides config)")
		configFlag  = flag.String("config", "", "Path to config file")
		formatFlag  = flag.String("format", "", "Output format: mp4, mkv or mp3 (overrides config)")
		qualityFlag = flag.String("quality", "", "Format selector passed to the engine (overrides config)")
		subsFlag    = flag.Bool("subs", false, "Download subtitles")
		yearsFlag   = flag.Bool("years", false, "Sort downloads into year subfolders")
		cookiesFlag = flag.String("cookies", "", "Path to a cookies file for restricted videos")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag  = flag.Bool("dry-run", false, "Resolve URLs without downloading")
	)

	flag.Parse()

	if *urlsFlag == "" && flag.NArg() == 0 {
		fmt.Println("Download All Of It - batch video downloader")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  daoi-dl -url <URL> [options]")
		fmt.Println("  daoi-dl <URL> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: daoi-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *formatFlag != "" {
		settings.OutputFormat = *formatFlag
	}
	if *qualityFlag != "" {
		settings.DownloadQuality = *qualityFlag
	}
	if *subsFlag {
		settings.DownloadSubtitles = true
	}
	if *yearsFlag {
		settings.UseYearSubfolders = true
	}
	if *cookiesFlag != "" {
		settings.CookiesFile = *cookiesFlag
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	urls := *urlsFlag
	if urls == "" && flag.NArg() > 0 {
		urls = strings.Join(flag.Args(), "\n")
	}
	rawURLs := splitURLs(urls)

	// Preconditions are fatal, not per-item.
	tools, err := diag.NewChecker().Check(settings.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := ledger.Open(settings.LedgerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := ytdlp.NewEngine(tools.YtDlpPath, settings)
	resolver := resolve.NewResolver(engine)
	if *verboseFlag {
		resolver.OnInfo = func(msg string) { fmt.Println("   " + msg) }
	}

	fmt.Println("Download All Of It")
	fmt.Println(strings.Repeat("━", 40))
	fmt.Println()

	if *dryRunFlag {
		result := resolver.Resolve(ctx, rawURLs, nil)
		fmt.Printf("Resolved %d video(s):\n", len(result.Items))
		for _, item := range result.Items {
			fmt.Println("  " + item.URL)
		}
		printFailures(result.Failures)
		return
	}

	var failed []string
	orchestrator := batch.NewOrchestrator(resolver, nil, func(event batch.Event) {
		switch event.Type {
		case batch.EventStatus:
			if event.Level == download.LevelVerbose && !*verboseFlag {
				return
			}
			fmt.Println(levelPrefix(event.Level) + event.Message)
		case batch.EventCurrentItem:
			fmt.Printf("\n[%d/%d] %s\n", event.Completed+1, event.Total, event.Title)
		case batch.EventItemProgress:
			fmt.Printf("\r   %.1f%%", event.Percent)
			if event.Percent >= 100 {
				fmt.Println()
			}
		case batch.EventFailures:
			printFailures(event.Failures)
			for _, f := range event.Failures {
				failed = append(failed, f.URL)
			}
		}
	})
	executor := download.NewExecutor(settings, engine, store,
		tools.FFmpegPath, settings.OutputDir, orchestrator.ExecutorCallbacks())
	orchestrator.Bind(executor)

	// SIGINT requests a clean stop; the batch still emits its final
	// failure summary.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, stopping after current item...")
		orchestrator.Stop()
	}()

	if err := orchestrator.Run(ctx, rawURLs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(failed) > 0 {
		fmt.Println("\nRe-run the failed URLs with:")
		fmt.Printf("  daoi-dl -url %q\n", strings.Join(failed, ","))
	}
	if orchestrator.Stopped() {
		os.Exit(130)
	}
}

// splitURLs accepts comma- or newline-separated input.
func splitURLs(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var urls []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

func printFailures(failures []model.FailureRecord) {
	if len(failures) == 0 {
		return
	}
	fmt.Printf("\n%d item(s) could not be downloaded:\n", len(failures))
	for _, f := range failures {
		fmt.Println("  " + f.String())
	}
}

func levelPrefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return "✗ "
	case download.LevelWarning:
		return "! "
	case download.LevelSuccess:
		return "✓ "
	case download.LevelInfo:
		return "› "
	default:
		return "  "
	}
}
