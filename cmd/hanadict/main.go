package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/hanadict/internal/app"
	"github.com/hyperifyio/hanadict/internal/dictionary"
)

// Exit codes
const (
	exitOK       = 0
	exitFailure  = 1
	exitNoResult = 2
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		cfg         app.Config
		formats     string
		configPath  string
		envFiles    string
		showVersion bool
	)

	flag.StringVar(&cfg.InputPath, "input", "", "Path to the calculation view XML export")
	flag.StringVar(&cfg.XLSXPath, "xlsx", "", "Write the dictionary as XLSX to this path ('-' for stdout)")
	flag.StringVar(&cfg.CSVPath, "csv", "", "Write the dictionary as CSV to this path ('-' for stdout)")
	flag.StringVar(&cfg.PDFPath, "pdf", "", "Write the dictionary as PDF to this path ('-' for stdout)")
	flag.StringVar(&cfg.MarkdownPath, "md", "", "Write the dictionary as a Markdown table to this path ('-' for stdout)")
	flag.StringVar(&cfg.JSONPath, "json", "", "Write the dictionary as JSON to this path ('-' for stdout)")
	flag.StringVar(&formats, "formats", "", "Comma-separated formats written as data_dictionary.<ext> (xlsx,csv,pdf,md,json)")
	flag.StringVar(&cfg.OutputDir, "out.dir", "", "Directory for -formats outputs (default: the input's directory)")
	flag.StringVar(&cfg.SheetName, "sheet", "", "XLSX worksheet name")
	flag.StringVar(&cfg.Title, "title", "", "PDF title")
	flag.BoolVar(&cfg.Manifest, "manifest", false, "Write a <output>.manifest.json sidecar with digests")
	flag.StringVar(&cfg.ServeAddr, "serve", "", "Serve the upload UI on this address (e.g. :8080) instead of converting a file")
	flag.Int64Var(&cfg.MaxUploadBytes, "max.upload", 0, "Maximum upload size in bytes when serving (default 10 MiB)")
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("hanadict %s (%s)\n", app.BuildVersion, app.BuildCommit)
		return
	}

	if strings.TrimSpace(formats) != "" {
		list, err := app.ParseFormats(formats)
		if err != nil {
			log.Error().Err(err).Msg("invalid -formats")
			os.Exit(exitFailure)
		}
		cfg.Formats = list
	}
	// a single positional argument is accepted as the input path
	if cfg.InputPath == "" && flag.NArg() == 1 {
		cfg.InputPath = flag.Arg(0)
	}

	if err := loadConfig(&cfg, configPath, envFiles); err != nil {
		log.Error().Err(err).Msg("load config")
		os.Exit(exitFailure)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// loadConfig layers dotenv files, environment and the config file under the
// values already set from flags.
func loadConfig(cfg *app.Config, configPath, envFiles string) error {
	var paths []string
	for _, p := range strings.Split(envFiles, ",") {
		if s := strings.TrimSpace(p); s != "" {
			paths = append(paths, s)
		}
	}
	if err := app.LoadEnvFiles(paths...); err != nil {
		return err
	}
	app.ApplyEnvToConfig(cfg)
	if configPath == "" {
		configPath = os.Getenv("HANADICT_CONFIG")
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("config file %s: %w", configPath, err)
		}
		if err := app.ApplyFileConfig(cfg, fc); err != nil {
			return err
		}
	}
	return nil
}

// exitCode maps a run error to the process exit status: malformed documents
// and documents without rows are distinguished from operational failures.
func exitCode(err error) int {
	var pe *dictionary.ParseError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &pe), errors.Is(err, app.ErrNoRows):
		return exitNoResult
	default:
		return exitFailure
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	if cfg.ServeAddr != "" {
		return a.Serve(ctx)
	}
	return a.Run(ctx)
}
