package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/hanadict/internal/dictionary"
	"github.com/hyperifyio/hanadict/internal/export"
	"github.com/hyperifyio/hanadict/internal/server"
)

// ErrNoRows is returned when a well-formed document yields no parameters and
// no view columns. The CLI maps it to a non-zero exit.
var ErrNoRows = errors.New("no data found in the XML document")

type App struct {
	cfg Config

	// Out receives stdout-bound output: the Markdown preview when no sink is
	// configured, or a sink whose path is "-".
	Out io.Writer
}

func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &App{cfg: cfg, Out: os.Stdout}, nil
}

// Run extracts the configured input document and writes every configured
// sink. With no sink configured the dictionary is printed as a Markdown table.
func (a *App) Run(ctx context.Context) error {
	input, err := os.ReadFile(a.cfg.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	doc, err := dictionary.ExtractDocument(input)
	if err != nil {
		return fmt.Errorf("extract %s: %w", a.cfg.InputPath, err)
	}
	summary := dictionary.Summarize(doc.Rows)
	log.Info().
		Str("input", a.cfg.InputPath).
		Str("source", doc.SourceEntity).
		Int("parameters", summary.Parameters).
		Int("attributes", summary.Attributes).
		Msg("parsed data dictionary")
	if len(doc.Rows) == 0 {
		log.Warn().Str("input", a.cfg.InputPath).Msg("no data found in the XML document")
		return ErrNoRows
	}

	outputs := resolveOutputs(a.cfg)
	if len(outputs) == 0 {
		return export.WriteMarkdown(a.Out, doc.Rows)
	}

	opts := a.cfg.exportOptions()
	var written []manifestOutput
	for _, o := range outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.Path == "-" {
			if err := export.Write(a.Out, o.Format, doc.Rows, opts); err != nil {
				return fmt.Errorf("write %s to stdout: %w", o.Format, err)
			}
			continue
		}
		start := time.Now()
		if err := export.WriteFile(o.Path, o.Format, doc.Rows, opts); err != nil {
			return err
		}
		log.Info().Str("out", o.Path).Str("format", string(o.Format)).Dur("took", time.Since(start)).Msg("wrote export")
		if a.cfg.Manifest {
			mo, err := describeOutput(o)
			if err != nil {
				return fmt.Errorf("digest %s: %w", o.Path, err)
			}
			written = append(written, mo)
		}
	}

	if a.cfg.Manifest && len(written) > 0 {
		m := manifest{
			Input:        a.cfg.InputPath,
			InputSHA256:  computeSHA256Hex(input),
			SourceEntity: doc.SourceEntity,
			Rows:         summary,
			Outputs:      written,
			Version:      BuildVersion,
			Commit:       BuildCommit,
			GeneratedAt:  time.Now().UTC(),
		}
		data, err := marshalManifestJSON(m)
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		path := deriveManifestSidecarPath(written[0].Path)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		log.Debug().Str("out", path).Msg("wrote manifest")
	}
	return nil
}

// Serve runs the HTTP upload shell until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := server.New(server.Options{
		MaxUploadBytes: a.cfg.MaxUploadBytes,
		Export:         a.cfg.exportOptions(),
	})
	return server.ListenAndServe(ctx, a.cfg.ServeAddr, srv.Handler())
}
