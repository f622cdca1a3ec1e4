package app

import "github.com/hyperifyio/hanadict/internal/export"

// Config holds runtime configuration for the application.
type Config struct {
	InputPath string

	// Explicit per-format destinations. "-" writes to standard output.
	XLSXPath     string
	CSVPath      string
	PDFPath      string
	MarkdownPath string
	JSONPath     string

	// Formats written as data_dictionary.<ext> under OutputDir (default: the
	// input's directory) when no explicit path is set for that format.
	Formats   []export.Format
	OutputDir string

	// Presentation
	SheetName string
	Title     string

	// Behavior
	Manifest bool
	Verbose  bool

	// HTTP upload shell
	ServeAddr      string
	MaxUploadBytes int64
}

// DefaultMaxUploadBytes caps a single uploaded document.
const DefaultMaxUploadBytes int64 = 10 << 20

func (c Config) exportOptions() export.Options {
	return export.Options{SheetName: c.SheetName, Title: c.Title}
}
