package app

import (
    "path/filepath"
    "strings"

    "github.com/hyperifyio/hanadict/internal/export"
)

// output is one sink to write: a destination path ("-" for stdout) and its format.
type output struct {
    Path   string
    Format export.Format
}

// resolveOutputs lists the configured sinks in a stable order: explicit
// per-format paths first, then Formats mapped under the output directory.
// A format given both ways is written once, to its explicit path.
func resolveOutputs(cfg Config) []output {
    explicit := []output{
        {cfg.XLSXPath, export.FormatXLSX},
        {cfg.CSVPath, export.FormatCSV},
        {cfg.PDFPath, export.FormatPDF},
        {cfg.MarkdownPath, export.FormatMarkdown},
        {cfg.JSONPath, export.FormatJSON},
    }
    var out []output
    seen := make(map[export.Format]bool)
    for _, o := range explicit {
        if strings.TrimSpace(o.Path) == "" { continue }
        out = append(out, o)
        seen[o.Format] = true
    }
    for _, f := range cfg.Formats {
        if seen[f] { continue }
        seen[f] = true
        out = append(out, output{Path: DefaultOutputPath(cfg, f), Format: f})
    }
    return out
}

// DefaultOutputPath returns <dir>/data_dictionary.<ext>, where dir is the
// configured output directory or the input file's directory.
func DefaultOutputPath(cfg Config, f export.Format) string {
    dir := strings.TrimSpace(cfg.OutputDir)
    if dir == "" {
        dir = filepath.Dir(cfg.InputPath)
    }
    return filepath.Join(dir, f.FileName())
}

// deriveManifestSidecarPath returns a sidecar JSON path next to the output.
func deriveManifestSidecarPath(outputPath string) string {
    return outputPath + ".manifest.json"
}
