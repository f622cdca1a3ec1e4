package app

import (
    "os"
    "strconv"
    "strings"

    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/hanadict/internal/export"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    setString := func(dst *string, envKey string) {
        if *dst != "" { return }
        *dst = strings.TrimSpace(os.Getenv(envKey))
    }
    setString(&cfg.InputPath, "HANADICT_INPUT")
    setString(&cfg.XLSXPath, "HANADICT_XLSX")
    setString(&cfg.CSVPath, "HANADICT_CSV")
    setString(&cfg.PDFPath, "HANADICT_PDF")
    setString(&cfg.MarkdownPath, "HANADICT_MARKDOWN")
    setString(&cfg.JSONPath, "HANADICT_JSON")
    setString(&cfg.OutputDir, "HANADICT_OUTPUT_DIR")
    setString(&cfg.SheetName, "HANADICT_SHEET")
    setString(&cfg.Title, "HANADICT_TITLE")
    setString(&cfg.ServeAddr, "HANADICT_ADDR")

    // HANADICT_FORMATS is a comma-separated list, e.g. "xlsx,csv"
    if len(cfg.Formats) == 0 {
        if s := strings.TrimSpace(os.Getenv("HANADICT_FORMATS")); s != "" {
            formats, err := ParseFormats(s)
            if err != nil {
                log.Warn().Err(err).Msg("ignoring HANADICT_FORMATS")
            } else {
                cfg.Formats = formats
            }
        }
    }

    if cfg.MaxUploadBytes == 0 {
        if s := strings.TrimSpace(os.Getenv("HANADICT_MAX_UPLOAD")); s != "" {
            if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
                cfg.MaxUploadBytes = n
            }
        }
    }

    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.Manifest, "HANADICT_MANIFEST")
    setBool(&cfg.Verbose, "HANADICT_VERBOSE")
}

// ParseFormats splits a comma-separated format list. Duplicates are dropped.
func ParseFormats(s string) ([]export.Format, error) {
    var out []export.Format
    seen := make(map[export.Format]bool)
    for _, part := range strings.Split(s, ",") {
        p := strings.TrimSpace(part)
        if p == "" { continue }
        f, err := export.ParseFormat(p)
        if err != nil {
            return nil, err
        }
        if seen[f] { continue }
        seen[f] = true
        out = append(out, f)
    }
    return out, nil
}
