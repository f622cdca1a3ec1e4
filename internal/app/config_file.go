package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/hanadict/internal/export"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
    Input string `yaml:"input" json:"input"`

    Output struct {
        Dir      string   `yaml:"dir" json:"dir"`
        Formats  []string `yaml:"formats" json:"formats"`
        XLSX     string   `yaml:"xlsx" json:"xlsx"`
        CSV      string   `yaml:"csv" json:"csv"`
        PDF      string   `yaml:"pdf" json:"pdf"`
        Markdown string   `yaml:"markdown" json:"markdown"`
        JSON     string   `yaml:"json" json:"json"`
    } `yaml:"output" json:"output"`

    XLSX struct {
        Sheet string `yaml:"sheet" json:"sheet"`
    } `yaml:"xlsx" json:"xlsx"`

    PDF struct {
        Title string `yaml:"title" json:"title"`
    } `yaml:"pdf" json:"pdf"`

    Manifest bool `yaml:"manifest" json:"manifest"`
    Verbose  bool `yaml:"verbose" json:"verbose"`

    Server struct {
        Addr           string `yaml:"addr" json:"addr"`
        MaxUploadBytes int64  `yaml:"maxUploadBytes" json:"maxUploadBytes"`
    } `yaml:"server" json:"server"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg, so flags and env keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
    if cfg == nil { return nil }

    if cfg.InputPath == "" { cfg.InputPath = fc.Input }
    if cfg.OutputDir == "" { cfg.OutputDir = fc.Output.Dir }
    if cfg.XLSXPath == "" { cfg.XLSXPath = fc.Output.XLSX }
    if cfg.CSVPath == "" { cfg.CSVPath = fc.Output.CSV }
    if cfg.PDFPath == "" { cfg.PDFPath = fc.Output.PDF }
    if cfg.MarkdownPath == "" { cfg.MarkdownPath = fc.Output.Markdown }
    if cfg.JSONPath == "" { cfg.JSONPath = fc.Output.JSON }
    if len(cfg.Formats) == 0 && len(fc.Output.Formats) > 0 {
        formats, err := ParseFormats(strings.Join(fc.Output.Formats, ","))
        if err != nil {
            return fmt.Errorf("config: output.formats: %w", err)
        }
        cfg.Formats = formats
    }

    if cfg.SheetName == "" { cfg.SheetName = fc.XLSX.Sheet }
    if cfg.Title == "" { cfg.Title = fc.PDF.Title }
    if !cfg.Manifest && fc.Manifest { cfg.Manifest = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }

    if cfg.ServeAddr == "" { cfg.ServeAddr = fc.Server.Addr }
    if cfg.MaxUploadBytes == 0 && fc.Server.MaxUploadBytes > 0 { cfg.MaxUploadBytes = fc.Server.MaxUploadBytes }
    return nil
}

// ValidateConfig performs minimal validation for required settings. The
// input path may be omitted only when serving uploads over HTTP.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.InputPath) == "" && strings.TrimSpace(cfg.ServeAddr) == "" {
        return errors.New("config: input path is required (or set a serve address)")
    }
    if cfg.MaxUploadBytes < 0 {
        return errors.New("config: negative upload limit is not allowed")
    }
    stdout := 0
    for _, p := range []string{cfg.XLSXPath, cfg.CSVPath, cfg.PDFPath, cfg.MarkdownPath, cfg.JSONPath} {
        if p == "-" { stdout++ }
    }
    if stdout > 1 {
        return errors.New("config: only one output may be written to stdout")
    }
    for _, f := range cfg.Formats {
        if _, err := export.ParseFormat(string(f)); err != nil {
            return fmt.Errorf("config: %w", err)
        }
    }
    return nil
}
