package app

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/hyperifyio/hanadict/internal/export"
)

// This test verifies that LoadEnvFiles reads KEY=VALUE pairs and populates os.Environ.
func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
    t.Setenv("FOO", "")
    t.Setenv("BAR", "")

    dir := t.TempDir()
    envPath := filepath.Join(dir, ".env.test")
    content := "\n# sample dotenv file\nFOO=alpha\nexport BAR='beta'\nmalformed\n"
    if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
        t.Fatalf("write dotenv: %v", err)
    }

    if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
        t.Fatalf("LoadEnvFiles error: %v", err)
    }
    if got := os.Getenv("FOO"); got != "alpha" {
        t.Fatalf("FOO=%q, want alpha", got)
    }
    if got := os.Getenv("BAR"); got != "beta" {
        t.Fatalf("BAR=%q, want beta", got)
    }
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
    t.Setenv("K", "")
    dir := t.TempDir()
    a := filepath.Join(dir, ".env.a")
    b := filepath.Join(dir, ".env.b")
    if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil { t.Fatalf("write a: %v", err) }
    if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil { t.Fatalf("write b: %v", err) }

    if err := LoadEnvFiles(a, b); err != nil {
        t.Fatalf("LoadEnvFiles error: %v", err)
    }
    if got := os.Getenv("K"); got != "second" {
        t.Fatalf("override order failed: got %q, want second", got)
    }
}

func TestApplyEnvToConfig_FillsOnlyUnset(t *testing.T) {
    t.Setenv("HANADICT_INPUT", "env.xml")
    t.Setenv("HANADICT_CSV", "env.csv")
    t.Setenv("HANADICT_FORMATS", "xlsx, pdf,xlsx")
    t.Setenv("HANADICT_MAX_UPLOAD", "2048")
    t.Setenv("HANADICT_MANIFEST", "yes")

    cfg := Config{InputPath: "flag.xml"}
    ApplyEnvToConfig(&cfg)
    if cfg.InputPath != "flag.xml" {
        t.Fatalf("explicit input overwritten: %q", cfg.InputPath)
    }
    if cfg.CSVPath != "env.csv" || cfg.MaxUploadBytes != 2048 || !cfg.Manifest {
        t.Fatalf("env not applied: %+v", cfg)
    }
    if len(cfg.Formats) != 2 || cfg.Formats[0] != export.FormatXLSX || cfg.Formats[1] != export.FormatPDF {
        t.Fatalf("formats=%v", cfg.Formats)
    }
}

func TestLoadConfigFile_YAMLAndOverlay(t *testing.T) {
    dir := t.TempDir()
    p := filepath.Join(dir, "hanadict.yaml")
    content := `input: views/CV_SALES.xml
output:
  dir: dist
  formats: [xlsx, csv]
  pdf: dist/sales.pdf
xlsx:
  sheet: Sales
pdf:
  title: CV_SALES
manifest: true
server:
  addr: ":8080"
  maxUploadBytes: 4096
`
    if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
        t.Fatalf("write config: %v", err)
    }
    fc, err := LoadConfigFile(p)
    if err != nil { t.Fatalf("load: %v", err) }

    cfg := Config{InputPath: "flag.xml"}
    if err := ApplyFileConfig(&cfg, fc); err != nil { t.Fatalf("apply: %v", err) }
    if cfg.InputPath != "flag.xml" {
        t.Fatalf("flag input should win, got %q", cfg.InputPath)
    }
    if cfg.OutputDir != "dist" || cfg.PDFPath != "dist/sales.pdf" || cfg.SheetName != "Sales" || cfg.Title != "CV_SALES" {
        t.Fatalf("cfg=%+v", cfg)
    }
    if !cfg.Manifest || cfg.ServeAddr != ":8080" || cfg.MaxUploadBytes != 4096 {
        t.Fatalf("cfg=%+v", cfg)
    }
    if len(cfg.Formats) != 2 {
        t.Fatalf("formats=%v", cfg.Formats)
    }
}

func TestLoadConfigFile_JSONAndBadFormat(t *testing.T) {
    dir := t.TempDir()
    p := filepath.Join(dir, "hanadict.json")
    if err := os.WriteFile(p, []byte(`{"input":"a.xml","output":{"formats":["docx"]}}`), 0o644); err != nil {
        t.Fatalf("write config: %v", err)
    }
    fc, err := LoadConfigFile(p)
    if err != nil { t.Fatalf("load: %v", err) }
    var cfg Config
    if err := ApplyFileConfig(&cfg, fc); err == nil {
        t.Fatalf("expected unknown format error")
    }

    bad := filepath.Join(dir, "bad.yaml")
    if err := os.WriteFile(bad, []byte("input: [unclosed"), 0o644); err != nil {
        t.Fatalf("write config: %v", err)
    }
    if _, err := LoadConfigFile(bad); err == nil {
        t.Fatalf("expected yaml parse error")
    }
}
