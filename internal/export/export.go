// Package export serializes data dictionary rows to the file formats the
// tool offers for download.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/hanadict/internal/dictionary"
)

// Format identifies an output serialization.
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// DefaultBaseName is the file name stem used for downloads.
const DefaultBaseName = "data_dictionary"

// Formats lists every supported format in the order they are offered.
func Formats() []Format {
	return []Format{FormatXLSX, FormatCSV, FormatPDF, FormatMarkdown, FormatJSON}
}

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer export format from %q", path)
	}
	return ParseFormat(ext)
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string { return string(f) }

// FileName returns the download file name for the format.
func (f Format) FileName() string { return DefaultBaseName + "." + f.Ext() }

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Options tunes the formats that carry presentation details.
type Options struct {
	// SheetName names the XLSX worksheet. Defaults to DefaultSheetName.
	SheetName string
	// Title heads the PDF rendering. Defaults to DefaultTitle.
	Title string
}

// DefaultTitle heads PDF output when no title is configured.
const DefaultTitle = "Data Dictionary"

func (o Options) title() string {
	if t := strings.TrimSpace(o.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// Write serializes rows to w in the given format, preserving row order.
func Write(w io.Writer, f Format, rows []dictionary.Row, opts Options) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, rows, opts)
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatPDF:
		return WritePDF(w, rows, opts)
	case FormatMarkdown:
		return WriteMarkdown(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteFile writes rows to path, replacing any existing file.
func WriteFile(path string, f Format, rows []dictionary.Row, opts Options) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(out)
	if err := Write(bw, f, rows, opts); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", f, err)
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return out.Close()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []dictionary.Row) error {
	if rows == nil {
		rows = []dictionary.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
