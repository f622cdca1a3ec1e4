package export

import (
	"io"
	"strings"

	"github.com/hyperifyio/hanadict/internal/dictionary"
)

// WriteMarkdown renders rows as a GitHub-flavoured pipe table.
func WriteMarkdown(w io.Writer, rows []dictionary.Row) error {
	var b strings.Builder
	header := dictionary.Header()
	writeMarkdownRow(&b, header)
	b.WriteString("|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows {
		writeMarkdownRow(&b, r.Record())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeMarkdownCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

var markdownCellReplacer = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

func escapeMarkdownCell(s string) string {
	return markdownCellReplacer.Replace(s)
}
