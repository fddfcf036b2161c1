package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// MarkdownExporter exports the report as Markdown.
type MarkdownExporter struct{}

// Export writes the report as Markdown.
func (e *MarkdownExporter) Export(snap session.Snapshot, w io.Writer) error {
	r, err := NewReport(snap)
	if err != nil {
		return &ExportError{Format: "md", Err: err}
	}
	_, err = io.WriteString(w, renderMarkdown(r))
	return err
}

// FileName returns "<name>-report.md".
func (e *MarkdownExporter) FileName(snap session.Snapshot) string {
	return reportFileName(snap, "md")
}

// HTMLExporter exports the Markdown report rendered to a standalone page.
type HTMLExporter struct{}

// Export writes the report as HTML.
func (e *HTMLExporter) Export(snap session.Snapshot, w io.Writer) error {
	r, err := NewReport(snap)
	if err != nil {
		return &ExportError{Format: "html", Err: err}
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(renderMarkdown(r)), &body); err != nil {
		return &ExportError{Format: "html", Err: fmt.Errorf("rendering markdown: %w", err)}
	}

	_, err = fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString("Content report: "+r.Filename), body.String())
	return err
}

// FileName returns "<name>-report.html".
func (e *HTMLExporter) FileName(snap session.Snapshot) string {
	return reportFileName(snap, "html")
}

func renderMarkdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Content report: %s\n\n", escapeMarkdown(r.Filename))

	fmt.Fprintf(&b, "**Sentiment:** %s  \n", r.Sentiment)
	fmt.Fprintf(&b, "**Characters:** %d  \n", r.Stats.Chars)
	fmt.Fprintf(&b, "**Words:** %d  \n", r.Stats.Words)
	fmt.Fprintf(&b, "**Hashtags:** %d  \n", r.Stats.Hashtags)
	fmt.Fprintf(&b, "**Questions:** %d\n\n", r.Stats.Questions)

	if r.Warning != "" {
		fmt.Fprintf(&b, "> **Warning:** %s\n\n", escapeMarkdown(r.Warning))
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("## Suggestions\n\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(s))
		}
		b.WriteString("\n")
	}

	if len(r.WordFrequency) > 0 {
		b.WriteString("## Top words\n\n| Word | Count |\n|---|---|\n")
		for _, wc := range r.WordFrequency {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeMarkdown(wc.Word), wc.Count)
		}
		b.WriteString("\n")
	}

	if r.ExtractedText != "" {
		fence := "```"
		for strings.Contains(r.ExtractedText, fence) {
			fence += "`"
		}
		fmt.Fprintf(&b, "## Extracted text\n\n%stext\n%s\n%s\n", fence, r.ExtractedText, fence)
	}

	return b.String()
}

// escapeMarkdown escapes characters that would change inline formatting.
func escapeMarkdown(text string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"#", `\#`,
		"|", `\|`,
		"<", `\<`,
		"[", `\[`,
		"`", "\\`",
	).Replace(text)
}
