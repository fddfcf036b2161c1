// Package render draws session state for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/TobiSchelling/ContentAnalyzer/internal/history"
	"github.com/TobiSchelling/ContentAnalyzer/internal/remote"
	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
	"github.com/TobiSchelling/ContentAnalyzer/internal/textstats"
	"github.com/TobiSchelling/ContentAnalyzer/internal/toast"
)

// Theme is a set of styles for one colour scheme.
type Theme struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Badge   lipgloss.Style
	Count   lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

type palette struct {
	header, label, muted, badgeFg, badgeBg, count, info, warning, error string
}

var (
	light = palette{
		header: "62", label: "236", muted: "243", badgeFg: "255", badgeBg: "62",
		count: "28", info: "25", warning: "166", error: "160",
	}
	dark = palette{
		header: "212", label: "252", muted: "245", badgeFg: "235", badgeBg: "183",
		count: "42", info: "39", warning: "214", error: "196",
	}
)

// NewTheme returns the light or dark theme.
func NewTheme(darkMode bool) Theme {
	p := light
	if darkMode {
		p = dark
	}
	return Theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.header)),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.label)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.badgeFg)).
			Background(lipgloss.Color(p.badgeBg)).
			Padding(0, 1),
		Count: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.count)).
			Bold(true),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.info)).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.warning)).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.error)).
			Bold(true),
	}
}

// File renders the selected-file line.
func (th Theme) File(f *remote.UploadTarget) string {
	if f == nil {
		return th.Muted.Render("No file selected")
	}
	return fmt.Sprintf("%s %s %s",
		th.Label.Render("Selected:"),
		f.Name,
		th.Muted.Render(fmt.Sprintf("(%s, %s)", humanize.Bytes(uint64(f.Size())), f.MediaType)))
}

// Stats renders the statistics as a row of badges.
func (th Theme) Stats(s textstats.Stats) string {
	badges := []string{
		th.Badge.Render(fmt.Sprintf("%s chars", humanize.Comma(int64(s.Chars)))),
		th.Badge.Render(fmt.Sprintf("%s words", humanize.Comma(int64(s.Words)))),
		th.Badge.Render(fmt.Sprintf("%d hashtags", s.Hashtags)),
		th.Badge.Render(fmt.Sprintf("%d questions", s.Questions)),
		th.sentiment(s.Sentiment).Render(string(s.Sentiment)),
	}
	return strings.Join(badges, " ")
}

func (th Theme) sentiment(s textstats.Sentiment) lipgloss.Style {
	switch s {
	case textstats.Positive:
		return th.Count
	case textstats.Negative:
		return th.Error
	default:
		return th.Muted
	}
}

// Suggestions renders the suggestion list.
func (th Theme) Suggestions(items []string) string {
	var b strings.Builder
	b.WriteString(th.Header.Render("Suggestions"))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(th.Muted.Render("  none"))
		return b.String()
	}
	for i, s := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  • %s", s)
	}
	return b.String()
}

// WordTable renders the word-frequency table.
func (th Theme) WordTable(words []textstats.WordCount) string {
	var b strings.Builder
	b.WriteString(th.Header.Render("Top words"))
	b.WriteString("\n")
	if len(words) == 0 {
		b.WriteString(th.Muted.Render("  no words longer than two characters"))
		return b.String()
	}

	width := len("Word")
	for _, wc := range words {
		width = max(width, lipgloss.Width(wc.Word))
	}
	fmt.Fprintf(&b, "  %s  %s", th.Label.Render(pad("Word", width)), th.Label.Render("Count"))
	for _, wc := range words {
		fmt.Fprintf(&b, "\n  %s  %s", pad(wc.Word, width), th.Count.Render(fmt.Sprintf("%5d", wc.Count)))
	}
	return b.String()
}

// History renders past runs, newest first.
func (th Theme) History(entries []history.Entry) string {
	var b strings.Builder
	b.WriteString(th.Header.Render(fmt.Sprintf("History (%d)", len(entries))))
	if len(entries) == 0 {
		b.WriteString("\n")
		b.WriteString(th.Muted.Render("  no analyses yet"))
		return b.String()
	}

	width := len("File")
	for _, e := range entries {
		width = max(width, lipgloss.Width(e.Filename))
	}
	fmt.Fprintf(&b, "\n  %s  %s", th.Label.Render(pad("File", width)),
		th.Label.Render(fmt.Sprintf("%7s %6s %8s %9s  %s", "Chars", "Words", "Hashtags", "Questions", "Sentiment")))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(&b, "\n  %s  %7d %6d %8d %9d  %s", pad(e.Filename, width),
			e.Chars, e.Words, e.Hashtags, e.Questions, th.sentiment(e.Sentiment).Render(string(e.Sentiment)))
	}
	return b.String()
}

// Toast renders a notification in the colour of its kind.
func (th Theme) Toast(t *toast.Toast) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case toast.Error:
		return th.Error.Render("✗ " + t.Message)
	case toast.Warning:
		return th.Warning.Render("! " + t.Message)
	default:
		return th.Info.Render("✓ " + t.Message)
	}
}

// Result renders the outcome of the last run.
func (th Theme) Result(snap session.Snapshot) string {
	sections := []string{th.File(snap.File)}

	switch snap.State {
	case session.Loading:
		sections = append(sections, th.Muted.Render("Analyzing..."))
	case session.Failed:
		sections = append(sections, th.Error.Render("Analysis failed"))
	case session.Success:
		sections = append(sections, th.Stats(snap.Stats))
		if snap.Warning != "" {
			sections = append(sections, th.Warning.Render("Warning: "+snap.Warning))
		}
		sections = append(sections, th.Suggestions(snap.Suggestions), th.WordTable(snap.WordFrequency))
	}
	return strings.Join(sections, "\n\n")
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
