package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/ContentAnalyzer/internal/remote"
	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
	"github.com/TobiSchelling/ContentAnalyzer/internal/textstats"
)

func sampleSnapshot() session.Snapshot {
	return session.Snapshot{
		State:       session.Success,
		RunID:       "run-1",
		File:        remote.NewUploadTarget("post.png", []byte("PNGDATA")),
		Text:        "Hello #World?",
		Suggestions: []string{"Add more hashtags"},
		Stats:       textstats.DeriveStats("Hello #World?", 0.2),
		WordFrequency: []textstats.WordCount{
			{Word: "hello", Count: 1},
			{Word: "#world?", Count: 1},
		},
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range append(Formats, "text", "markdown") {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("NewExporter(%q): %v", format, err)
		}
	}
	if _, err := NewExporter("pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFileNames(t *testing.T) {
	snap := sampleSnapshot()
	tests := []struct {
		format string
		want   string
	}{
		{"original", "post.png"},
		{"txt", "post.png.txt"},
		{"json", "post-report.json"},
		{"md", "post-report.md"},
		{"html", "post-report.html"},
		{"yaml", "post-report.yaml"},
	}
	for _, tt := range tests {
		exp, _ := NewExporter(tt.format)
		if got := exp.FileName(snap); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.format, tt.want, got)
		}
	}

	text := &TextExporter{}
	if got := text.FileName(session.Snapshot{}); got != "extracted.txt" {
		t.Errorf("expected fallback name, got %q", got)
	}
}

func TestOriginalAndText(t *testing.T) {
	snap := sampleSnapshot()

	var buf bytes.Buffer
	if err := (&OriginalExporter{}).Export(snap, &buf); err != nil {
		t.Fatalf("original export: %v", err)
	}
	if buf.String() != "PNGDATA" {
		t.Errorf("expected original bytes, got %q", buf.String())
	}

	buf.Reset()
	if err := (&TextExporter{}).Export(snap, &buf); err != nil {
		t.Fatalf("text export: %v", err)
	}
	if buf.String() != "Hello #World?" {
		t.Errorf("expected extracted text, got %q", buf.String())
	}
}

func TestNothingToExport(t *testing.T) {
	for _, format := range Formats {
		exp, _ := NewExporter(format)
		var buf bytes.Buffer
		err := exp.Export(session.Snapshot{}, &buf)
		var expErr *ExportError
		if !errors.As(err, &expErr) {
			t.Errorf("%s: expected ExportError, got %v", format, err)
		}
		if buf.Len() != 0 {
			t.Errorf("%s: expected no output, got %q", format, buf.String())
		}
	}
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleSnapshot(), &buf); err != nil {
		t.Fatalf("json export: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["filename"] != "post.png" {
		t.Errorf("unexpected filename %v", got["filename"])
	}
	if got["sentiment"] != "positive" {
		t.Errorf("unexpected sentiment %v", got["sentiment"])
	}
	stats, ok := got["stats"].(map[string]any)
	if !ok || stats["words"] != float64(2) || stats["hashtags"] != float64(1) {
		t.Errorf("unexpected stats %v", got["stats"])
	}
	if _, ok := got["warning"]; ok {
		t.Error("expected empty warning to be omitted")
	}
}

func TestYAMLReport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleSnapshot(), &buf); err != nil {
		t.Fatalf("yaml export: %v", err)
	}

	var got Report
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if got.Filename != "post.png" || got.Stats.Chars != 13 {
		t.Errorf("unexpected report %+v", got)
	}
	if len(got.WordFrequency) != 2 || got.WordFrequency[1].Word != "#world?" {
		t.Errorf("unexpected word frequency %v", got.WordFrequency)
	}
}

func TestMarkdownReport(t *testing.T) {
	snap := sampleSnapshot()
	snap.Warning = "low OCR confidence"

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(snap, &buf); err != nil {
		t.Fatalf("markdown export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Content report: post.png",
		"**Sentiment:** positive",
		"**Words:** 2",
		"> **Warning:** low OCR confidence",
		"- Add more hashtags",
		"| hello | 1 |",
		"| \\#world? | 1 |",
		"```text\nHello #World?\n```",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, out)
		}
	}
}

func TestMarkdownFenceAvoidsCollision(t *testing.T) {
	snap := sampleSnapshot()
	snap.Text = "code: ```go\nx := 1\n```"

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(snap, &buf); err != nil {
		t.Fatalf("markdown export: %v", err)
	}
	if !strings.Contains(buf.String(), "````text\n") {
		t.Errorf("expected a longer fence, got\n%s", buf.String())
	}
}

func TestHTMLReport(t *testing.T) {
	snap := sampleSnapshot()
	snap.Suggestions = []string{"<script>alert(1)</script>"}

	var buf bytes.Buffer
	if err := (&HTMLExporter{}).Export(snap, &buf); err != nil {
		t.Fatalf("html export: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("expected a standalone document")
	}
	if !strings.Contains(out, "<title>Content report: post.png</title>") {
		t.Error("expected report title")
	}
	if !strings.Contains(out, "<table>") {
		t.Error("expected word table to render as a table")
	}
	if strings.Contains(out, "<script>") {
		t.Error("expected raw HTML from the service to be escaped")
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	exp, _ := NewExporter("json")

	path, err := WriteFile(exp, sampleSnapshot(), dir)
	if err != nil {
		t.Fatalf("write file: %v", err)
	}
	if path != filepath.Join(dir, "post-report.json") {
		t.Errorf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !bytes.Contains(data, []byte(`"runId": "run-1"`)) {
		t.Errorf("unexpected content %s", data)
	}
}

func TestWriteFileNothingToExport(t *testing.T) {
	dir := t.TempDir()
	exp, _ := NewExporter("txt")

	if _, err := WriteFile(exp, session.Snapshot{}, dir); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files left behind, got %d", len(entries))
	}
}
