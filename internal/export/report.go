package export

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
	"github.com/TobiSchelling/ContentAnalyzer/internal/textstats"
)

// Report is the structured summary of the current analysis.
type Report struct {
	Filename      string                `json:"filename" yaml:"filename"`
	RunID         string                `json:"runId,omitempty" yaml:"run_id,omitempty"`
	Stats         textstats.Stats       `json:"stats" yaml:"stats"`
	Sentiment     textstats.Sentiment   `json:"sentiment" yaml:"sentiment"`
	Suggestions   []string              `json:"suggestions" yaml:"suggestions"`
	Warning       string                `json:"warning,omitempty" yaml:"warning,omitempty"`
	WordFrequency []textstats.WordCount `json:"wordFrequency" yaml:"word_frequency"`
	ExtractedText string                `json:"extractedText" yaml:"extracted_text"`
}

// NewReport projects snap into a report. A report needs a selected file.
func NewReport(snap session.Snapshot) (*Report, error) {
	if snap.File == nil {
		return nil, errNoFile
	}
	suggestions := snap.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	words := snap.WordFrequency
	if words == nil {
		words = []textstats.WordCount{}
	}
	return &Report{
		Filename:      snap.File.Name,
		RunID:         snap.RunID,
		Stats:         snap.Stats,
		Sentiment:     snap.Stats.Sentiment,
		Suggestions:   suggestions,
		Warning:       snap.Warning,
		WordFrequency: words,
		ExtractedText: snap.Text,
	}, nil
}

func reportFileName(snap session.Snapshot, ext string) string {
	name := "report"
	if snap.File != nil {
		base := filepath.Base(snap.File.Name)
		name = strings.TrimSuffix(base, filepath.Ext(base)) + "-report"
	}
	return name + "." + ext
}

// JSONExporter exports the report as pretty-printed JSON.
type JSONExporter struct{}

// Export writes the report as JSON.
func (e *JSONExporter) Export(snap session.Snapshot, w io.Writer) error {
	r, err := NewReport(snap)
	if err != nil {
		return &ExportError{Format: "json", Err: err}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// FileName returns "<name>-report.json".
func (e *JSONExporter) FileName(snap session.Snapshot) string {
	return reportFileName(snap, "json")
}

// YAMLExporter exports the report as YAML.
type YAMLExporter struct{}

// Export writes the report as YAML.
func (e *YAMLExporter) Export(snap session.Snapshot, w io.Writer) error {
	r, err := NewReport(snap)
	if err != nil {
		return &ExportError{Format: "yaml", Err: err}
	}
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(r)
}

// FileName returns "<name>-report.yaml".
func (e *YAMLExporter) FileName(snap session.Snapshot) string {
	return reportFileName(snap, "yaml")
}
