package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
)

// Exporter writes a projection of the session state.
type Exporter interface {
	Export(snap session.Snapshot, w io.Writer) error
	FileName(snap session.Snapshot) string
}

// ExportError represents errors during export.
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export error [%s]: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Formats lists the accepted format names.
var Formats = []string{"original", "txt", "json", "md", "html", "yaml"}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "original":
		return &OriginalExporter{}, nil
	case "txt", "text":
		return &TextExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "html":
		return &HTMLExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: original, txt, json, md, html, yaml)", format)
	}
}

// WriteFile exports snap into dir and returns the written path. Nothing is
// created when the exporter has nothing to write.
func WriteFile(exp Exporter, snap session.Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, exp.FileName(snap))
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := exp.Export(snap, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
