package export

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
)

var (
	errNoFile = errors.New("no file selected")
	errNoText = errors.New("no extracted text")
)

// OriginalExporter writes the uploaded file back out unchanged.
type OriginalExporter struct{}

// Export writes the original file content.
func (e *OriginalExporter) Export(snap session.Snapshot, w io.Writer) error {
	if snap.File == nil {
		return &ExportError{Format: "original", Err: errNoFile}
	}
	_, err := w.Write(snap.File.Content)
	return err
}

// FileName returns the original file name.
func (e *OriginalExporter) FileName(snap session.Snapshot) string {
	if snap.File == nil {
		return "original"
	}
	return filepath.Base(snap.File.Name)
}

// TextExporter writes the extracted text as plain text.
type TextExporter struct{}

// Export writes the extracted text.
func (e *TextExporter) Export(snap session.Snapshot, w io.Writer) error {
	if snap.Text == "" {
		return &ExportError{Format: "txt", Err: errNoText}
	}
	_, err := io.WriteString(w, snap.Text)
	return err
}

// FileName returns "<file name>.txt".
func (e *TextExporter) FileName(snap session.Snapshot) string {
	name := "extracted"
	if snap.File != nil {
		name = filepath.Base(snap.File.Name)
	}
	return name + ".txt"
}
