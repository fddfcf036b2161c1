package remote

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// UploadTarget is the file selected for analysis.
type UploadTarget struct {
	Name      string
	MediaType string
	Content   []byte
}

// SupportedExtensions are the file types the extraction service accepts.
var SupportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".webp", ".tiff", ".bmp"}

// NewUploadTarget builds a target from in-memory content, detecting the media
// type from the name or, failing that, the content.
func NewUploadTarget(name string, content []byte) *UploadTarget {
	return &UploadTarget{
		Name:      name,
		MediaType: detectMediaType(name, content),
		Content:   content,
	}
}

// LoadUploadTarget reads a file from disk.
func LoadUploadTarget(path string) (*UploadTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewUploadTarget(filepath.Base(path), data), nil
}

// Size returns the content length in bytes.
func (u *UploadTarget) Size() int {
	return len(u.Content)
}

// Supported reports whether the file extension is one the service handles.
func (u *UploadTarget) Supported() bool {
	ext := strings.ToLower(filepath.Ext(u.Name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func detectMediaType(name string, content []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return http.DetectContentType(content)
}
