package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// fakeService mimics the extraction/analysis service.
type fakeService struct {
	extractStatus int
	extractBody   string
	analyzeStatus int
	analyzeBody   string

	gotFilename string
	gotContent  string
	gotText     string
	analyzeHits atomic.Int32
}

func (f *fakeService) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart field 'file': %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		f.gotFilename = header.Filename
		f.gotContent = string(data)

		w.WriteHeader(f.extractStatus)
		io.WriteString(w, f.extractBody)
	})
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		f.analyzeHits.Add(1)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var in struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decoding analyze body: %v", err)
		}
		f.gotText = in.Text

		w.WriteHeader(f.analyzeStatus)
		io.WriteString(w, f.analyzeBody)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok": true}`)
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeService) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestRunSuccess(t *testing.T) {
	f := &fakeService{
		extractStatus: http.StatusOK,
		extractBody:   `{"filename": "post.png", "kind": "image", "text": "Hello #World?"}`,
		analyzeStatus: http.StatusOK,
		analyzeBody:   `{"suggestions": ["Add more hashtags"], "sentiment": {"compound": 0.2}}`,
	}
	c := newTestClient(t, f)

	out, err := c.Run(context.Background(), NewUploadTarget("post.png", []byte("PNGDATA")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.gotFilename != "post.png" || f.gotContent != "PNGDATA" {
		t.Errorf("unexpected upload: name=%q content=%q", f.gotFilename, f.gotContent)
	}
	if f.gotText != "Hello #World?" {
		t.Errorf("expected extracted text to be analyzed, got %q", f.gotText)
	}
	if out.Text != "Hello #World?" {
		t.Errorf("expected text, got %q", out.Text)
	}
	if len(out.Suggestions) != 1 || out.Suggestions[0] != "Add more hashtags" {
		t.Errorf("unexpected suggestions: %v", out.Suggestions)
	}
	if out.SentimentCompound != 0.2 {
		t.Errorf("expected compound 0.2, got %v", out.SentimentCompound)
	}
}

func TestRunDefaultsMissingFields(t *testing.T) {
	f := &fakeService{
		extractStatus: http.StatusOK,
		extractBody:   `{}`,
		analyzeStatus: http.StatusOK,
		analyzeBody:   `{"length": 0}`,
	}
	c := newTestClient(t, f)

	out, err := c.Run(context.Background(), NewUploadTarget("empty.pdf", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "" {
		t.Errorf("expected empty text, got %q", out.Text)
	}
	if f.analyzeHits.Load() != 1 {
		t.Error("expected empty text to still be analyzed")
	}
	if out.Suggestions == nil || len(out.Suggestions) != 0 {
		t.Errorf("expected empty non-nil suggestions, got %#v", out.Suggestions)
	}
	if out.SentimentCompound != 0 {
		t.Errorf("expected neutral compound, got %v", out.SentimentCompound)
	}
}

func TestExtractWarningAndInBandError(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantWarning string
	}{
		{"explicit warning", `{"text": "abc", "warning": "low OCR confidence"}`, "low OCR confidence"},
		{"in-band error", `{"error": "Unsupported file. Provide a .pdf or image."}`, "Unsupported file. Provide a .pdf or image."},
		{"error ignored when text present", `{"text": "abc", "error": "ignored"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeService{extractStatus: http.StatusOK, extractBody: tt.body}
			c := newTestClient(t, f)

			res, err := c.Extract(context.Background(), NewUploadTarget("a.pdf", []byte("x")))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Warning != tt.wantWarning {
				t.Errorf("expected warning %q, got %q", tt.wantWarning, res.Warning)
			}
		})
	}
}

func TestRunExtractionFailed(t *testing.T) {
	f := &fakeService{extractStatus: http.StatusInternalServerError, extractBody: "boom"}
	c := newTestClient(t, f)

	_, err := c.Run(context.Background(), NewUploadTarget("a.pdf", []byte("x")))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", extErr.Status)
	}
	if extErr.Body != "boom" {
		t.Errorf("expected body 'boom', got %q", extErr.Body)
	}
	if f.analyzeHits.Load() != 0 {
		t.Error("analysis must not run after extraction fails")
	}
}

func TestRunAnalysisFailed(t *testing.T) {
	f := &fakeService{
		extractStatus: http.StatusOK,
		extractBody:   `{"text": "hello"}`,
		analyzeStatus: http.StatusBadGateway,
	}
	c := newTestClient(t, f)

	out, err := c.Run(context.Background(), NewUploadTarget("a.pdf", []byte("x")))
	if out != nil {
		t.Error("expected no outcome on analysis failure")
	}
	var anErr *AnalysisError
	if !errors.As(err, &anErr) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
	if anErr.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", anErr.Status)
	}
}

func TestExtractMalformedBody(t *testing.T) {
	f := &fakeService{extractStatus: http.StatusOK, extractBody: "<html>"}
	c := newTestClient(t, f)

	_, err := c.Extract(context.Background(), NewUploadTarget("a.pdf", []byte("x")))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extErr.Err == nil {
		t.Error("expected wrapped decode error")
	}
}

func TestRunNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.Run(context.Background(), NewUploadTarget("a.pdf", []byte("x")))
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if trErr.Stage != StageExtract {
		t.Errorf("expected extract stage, got %s", trErr.Stage)
	}
}

func TestRunTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(srv.URL, 50*time.Millisecond)
	_, err := c.Run(context.Background(), NewUploadTarget("a.pdf", []byte("x")))
	var toErr *TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if toErr.Stage != StageExtract {
		t.Errorf("expected extract stage, got %s", toErr.Stage)
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, &fakeService{})
	if !c.Ping(context.Background()) {
		t.Error("expected ping to succeed")
	}

	down := NewClient("http://127.0.0.1:1", time.Second)
	if down.Ping(context.Background()) {
		t.Error("expected ping to fail for unreachable service")
	}
}

func TestUploadTarget(t *testing.T) {
	u := NewUploadTarget("Post.PDF", []byte("%PDF-1.4"))
	if u.MediaType != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", u.MediaType)
	}
	if !u.Supported() {
		t.Error("expected .PDF to be supported")
	}
	if u.Size() != 8 {
		t.Errorf("expected size 8, got %d", u.Size())
	}

	txt := NewUploadTarget("notes.docx", []byte("x"))
	if txt.Supported() {
		t.Error("expected .docx to be unsupported")
	}
}

func TestRunCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Run(ctx, NewUploadTarget("a.pdf", []byte("x")))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var trErr *TransportError
	if errors.As(err, &trErr) {
		t.Error("cancellation must not be reported as a transport error")
	}
}
