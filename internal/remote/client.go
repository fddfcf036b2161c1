package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const maxErrorBody = 4096

// ExtractionResult is the decoded /extract response.
type ExtractionResult struct {
	Text    string
	Warning string
	Kind    string
}

// AnalysisResult is the decoded /analyze response.
type AnalysisResult struct {
	Suggestions       []string
	SentimentCompound float64
}

// Outcome is the combined result of a full extract-then-analyze run.
type Outcome struct {
	Text              string
	Warning           string
	Suggestions       []string
	SentimentCompound float64
}

// Client talks to the extraction/analysis service.
type Client struct {
	BaseURL string
	Timeout time.Duration
	client  *http.Client
}

// NewClient creates a client for the service at baseURL. Each remote call is
// bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ping checks whether the service answers on its root route.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}

// Run extracts text from target and then analyzes it. The stages run strictly
// in order and the first failure ends the run; nothing is retried.
func (c *Client) Run(ctx context.Context, target *UploadTarget) (*Outcome, error) {
	extracted, err := c.Extract(ctx, target)
	if err != nil {
		return nil, err
	}

	analysis, err := c.Analyze(ctx, extracted.Text)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Text:              extracted.Text,
		Warning:           extracted.Warning,
		Suggestions:       analysis.Suggestions,
		SentimentCompound: analysis.SentimentCompound,
	}, nil
}

// Extract uploads target as multipart field "file" to /extract.
func (c *Client) Extract(ctx context.Context, target *UploadTarget) (*ExtractionResult, error) {
	if target == nil {
		return nil, fmt.Errorf("extract: no file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(target.Name)))
	mediaType := target.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating multipart body: %w", err)
	}
	if _, err := part.Write(target.Content); err != nil {
		return nil, fmt.Errorf("writing multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/extract", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.classify(StageExtract, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		body := readErrorBody(resp.Body)
		log.Printf("extract returned %d for %s", resp.StatusCode, target.Name)
		return nil, &ExtractionError{Status: resp.StatusCode, Body: body}
	}

	var result struct {
		Text    string `json:"text"`
		Warning string `json:"warning"`
		Kind    string `json:"kind"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if timeoutErr := c.asTimeout(StageExtract, err); timeoutErr != nil {
			return nil, timeoutErr
		}
		return nil, &ExtractionError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	warning := result.Warning
	if warning == "" && result.Error != "" && result.Text == "" {
		// The service reports unsupported files in-band with a success status.
		warning = result.Error
	}

	log.Printf("extracted %d characters from %s", len(result.Text), target.Name)
	return &ExtractionResult{Text: result.Text, Warning: warning, Kind: result.Kind}, nil
}

// Analyze posts text to /analyze. Empty text is a valid input.
func (c *Client) Analyze(ctx context.Context, text string) (*AnalysisResult, error) {
	data, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/analyze", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.classify(StageAnalyze, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		body := readErrorBody(resp.Body)
		log.Printf("analyze returned %d", resp.StatusCode)
		return nil, &AnalysisError{Status: resp.StatusCode, Body: body}
	}

	var result struct {
		Suggestions []string `json:"suggestions"`
		Sentiment   *struct {
			Compound *float64 `json:"compound"`
		} `json:"sentiment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if timeoutErr := c.asTimeout(StageAnalyze, err); timeoutErr != nil {
			return nil, timeoutErr
		}
		return nil, &AnalysisError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	out := &AnalysisResult{Suggestions: result.Suggestions}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	if result.Sentiment != nil && result.Sentiment.Compound != nil {
		out.SentimentCompound = *result.Sentiment.Compound
	}
	return out, nil
}

// classify maps a failed round trip to a timeout or a transport error.
// Cancellation by the caller is returned as is.
func (c *Client) classify(stage Stage, err error) error {
	if errors.Is(err, context.Canceled) {
		log.Printf("%s cancelled", stage)
		return err
	}
	if timeoutErr := c.asTimeout(stage, err); timeoutErr != nil {
		return timeoutErr
	}
	log.Printf("%s request failed: %v", stage, err)
	return &TransportError{Stage: stage, Err: err}
}

func (c *Client) asTimeout(stage Stage, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		log.Printf("%s timed out after %s", stage, c.Timeout)
		return &TimeoutError{Stage: stage, Timeout: c.Timeout, Err: err}
	}
	return nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func readErrorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(data))
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
