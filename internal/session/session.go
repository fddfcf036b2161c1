// Package session holds the state of one client session and the state
// machine driving an upload from selection to result.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/TobiSchelling/ContentAnalyzer/internal/history"
	"github.com/TobiSchelling/ContentAnalyzer/internal/prefs"
	"github.com/TobiSchelling/ContentAnalyzer/internal/remote"
	"github.com/TobiSchelling/ContentAnalyzer/internal/textstats"
	"github.com/TobiSchelling/ContentAnalyzer/internal/toast"
)

// State is the upload lifecycle state.
type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Success State = "success"
	Failed  State = "failed"
)

// Toast messages.
const (
	MsgNoFile          = "Please select a file first!"
	MsgComplete        = "Analysis complete!"
	MsgHistoryCleared  = "History cleared"
	MsgDarkModeOn      = "Dark mode on"
	MsgDarkModeOff     = "Dark mode off"
	MsgPersistenceFail = "Could not save history"
)

// Pipeline is the remote extract/analyze service.
type Pipeline interface {
	Run(ctx context.Context, target *remote.UploadTarget) (*remote.Outcome, error)
	Analyze(ctx context.Context, text string) (*remote.AnalysisResult, error)
}

// Deps are the collaborators of a session.
type Deps struct {
	Pipeline Pipeline
	History  *history.Store
	Prefs    *prefs.Store
	Toasts   *toast.Register
}

// Snapshot is a read-only copy of the visible session state.
type Snapshot struct {
	State         State
	RunID         string
	File          *remote.UploadTarget
	Text          string
	Warning       string
	Suggestions   []string
	Stats         textstats.Stats
	WordFrequency []textstats.WordCount
	History       []history.Entry
	DarkMode      bool
	DragActive    bool
	Toast         *toast.Toast
	Err           error
}

// Session is the single owner of all client state. Persisted state is loaded
// once by Init and written back after every mutation.
type Session struct {
	mu sync.Mutex

	pipeline Pipeline
	history  *history.Store
	prefs    *prefs.Store
	toasts   *toast.Register

	initialized bool
	state       State
	runID       string
	file        *remote.UploadTarget
	text        string
	warning     string
	suggestions []string
	stats       textstats.Stats
	words       []textstats.WordCount
	dragActive  bool
	err         error
}

// New creates an idle session. Call Init before using it.
func New(d Deps) *Session {
	s := &Session{
		pipeline: d.Pipeline,
		history:  d.History,
		prefs:    d.Prefs,
		toasts:   d.Toasts,
		state:    Idle,
	}
	if s.toasts == nil {
		s.toasts = toast.NewRegister(toast.DefaultDuration)
	}
	s.resetDerived()
	return s
}

// Init loads preferences and history from storage. It runs once; later calls
// are no-ops.
func (s *Session) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	if _, err := s.prefs.Load(); err != nil {
		return err
	}
	entries, err := s.history.Load()
	if err != nil {
		return err
	}
	log.Printf("session initialized: %d history entries", len(entries))
	s.initialized = true
	return nil
}

// Reload re-reads preferences and history from storage so that writes made
// by other sessions on the same store become visible.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	if _, err := s.prefs.Load(); err != nil {
		return err
	}
	if _, err := s.history.Load(); err != nil {
		return err
	}
	return nil
}

// Toasts returns the session's toast register.
func (s *Session) Toasts() *toast.Register {
	return s.toasts
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select replaces the upload target and discards all derived state.
func (s *Session) Select(target *remote.UploadTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Loading {
		return ErrBusy
	}
	s.file = target
	s.state = Idle
	s.runID = ""
	s.err = nil
	s.resetDerived()
	return nil
}

// DragEnter marks a drag in progress over the drop zone.
func (s *Session) DragEnter() {
	s.mu.Lock()
	s.dragActive = true
	s.mu.Unlock()
}

// DragLeave clears the drag flag.
func (s *Session) DragLeave() {
	s.mu.Lock()
	s.dragActive = false
	s.mu.Unlock()
}

// Drop clears the drag flag and, when a file was dropped, selects it.
func (s *Session) Drop(target *remote.UploadTarget) error {
	s.DragLeave()
	if target == nil {
		return nil
	}
	return s.Select(target)
}

// Upload runs the remote pipeline on the selected file. It returns ErrBusy
// without side effects when a run is already in flight.
func (s *Session) Upload(ctx context.Context) error {
	target, runID, err := s.begin(nil)
	if err != nil {
		return err
	}

	log.Printf("run %s: analyzing %s (%d bytes)", runID, target.Name, target.Size())
	out, err := s.pipeline.Run(ctx, target)
	return s.finish(runID, target.Name, out, err)
}

// AnalyzeText runs the analysis stage alone on text that needs no
// extraction. The text becomes the session's file under name.
func (s *Session) AnalyzeText(ctx context.Context, name, text string) error {
	target := &remote.UploadTarget{Name: name, MediaType: "text/plain; charset=utf-8", Content: []byte(text)}
	_, runID, err := s.begin(target)
	if err != nil {
		return err
	}

	log.Printf("run %s: analyzing text %s (%d chars)", runID, name, len(text))
	res, err := s.pipeline.Analyze(ctx, text)
	var out *remote.Outcome
	if err == nil {
		out = &remote.Outcome{Text: text}
		if res != nil {
			out.Suggestions = res.Suggestions
			out.SentimentCompound = res.SentimentCompound
		}
	}
	return s.finish(runID, name, out, err)
}

// begin moves the session to Loading. A non-nil replace is selected first.
func (s *Session) begin(replace *remote.UploadTarget) (*remote.UploadTarget, string, error) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil, "", ErrNotInitialized
	}
	if s.state == Loading {
		s.mu.Unlock()
		return nil, "", ErrBusy
	}
	if replace != nil {
		s.file = replace
	}
	if s.file == nil {
		s.mu.Unlock()
		s.toasts.Show(MsgNoFile, toast.Warning)
		return nil, "", &ValidationError{Reason: "no file selected"}
	}

	s.state = Loading
	s.runID = uuid.NewString()
	s.err = nil
	s.resetDerived()
	target, runID := s.file, s.runID
	s.mu.Unlock()
	return target, runID, nil
}

// finish applies the outcome of a run. Failure leaves derived state empty
// and records nothing in history; the extracted text of a run whose analysis
// failed is discarded as well.
func (s *Session) finish(runID, filename string, out *remote.Outcome, runErr error) error {
	if runErr != nil {
		s.mu.Lock()
		s.state = Failed
		s.err = runErr
		s.mu.Unlock()

		log.Printf("run %s failed: %v", runID, runErr)
		s.toasts.Show(describe(runErr), toast.Error)
		return runErr
	}

	if out == nil {
		out = &remote.Outcome{}
	}
	stats := textstats.DeriveStats(out.Text, out.SentimentCompound)
	words := textstats.DeriveWordFrequency(out.Text)
	suggestions := out.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	s.mu.Lock()
	if err := s.history.Append(history.Entry{Filename: filename, Stats: stats}); err != nil {
		s.state = Failed
		s.err = err
		s.mu.Unlock()

		log.Printf("run %s: %v", runID, err)
		s.toasts.Show(MsgPersistenceFail, toast.Error)
		return err
	}
	s.state = Success
	s.text = out.Text
	s.warning = out.Warning
	s.suggestions = suggestions
	s.stats = stats
	s.words = words
	s.mu.Unlock()

	log.Printf("run %s complete: %d words, sentiment %s", runID, stats.Words, stats.Sentiment)
	if out.Warning != "" {
		s.toasts.Show(out.Warning, toast.Warning)
	}
	s.toasts.Show(MsgComplete, toast.Info)
	return nil
}

// ToggleDarkMode flips and persists the dark-mode preference.
func (s *Session) ToggleDarkMode() (bool, error) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false, ErrNotInitialized
	}
	on, err := s.prefs.ToggleDarkMode()
	s.mu.Unlock()
	if err != nil {
		return on, err
	}

	msg := MsgDarkModeOff
	if on {
		msg = MsgDarkModeOn
	}
	s.toasts.Show(msg, toast.Info)
	return on, nil
}

// SetDarkMode persists an explicit dark-mode preference.
func (s *Session) SetDarkMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	return s.prefs.SetDarkMode(on)
}

// ClearHistory discards the session history in memory and in storage.
func (s *Session) ClearHistory() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	err := s.history.Clear()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	s.toasts.Show(MsgHistoryCleared, toast.Info)
	return nil
}

// Snapshot returns a copy of the visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:         s.state,
		RunID:         s.runID,
		File:          copyTarget(s.file),
		Text:          s.text,
		Warning:       s.warning,
		Suggestions:   append([]string{}, s.suggestions...),
		Stats:         s.stats,
		WordFrequency: append([]textstats.WordCount{}, s.words...),
		History:       s.history.Entries(),
		DarkMode:      s.prefs.Get().DarkMode,
		DragActive:    s.dragActive,
		Err:           s.err,
	}
	snap.Toast = s.toasts.Current()
	return snap
}

func copyTarget(t *remote.UploadTarget) *remote.UploadTarget {
	if t == nil {
		return nil
	}
	c := *t
	c.Content = append([]byte(nil), t.Content...)
	return &c
}

func (s *Session) resetDerived() {
	s.text = ""
	s.warning = ""
	s.suggestions = []string{}
	s.stats = textstats.Empty()
	s.words = []textstats.WordCount{}
}
