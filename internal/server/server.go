package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/ContentAnalyzer/internal/history"
	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP dashboard over a session's history and preferences.
type Server struct {
	sess  *session.Session
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server. sess must already be initialized.
func New(sess *session.Session) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"bytes": func(n int) string {
			return humanize.Bytes(uint64(n))
		},
		"comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	pageNames := []string{"index.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{sess: sess, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/history.json", s.handleHistoryJSON)
	s.mux.HandleFunc("/history/clear", s.handleClearHistory)
	s.mux.HandleFunc("/prefs/dark-mode", s.handleDarkMode)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !s.reload(w) {
		return
	}

	snap := s.sess.Snapshot()
	s.render(w, "index.html", map[string]any{
		"Snapshot": snap,
		"History":  newestFirst(snap.History),
		"Success":  snap.State == session.Success,
	})
}

func (s *Server) handleHistoryJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.reload(w) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.sess.Snapshot().History); err != nil {
		log.Printf("Error encoding history: %v", err)
	}
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := s.sess.ClearHistory(); err != nil {
		log.Printf("Error clearing history: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleDarkMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if !s.reload(w) {
		return
	}

	if _, err := s.sess.ToggleDarkMode(); err != nil {
		log.Printf("Error toggling dark mode: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// reload picks up history and preferences written by other processes, such
// as an analyze run, since the server started.
func (s *Server) reload(w http.ResponseWriter) bool {
	if err := s.sess.Reload(); err != nil {
		log.Printf("Error reloading state: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func newestFirst(entries []history.Entry) []history.Entry {
	out := make([]history.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(sess *session.Session, port int) error {
	srv, err := New(sess)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
