package history

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/TobiSchelling/ContentAnalyzer/internal/database"
	"github.com/TobiSchelling/ContentAnalyzer/internal/textstats"
)

// KV is the durable key/value store the history is mirrored to.
type KV interface {
	GetString(key string) (string, bool, error)
	SetString(key, value string) error
	Remove(key string) error
}

// Entry summarizes one completed analysis.
type Entry struct {
	Filename string `json:"filename" yaml:"filename"`
	textstats.Stats `yaml:",inline"`
}

// MalformedStateError reports a stored history value that could not be decoded.
type MalformedStateError struct {
	Key string
	Err error
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed persisted state %q: %v", e.Key, e.Err)
}

func (e *MalformedStateError) Unwrap() error {
	return e.Err
}

// Store is the ordered, append-only history of the session. The in-memory
// slice is authoritative; every mutation is written through before it is
// committed to memory, so memory and storage never disagree.
type Store struct {
	kv      KV
	entries []Entry
}

// NewStore creates an empty store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the persisted history. A malformed value yields an empty
// history instead of an error.
func (s *Store) Load() ([]Entry, error) {
	raw, ok, err := s.kv.GetString(database.KeyHistory)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	s.entries = nil
	if ok {
		entries, err := decode(raw)
		if err != nil {
			log.Printf("discarding history: %v", &MalformedStateError{Key: database.KeyHistory, Err: err})
		} else {
			s.entries = entries
		}
	}
	return s.Entries(), nil
}

// Append adds e as the most recent entry.
func (s *Store) Append(e Entry) error {
	next := make([]Entry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)
	next = append(next, e)

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := s.kv.SetString(database.KeyHistory, string(data)); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	s.entries = next
	return nil
}

// Clear discards every entry and removes the persisted key.
func (s *Store) Clear() error {
	if err := s.kv.Remove(database.KeyHistory); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	s.entries = nil
	return nil
}

// Entries returns a copy of the history, oldest first.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

func decode(raw string) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e.Filename == "" && e.Stats == (textstats.Stats{}) {
			return nil, fmt.Errorf("entry %d is empty", i)
		}
	}
	return entries, nil
}
