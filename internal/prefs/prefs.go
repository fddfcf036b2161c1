package prefs

import (
	"fmt"
	"strconv"

	"github.com/TobiSchelling/ContentAnalyzer/internal/database"
)

// KV is the durable key/value store preferences are mirrored to.
type KV interface {
	GetString(key string) (string, bool, error)
	SetString(key, value string) error
}

// Preferences are user settings that outlive the session.
type Preferences struct {
	DarkMode bool `json:"darkMode"`
}

// Store holds the in-memory preferences and writes every change through.
type Store struct {
	kv    KV
	prefs Preferences
}

// NewStore creates a store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the persisted preferences. Anything other than "true" reads
// as dark mode off.
func (s *Store) Load() (Preferences, error) {
	raw, ok, err := s.kv.GetString(database.KeyDarkMode)
	if err != nil {
		return Preferences{}, fmt.Errorf("loading preferences: %w", err)
	}
	s.prefs = Preferences{DarkMode: ok && raw == "true"}
	return s.prefs, nil
}

// Get returns the current preferences.
func (s *Store) Get() Preferences {
	return s.prefs
}

// SetDarkMode stores the dark-mode flag.
func (s *Store) SetDarkMode(on bool) error {
	if err := s.kv.SetString(database.KeyDarkMode, strconv.FormatBool(on)); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	s.prefs.DarkMode = on
	return nil
}

// ToggleDarkMode flips the dark-mode flag and returns the new value.
func (s *Store) ToggleDarkMode() (bool, error) {
	next := !s.prefs.DarkMode
	if err := s.SetDarkMode(next); err != nil {
		return s.prefs.DarkMode, err
	}
	return next, nil
}
