// Package config loads the daytrack settings file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/julianstephens/daytrack/internal/constants"
	"github.com/julianstephens/daytrack/internal/models"
)

// Settings mirrors settings.toml. Every key is optional.
type Settings struct {
	// Timezone is an IANA zone name, or "Local". It decides what "today" is.
	Timezone string `toml:"timezone"`
	// DefaultHabits are provisioned the first time no habit is known.
	DefaultHabits []string `toml:"default_habits"`
	// StatsWindowDays is the trailing window of the activity and habit stats.
	StatsWindowDays int  `toml:"stats_window_days"`
	Debug           bool `toml:"debug"`

	location *time.Location
	unknown  []string
}

// Defaults returns the settings used when no file exists.
func Defaults() *Settings {
	return &Settings{
		Timezone:        constants.DefaultTimezone,
		DefaultHabits:   append([]string(nil), constants.DefaultHabits...),
		StatsWindowDays: constants.DefaultStatsWindowDays,
		location:        time.Local,
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand path %s: %w", path, err)
	}
	return expanded, nil
}

// Load reads the settings file at path. A missing file yields Defaults.
func Load(path string) (*Settings, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse decodes settings from TOML text, filling unset keys with defaults.
func Parse(data string) (*Settings, error) {
	s := Defaults()
	meta, err := toml.Decode(data, s)
	if err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	for _, key := range meta.Undecoded() {
		s.unknown = append(s.unknown, key.String())
	}
	if !meta.IsDefined("default_habits") {
		s.DefaultHabits = append([]string(nil), constants.DefaultHabits...)
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) normalize() error {
	s.Timezone = strings.TrimSpace(s.Timezone)
	if s.Timezone == "" {
		s.Timezone = constants.DefaultTimezone
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	s.location = loc

	if s.StatsWindowDays <= 0 {
		return fmt.Errorf("stats_window_days must be positive, got %d", s.StatsWindowDays)
	}

	habits := s.DefaultHabits[:0]
	seen := make(map[string]bool)
	for _, h := range s.DefaultHabits {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		habits = append(habits, h)
	}
	s.DefaultHabits = habits
	return nil
}

// UnknownKeys lists keys of the parsed file that no setting claims. They are
// reported by the caller once logging is configured.
func (s *Settings) UnknownKeys() []string {
	return s.unknown
}

// Location returns the zone named by Timezone.
func (s *Settings) Location() *time.Location {
	if s.location == nil {
		return time.Local
	}
	return s.location
}

// Today returns the calendar day of now in the configured zone.
func (s *Settings) Today(now time.Time) models.Date {
	return models.DateOf(now.In(s.Location()))
}

// Write saves s to path, creating parent directories. An existing file is
// left alone unless overwrite is set.
func (s *Settings) Write(path string, overwrite bool) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}
