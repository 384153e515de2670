// Package config loads the settings and schedule files. Both accept JSON or
// YAML, picked by file extension.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mfenderov/chrono/internal/cluster"
)

const (
	DefaultOuraBaseURL    = "https://api.ouraring.com"
	DefaultOuraTimeout    = 30
	DefaultGenerateDays   = 7
	DefaultRunWindowDays  = 7
	DefaultColor          = "252"
	defaultColorSchemeKey = "default"
)

// Settings is the user configuration.
type Settings struct {
	// Alias holds alias definitions, one "name = stage |> stage" per line.
	Alias       string            `json:"alias" yaml:"alias"`
	ColorScheme map[string]string `json:"color_scheme" yaml:"color_scheme"`
	Schedule    bool              `json:"schedule" yaml:"schedule"`
	Oura        Oura              `json:"oura" yaml:"oura"`
	// Code must be typed back to confirm destructive commands.
	Code       string     `json:"code" yaml:"code"`
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
}

// Oura configures the sleep provider.
type Oura struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Token   string `json:"token" yaml:"token"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Timeout is in seconds.
	Timeout int `json:"timeout" yaml:"timeout"`
}

// Thresholds tunes the analysis and bulk commands.
type Thresholds struct {
	SplitFanIn    int `json:"split_fan_in" yaml:"split_fan_in"`
	GenerateDays  int `json:"generate_days" yaml:"generate_days"`
	RunWindowDays int `json:"run_window_days" yaml:"run_window_days"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		ColorScheme: map[string]string{defaultColorSchemeKey: DefaultColor},
		Oura: Oura{
			BaseURL: DefaultOuraBaseURL,
			Timeout: DefaultOuraTimeout,
		},
		Thresholds: Thresholds{
			SplitFanIn:    cluster.DefaultSplitFanIn,
			GenerateDays:  DefaultGenerateDays,
			RunWindowDays: DefaultRunWindowDays,
		},
	}
}

// LoadSettings reads the settings at path. A missing file yields Default().
// Fields absent from the file keep their defaults.
func LoadSettings(path string) (*Settings, error) {
	s := Default()
	if err := decodeFile(path, s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	s.fillDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Settings) fillDefaults() {
	if s.ColorScheme == nil {
		s.ColorScheme = make(map[string]string)
	}
	if _, ok := s.ColorScheme[defaultColorSchemeKey]; !ok {
		s.ColorScheme[defaultColorSchemeKey] = DefaultColor
	}
	if s.Oura.BaseURL == "" {
		s.Oura.BaseURL = DefaultOuraBaseURL
	}
	if s.Oura.Timeout == 0 {
		s.Oura.Timeout = DefaultOuraTimeout
	}
	if s.Thresholds.SplitFanIn == 0 {
		s.Thresholds.SplitFanIn = cluster.DefaultSplitFanIn
	}
	if s.Thresholds.GenerateDays == 0 {
		s.Thresholds.GenerateDays = DefaultGenerateDays
	}
	if s.Thresholds.RunWindowDays == 0 {
		s.Thresholds.RunWindowDays = DefaultRunWindowDays
	}
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Oura.Timeout < 0 {
		return fmt.Errorf("oura.timeout must be >= 0, got %d", s.Oura.Timeout)
	}
	if s.Oura.Enabled && s.Oura.Token == "" {
		return fmt.Errorf("oura.token is required when oura is enabled")
	}
	if s.Thresholds.SplitFanIn < 1 {
		return fmt.Errorf("thresholds.split_fan_in must be >= 1, got %d", s.Thresholds.SplitFanIn)
	}
	if s.Thresholds.GenerateDays < 0 || s.Thresholds.RunWindowDays < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}
	return nil
}

// OuraTimeout returns the provider timeout as a duration.
func (s *Settings) OuraTimeout() time.Duration {
	return time.Duration(s.Oura.Timeout) * time.Second
}

// Color returns the color configured for name, or the default color.
func (s *Settings) Color(name string) string {
	if c, ok := s.ColorScheme[name]; ok {
		return c
	}
	if c, ok := s.ColorScheme[defaultColorSchemeKey]; ok {
		return c
	}
	return DefaultColor
}

// AliasDefinitions splits Alias into name -> definition pairs. Blank lines and
// lines starting with '#' are ignored. Malformed lines are left out and
// reported in the joined error.
func (s *Settings) AliasDefinitions() (map[string]string, error) {
	defs := make(map[string]string)
	var errs []error
	for i, line := range strings.Split(s.Alias, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, def, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			errs = append(errs, fmt.Errorf("alias line %d: expected \"name = definition\"", i+1))
			continue
		}
		defs[strings.ToLower(name)] = strings.TrimSpace(def)
	}
	return defs, errors.Join(errs...)
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
