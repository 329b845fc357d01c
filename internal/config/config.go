// Package config loads runtime settings from a YAML file, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"simlive/internal/schedule"
)

// DefaultFile is the config file read when no -config flag is given.
const DefaultFile = "config.yaml"

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Settings holds the schedule parameters.
type Settings struct {
	IntervalHours  int    `yaml:"schedule_interval_hours"`
	DayStartHour   int    `yaml:"day_start_hour"`
	DayStartMinute int    `yaml:"day_start_minute"`
	Timezone       string `yaml:"timezone"`
}

// Server holds the media server endpoints.
type Server struct {
	BaseURL     string `yaml:"base_url"`      // Prefix joined with each video file name.
	RTMPBaseURL string `yaml:"rtmp_base_url"` // Prefix joined with each YouTube stream key.
	ServerURL   string `yaml:"server_url"`    // Ant Media REST root.
	App         string `yaml:"app"`
}

// API holds credentials.
type API struct {
	SecretKey       string   `yaml:"secret_key"`
	Scopes          []string `yaml:"scopes"`
	CredentialsFile string   `yaml:"credentials_file"`
	TokenFile       string   `yaml:"token_file"`
}

// Paths holds input and output locations.
type Paths struct {
	Videos string `yaml:"videos"`
	Images string `yaml:"images"`
	Titles string `yaml:"titles"`
	Output string `yaml:"output"`
}

// YouTube holds broadcast options.
type YouTube struct {
	Privacy           string  `yaml:"privacy"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Log holds logging options. File is rotated when set.
type Log struct {
	File       string    `yaml:"file"`
	MaxSize    int       `yaml:"max_size"` // Megabytes.
	MaxBackups int       `yaml:"max_backups"`
	MaxAge     int       `yaml:"max_age"` // Days.
	Compress   bool      `yaml:"compress"`
	Color      ColorMode `yaml:"color"`
}

// Config holds all runtime settings.
type Config struct {
	Settings Settings `yaml:"settings"`
	Server   Server   `yaml:"server"`
	API      API      `yaml:"api"`
	Paths    Paths    `yaml:"paths"`
	YouTube  YouTube  `yaml:"youtube"`
	Log      Log      `yaml:"log"`
}

// Default returns a Config with every default filled in.
func Default() Config {
	return Config{
		Settings: Settings{
			IntervalHours:  2,
			DayStartHour:   5,
			DayStartMinute: 30,
			Timezone:       "America/Argentina/Buenos_Aires",
		},
		Server: Server{App: "LiveApp"},
		API: API{
			Scopes:          []string{"https://www.googleapis.com/auth/youtube.force-ssl"},
			CredentialsFile: "credentials_oauth.json",
			TokenFile:       "youtube_token.json",
		},
		Paths: Paths{
			Videos: "videos",
			Images: "images",
			Titles: "stream_titles.xlsx",
			Output: "playlist_schedule_example.xlsx",
		},
		YouTube: YouTube{
			Privacy:           "public",
			RequestsPerSecond: 2,
		},
		Log: Log{
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Color:      ColorAuto,
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// A missing file is not an error unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SIMLIVE_SECRET_KEY"); v != "" {
		c.API.SecretKey = v
	}
	if v := os.Getenv("SIMLIVE_SERVER_URL"); v != "" {
		c.Server.ServerURL = v
	}
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	s := c.Settings
	if s.IntervalHours <= 0 {
		return fmt.Errorf("schedule_interval_hours must be positive (got %d)", s.IntervalHours)
	}
	if s.DayStartHour < 0 || s.DayStartHour > 23 {
		return fmt.Errorf("day_start_hour must be between 0 and 23 (got %d)", s.DayStartHour)
	}
	if s.DayStartMinute < 0 || s.DayStartMinute > 59 {
		return fmt.Errorf("day_start_minute must be between 0 and 59 (got %d)", s.DayStartMinute)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	switch c.Log.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.Log.Color)
	}
	if c.Paths.Videos == "" {
		return errors.New("paths.videos must not be empty")
	}
	return nil
}

// ValidateRemote additionally checks the settings needed to talk to YouTube
// and the media server.
func (c *Config) ValidateRemote() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var missing []string
	if c.Server.ServerURL == "" {
		missing = append(missing, "server.server_url")
	}
	if c.Server.RTMPBaseURL == "" {
		missing = append(missing, "server.rtmp_base_url")
	}
	if c.API.SecretKey == "" {
		missing = append(missing, "api.secret_key")
	}
	if len(c.API.Scopes) == 0 {
		missing = append(missing, "api.scopes")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	switch c.YouTube.Privacy {
	case "public", "unlisted", "private":
	default:
		return fmt.Errorf("invalid privacy %q (use public, unlisted or private)", c.YouTube.Privacy)
	}
	return nil
}

// Schedule returns the scheduler parameters. Validate must have succeeded.
func (c *Config) Schedule() (schedule.Config, error) {
	loc, err := time.LoadLocation(c.Settings.Timezone)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("invalid timezone %q: %w", c.Settings.Timezone, err)
	}
	return schedule.Config{
		IntervalHours:  c.Settings.IntervalHours,
		DayStartHour:   c.Settings.DayStartHour,
		DayStartMinute: c.Settings.DayStartMinute,
		Location:       loc,
	}, nil
}
