package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Settings.IntervalHours)
	assert.Equal(t, 5, cfg.Settings.DayStartHour)
	assert.Equal(t, 30, cfg.Settings.DayStartMinute)
	assert.Equal(t, "LiveApp", cfg.Server.App)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SIMLIVE_SECRET_KEY", "")
	t.Setenv("SIMLIVE_SERVER_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("SIMLIVE_SECRET_KEY", "")
	t.Setenv("SIMLIVE_SERVER_URL", "")
	path := writeFile(t, `
settings:
  schedule_interval_hours: 3
  day_start_hour: 8
server:
  base_url: https://cdn.example/videos/
  rtmp_base_url: rtmp://a.rtmp.youtube.com/live2/
  server_url: https://ams.example:5443
api:
  secret_key: s3cret
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Settings.IntervalHours)
	assert.Equal(t, 8, cfg.Settings.DayStartHour)
	assert.Equal(t, 30, cfg.Settings.DayStartMinute, "unset keys keep defaults")
	assert.Equal(t, "https://cdn.example/videos/", cfg.Server.BaseURL)
	assert.Equal(t, "s3cret", cfg.API.SecretKey)
	require.NoError(t, cfg.ValidateRemote())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "api:\n  secret_key: from-file\n")
	t.Setenv("SIMLIVE_SECRET_KEY", "from-env")
	t.Setenv("SIMLIVE_SERVER_URL", "https://env.example")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.SecretKey)
	assert.Equal(t, "https://env.example", cfg.Server.ServerURL)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "settings: [unterminated")
	_, err := Load(path, true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Settings.IntervalHours = 0 }},
		{"negative interval", func(c *Config) { c.Settings.IntervalHours = -2 }},
		{"hour too large", func(c *Config) { c.Settings.DayStartHour = 24 }},
		{"minute negative", func(c *Config) { c.Settings.DayStartMinute = -1 }},
		{"unknown timezone", func(c *Config) { c.Settings.Timezone = "Mars/Olympus_Mons" }},
		{"bad color", func(c *Config) { c.Log.Color = "rainbow" }},
		{"empty videos", func(c *Config) { c.Paths.Videos = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateRemote_ReportsMissing(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateRemote()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.server_url")
	assert.Contains(t, err.Error(), "api.secret_key")

	cfg.Server.ServerURL = "https://ams"
	cfg.Server.RTMPBaseURL = "rtmp://x/"
	cfg.API.SecretKey = "k"
	cfg.YouTube.Privacy = "friends"
	assert.Error(t, cfg.ValidateRemote())
}

func TestSchedule(t *testing.T) {
	cfg := Default()
	sc, err := cfg.Schedule()
	require.NoError(t, err)
	assert.Equal(t, 2, sc.IntervalHours)
	want, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	assert.Equal(t, want.String(), sc.Location.String())
}

func TestRegister(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	apply := Register(fs)
	require.NoError(t, fs.Parse([]string{"-videos", "in", "-interval", "4", "-start", "07:45", "-color", "NEVER"}))

	cfg := Default()
	require.NoError(t, apply(&cfg))
	assert.Equal(t, "in", cfg.Paths.Videos)
	assert.Equal(t, 4, cfg.Settings.IntervalHours)
	assert.Equal(t, 7, cfg.Settings.DayStartHour)
	assert.Equal(t, 45, cfg.Settings.DayStartMinute)
	assert.Equal(t, ColorNever, cfg.Log.Color)
	assert.Equal(t, "stream_titles.xlsx", cfg.Paths.Titles)
}

func TestRegister_BadStart(t *testing.T) {
	for _, v := range []string{"noon", "5:30pm", "07:45:00", "24:00", "7:5"} {
		t.Run(v, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			apply := Register(fs)
			require.NoError(t, fs.Parse([]string{"-start", v}))
			cfg := Default()
			assert.Error(t, apply(&cfg))
			assert.Equal(t, Default().Settings.DayStartHour, cfg.Settings.DayStartHour)
		})
	}
}

func TestRegister_ZeroIntervalKeepsConfig(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	apply := Register(fs)
	require.NoError(t, fs.Parse([]string{"-interval", "0", "-start", "9:05"}))

	cfg := Default()
	cfg.Settings.IntervalHours = 3
	require.NoError(t, apply(&cfg))
	assert.Equal(t, 3, cfg.Settings.IntervalHours)
	assert.Equal(t, 9, cfg.Settings.DayStartHour)
	assert.Equal(t, 5, cfg.Settings.DayStartMinute)
	assert.Contains(t, fs.Lookup("interval").Usage, "0 keeps the configured value")
}
