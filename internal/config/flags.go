package config

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

// Register binds the flags shared by the plan and schedule commands onto fs.
// The returned function must be called after fs.Parse to apply them over cfg.
func Register(fs *flag.FlagSet) func(cfg *Config) error {
	var (
		videos   = fs.String("videos", "", "Folder holding the video files")
		interval = fs.Int("interval", 0, "Hours between consecutive streams of the same day (0 keeps the configured value)")
		anchor   = fs.String("start", "", "Start time of the first stream of each day (HH:MM)")
		tz       = fs.String("timezone", "", "IANA time zone the start times are given in")
		titles   = fs.String("titles", "", "Spreadsheet holding stream titles in a 'name' column")
		output   = fs.String("output", "", "Spreadsheet the schedule is written to")
		logFile  = fs.String("log", "", "Append logs to a rotating file")
		color    = fs.String("color", "", "Colored output: auto, always or never")
	)
	return func(cfg *Config) error {
		if *videos != "" {
			cfg.Paths.Videos = *videos
		}
		if *interval != 0 {
			cfg.Settings.IntervalHours = *interval
		}
		if *anchor != "" {
			t, err := time.Parse("15:04", *anchor)
			if err != nil {
				return fmt.Errorf("invalid -start %q (use HH:MM)", *anchor)
			}
			cfg.Settings.DayStartHour, cfg.Settings.DayStartMinute = t.Hour(), t.Minute()
		}
		if *tz != "" {
			cfg.Settings.Timezone = *tz
		}
		if *titles != "" {
			cfg.Paths.Titles = *titles
		}
		if *output != "" {
			cfg.Paths.Output = *output
		}
		if *logFile != "" {
			cfg.Log.File = *logFile
		}
		if *color != "" {
			cfg.Log.Color = ColorMode(strings.ToLower(*color))
		}
		return nil
	}
}
