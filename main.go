package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"simlive/internal/antmedia"
	"simlive/internal/config"
	"simlive/internal/logging"
	"simlive/internal/pipeline"
	"simlive/internal/release"
	"simlive/internal/schedule"
	"simlive/internal/sheet"
	"simlive/internal/thumbnail"
	"simlive/internal/youtube"
)

const VERSION = "0.1.0"

const releasesURL = "https://api.github.com/repos/simlive/simlive/releases"

func printUsage() {
	fmt.Println("Simulated-live scheduler")
	fmt.Println()
	fmt.Println("Usage: simlive <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  plan      Show the schedule built from the video folder without calling any API")
	fmt.Println("  schedule  Create YouTube broadcasts and Ant Media playlists for every video")
	fmt.Println("  update    Update the CLI to the latest release")
	fmt.Println("  version   Print the version")
	fmt.Println()
	fmt.Println("Run 'simlive <command> --help' for more information on a command.")
}

func printFlagUsage(fs *flag.FlagSet, command string) {
	fmt.Printf("Usage: %s [options]\n\n", command)
	fmt.Println("Options:")
	fs.VisitAll(func(f *flag.Flag) {
		defaultVal := ""
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			defaultVal = fmt.Sprintf(" (default: %s)", f.DefValue)
		}
		fmt.Printf("  --%-14s %s%s\n", f.Name, f.Usage, defaultVal)
	})
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "plan":
		cmdPlan(os.Args[2:])
	case "schedule":
		cmdSchedule(os.Args[2:])
	case "update":
		cmdUpdate(os.Args[2:])
	case "-help", "--help", "help":
		printUsage()
	case "-version", "--version", "version":
		fmt.Printf("simlive version %s\n", VERSION)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadConfig parses the shared flags of plan and schedule and returns a
// validated config.
func loadConfig(name string, args []string, remote bool) config.Config {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	path := fs.String("config", config.DefaultFile, "YAML config file")
	apply := config.Register(fs)
	fs.Usage = func() { printFlagUsage(fs, "simlive "+name) }
	fs.Parse(args)

	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := config.Load(*path, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := apply(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	validate := cfg.Validate
	if remote {
		validate = cfg.ValidateRemote
	}
	if err := validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// buildPlan lists the video folder and schedules it in the current year.
func buildPlan(cfg config.Config, log *logging.Logger) (schedule.Plan, error) {
	sc, err := cfg.Schedule()
	if err != nil {
		return schedule.Plan{}, err
	}
	log.Section("Generating Videos from Files")
	log.Info("Reading videos from the '%s' folder...", cfg.Paths.Videos)
	names, err := pipeline.Discover(afero.NewOsFs(), cfg.Paths.Videos)
	if err != nil {
		return schedule.Plan{}, err
	}

	year := time.Now().In(sc.Location).Year()
	plan := schedule.NewPlan(names, cfg.Server.BaseURL, sc, year)
	for _, s := range plan.Skipped {
		log.Warn("Skipping %s: %s", s.FileName, s.Reason)
	}
	log.Info("Videos grouped by day and month:")
	for _, g := range plan.Groups {
		log.Info("  - %s (starting from %s):", g.Key, schedule.Anchor(g.Key, year, sc).Format(sheet.StartLayout))
		for _, e := range g.Entries {
			log.Info("      %s -> %s", e.Name, e.Start.Format(sheet.StartLayout))
		}
	}
	log.Success("Total videos processed: %d", len(plan.Entries))
	return plan, nil
}

func loadTitles(path string, log *logging.Logger) []string {
	log.Info("Loading stream titles from %s...", path)
	titles, err := sheet.ReadTitles(path)
	if err != nil {
		log.Error("Failed to load stream titles: %v", err)
		return nil
	}
	log.Success("Stream titles loaded successfully (%d).", len(titles))
	return titles
}

func cmdPlan(args []string) {
	cfg := loadConfig("plan", args, false)
	log := logging.New(cfg.Log)
	defer log.Close()

	plan, err := buildPlan(cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	titles := loadTitles(cfg.Paths.Titles, log)

	log.Section("Broadcast Plan")
	for i, e := range plan.Entries {
		log.Info("%3d. %s  %-24s  %s", i+1, e.Start.Format(sheet.StartLayout), e.Name, schedule.TitleFor(titles, i))
	}
}

func cmdSchedule(args []string) {
	cfg := loadConfig("schedule", args, true)
	log := logging.New(cfg.Log)
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Section("Loading Configuration")
	registrar, err := antmedia.NewClient(cfg.Server.ServerURL, cfg.Server.App, cfg.API.SecretKey)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("JWT for Ant Media Server generated")

	log.Section("Authenticating with YouTube API")
	client, err := getClient(ctx, cfg.API, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	broadcaster, err := youtube.NewStreamScheduler(ctx, client, youtube.Options{
		Privacy:           cfg.YouTube.Privacy,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
	})
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Success("YouTube API authentication successful.")

	log.Section("Processing Videos and Creating Playlists")
	titles := loadTitles(cfg.Paths.Titles, log)
	plan, err := buildPlan(cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	runner := &pipeline.Runner{
		Broadcaster: broadcaster,
		Thumbnailer: &thumbnail.Generator{Dir: cfg.Paths.Images},
		Registrar:   registrar,
		Log:         log,
		VideoDir:    cfg.Paths.Videos,
		RTMPBaseURL: cfg.Server.RTMPBaseURL,
	}
	res := runner.Run(ctx, plan.Entries, titles)

	log.Section("Saving Schedule")
	if err := sheet.WriteSchedule(cfg.Paths.Output, res.Rows); err != nil {
		log.Error("Error saving schedule to Excel: %v", err)
	} else {
		log.Success("Schedule saved successfully to '%s'.", cfg.Paths.Output)
	}

	if res.Err != nil {
		log.Warn("Run %s finished with %d error(s) across %d of %d videos.", res.ID, len(res.Err.Errors), res.Failed, res.Processed)
		if errors.Is(res.Err, context.Canceled) {
			os.Exit(130)
		}
		return
	}
	log.Success("Run %s finished: %d videos scheduled.", res.ID, res.Processed)
}

func cmdUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	fs.Usage = func() { printFlagUsage(fs, "simlive update") }
	fs.Parse(args)

	ctx := context.Background()
	updater := release.NewUpdater(releasesURL, VERSION)
	latestRelease, err := updater.GetLatestRelease(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := updater.Apply(ctx, latestRelease); err != nil {
		if errors.Is(err, release.ErrUpToDate) {
			fmt.Printf("simlive %s is already up to date\n", VERSION)
			return
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	exe, _ := os.Executable()
	fmt.Printf("Updated %s to %s\n", filepath.Base(exe), latestRelease.TagName)
}
