// Package pipeline discovers video files and turns every scheduled entry
// into a YouTube broadcast and a media server playlist, one after another.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"simlive/internal/antmedia"
	"simlive/internal/logging"
	"simlive/internal/schedule"
	"simlive/internal/sheet"
	"simlive/internal/youtube"
)

// Broadcaster creates the YouTube side of an entry.
type Broadcaster interface {
	CreateStream(ctx context.Context, name string) (youtube.Stream, error)
	CreateEvent(ctx context.Context, title string, start time.Time, streamID string) (string, error)
	UploadThumbnail(ctx context.Context, broadcastID, path string) error
}

// Thumbnailer extracts a thumbnail and returns its path.
type Thumbnailer interface {
	Generate(ctx context.Context, videoPath, name string) (string, error)
}

// Registrar registers a playlist with the media server.
type Registrar interface {
	CreatePlaylist(ctx context.Context, p antmedia.Playlist) error
}

// Runner processes a plan entry by entry. A failed step is logged and
// recorded; the run moves on.
type Runner struct {
	Broadcaster Broadcaster
	Thumbnailer Thumbnailer
	Registrar   Registrar
	Log         *logging.Logger
	VideoDir    string
	RTMPBaseURL string
}

// Result summarizes a run.
type Result struct {
	ID        string
	Rows      []sheet.Row
	Processed int
	Failed    int // Entries with at least one failed step.
	Err       *multierror.Error
}

// Run processes entries in order, pairing entry i with TitleFor(titles, i).
// It stops before the next entry once ctx is done.
func (r *Runner) Run(ctx context.Context, entries []schedule.Entry, titles []string) Result {
	res := Result{ID: uuid.NewString()}
	r.Log.Info("Run %s: %d videos to process", res.ID, len(entries))

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			r.Log.Warn("Interrupted before %s", e.Name)
			res.Err = multierror.Append(res.Err, err)
			break
		}
		r.Log.Section("Processing Video %d/%d: %s", i+1, len(entries), e.Name)

		row, errs := r.process(ctx, e, schedule.TitleFor(titles, i))
		if row != nil {
			res.Rows = append(res.Rows, *row)
		}
		res.Processed++
		if len(errs) > 0 {
			res.Failed++
			res.Err = multierror.Append(res.Err, errs...)
			continue
		}
		r.Log.Success("Finished processing video %s.", e.Name)
	}
	return res
}

func (r *Runner) process(ctx context.Context, e schedule.Entry, title string) (*sheet.Row, []error) {
	var errs []error
	fail := func(step string, err error) {
		err = fmt.Errorf("%s: %s: %w", e.Name, step, err)
		r.Log.Error("%v", err)
		errs = append(errs, err)
	}

	r.Log.Info("YouTube Title: %s", title)
	r.Log.Info("Scheduled Start Time: %s", e.Start.Format(sheet.StartLayout))

	stream, err := r.Broadcaster.CreateStream(ctx, e.Name)
	if err != nil {
		fail("create stream", err)
		return nil, errs
	}
	r.Log.Success("Stream key created: %s (ID: %s)", stream.Key, stream.ID)
	rtmpURL := r.RTMPBaseURL + stream.Key

	videoPath := filepath.Join(r.VideoDir, e.FileName)
	thumb, err := r.Thumbnailer.Generate(ctx, videoPath, e.Name)
	if err != nil {
		r.Log.Error("Error generating thumbnail for %s: %v", videoPath, err)
		thumb = ""
	} else {
		r.Log.Success("Thumbnail generated: %s", thumb)
	}

	broadcastID, err := r.Broadcaster.CreateEvent(ctx, title, e.Start, stream.ID)
	switch {
	case err != nil:
		fail("create event", err)
	case thumb == "":
		r.Log.Success("Live broadcast event created with ID: %s", broadcastID)
		r.Log.Warn("No thumbnail path provided. Skipping thumbnail upload.")
	default:
		r.Log.Success("Live broadcast event created with ID: %s", broadcastID)
		if err := r.Broadcaster.UploadThumbnail(ctx, broadcastID, thumb); err != nil {
			fail("upload thumbnail", err)
		} else {
			r.Log.Success("Thumbnail successfully uploaded for event %s.", broadcastID)
		}
	}

	playlist := antmedia.NewPlaylist(e.Name, e.URL, e.Start, rtmpURL)
	r.Log.Info("Planned Start Date (UNIX timestamp in seconds): %d", playlist.PlannedStartDate)
	if err := r.Registrar.CreatePlaylist(ctx, playlist); err != nil {
		fail("create playlist", err)
	} else {
		r.Log.Success("Playlist created in Ant Media Server for '%s' with RTMP URL '%s'.", e.Name, rtmpURL)
	}

	return &sheet.Row{
		VideoName:    e.Name,
		YouTubeTitle: title,
		StartTime:    e.Start.Format(sheet.StartLayout),
		VideoURL:     e.URL,
		RTMPURL:      rtmpURL,
	}, errs
}
