// Package youtube creates scheduled live streams and broadcasts through the
// YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// Stream is a created live stream and its ingestion key.
type Stream struct {
	ID  string
	Key string
}

// StreamScheduler creates streams and broadcasts on the authorized channel.
type StreamScheduler struct {
	service  *ytapi.Service
	limiter  *rate.Limiter
	privacy  string
	attempts uint
	delay    time.Duration
}

// Options configures a StreamScheduler.
type Options struct {
	Privacy           string  // public, unlisted or private.
	RequestsPerSecond float64 // Zero disables pacing.
	Attempts          uint    // Zero means 3.
	Delay             time.Duration
}

// NewStreamScheduler wraps an authorized HTTP client. Extra client options,
// such as an endpoint override, are passed to the API service.
func NewStreamScheduler(ctx context.Context, client *http.Client, opts Options, extra ...option.ClientOption) (*StreamScheduler, error) {
	service, err := ytapi.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.Delay == 0 {
		opts.Delay = 2 * time.Second
	}
	return &StreamScheduler{
		service:  service,
		limiter:  rate.NewLimiter(limit, 1),
		privacy:  opts.Privacy,
		attempts: opts.Attempts,
		delay:    opts.Delay,
	}, nil
}

// call paces and retries one API request.
func (s *StreamScheduler) call(ctx context.Context, fn func() error) error {
	return retry.Do(
		func() error {
			if err := s.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return fn()
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

// isTransient reports whether err is a server-side or quota-pacing failure.
func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 500 || gerr.Code == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func newLiveStream(name string) *ytapi.LiveStream {
	return &ytapi.LiveStream{
		Snippet: &ytapi.LiveStreamSnippet{
			Title: name,
		},
		Cdn: &ytapi.CdnSettings{
			FrameRate:     "30fps",
			IngestionType: "rtmp",
			Resolution:    "1080p",
		},
	}
}

func newLiveBroadcast(title string, start time.Time, privacy string) *ytapi.LiveBroadcast {
	return &ytapi.LiveBroadcast{
		Snippet: &ytapi.LiveBroadcastSnippet{
			Title:              title,
			ScheduledStartTime: start.UTC().Format(time.RFC3339),
		},
		ContentDetails: &ytapi.LiveBroadcastContentDetails{
			EnableAutoStart: true,
			EnableAutoStop:  true,
		},
		Status: &ytapi.LiveBroadcastStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
}

// CreateStream inserts a 1080p RTMP live stream titled name.
func (s *StreamScheduler) CreateStream(ctx context.Context, name string) (Stream, error) {
	var resp *ytapi.LiveStream
	err := s.call(ctx, func() error {
		var err error
		resp, err = s.service.LiveStreams.Insert([]string{"snippet", "cdn"}, newLiveStream(name)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return Stream{}, fmt.Errorf("error creating stream: %w", err)
	}
	if resp.Cdn == nil || resp.Cdn.IngestionInfo == nil {
		return Stream{}, fmt.Errorf("stream %s has no ingestion info", resp.Id)
	}
	return Stream{ID: resp.Id, Key: resp.Cdn.IngestionInfo.StreamName}, nil
}

// CreateEvent inserts a broadcast that starts and stops with its stream and
// binds it to streamID. The returned id is also the broadcast's video id.
func (s *StreamScheduler) CreateEvent(ctx context.Context, title string, start time.Time, streamID string) (string, error) {
	var broadcast *ytapi.LiveBroadcast
	err := s.call(ctx, func() error {
		var err error
		broadcast, err = s.service.LiveBroadcasts.Insert(
			[]string{"snippet", "status", "contentDetails"},
			newLiveBroadcast(title, start, s.privacy),
		).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("error creating broadcast: %w", err)
	}

	err = s.call(ctx, func() error {
		_, err := s.service.LiveBroadcasts.Bind(broadcast.Id, []string{"id", "contentDetails"}).
			StreamId(streamID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return broadcast.Id, fmt.Errorf("error binding broadcast %s to stream %s: %w", broadcast.Id, streamID, err)
	}
	return broadcast.Id, nil
}

// UploadThumbnail sets the image at path as the broadcast's thumbnail.
func (s *StreamScheduler) UploadThumbnail(ctx context.Context, broadcastID, path string) error {
	return s.call(ctx, func() error {
		f, err := os.Open(path)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("open thumbnail: %w", err))
		}
		defer f.Close()
		_, err = s.service.Thumbnails.Set(broadcastID).Media(f).Context(ctx).Do()
		return err
	})
}
