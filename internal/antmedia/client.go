// Package antmedia registers scheduled playlist broadcasts with an Ant Media
// Server over its REST API.
package antmedia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PlaylistItem is one source in a playlist broadcast.
type PlaylistItem struct {
	Name      string `json:"name"`
	StreamURL string `json:"streamUrl"`
}

// Playlist is the broadcast body accepted by broadcasts/create.
type Playlist struct {
	Name                string         `json:"name"`
	StreamID            string         `json:"streamId"`
	PlayListItemList    []PlaylistItem `json:"playListItemList"`
	CurrentPlayIndex    int            `json:"currentPlayIndex"`
	PlaylistLoopEnabled bool           `json:"playlistLoopEnabled"`
	Status              string         `json:"status"`
	Type                string         `json:"type"`
	PlannedStartDate    int64          `json:"plannedStartDate"` // Unix seconds.
	RTMPURL             string         `json:"rtmpURL"`
}

// NewPlaylist builds a single-item playlist that starts at start and pushes to
// rtmpURL. The stream id is the base name of videoURL without its extension.
func NewPlaylist(name, videoURL string, start time.Time, rtmpURL string) Playlist {
	base := path.Base(videoURL)
	return Playlist{
		Name:     name,
		StreamID: strings.TrimSuffix(base, path.Ext(base)),
		PlayListItemList: []PlaylistItem{
			{Name: name, StreamURL: videoURL},
		},
		CurrentPlayIndex:    0,
		PlaylistLoopEnabled: false,
		Status:              "created",
		Type:                "playlist",
		PlannedStartDate:    start.UTC().Unix(),
		RTMPURL:             rtmpURL,
	}
}

// Token returns the HS256 JWT the server expects in the Authorization header.
func Token(secret, app string, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("empty JWT secret")
	}
	claims := jwt.MapClaims{
		"aud": app,
		"sub": "token",
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// APIError is a non-200 reply from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ant media returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to one Ant Media application.
type Client struct {
	baseURL    string
	app        string
	token      string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient signs a token with secret and returns a client for app on
// serverURL.
func NewClient(serverURL, app, secret string, opts ...Option) (*Client, error) {
	token, err := Token(secret, app, time.Now())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(serverURL, "/"),
		app:        app,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
		delay:      time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) createURL() string {
	return fmt.Sprintf("%s/%s/rest/v2/broadcasts/create", c.baseURL, c.app)
}

// CreatePlaylist registers p. Only a 200 reply counts as success; transport
// errors and 5xx replies are retried.
func (c *Client) CreatePlaylist(ctx context.Context, p Playlist) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode playlist: %w", err)
	}
	return retry.Do(
		func() error { return c.post(ctx, body) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.createURL(), bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}
