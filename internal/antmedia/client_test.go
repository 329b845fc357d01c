package antmedia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestNewPlaylist(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	start := time.Date(2025, time.March, 1, 5, 30, 0, 0, loc)

	p := NewPlaylist("video01del03numero1", "https://cdn.example/v/video01del03numero1.mp4", start, "rtmp://yt/live2/key-1")

	assert.Equal(t, "video01del03numero1", p.StreamID)
	assert.Equal(t, int64(1740817800), p.PlannedStartDate) // 08:30 UTC.
	assert.Equal(t, []PlaylistItem{{Name: "video01del03numero1", StreamURL: "https://cdn.example/v/video01del03numero1.mp4"}}, p.PlayListItemList)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "created", raw["status"])
	assert.Equal(t, "playlist", raw["type"])
	assert.Equal(t, false, raw["playlistLoopEnabled"])
	assert.Equal(t, float64(0), raw["currentPlayIndex"])
	assert.Equal(t, "rtmp://yt/live2/key-1", raw["rtmpURL"])
}

func TestToken(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s, err := Token(testSecret, "LiveApp", now)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(s, claims, func(tok *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	require.NoError(t, err)

	assert.Equal(t, "LiveApp", claims["aud"])
	assert.Equal(t, "token", claims["sub"])
	assert.Equal(t, float64(1700000000), claims["iat"])
	assert.NotEmpty(t, claims["jti"])

	_, err = Token("", "LiveApp", now)
	assert.Error(t, err)
}

type fakeServer struct {
	status   []int
	calls    atomic.Int32
	lastAuth string
	last     Playlist
}

func (f *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	n := int(f.calls.Add(1)) - 1
	f.lastAuth = r.Header.Get("Authorization")
	_ = json.NewDecoder(r.Body).Decode(&f.last)
	status := http.StatusOK
	if n < len(f.status) {
		status = f.status[n]
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":true}`))
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/LiveApp/rest/v2/broadcasts/create", f.handler).
		Methods(http.MethodPost).
		Headers("Content-Type", "application/json")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", "LiveApp", testSecret, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	return c
}

func TestCreatePlaylist_OK(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)
	p := NewPlaylist("v1", "https://cdn/v1.mp4", time.Unix(1000, 0), "rtmp://x/k")

	require.NoError(t, c.CreatePlaylist(context.Background(), p))

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, c.token, f.lastAuth)
	assert.Equal(t, p, f.last)
}

func TestCreatePlaylist_RetriesServerErrors(t *testing.T) {
	f := &fakeServer{status: []int{http.StatusBadGateway, http.StatusServiceUnavailable}}
	c := newTestClient(t, f)

	require.NoError(t, c.CreatePlaylist(context.Background(), Playlist{Name: "v"}))
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestCreatePlaylist_ClientErrorNotRetried(t *testing.T) {
	f := &fakeServer{status: []int{http.StatusForbidden}}
	c := newTestClient(t, f)

	err := c.CreatePlaylist(context.Background(), Playlist{Name: "v"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, `{"success":true}`, apiErr.Body)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestCreatePlaylist_GivesUp(t *testing.T) {
	f := &fakeServer{status: []int{500, 500, 500, 500}}
	c := newTestClient(t, f)

	err := c.CreatePlaylist(context.Background(), Playlist{Name: "v"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestNewClient_EmptySecret(t *testing.T) {
	_, err := NewClient("http://ams", "LiveApp", "")
	assert.Error(t, err)
}
