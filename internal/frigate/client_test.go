package frigate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		eventID string
		want    string
	}{
		{
			name:    "plain host",
			host:    "https://frigate.example.org",
			eventID: "1736550000.123456-abc123",
			want:    "https://frigate.example.org/api/events/1736550000.123456-abc123/clip.mp4",
		},
		{
			name:    "trailing slash stripped",
			host:    "https://frigate.example.org/",
			eventID: "evt1",
			want:    "https://frigate.example.org/api/events/evt1/clip.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClipURL(tt.host, tt.eventID))
		})
	}
}

func TestSnapshotURL(t *testing.T) {
	t.Parallel()

	got := SnapshotURL("https://frigate.example.org", "evt1")
	assert.Equal(t, "https://frigate.example.org/api/events/evt1/snapshot.jpg", got)
}

func TestTimelineURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		camera  string
		startTS float64
		endTS   float64
		padding int
		want    string
	}{
		{
			name:    "completed event",
			camera:  "backyard",
			startTS: 1736550000.7,
			endTS:   1736550150.2,
			padding: 5,
			want:    "https://frigate.example.org/api/backyard/start/1736549995/end/1736550155/clip.mp4",
		},
		{
			name:    "in-progress event falls back past the start",
			camera:  "driveway",
			startTS: 1736550000.0,
			endTS:   0,
			padding: 5,
			want:    "https://frigate.example.org/api/driveway/start/1736549995/end/1736550015/clip.mp4",
		},
		{
			name:    "zero padding",
			camera:  "backyard",
			startTS: 1736550000.0,
			endTS:   1736550100.0,
			padding: 0,
			want:    "https://frigate.example.org/api/backyard/start/1736550000/end/1736550100/clip.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TimelineURL("https://frigate.example.org", tt.camera, tt.startTS, tt.endTS, tt.padding)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")
}

func TestNewClientAppliesDefaults(t *testing.T) {
	client, err := NewClient(Config{Host: "https://frigate.example.org"})
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Timeout, client.config.Timeout)
	assert.Equal(t, DefaultConfig().CacheTTL, client.config.CacheTTL)
	assert.Equal(t, "https://frigate.example.org", client.Host())
}

func TestVerifyClip(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		require.Equal(t, http.MethodHead, r.Method)

		switch r.URL.Path {
		case "/api/events/evt-good/clip.mp4":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{Host: server.URL, CacheTTL: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()

	assert.True(t, client.VerifyClip(ctx, "evt-good"))
	assert.False(t, client.VerifyClip(ctx, "evt-missing"))

	// Both answers must now come from the cache
	countAfterFirstRound := requests.Load()
	assert.True(t, client.VerifyClip(ctx, "evt-good"))
	assert.False(t, client.VerifyClip(ctx, "evt-missing"))
	assert.Equal(t, countAfterFirstRound, requests.Load(), "cached verification should not hit the API again")
}

func TestVerifyClipUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // Shut down before the client talks to it

	client, err := NewClient(Config{Host: server.URL, Timeout: time.Second})
	require.NoError(t, err)

	assert.False(t, client.VerifyClip(context.Background(), "evt-any"))
}

func TestVerifyClipServerErrorCached(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodHead, "https://frigate.example.org/api/events/evt-broken/clip.mp4",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	client, err := NewClient(Config{Host: "https://frigate.example.org", CacheTTL: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()
	assert.False(t, client.VerifyClip(ctx, "evt-broken"))
	assert.False(t, client.VerifyClip(ctx, "evt-broken"))

	// A definitive server answer is cached even when it is an error status,
	// unlike a transport failure
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClearCache(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Config{Host: server.URL})
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, client.VerifyClip(ctx, "evt1"))
	assert.True(t, client.VerifyClip(ctx, "evt1"))
	assert.EqualValues(t, 1, requests.Load())

	client.ClearCache()
	assert.True(t, client.VerifyClip(ctx, "evt1"))
	assert.EqualValues(t, 2, requests.Load())
}
