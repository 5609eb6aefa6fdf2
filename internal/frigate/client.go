// Package frigate builds links to a Frigate NVR's HTTP API and optionally
// verifies that event clips are actually downloadable before they are linked
// in a report.
package frigate

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
	"github.com/tphakala/fox-report/internal/logging"
)

// Package-level logger specific to the frigate service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	// Define log file path relative to working directory
	logFilePath := filepath.Join("logs", "frigate.log")
	initialLevel := slog.LevelDebug
	serviceLevelVar.Set(initialLevel)

	// Initialize the service-specific file logger
	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "frigate", serviceLevelVar)
	if err != nil {
		// Fallback: Log error to standard log and disable service logging
		log.Printf("FATAL: Failed to initialize frigate file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "frigate")
		closeLogger = func() error { return nil }
	}
}

// DefaultTimelinePadding is the number of seconds added on both sides of an
// event when building a timeline clip link.
const DefaultTimelinePadding = 5

// ClipURL returns the playable clip address for an event.
func ClipURL(host, eventID string) string {
	return fmt.Sprintf("%s/api/events/%s/clip.mp4", strings.TrimRight(host, "/"), eventID)
}

// SnapshotURL returns the snapshot image address for an event.
func SnapshotURL(host, eventID string) string {
	return fmt.Sprintf("%s/api/events/%s/snapshot.jpg", strings.TrimRight(host, "/"), eventID)
}

// TimelineURL returns a clip address spanning the event with padding seconds
// on both sides. An end timestamp of zero marks an in-progress event; its
// padded end falls back to start+padding+10 seconds.
func TimelineURL(host, camera string, startTS, endTS float64, padding int) string {
	paddedStart := int64(startTS - float64(padding))
	var paddedEnd int64
	if endTS > 0 {
		paddedEnd = int64(endTS + float64(padding))
	} else {
		paddedEnd = int64(startTS) + int64(padding) + 10
	}
	return fmt.Sprintf("%s/api/%s/start/%d/end/%d/clip.mp4",
		strings.TrimRight(host, "/"), camera, paddedStart, paddedEnd)
}

// Config holds the client behavior knobs
type Config struct {
	Host     string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig() Config {
	return Config{
		Timeout:  10 * time.Second,
		CacheTTL: 15 * time.Minute,
	}
}

// Client verifies clip availability against the Frigate HTTP API
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
	debug      bool // Enable debug logging
}

// NewClient creates a new Frigate API client
func NewClient(config Config) (*Client, error) {
	if config.Host == "" {
		return nil, errors.Newf("frigate host is required for clip verification").
			Category(errors.CategoryConfiguration).
			Component("frigate").
			Build()
	}

	// Use defaults for missing config values
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultConfig().CacheTTL
	}

	// Get global debug setting
	settings := conf.GetSettings()
	debug := settings != nil && settings.Debug

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache: cache.New(config.CacheTTL, config.CacheTTL*2),
		debug: debug,
	}

	logger.Info("Frigate client initialized",
		"host", config.Host,
		"cache_ttl", config.CacheTTL,
		"timeout", config.Timeout,
		"debug", debug)

	return client, nil
}

// Host returns the configured Frigate base URL.
func (c *Client) Host() string {
	return c.config.Host
}

// Close cleans up client resources
func (c *Client) Close() {
	logger.Info("Closing Frigate client")

	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			// Use standard log since our logger might be closing
			log.Printf("Error closing frigate logger: %v", err)
		}
	}
}

// VerifyClip reports whether the event's clip URL answers a HEAD request with
// a success status. Responses are cached so report generation does not hammer
// the API; network failures are not cached because an unreachable host says
// nothing about the clip itself.
func (c *Client) VerifyClip(ctx context.Context, eventID string) bool {
	url := ClipURL(c.config.Host, eventID)

	if cached, found := c.cache.Get(url); found {
		if available, ok := cached.(bool); ok {
			logger.Debug("Clip availability cache hit",
				"event_id", eventID,
				"available", available)
			return available
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, http.NoBody)
	if err != nil {
		logger.Error("Failed to create clip verification request",
			"error", err,
			"event_id", eventID,
			"url", url)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Clip verification request failed",
			"error", err,
			"event_id", eventID,
			"url", url)
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	available := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.cache.Set(url, available, cache.DefaultExpiration)

	if c.debug {
		logger.Debug("Clip verified",
			"event_id", eventID,
			"status_code", resp.StatusCode,
			"available", available)
	}

	return available
}

// ClearCache clears all cached verification results
func (c *Client) ClearCache() {
	c.cache.Flush()
	logger.Info("Frigate verification cache cleared")
}
