package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/tracing"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	userAgent = "gowatchlist/1.0"

	// posterUnavailable is what OMDb puts in Poster when it has no image
	posterUnavailable = "N/A"

	// lowConfidenceRatio flags matches whose title distance exceeds this share of the requested title
	lowConfidenceRatio = 0.5
)

// ErrUpstreamUnavailable marks transport and decoding failures. It never leaves this package
// except inside Result.Err.
var ErrUpstreamUnavailable = errors.New("omdb unavailable")

// Response represents the JSON body returned by the OMDb title endpoint
type Response struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Type     string `json:"Type"`
	Poster   string `json:"Poster"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Result is the outcome of a poster lookup. A failed lookup is a Result with
// Success false, never an error return.
type Result struct {
	Success   bool
	PosterURL *string
	Err       error // why the lookup failed, for logging

	MatchedTitle string // title OMDb answered with
	Distance     int    // edit distance between requested and matched title
}

// Client queries OMDb for poster URLs
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewClient creates a new OMDb client
func NewClient(cfg *config.Config, tp trace.TracerProvider, m *metrics.Metrics, logger *logrus.Logger) (*Client, error) {
	if _, err := url.Parse(cfg.OMDbURL); err != nil {
		return nil, fmt.Errorf("invalid OMDb URL: %w", err)
	}
	if cfg.OMDbAPIKey == "" {
		logger.Warn("OMDB_API_KEY is not set, poster lookups will find nothing")
	}

	return &Client{
		baseURL: cfg.OMDbURL,
		apiKey:  cfg.OMDbAPIKey,
		httpClient: &http.Client{
			Timeout: cfg.OMDbTimeout,
		},
		tracer:  tp.Tracer(tracing.InstrumentationName),
		metrics: m,
		logger:  logger,
	}, nil
}

// Lookup finds the poster URL for a title. The media type is a free-form hint.
func (c *Client) Lookup(ctx context.Context, title, mediaType string) Result {
	return c.lookup(ctx, title, mediaType, 0)
}

// Refresh is Lookup; the uncached client has nothing to bypass
func (c *Client) Refresh(ctx context.Context, title, mediaType string) Result {
	return c.lookup(ctx, title, mediaType, 0)
}

// LookupWithYear tries a year-qualified lookup first when the year is plausible,
// then falls back to a plain lookup
func (c *Client) LookupWithYear(ctx context.Context, title, mediaType string, year int) Result {
	if year > 1900 {
		result := c.lookup(ctx, title, mediaType, year)
		if result.Success {
			return result
		}
		c.logger.WithFields(logrus.Fields{
			"title": title,
			"year":  year,
		}).Debug("Year-qualified lookup failed, retrying without year")
	}
	return c.lookup(ctx, title, mediaType, 0)
}

// lookup performs one OMDb query. year 0 means no year restriction.
func (c *Client) lookup(ctx context.Context, title, mediaType string, year int) Result {
	cleanTitle := CleanTitle(title)
	omdbType := MapMediaType(mediaType)

	ctx, span := c.tracer.Start(ctx, "omdb.lookup", trace.WithAttributes(
		attribute.String("omdb.title", cleanTitle),
		attribute.String("omdb.type", omdbType),
		attribute.Int("omdb.year", year),
	))
	defer span.End()

	logger := c.logger.WithFields(logrus.Fields{
		"title": title,
		"type":  omdbType,
	})

	if cleanTitle == "" {
		logger.Debug("Title is empty after cleaning, skipping poster lookup")
		c.metrics.ObserveLookup(metrics.LookupNotFound)
		return Result{Err: errors.New("empty title")}
	}

	resp, err := c.fetch(ctx, cleanTitle, omdbType, year)
	if err != nil {
		logger.WithError(err).Warn("OMDb lookup failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.ObserveLookup(metrics.LookupError)
		return Result{Err: err}
	}

	if resp.Response != "True" {
		logger.WithField("omdb_error", resp.Error).Debug("Title not found on OMDb")
		c.metrics.ObserveLookup(metrics.LookupNotFound)
		return Result{Err: fmt.Errorf("omdb: %s", resp.Error), MatchedTitle: resp.Title}
	}

	if resp.Poster == "" || resp.Poster == posterUnavailable {
		logger.Debug("No poster available")
		c.metrics.ObserveLookup(metrics.LookupNotFound)
		return Result{Err: errors.New("omdb: no poster"), MatchedTitle: resp.Title}
	}

	distance := levenshtein.ComputeDistance(strings.ToLower(cleanTitle), strings.ToLower(CleanTitle(resp.Title)))
	span.SetAttributes(attribute.Int("omdb.distance", distance))
	if float64(distance) > float64(len(cleanTitle))*lowConfidenceRatio {
		logger.WithFields(logrus.Fields{
			"matched_title": resp.Title,
			"distance":      distance,
		}).Info("Accepted poster for a dissimilar title")
		c.metrics.ObserveLowConfidenceMatch()
	}

	poster := resp.Poster
	logger.WithField("poster_url", poster).Debug("Poster found")
	c.metrics.ObserveLookup(metrics.LookupFound)
	return Result{
		Success:      true,
		PosterURL:    &poster,
		MatchedTitle: resp.Title,
		Distance:     distance,
	}
}

// fetch performs the HTTP request and decodes the OMDb response
func (c *Client) fetch(ctx context.Context, cleanTitle, omdbType string, year int) (*Response, error) {
	apiURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid OMDb URL: %v", ErrUpstreamUnavailable, err)
	}

	params := url.Values{}
	params.Set("t", cleanTitle)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	params.Set("type", omdbType)
	params.Set("apikey", c.apiKey)
	apiURL.RawQuery = params.Encode()

	c.logger.WithFields(logrus.Fields{
		"title": cleanTitle,
		"type":  omdbType,
		"year":  year,
	}).Debug("Performing OMDb lookup")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var omdbResp Response
	if err := json.NewDecoder(resp.Body).Decode(&omdbResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUpstreamUnavailable, err)
	}

	return &omdbResp, nil
}
