package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"betpool/backend/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Fixture is the provider's representation of one match
type Fixture struct {
	Fixture struct {
		ID     int    `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
			Long  string `json:"long"`
		} `json:"status"`
	} `json:"fixture"`
	Teams struct {
		Home FixtureTeam `json:"home"`
		Away FixtureTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

// FixtureTeam is one side of a fixture
type FixtureTeam struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// KickoffTime parses the provider's fixture date
func (f *Fixture) KickoffTime() (time.Time, error) {
	return time.Parse(time.RFC3339, f.Fixture.Date)
}

// fixturesResponse is the provider's envelope around fixture lists
type fixturesResponse struct {
	Response []Fixture `json:"response"`
}

// Client is the API-Football (api-sports v3) client
type Client struct {
	baseURL     string
	apiKey      string
	leagueID    int
	season      int
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new API-Football client
// The league and season scope every fixture query
func NewClient(baseURL, apiKey string, leagueID, season int, timeout time.Duration) *Client {
	// Rate limiter (max 5 concurrent requests; the provider plan is tight)
	rateLimiter := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		leagueID:    leagueID,
		season:      season,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request to the provider with retry logic and rate limiting
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Rate limiting: acquire semaphore
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.rateLimiter:
			defer func() { c.rateLimiter <- struct{}{} }()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		// Add headers
		req.Header.Set("x-rapidapi-host", req.URL.Host)
		req.Header.Set("x-rapidapi-key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		// Add query parameters
		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("url", url).
			Str("method", req.Method).
			Int("attempt", attempt+1).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("API request failed: %w", err)
			// Retry on network errors
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		// Handle different status codes
		switch resp.StatusCode {
		case http.StatusOK:
			metrics.RecordAPICall(path, "success", time.Since(start).Seconds())
			log.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Retryable errors
			lastErr = fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			// Don't retry auth errors
			metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("API authentication failed (status %d): %s", resp.StatusCode, string(body))

		default:
			// Other errors - don't retry
			metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
	return nil, lastErr
}

// GetFixtures fetches all fixtures for the configured league and season
// The optional from/to dates (YYYY-MM-DD) narrow the range
func (c *Client) GetFixtures(ctx context.Context, from, to string) ([]Fixture, error) {
	params := map[string]string{
		"league": strconv.Itoa(c.leagueID),
		"season": strconv.Itoa(c.season),
	}
	if from != "" {
		params["from"] = from
	}
	if to != "" {
		params["to"] = to
	}

	body, err := c.get(ctx, "fixtures", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures: %w", err)
	}

	var resp fixturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixtures: %w", err)
	}

	return resp.Response, nil
}

// GetLiveFixtures fetches only the currently live fixtures for the league
func (c *Client) GetLiveFixtures(ctx context.Context) ([]Fixture, error) {
	body, err := c.get(ctx, "fixtures", map[string]string{
		"league": strconv.Itoa(c.leagueID),
		"season": strconv.Itoa(c.season),
		"live":   "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live fixtures: %w", err)
	}

	var resp fixturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal live fixtures: %w", err)
	}

	return resp.Response, nil
}
