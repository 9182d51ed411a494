package statusline

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"
)

// DefaultAPIURL is the usage endpoint polled for limit data.
const DefaultAPIURL = "https://api.anthropic.com/api/oauth/usage"

// DefaultCacheTTL is how long a fetched usage payload stays fresh. The
// status line redraws far more often than limits move.
const DefaultCacheTTL = 60 * time.Second

// fetchTimeout bounds one usage API request.
const fetchTimeout = 5 * time.Second

// Window is one rolling usage limit window.
type Window struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    string  `json:"resets_at"`
}

// Usage is the subset of the usage API response the status line shows.
type Usage struct {
	FiveHour *Window `json:"five_hour,omitempty"`
	SevenDay *Window `json:"seven_day,omitempty"`
}

type cacheEnvelope struct {
	FetchedAt int64  `json:"fetched_at"`
	Data      *Usage `json:"data"`
}

// UsageClient fetches usage data through a scratch-file cache so that
// frequent redraws cost one HTTP request per TTL, not per draw.
type UsageClient struct {
	APIURL    string
	CachePath string
	TTL       time.Duration
	HTTP      *http.Client

	// now is swapped in tests.
	now func() time.Time
}

// NewUsageClient wires a client with the default endpoint and timeout.
func NewUsageClient(cachePath string) *UsageClient {
	return &UsageClient{
		APIURL:    DefaultAPIURL,
		CachePath: cachePath,
		TTL:       DefaultCacheTTL,
		HTTP:      &http.Client{Timeout: fetchTimeout},
		now:       time.Now,
	}
}

// Fetch returns current usage data, preferring the fresh cache, then
// the network, then a stale cache. A nil return means nothing usable
// was available anywhere.
func (c *UsageClient) Fetch(ctx context.Context, token string) *Usage {
	if cached := c.readCache(false); cached != nil {
		return cached
	}

	usage, err := c.fetchRemote(ctx, token)
	if err == nil && usage != nil {
		c.writeCache(usage)
		return usage
	}
	// Network failed; a stale cache beats nothing.
	return c.readCache(true)
}

func (c *UsageClient) fetchRemote(ctx context.Context, token string) (*Usage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("anthropic-beta", "oauth-2025-04-20")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiError{status: resp.StatusCode}
	}

	var usage Usage
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

type apiError struct{ status int }

func (e *apiError) Error() string { return http.StatusText(e.status) }

func (c *UsageClient) readCache(allowStale bool) *Usage {
	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return nil
	}
	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if !allowStale {
		age := c.now().UnixMilli() - env.FetchedAt
		if age < 0 || age >= c.TTL.Milliseconds() {
			return nil
		}
	}
	return env.Data
}

func (c *UsageClient) writeCache(usage *Usage) {
	env := cacheEnvelope{FetchedAt: c.now().UnixMilli(), Data: usage}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	// Cache write failure is not worth surfacing.
	_ = os.WriteFile(c.CachePath, data, 0o644)
}
