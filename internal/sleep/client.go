// Package sleep fetches nightly sleep records from the Oura API.
package sleep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mfenderov/chrono/internal/event"
)

// ErrProviderFailure is returned when the provider answers with a non-200 status.
var ErrProviderFailure = errors.New("sleep provider failure")

// DefaultTimeout bounds a request when the caller passes no timeout.
const DefaultTimeout = 30 * time.Second

const sleepPath = "/v2/usercollection/sleep"

// Record is one night, keyed by the date the provider assigns to it.
type Record struct {
	Date   time.Time
	Start  event.Clock
	End    event.Clock
	Phases string
}

// Client talks to the provider over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a client for baseURL authenticating with token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Default(),
	}
}

// WithLogger sets the logger used to report skipped records.
func (c *Client) WithLogger(l *log.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

type sleepResponse struct {
	Data []struct {
		Day            string `json:"day"`
		BedtimeStart   string `json:"bedtime_start"`
		BedtimeEnd     string `json:"bedtime_end"`
		SleepPhase5Min string `json:"sleep_phase_5_min"`
	} `json:"data"`
}

// Fetch returns the records for the nights in [start, stop]. Records whose
// day or bedtimes cannot be parsed are skipped.
func (c *Client) Fetch(ctx context.Context, start, stop time.Time) ([]Record, error) {
	q := url.Values{}
	q.Set("start_date", event.DateKey(start))
	q.Set("end_date", event.DateKey(stop))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sleepPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s: %w", resp.StatusCode, string(body), ErrProviderFailure)
	}

	var sr sleepResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	records := make([]Record, 0, len(sr.Data))
	for _, d := range sr.Data {
		day, err := event.ParseDate(d.Day)
		if err != nil {
			c.logger.Debug("Skipping sleep record", "day", d.Day, "error", err)
			continue
		}
		bedStart, err1 := time.Parse(time.RFC3339, d.BedtimeStart)
		bedEnd, err2 := time.Parse(time.RFC3339, d.BedtimeEnd)
		if err := errors.Join(err1, err2); err != nil {
			c.logger.Debug("Skipping sleep record", "day", d.Day, "error", err)
			continue
		}
		records = append(records, Record{
			Date:   day,
			Start:  event.ClockOf(bedStart),
			End:    event.ClockOf(bedEnd),
			Phases: d.SleepPhase5Min,
		})
	}
	return records, nil
}
