// Package basis talks to the Alaska Legislature BASIS public service and
// decodes its loosely structured meeting payloads.
package basis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// queryLayout is the date form the BASIS query header expects.
const queryLayout = "01/02/2006"

// Client issues date-scoped meeting queries against one BASIS deployment.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	timeout    time.Duration
	log        *slog.Logger
}

// New builds a client for the given base URL and API version. timeout bounds
// each single-date request.
func New(baseURL, version string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		version:    version,
		timeout:    timeout,
		log:        logger,
	}
}

// Fetch retrieves the raw meeting entries scheduled on one date. Failures are
// reported as *FetchError so callers can distinguish transport, remote, and
// payload problems; none of them poison other dates in a range.
func (c *Client) Fetch(ctx context.Context, date time.Time) ([]Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/meetings?json=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Date: date, Err: err}
	}
	req.Header.Set("X-Alaska-Legislature-Basis-Version", c.version)
	req.Header.Set("X-Alaska-Legislature-Basis-Query",
		fmt.Sprintf("meetings;date=%s;details", date.Format(queryLayout)))
	req.Header.Set("Accept-Language", "en")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Date: date, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &FetchError{
			Kind:   KindRemote,
			Date:   date,
			Status: res.StatusCode,
			Err:    fmt.Errorf("status %d: %s", res.StatusCode, string(body)),
		}
	}

	var envelope payload
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, &FetchError{Kind: KindParse, Date: date, Err: err}
	}
	if envelope.Basis == nil {
		return nil, &FetchError{Kind: KindParse, Date: date, Err: fmt.Errorf("no Basis element in response")}
	}
	if !envelope.Basis.Meetings.present {
		return nil, &FetchError{Kind: KindParse, Date: date, Err: fmt.Errorf("no Meetings element in Basis")}
	}

	meetings := envelope.Basis.Meetings.Items
	c.log.Debug("fetched meetings",
		slog.String("date", date.Format(queryLayout)),
		slog.Int("count", len(meetings)),
	)
	return meetings, nil
}

// RetryPolicy wraps single-date fetches with bounded retries. The zero value
// means no retries.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// FetchWithRetry runs Fetch up to p.Attempts+1 times, sleeping p.Backoff
// (doubled each attempt) between tries. Parse failures are not retried; the
// payload will not improve on a second read.
func (c *Client) FetchWithRetry(ctx context.Context, date time.Time, p RetryPolicy) ([]Meeting, error) {
	var lastErr error
	backoff := p.Backoff

	for attempt := 0; attempt <= p.Attempts; attempt++ {
		meetings, err := c.Fetch(ctx, date)
		if err == nil {
			return meetings, nil
		}
		lastErr = err

		if fe, ok := err.(*FetchError); ok && fe.Kind == KindParse {
			break
		}
		if attempt == p.Attempts {
			break
		}

		c.log.Warn("fetch failed, retrying",
			slog.String("date", date.Format(queryLayout)),
			slog.Int("attempt", attempt+1),
			slog.Any("err", err),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, lastErr
		}
		backoff *= 2
	}

	return nil, lastErr
}
