package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

// Watcher client-name prefixes used for bucket discovery.
const (
	windowClientPrefix  = "aw-watcher-window"
	afkClientPrefix     = "aw-watcher-afk"
	browserClientPrefix = "aw-watcher-web"
)

// Client queries a local ActivityWatch server for bucketed events.
type Client struct {
	baseURL    string
	httpClient *http.Client

	bucketsCache map[string]BucketInfo
}

// NewClient creates a collector client for the given ActivityWatch host,
// e.g. "http://localhost:5600".
func NewClient(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(host, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type BucketInfo struct {
	ID     string `json:"id"`
	Client string `json:"client"`
	Type   string `json:"type"`
}

// awEvent is the wire shape of one ActivityWatch event. Payload values
// are not always strings (booleans, counts), so they are decoded loosely
// and stringified.
type awEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Duration  float64        `json:"duration"`
	Data      map[string]any `json:"data"`
}

// Buckets returns all buckets known to the server, cached after the
// first call.
func (c *Client) Buckets(ctx context.Context) (map[string]BucketInfo, error) {
	if c.bucketsCache != nil {
		return c.bucketsCache, nil
	}

	var buckets map[string]BucketInfo
	if err := c.getJSON(ctx, c.baseURL+"/api/0/buckets", &buckets); err != nil {
		return nil, &domain.DataSourceError{Op: "list buckets", Err: err}
	}
	c.bucketsCache = buckets
	return buckets, nil
}

// FindBucket returns the first bucket whose client name starts with
// prefix, or "" when none matches.
func (c *Client) FindBucket(ctx context.Context, prefix string) (string, error) {
	buckets, err := c.Buckets(ctx)
	if err != nil {
		return "", err
	}
	for id, info := range buckets {
		if strings.HasPrefix(info.Client, prefix) {
			return id, nil
		}
	}
	return "", nil
}

// FindAllBuckets returns every bucket whose client name starts with prefix.
func (c *Client) FindAllBuckets(ctx context.Context, prefix string) ([]string, error) {
	buckets, err := c.Buckets(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for id, info := range buckets {
		if strings.HasPrefix(info.Client, prefix) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Events fetches the events of one bucket within [start, end) and tags
// them with the given kind.
func (c *Client) Events(ctx context.Context, bucketID string, kind domain.EventKind, start, end time.Time) ([]domain.RawEvent, error) {
	u, err := url.Parse(c.baseURL + "/api/0/buckets/" + url.PathEscape(bucketID) + "/events")
	if err != nil {
		return nil, &domain.DataSourceError{Op: "build events URL", Err: err}
	}
	q := u.Query()
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	var events []awEvent
	if err := c.getJSON(ctx, u.String(), &events); err != nil {
		return nil, &domain.DataSourceError{Op: "fetch events for " + bucketID, Err: err}
	}

	raw := make([]domain.RawEvent, 0, len(events))
	for _, ev := range events {
		raw = append(raw, domain.RawEvent{
			Kind:      kind,
			Timestamp: ev.Timestamp,
			Duration:  time.Duration(ev.Duration * float64(time.Second)),
			Payload:   stringifyPayload(ev.Data),
		})
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func stringifyPayload(data map[string]any) map[string]string {
	payload := make(map[string]string, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case string:
			payload[k] = val
		case bool:
			payload[k] = strconv.FormatBool(val)
		case float64:
			payload[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			payload[k] = fmt.Sprint(val)
		}
	}
	return payload
}
