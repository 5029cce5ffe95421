package sonar

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
	"time"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 30 * time.Second

// treePageSize is the largest page the component tree endpoint serves.
const treePageSize = 500

// ErrAPI is returned for non-200 responses.
var ErrAPI = errors.New("sonar API request failed")

// Client talks to the SonarQube web API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL. The token is sent as
// the basic-auth user, which every SonarQube version accepts.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.SetBasicAuth(c.token, "")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d: %s", ErrAPI, path, resp.StatusCode, apiMessage(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error parsing %s response: %w", path, err)
	}
	return nil
}

func apiMessage(body []byte) string {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && len(e.Errors) > 0 {
		msgs := make([]string, len(e.Errors))
		for i, m := range e.Errors {
			msgs[i] = m.Msg
		}
		return strings.Join(msgs, "; ")
	}
	return strings.TrimSpace(string(body))
}

// MeasuresAt returns the values of metrics recorded for component on day.
// Metrics with no analysis on that day are absent from the result. When a day
// holds several analyses, the last one wins.
func (c *Client) MeasuresAt(ctx context.Context, component string, day time.Time, metrics []string) (map[string]string, error) {
	date := day.Format("2006-01-02")
	query := url.Values{
		"component": {component},
		"metrics":   {strings.Join(metrics, ",")},
		"from":      {date},
		"to":        {date},
	}

	var resp searchHistoryResponse
	if err := c.get(ctx, "/api/measures/search_history", query, &resp); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(resp.Measures))
	for _, m := range resp.Measures {
		for _, h := range m.History {
			if h.Value != "" {
				values[m.Metric] = h.Value
			}
		}
	}
	return values, nil
}

// ComponentTree returns per-file measures for component, following every page.
func (c *Client) ComponentTree(ctx context.Context, component string, metrics []string) ([]FileMeasures, error) {
	var files []FileMeasures
	for page := 1; ; page++ {
		query := url.Values{
			"component":  {component},
			"metricKeys": {strings.Join(metrics, ",")},
			"qualifiers": {"FIL"},
			"ps":         {strconv.Itoa(treePageSize)},
			"p":          {strconv.Itoa(page)},
		}

		var resp componentTreeResponse
		if err := c.get(ctx, "/api/measures/component_tree", query, &resp); err != nil {
			return nil, err
		}

		for _, comp := range resp.Components {
			fm := FileMeasures{Key: comp.Key, Path: comp.Path, Measures: make(map[string]string, len(comp.Measures))}
			for _, m := range comp.Measures {
				fm.Measures[m.Metric] = m.Value
			}
			files = append(files, fm)
		}

		size := resp.Paging.PageSize
		if size == 0 {
			size = treePageSize
		}
		if len(resp.Components) == 0 || page*size >= resp.Paging.Total {
			return files, nil
		}
	}
}
