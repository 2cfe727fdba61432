package client

import (
	"bytes"
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

	"paper_summaries_go_backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the paper API.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the paper API over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:3000/api".
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) endpoint(parts ...string) string {
	u := *c.baseURL
	for _, part := range parts {
		u.Path += "/" + url.PathEscape(part)
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw, err = io.ReadAll(resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Message
		apiErr.Detail = body.Error
	}
	return apiErr
}

func (c *Client) ListPapers(ctx context.Context, query models.PaperQuery) (*models.PaperPage, error) {
	values := url.Values{}
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.Category != "" {
		values.Set("category", string(query.Category))
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	endpoint := c.endpoint("papers")
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	var page models.PaperPage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	var paper models.Paper
	if err := c.do(ctx, http.MethodGet, c.endpoint("papers", id), nil, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}

func (c *Client) CreatePaper(ctx context.Context, paper models.Paper) (*models.Paper, error) {
	var created models.Paper
	if err := c.do(ctx, http.MethodPost, c.endpoint("papers"), paper, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.Paper, error) {
	var updated models.Paper
	if err := c.do(ctx, http.MethodPut, c.endpoint("papers", id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeletePaper(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("papers", id), nil, nil)
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.endpoint("health"), nil, nil)
}

// Export downloads the paper as "bibtex" or "pdf".
func (c *Client) Export(ctx context.Context, id, format string) ([]byte, error) {
	var data []byte
	if err := c.do(ctx, http.MethodGet, c.endpoint("papers", id, format), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// WatchPapers subscribes to the change event feed. The returned channel is
// closed when ctx ends or the connection drops.
func (c *Client) WatchPapers(ctx context.Context) (<-chan models.PaperEvent, error) {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/events"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event feed: %w", err)
	}

	events := make(chan models.PaperEvent)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()
		for {
			var event models.PaperEvent
			if err := conn.ReadJSON(&event); err != nil {
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("Event feed closed")
				}
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
