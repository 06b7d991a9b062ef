package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// BaseURL is the base URL for the Trello REST API
const BaseURL = "https://api.trello.com/1"

// AuthorizeBaseURL is where users grant an API token to an application
const AuthorizeBaseURL = "https://trello.com/1/authorize"

// Trello allows 100 requests per 10 seconds per token
const (
	DefaultRatePerSecond = 10
	DefaultBurst         = 10
)

// Client handles API requests to the Trello API
type Client struct {
	Client  *http.Client
	Key     string
	Token   string
	BaseURL string

	// Limiter throttles outgoing requests. A nil Limiter disables throttling.
	Limiter *rate.Limiter
}

// APIError is returned for any non-200 response
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trello API request %s failed with status %d: %s", e.Path, e.StatusCode, e.Body)
}

// NewClient creates a new Trello API client
func NewClient(key, token string) *Client {
	return &Client{
		Client:  &http.Client{Timeout: 30 * time.Second},
		Key:     key,
		Token:   token,
		BaseURL: BaseURL,
		Limiter: rate.NewLimiter(rate.Limit(DefaultRatePerSecond), DefaultBurst),
	}
}

// makeRequest performs an authenticated GET and returns the response body
func (c *Client) makeRequest(ctx context.Context, path string, queryParams url.Values) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	for key, values := range queryParams {
		params[key] = values
	}
	params.Set("key", c.Key)
	params.Set("token", c.Token)

	reqURL := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		// url.Error carries the full URL, which includes the credentials
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("GET %s: %w", path, urlErr.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Path: path, Body: string(bodyBytes)}
	}

	return bodyBytes, nil
}

// GetBoard retrieves a board with its lists, cards, checklists and plugin data
func (c *Client) GetBoard(ctx context.Context, boardID string) (*Board, error) {
	if boardID == "" {
		return nil, fmt.Errorf("board id must not be empty")
	}

	queryParams := url.Values{
		"actions":    {"all"},
		"cards":      {"all"},
		"labels":     {"all"},
		"lists":      {"all"},
		"checklists": {"all"},
		"pluginData": {"true"},
	}

	data, err := c.makeRequest(ctx, "/boards/"+url.PathEscape(boardID), queryParams)
	if err != nil {
		return nil, err
	}

	board, err := ParseBoard(data)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", boardID, err)
	}
	return board, nil
}

// GetPluginData retrieves the Power-Up data models stored on a board
func (c *Client) GetPluginData(ctx context.Context, boardID string) ([]PluginData, error) {
	path := fmt.Sprintf("/boards/%s/pluginData", url.PathEscape(boardID))

	data, err := c.makeRequest(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var plugins []PluginData
	if err := json.Unmarshal(data, &plugins); err != nil {
		return nil, fmt.Errorf("decoding plugin data for board %s: %w", boardID, err)
	}

	return plugins, nil
}

// AuthorizeURL builds the URL a user visits to issue a token for key
func AuthorizeURL(key, appName, scope, expiration string) string {
	params := url.Values{
		"callback_method": {"fragment"},
		"return_url":      {"https://trello.com"},
		"scope":           {scope},
		"expiration":      {expiration},
		"key":             {key},
		"name":            {appName},
	}
	return AuthorizeBaseURL + "?" + params.Encode()
}
