package trello

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		Client:  server.Client(),
		Key:     "test-key",
		Token:   "test-token",
		BaseURL: server.URL + "/1",
	}
}

func TestGetBoard(t *testing.T) {
	var gotPath string
	var gotQuery url.Values

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(boardJSON))
	})

	board, err := client.GetBoard(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, "/1/boards/b1", gotPath)
	assert.Equal(t, "test-key", gotQuery.Get("key"))
	assert.Equal(t, "test-token", gotQuery.Get("token"))
	for _, param := range []string{"actions", "cards", "labels", "lists", "checklists"} {
		assert.Equal(t, "all", gotQuery.Get(param), param)
	}
	assert.Equal(t, "true", gotQuery.Get("pluginData"))

	assert.Equal(t, "Biobank Studies", board.Name)
	assert.NotEmpty(t, board.Raw)
}

func TestGetBoardAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	board, err := client.GetBoard(context.Background(), "b1")
	assert.Nil(t, board)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid token")
	assert.NotContains(t, err.Error(), "test-token")
}

func TestGetBoardInvalidDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "no id"}`))
	})

	_, err := client.GetBoard(context.Background(), "b1")
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

func TestGetBoardEmptyID(t *testing.T) {
	client := NewClient("k", "t")
	_, err := client.GetBoard(context.Background(), "")
	assert.Error(t, err)
}

func TestGetBoardTransportErrorHidesCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := &Client{
		Client:  &http.Client{Timeout: time.Second},
		Key:     "test-key",
		Token:   "secret-token",
		BaseURL: server.URL,
	}

	_, err := client.GetBoard(context.Background(), "b1")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestGetBoardCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boardJSON))
	})
	client.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	client.Limiter.Allow() // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetBoard(ctx, "b1")
	assert.Error(t, err)
}

func TestGetPluginData(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"id":"p1","idPlugin":"cf","value":"{\"fields\":[{\"id\":\"f1\",\"n\":\"Priority\"}]}"}]`))
	})

	plugins, err := client.GetPluginData(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, "/1/boards/b1/pluginData", gotPath)
	require.Len(t, plugins, 1)
	assert.Equal(t, "cf", plugins[0].IDPlugin)
	assert.JSONEq(t, `{"fields":[{"id":"f1","n":"Priority"}]}`, string(plugins[0].Value))
}

func TestAuthorizeURL(t *testing.T) {
	u, err := url.Parse(AuthorizeURL("my-key", "biobanking-data", "read", "1day"))
	require.NoError(t, err)

	assert.Equal(t, "trello.com", u.Host)
	assert.Equal(t, "/1/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "my-key", q.Get("key"))
	assert.Equal(t, "biobanking-data", q.Get("name"))
	assert.Equal(t, "read", q.Get("scope"))
	assert.Equal(t, "1day", q.Get("expiration"))
	assert.Equal(t, "fragment", q.Get("callback_method"))
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("k", "t")
	assert.Equal(t, BaseURL, client.BaseURL)
	assert.NotNil(t, client.Limiter)
	assert.NotNil(t, client.Client)
}
