package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// Snapshot modes
const (
	ModeRecord = "record"
	ModeReplay = "replay"
)

// credentialParams are stripped from recorded URLs
var credentialParams = []string{"key", "token"}

// SnapshotData represents a recorded HTTP request and response
type SnapshotData struct {
	Request struct {
		Method  string            `json:"method"`
		URL     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"request"`
	Response struct {
		StatusCode int               `json:"status_code"`
		Headers    map[string]string `json:"headers"`
		Body       string            `json:"body"`
	} `json:"response"`
}

// SnapshotRoundTripper is an http.RoundTripper that records and replays HTTP interactions
type SnapshotRoundTripper struct {
	T             testing.TB
	SnapshotDir   string
	Mode          string
	RealTransport http.RoundTripper

	once      sync.Once
	loadErr   error
	snapshots map[string]SnapshotData
}

// NewSnapshotRoundTripper creates a new http.RoundTripper that records and replays HTTP interactions
func NewSnapshotRoundTripper(t testing.TB, snapshotDir string, mode string) *SnapshotRoundTripper {
	return &SnapshotRoundTripper{
		T:             t,
		SnapshotDir:   snapshotDir,
		Mode:          mode,
		RealTransport: http.DefaultTransport,
		snapshots:     make(map[string]SnapshotData),
	}
}

// ModeFromEnv returns record mode when RECORD=true, replay otherwise
func ModeFromEnv() string {
	if os.Getenv("RECORD") == "true" {
		return ModeRecord
	}
	return ModeReplay
}

// RoundTrip implements the http.RoundTripper interface
func (rt *SnapshotRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	key := requestKey(req.Method, req.URL)

	if rt.Mode == ModeReplay {
		rt.once.Do(func() { rt.loadErr = rt.loadSnapshots() })
		if rt.loadErr != nil {
			return nil, fmt.Errorf("loading snapshots: %w", rt.loadErr)
		}

		snapshot, ok := rt.snapshots[key]
		if !ok {
			return nil, fmt.Errorf("no snapshot found for request: %s", key)
		}

		resp := &http.Response{
			StatusCode: snapshot.Response.StatusCode,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(snapshot.Response.Body)),
			Request:    req,
		}
		for k, v := range snapshot.Response.Headers {
			resp.Header.Add(k, v)
		}
		return resp, nil
	}

	resp, err := rt.RealTransport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	var snapshot SnapshotData
	snapshot.Request.Method = req.Method
	snapshot.Request.URL = redactURL(req.URL)
	snapshot.Request.Headers = make(map[string]string)
	for k, v := range req.Header {
		snapshot.Request.Headers[k] = strings.Join(v, ",")
	}

	snapshot.Response.StatusCode = resp.StatusCode
	snapshot.Response.Headers = make(map[string]string)
	for k, v := range resp.Header {
		snapshot.Response.Headers[k] = strings.Join(v, ",")
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	snapshot.Response.Body = string(bodyBytes)
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := rt.saveSnapshot(key, snapshot); err != nil {
		rt.T.Logf("Failed to save snapshot: %v", err)
	}

	return resp, nil
}

// loadSnapshots loads snapshots from disk
func (rt *SnapshotRoundTripper) loadSnapshots() error {
	files, err := os.ReadDir(rt.SnapshotDir)
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(rt.SnapshotDir, file.Name()))
		if err != nil {
			return err
		}

		var snapshot SnapshotData
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return fmt.Errorf("%s: %w", file.Name(), err)
		}

		u, err := url.Parse(snapshot.Request.URL)
		if err != nil {
			return fmt.Errorf("%s: %w", file.Name(), err)
		}
		rt.snapshots[requestKey(snapshot.Request.Method, u)] = snapshot
	}

	return nil
}

// saveSnapshot saves a snapshot to disk
func (rt *SnapshotRoundTripper) saveSnapshot(key string, data SnapshotData) error {
	if err := os.MkdirAll(rt.SnapshotDir, 0755); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	replacer := strings.NewReplacer("/", "_", ":", "_", ".", "_", "?", "_", "=", "_", "&", "_")
	filename := replacer.Replace(key) + ".json"

	return os.WriteFile(filepath.Join(rt.SnapshotDir, filename), jsonData, 0644)
}

// requestKey identifies a request by method and URL without its query string
func requestKey(method string, u *url.URL) string {
	return strings.ToLower(method) + "_" + u.Scheme + "://" + u.Host + u.Path
}

// redactURL removes credentials from a URL before it is written to disk
func redactURL(u *url.URL) string {
	clean := *u
	q := clean.Query()
	for _, p := range credentialParams {
		q.Del(p)
	}
	clean.RawQuery = q.Encode()
	return clean.String()
}
