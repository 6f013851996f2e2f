// Package client is the caller side of the broker protocol: it creates
// requests, polls for answers, and answers on behalf of the human. All
// retry behavior lives here; the broker never waits for anyone.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	"github.com/MEKXH/nudge/internal/store"
)

var (
	// ErrNotFound covers unknown and already-answered ids.
	ErrNotFound = errors.New("request not found")
	// ErrBackpressure means the broker is at its pending capacity.
	ErrBackpressure = errors.New("too many pending requests")
	// ErrTimeout means the polling deadline elapsed without an answer.
	// The request stays pending on the broker; there is no cancellation.
	ErrTimeout = errors.New("timed out waiting for answer")
)

const requestTimeout = 5 * time.Second

// Client talks to one broker instance over loopback HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the broker on the given local port.
func New(port int) *Client {
	return newWithBaseURL(fmt.Sprintf("http://127.0.0.1:%d", port))
}

func newWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// URL returns the broker base URL, suitable for telling the human where
// to respond.
func (c *Client) URL() string {
	return c.baseURL
}

// AskInput carries the fields of a new request.
type AskInput struct {
	Question string            `json:"question"`
	Context  string            `json:"context,omitempty"`
	Agent    string            `json:"agent,omitempty"`
	Task     string            `json:"task,omitempty"`
	Type     store.RequestType `json:"request_type,omitempty"`
	Command  string            `json:"command,omitempty"`
}

// Ask creates a request and returns its id.
func (c *Client) Ask(input AskInput) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post("/api/ask", input, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Status fetches the full record for an id.
func (c *Client) Status(id string) (store.Request, error) {
	var req store.Request
	if err := c.get("/api/status/"+id, &req); err != nil {
		return store.Request{}, err
	}
	return req, nil
}

// Pending lists all pending requests.
func (c *Client) Pending() ([]store.Request, error) {
	var pending []store.Request
	if err := c.get("/api/pending", &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// Answer submits the human's answer for a pending request.
func (c *Client) Answer(id, text string) error {
	body := map[string]string{"id": id, "answer": text}
	var out struct {
		Status string `json:"status"`
	}
	return c.post("/api/answer", body, &out)
}

// Health probes broker liveness.
func (c *Client) Health() error {
	var out struct {
		Status string `json:"status"`
	}
	return c.get("/api/health", &out)
}

// Shutdown asks the broker to stop. The response races with process exit,
// so a dropped connection counts as success.
func (c *Client) Shutdown() error {
	err := c.post("/api/shutdown", struct{}{}, &struct{}{})
	if err != nil && isConnDropped(err) {
		return nil
	}
	return err
}

func isConnDropped(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET)
}

// WaitForAnswer polls the status endpoint at the given cadence until the
// request is answered or ctx expires. Transient poll errors are ignored;
// the next tick retries.
func (c *Client) WaitForAnswer(ctx context.Context, id string, interval time.Duration) (store.Request, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		req, err := c.Status(id)
		if err == nil && req.Status == store.StatusAnswered {
			return req, nil
		}

		select {
		case <-ctx.Done():
			return store.Request{}, ErrTimeout
		case <-ticker.C:
		}
	}
}

func (c *Client) get(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to reach broker: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *Client) post(path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to reach broker: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusTooManyRequests:
			return ErrBackpressure
		default:
			if apiErr.Message != "" {
				return fmt.Errorf("broker rejected request: %s", apiErr.Message)
			}
			return fmt.Errorf("broker returned status %d", resp.StatusCode)
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode broker response: %w", err)
	}
	return nil
}
