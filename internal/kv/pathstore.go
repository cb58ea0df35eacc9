package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Pathstore is a Store backed by the pathstore HTTP API.
type Pathstore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
}

func NewPathstore(baseURL, apiKey string) *Pathstore {
	return &Pathstore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		backoff: Backoff,
	}
}

// nodeRequest is the body for PUT /kv/{key}.
type nodeRequest struct {
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

// nodeResponse is the response from GET /kv/{key}.
type nodeResponse struct {
	Key   string `json:"key_path"`
	Value any    `json:"value"`
}

func (c *Pathstore) keyURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.baseURL + "/kv/" + strings.Join(parts, "/")
}

func (c *Pathstore) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

// Set stores value at key.
func (c *Pathstore) Set(ctx context.Context, key, value string) error {
	body, err := json.Marshal(nodeRequest{Value: value, Source: "docpager"})
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	return retry(ctx, c.backoff, func() error {
		req, err := c.newRequest(ctx, http.MethodPut, c.keyURL(key), bytes.NewReader(body))
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("put node: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return statusError("put", key, resp)
		}
		return nil
	})
}

// Get retrieves the value at key. A 404 is reported as absent.
func (c *Pathstore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		node  nodeResponse
		found bool
	)
	err := retry(ctx, c.backoff, func() error {
		req, err := c.newRequest(ctx, http.MethodGet, c.keyURL(key), nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("get node: %w", err)
		}
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusNotFound:
			found = false
			return nil
		default:
			return statusError("get", key, resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
			return fmt.Errorf("decode node: %w", err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return "", false, err
	}
	switch v := node.Value.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	default:
		return fmt.Sprint(v), true, nil
	}
}

// Delete removes the node at key.
func (c *Pathstore) Delete(ctx context.Context, key string) error {
	return retry(ctx, c.backoff, func() error {
		req, err := c.newRequest(ctx, http.MethodDelete, c.keyURL(key), nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("delete node: %w", err)
		}
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
			return nil
		}
		return statusError("delete", key, resp)
	})
}

func statusError(op, key string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{Op: op, Key: key, Status: resp.StatusCode, Body: string(body)}
}

// Close releases idle connections.
func (c *Pathstore) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
