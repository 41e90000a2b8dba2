package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Task mirrors the server's task representation.
type Task struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Mode      int       `json:"mode"`
	Status    string    `json:"status"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client wraps HTTP calls to the moviemosaic server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Submit creates a new task.
func (c *Client) Submit(username string, mode int) (*Task, error) {
	var t Task
	err := c.post("/api/v1/tasks", map[string]any{"username": username, "mode": mode}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTask fetches a task by id.
func (c *Client) GetTask(id int64) (*Task, error) {
	var t Task
	if err := c.get(fmt.Sprintf("/api/v1/tasks/%d", id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetResult fetches the rendered image for a completed task.
func (c *Client) GetResult(id int64) ([]byte, error) {
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/api/v1/tasks/%d/result", c.baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
