package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrTimeout is returned when the assistant backend does not answer in time.
var ErrTimeout = errors.New("assistant request timed out")

const requestTimeout = 15 * time.Second

// Client proxies prompts to the external AI assistant backend. The payload is
// forwarded and the answer returned verbatim; nothing is interpreted here.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Ask forwards a message and returns the backend's response text.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: message})
	if err != nil {
		return "", fmt.Errorf("failed to encode assistant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build assistant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var nerr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("assistant backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant backend returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode assistant response: %w", err)
	}
	return out.Response, nil
}
