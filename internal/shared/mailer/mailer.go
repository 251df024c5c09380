package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one outbound email. Template names resolve on the mail
// provider's side; Context supplies the template variables.
type Message struct {
	To            string            `json:"to"`
	Subject       string            `json:"subject"`
	Template      string            `json:"template"`
	Context       map[string]string `json:"context"`
	AttachmentURL string            `json:"attachment_url,omitempty"`
}

// Notifier is the outbound-email surface. Non-critical sends are
// fire-and-forget from the caller's perspective: the caller logs a failure
// and carries on.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Client talks to a transactional-mail HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewClient creates a mail client. timeout bounds every send.
func NewClient(baseURL, apiKey, from string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendRequest struct {
	From string `json:"from"`
	Message
}

type sendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send posts one message to the provider's /v1/messages endpoint.
func (c *Client) Send(ctx context.Context, msg Message) error {
	bodyBytes, err := json.Marshal(sendRequest{From: c.from, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read mail response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var sr sendResponse
		if json.Unmarshal(respBody, &sr) == nil && sr.Message != "" {
			return fmt.Errorf("mail provider error [%d]: %s", resp.StatusCode, sr.Message)
		}
		return fmt.Errorf("mail provider error [%d]", resp.StatusCode)
	}

	return nil
}
