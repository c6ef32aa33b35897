package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to an HTTP address book service implementing the Directory
// surface: an access endpoint, an entry listing, and entry creation.
type Client struct {
	baseURL string
	token   string
	logger  *slog.Logger
	http    *http.Client
}

// NewClient creates a directory client. baseURL is required.
func NewClient(log *slog.Logger, baseURL, token string, timeout time.Duration) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if baseURL == "" {
		return nil, fmt.Errorf("directory base URL is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		logger:  log.With(slog.String("service", "directory")),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type accessResponse struct {
	Status  AuthorizationStatus `json:"status"`
	Granted bool                `json:"granted"`
}

type entriesResponse struct {
	Entries []Entry `json:"entries"`
}

type saveRequest struct {
	GivenName   string `json:"given_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
}

type saveResponse struct {
	NativeID string `json:"native_id"`
}

// AuthorizationStatus reports the current access state without prompting.
func (c *Client) AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error) {
	var resp accessResponse
	if err := c.call(ctx, http.MethodGet, "/access", nil, &resp); err != nil {
		return StatusNotDetermined, err
	}
	return resp.Status, nil
}

// RequestAccess asks the directory for access and reports whether it was
// granted.
func (c *Client) RequestAccess(ctx context.Context) (bool, error) {
	var resp accessResponse
	if err := c.call(ctx, http.MethodPost, "/access", nil, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

// Entries enumerates every record in the address book.
func (c *Client) Entries(ctx context.Context) ([]Entry, error) {
	var resp entriesResponse
	if err := c.call(ctx, http.MethodGet, "/entries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// SaveContact creates a new record and returns its native id.
func (c *Client) SaveContact(ctx context.Context, name, phoneNumber, email string) (string, error) {
	req := saveRequest{GivenName: name, PhoneNumber: phoneNumber, Email: email}
	var resp saveResponse
	if err := c.call(ctx, http.MethodPost, "/entries", req, &resp); err != nil {
		return "", err
	}
	return resp.NativeID, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory returned status %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
