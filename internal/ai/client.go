// Package ai provides the language-model client for contact-field extraction
// and label suggestion, with deterministic local fallbacks.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	logger  *slog.Logger
	http    *http.Client
}

// NewClient creates an AI client for the given endpoint.
func NewClient(log *slog.Logger, baseURL, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("ai client: base url is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("ai client: model is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		logger:  log.With(slog.String("client", "ai")),
		http: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ExtractContact pulls structured contact fields out of free text.
// A failed or malformed model reply never fails the call: extraction falls
// back to local heuristics so the caller always gets a usable result.
func (c *Client) ExtractContact(ctx context.Context, text string) (Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return Extraction{}, fmt.Errorf("text is required")
	}
	content, err := c.callChat(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: extractionPrompt(text)},
	})
	if err != nil {
		c.logger.Warn("extraction request failed, using local fallback", slog.Any("error", err))
		return FallbackExtraction(text), nil
	}

	var parsed Extraction
	if err := json.Unmarshal([]byte(removeCodeBlocks(content)), &parsed); err != nil {
		c.logger.Warn("extraction reply unparseable, using local fallback", slog.Any("error", err))
		return FallbackExtraction(text), nil
	}
	return parsed, nil
}

// SuggestLabels asks the model to match a description against existing label
// names. Errors propagate; callers treat suggestion as best-effort.
func (c *Client) SuggestLabels(ctx context.Context, description string, existingNames []string) (LabelSuggestion, error) {
	if strings.TrimSpace(description) == "" {
		return LabelSuggestion{}, fmt.Errorf("description is required")
	}
	content, err := c.callChat(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: labelSuggestionPrompt(description, existingNames)},
	})
	if err != nil {
		return LabelSuggestion{}, err
	}
	var parsed LabelSuggestion
	if err := json.Unmarshal([]byte(removeCodeBlocks(content)), &parsed); err != nil {
		return LabelSuggestion{}, fmt.Errorf("parse label suggestion: %w", err)
	}
	return parsed, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) callChat(ctx context.Context, messages []chatMessage) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ai api key is required")
	}
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr chatErrorResponse
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("ai error: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("ai error: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("ai response missing content")
	}
	return parsed.Choices[0].Message.Content, nil
}

var (
	phonePattern = regexp.MustCompile(`\b(\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\+\d{1,3}[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4})\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// FallbackExtraction derives contact fields from raw text with plain
// heuristics: leading tokens for the name, first phone/email regex match,
// and the verbatim input as description.
func FallbackExtraction(text string) Extraction {
	return Extraction{
		Name:        fallbackName(text),
		PhoneNumber: phonePattern.FindString(text),
		Email:       emailPattern.FindString(text),
		Description: text,
	}
}

func fallbackName(text string) string {
	words := strings.Fields(text)
	switch {
	case len(words) >= 2:
		return words[0] + " " + words[1]
	case len(words) == 1:
		return words[0]
	default:
		return ""
	}
}
