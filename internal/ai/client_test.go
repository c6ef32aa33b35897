package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(content))
	}))
}

func TestClientExtractContact(t *testing.T) {
	t.Parallel()

	server := chatServer(t, `{"choices":[{"message":{"content":"{\"name\":\"Sarah Chen\",\"phoneNumber\":\"+14155550123\",\"email\":\"sarah@example.com\",\"description\":\"Met at the design conference\"}"}}]}`)
	defer server.Close()

	client, err := NewClient(nil, server.URL, "test-key", "gpt-4.1-nano", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	got, err := client.ExtractContact(context.Background(), "Sarah Chen +14155550123 sarah@example.com met at the design conference")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Name != "Sarah Chen" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.PhoneNumber != "+14155550123" {
		t.Fatalf("phone = %q", got.PhoneNumber)
	}
	if got.Email != "sarah@example.com" {
		t.Fatalf("email = %q", got.Email)
	}
}

func TestClientExtractContactCodeFence(t *testing.T) {
	t.Parallel()

	server := chatServer(t, `{"choices":[{"message":{"content":"`+"```json\\n"+`{\"name\":\"Bo\",\"phoneNumber\":\"\",\"email\":\"\",\"description\":\"Bo from the gym\"}`+"\\n```"+`"}}]}`)
	defer server.Close()

	client, err := NewClient(nil, server.URL, "test-key", "gpt-4.1-nano", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	got, err := client.ExtractContact(context.Background(), "Bo from the gym")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Name != "Bo" {
		t.Fatalf("name = %q", got.Name)
	}
}

func TestClientExtractContactFallsBackOnServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer server.Close()

	client, err := NewClient(nil, server.URL, "test-key", "gpt-4.1-nano", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text := "John Smith 555-123-4567 met at conference"
	got, err := client.ExtractContact(context.Background(), text)
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if got.Name != "John Smith" {
		t.Fatalf("fallback name = %q", got.Name)
	}
	if got.PhoneNumber != "555-123-4567" {
		t.Fatalf("fallback phone = %q", got.PhoneNumber)
	}
	if got.Email != "" {
		t.Fatalf("fallback email = %q", got.Email)
	}
	if got.Description != text {
		t.Fatalf("fallback description = %q", got.Description)
	}
}

func TestClientExtractContactFallsBackOnBadJSON(t *testing.T) {
	t.Parallel()

	server := chatServer(t, `{"choices":[{"message":{"content":"sorry, I cannot help with that"}}]}`)
	defer server.Close()

	client, err := NewClient(nil, server.URL, "test-key", "gpt-4.1-nano", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	got, err := client.ExtractContact(context.Background(), "Ana ana@example.org")
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if got.Email != "ana@example.org" {
		t.Fatalf("fallback email = %q", got.Email)
	}
	if got.Description != "Ana ana@example.org" {
		t.Fatalf("fallback description = %q", got.Description)
	}
}

func TestClientSuggestLabels(t *testing.T) {
	t.Parallel()

	server := chatServer(t, `{"choices":[{"message":{"content":"{\"existingLabels\":[\"Work\"],\"newLabels\":[\"Climbing\"]}"}}]}`)
	defer server.Close()

	client, err := NewClient(nil, server.URL, "test-key", "gpt-4.1-nano", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	got, err := client.SuggestLabels(context.Background(), "Coworker who climbs", []string{"Work", "Family"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got.ExistingLabels) != 1 || got.ExistingLabels[0] != "Work" {
		t.Fatalf("existing = %v", got.ExistingLabels)
	}
	if len(got.NewLabels) != 1 || got.NewLabels[0] != "Climbing" {
		t.Fatalf("new = %v", got.NewLabels)
	}
}

func TestClientSuggestLabelsPropagatesErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(nil, server.URL, "test-key", "gpt-4.1-nano", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.SuggestLabels(context.Background(), "anything", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestFallbackExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Extraction
	}{
		{
			name: "name phone and trailing context",
			text: "John Smith 555-123-4567 met at conference",
			want: Extraction{Name: "John Smith", PhoneNumber: "555-123-4567", Description: "John Smith 555-123-4567 met at conference"},
		},
		{
			name: "dot separated phone",
			text: "Priya Patel 555.867.5309",
			want: Extraction{Name: "Priya Patel", PhoneNumber: "555.867.5309", Description: "Priya Patel 555.867.5309"},
		},
		{
			name: "email only",
			text: "ana@example.org",
			want: Extraction{Name: "ana@example.org", Email: "ana@example.org", Description: "ana@example.org"},
		},
		{
			name: "empty input",
			text: "",
			want: Extraction{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackExtraction(tt.text)
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRemoveCodeBlocks(t *testing.T) {
	t.Parallel()

	in := "```json\n{\"a\":1}\n```"
	if got := removeCodeBlocks(in); got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
	if got := removeCodeBlocks(`{"a":1}`); got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}
