package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/simplehq/simple-server/internal/ai"
	"github.com/simplehq/simple-server/internal/auth"
	"github.com/simplehq/simple-server/internal/contacts"
	"github.com/simplehq/simple-server/internal/labels"
)

type fakeStore struct {
	items []contacts.Contact
}

func (s *fakeStore) Insert(_ context.Context, params contacts.CreateParams) (contacts.Contact, error) {
	c := contacts.Contact{ID: "c1", UserID: params.UserID, Name: params.Name, PhoneNumber: params.PhoneNumber, TextDescription: params.TextDescription}
	s.items = append(s.items, c)
	return c, nil
}

func (s *fakeStore) ListByUser(_ context.Context, _ string) ([]contacts.Contact, error) {
	return s.items, nil
}

func (s *fakeStore) SearchPattern(_ context.Context, _, query string) ([]contacts.Contact, error) {
	var matched []contacts.Contact
	for _, c := range s.items {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (s *fakeStore) SetSystemContactID(_ context.Context, _, _ string) error { return nil }

func (s *fakeStore) AssignLabel(_ context.Context, _, _ string) error { return nil }

func (s *fakeStore) RemoveLabel(_ context.Context, _, _ string) error { return nil }

type fakeLabelStore struct{}

func (fakeLabelStore) List(_ context.Context, _ string) ([]labels.Label, error) { return nil, nil }
func (fakeLabelStore) Create(_ context.Context, _, name string) (labels.Label, error) {
	return labels.Label{ID: "l1", Name: name}, nil
}

type fakeExtractor struct{}

func (fakeExtractor) ExtractContact(_ context.Context, text string) (ai.Extraction, error) {
	return ai.FallbackExtraction(text), nil
}

type nilSuggester struct{}

func (nilSuggester) SuggestLabels(_ context.Context, _ string, _ []string) (ai.LabelSuggestion, error) {
	return ai.LabelSuggestion{}, nil
}

func newTestServer(t *testing.T, store contacts.Store) (*echo.Echo, string) {
	t.Helper()
	gateway := contacts.NewGateway(nil, store, fakeLabelStore{}, labels.NewMatcher(nil, nilSuggester{}), fakeExtractor{}, nil)

	e := echo.New()
	e.Use(auth.JWTMiddleware("test-secret", nil))
	NewContactsHandler(gateway).Register(e)

	token, _, err := auth.GenerateToken("u1", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return e, token
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestContactsHandlerIngest(t *testing.T) {
	store := &fakeStore{}
	e, token := newTestServer(t, store)

	t.Run("creates a contact from text", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/contacts", token, `{"text":"Sarah Chen 555-123-4567 designer"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var result contacts.IngestResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Contact.Name != "Sarah Chen" {
			t.Fatalf("name = %q", result.Contact.Name)
		}
		if len(store.items) != 1 {
			t.Fatalf("store has %d items", len(store.items))
		}
	})

	t.Run("blank text rejected", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/contacts", token, `{"text":"   "}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("requires a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(`{"text":"x"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			t.Fatal("unauthenticated request should fail")
		}
	})
}

func TestContactsHandlerSearch(t *testing.T) {
	store := &fakeStore{items: []contacts.Contact{
		{ID: "c1", UserID: "u1", Name: "Sarah Chen"},
		{ID: "c2", UserID: "u1", Name: "John Smith", TextDescription: "hiking buddy"},
	}}
	e, token := newTestServer(t, store)

	t.Run("direct match", func(t *testing.T) {
		rec := doJSON(e, http.MethodGet, "/contacts/search?q=sarah", token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Items []contacts.Contact `json:"items"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Items) != 1 || body.Items[0].ID != "c1" {
			t.Fatalf("items = %+v", body.Items)
		}
	})

	t.Run("relevance fallback", func(t *testing.T) {
		rec := doJSON(e, http.MethodGet, "/contacts/search?q=hiking", token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body struct {
			Items []contacts.Contact `json:"items"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Items) != 1 || body.Items[0].ID != "c2" {
			t.Fatalf("items = %+v", body.Items)
		}
	})

	t.Run("missing query rejected", func(t *testing.T) {
		rec := doJSON(e, http.MethodGet, "/contacts/search", token, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestContactsHandlerList(t *testing.T) {
	store := &fakeStore{items: []contacts.Contact{{ID: "c1", UserID: "u1", Name: "Sarah Chen"}}}
	e, token := newTestServer(t, store)

	rec := doJSON(e, http.MethodGet, "/contacts", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Items []contacts.Contact `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Name != "Sarah Chen" {
		t.Fatalf("items = %+v", body.Items)
	}
}
