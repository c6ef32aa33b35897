package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/simplehq/simple-server/internal/ai"
	"github.com/simplehq/simple-server/internal/labels"
)

// ErrNameNotResolvable is returned when neither extraction nor the
// description heuristic yields a contact name. No write happens in that case.
var ErrNameNotResolvable = errors.New("could not extract name from input")

// Extractor turns free text into structured contact fields.
type Extractor interface {
	ExtractContact(ctx context.Context, text string) (ai.Extraction, error)
}

// DirectoryWriter mirrors a contact into the external address book and
// returns its native id.
type DirectoryWriter interface {
	SaveContact(ctx context.Context, name, phoneNumber, email string) (string, error)
}

// Store is the contact persistence surface the gateway drives.
type Store interface {
	Insert(ctx context.Context, params CreateParams) (Contact, error)
	ListByUser(ctx context.Context, userID string) ([]Contact, error)
	SearchPattern(ctx context.Context, userID, query string) ([]Contact, error)
	SetSystemContactID(ctx context.Context, contactID, systemContactID string) error
	AssignLabel(ctx context.Context, contactID, labelID string) error
	RemoveLabel(ctx context.Context, contactID, labelID string) error
}

// LabelStore is the label persistence surface the gateway drives.
type LabelStore interface {
	List(ctx context.Context, userID string) ([]labels.Label, error)
	Create(ctx context.Context, userID, name string) (labels.Label, error)
}

// Gateway orchestrates ingestion, search, and label management over the
// contact store, and maintains the caller-visible per-owner list caches.
type Gateway struct {
	store     Store
	labelSvc  LabelStore
	matcher   *labels.Matcher
	extractor Extractor
	directory DirectoryWriter
	logger    *slog.Logger

	mu     sync.Mutex
	caches map[string]*listCache
}

// NewGateway creates the orchestration gateway. directory may be nil; the
// forward-sync side effect is then skipped.
func NewGateway(log *slog.Logger, store Store, labelSvc LabelStore, matcher *labels.Matcher, extractor Extractor, directory DirectoryWriter) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		store:     store,
		labelSvc:  labelSvc,
		matcher:   matcher,
		extractor: extractor,
		directory: directory,
		logger:    log.With(slog.String("service", "gateway")),
		caches:    map[string]*listCache{},
	}
}

// Ingest creates a contact from free text: extract fields, insert the row,
// apply suggested labels, mirror into the external directory, refresh the
// cached list. Label assignment and directory mirroring are best-effort;
// their failures are captured as side effects, never as errors.
func (g *Gateway) Ingest(ctx context.Context, userID, text string) (IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return IngestResult{}, fmt.Errorf("input text is required")
	}
	extraction, err := g.extractor.ExtractContact(ctx, text)
	if err != nil {
		return IngestResult{}, fmt.Errorf("extraction request failed: %w", err)
	}

	description := extraction.Description
	if strings.TrimSpace(description) == "" {
		description = text
	}
	name := strings.TrimSpace(extraction.Name)
	if name == "" {
		name = nameFromDescription(description)
	}
	if name == "" {
		return IngestResult{}, ErrNameNotResolvable
	}

	contact, err := g.store.Insert(ctx, CreateParams{
		UserID:          userID,
		Name:            name,
		PhoneNumber:     extraction.PhoneNumber,
		Email:           extraction.Email,
		TextDescription: description,
	})
	if err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{Contact: contact}

	if strings.TrimSpace(description) != "" {
		result.AppliedLabels, result.ProposedLabels, result.SideEffects = g.applySuggestedLabels(ctx, userID, contact.ID, description, result.SideEffects)
		result.Contact.Labels = result.AppliedLabels
	}

	if contact.PhoneNumber != "" && g.directory != nil {
		result.SideEffects = g.mirrorToDirectory(ctx, &result.Contact, result.SideEffects)
	}

	if _, err := g.RefreshContacts(ctx, userID); err != nil {
		g.logger.Warn("contact list refresh failed", slog.Any("error", err))
		result.SideEffects = append(result.SideEffects, SideEffect{Op: "refresh", Err: err.Error()})
	}
	return result, nil
}

// applySuggestedLabels re-fetches the owner's labels, asks the matcher, and
// assigns each match independently. One failed assignment does not stop the
// others and never rolls back the contact.
func (g *Gateway) applySuggestedLabels(ctx context.Context, userID, contactID, description string, effects []SideEffect) ([]labels.Label, []string, []SideEffect) {
	existing, err := g.labelSvc.List(ctx, userID)
	if err != nil {
		g.logger.Warn("label fetch for suggestion failed", slog.Any("error", err))
		return nil, nil, append(effects, SideEffect{Op: "suggest-labels", Err: err.Error()})
	}
	matched, proposed := g.matcher.Suggest(ctx, description, existing)

	applied := make([]labels.Label, 0, len(matched))
	for _, label := range matched {
		if err := g.store.AssignLabel(ctx, contactID, label.ID); err != nil {
			g.logger.Warn("label assignment failed",
				slog.String("label", label.Name), slog.Any("error", err))
			effects = append(effects, SideEffect{Op: "assign-label", Target: label.Name, Err: err.Error()})
			continue
		}
		applied = append(applied, label)
	}
	return applied, proposed, effects
}

// mirrorToDirectory forward-syncs the new contact into the external address
// book and stores the returned native id. Pure best effort.
func (g *Gateway) mirrorToDirectory(ctx context.Context, contact *Contact, effects []SideEffect) []SideEffect {
	nativeID, err := g.directory.SaveContact(ctx, contact.Name, contact.PhoneNumber, contact.Email)
	if err != nil {
		g.logger.Warn("directory mirror failed", slog.Any("error", err))
		return append(effects, SideEffect{Op: "directory-mirror", Target: contact.Name, Err: err.Error()})
	}
	if nativeID == "" {
		return effects
	}
	if err := g.store.SetSystemContactID(ctx, contact.ID, nativeID); err != nil {
		g.logger.Warn("store native directory id failed", slog.Any("error", err))
		return append(effects, SideEffect{Op: "directory-mirror", Target: contact.Name, Err: err.Error()})
	}
	contact.SystemContactID = nativeID
	return effects
}

// Search runs the two-phase search. Phase 1 is the store-side pattern query;
// any phase-1 error is logged and the local relevance fallback runs instead.
// Phase 2 fetches the full contact set and ranks it; only that fetch error
// propagates.
func (g *Gateway) Search(ctx context.Context, userID, query string) ([]Contact, error) {
	direct, err := g.store.SearchPattern(ctx, userID, query)
	if err != nil {
		g.logger.Warn("direct search failed, falling back to local ranking", slog.Any("error", err))
	} else if len(direct) > 0 {
		return direct, nil
	}

	all, err := g.RefreshContacts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Rank(all, query), nil
}

// CreateLabel inserts a label and re-sorts the cached label list by name
// ascending, the canonical display order.
func (g *Gateway) CreateLabel(ctx context.Context, userID, name string) (labels.Label, error) {
	label, err := g.labelSvc.Create(ctx, userID, name)
	if err != nil {
		return labels.Label{}, err
	}
	cache := g.cacheFor(userID)
	gen := cache.begin()
	list := append(cache.snapshotLabels(), label)
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	cache.applyLabels(gen, list)
	return label, nil
}

// AssignLabel links a label to a contact and refreshes the contact list.
func (g *Gateway) AssignLabel(ctx context.Context, userID, contactID, labelID string) error {
	if err := g.store.AssignLabel(ctx, contactID, labelID); err != nil {
		return err
	}
	if _, err := g.RefreshContacts(ctx, userID); err != nil {
		g.logger.Warn("contact list refresh failed", slog.Any("error", err))
	}
	return nil
}

// RemoveLabel unlinks a label from a contact and refreshes the contact list.
func (g *Gateway) RemoveLabel(ctx context.Context, userID, contactID, labelID string) error {
	if err := g.store.RemoveLabel(ctx, contactID, labelID); err != nil {
		return err
	}
	if _, err := g.RefreshContacts(ctx, userID); err != nil {
		g.logger.Warn("contact list refresh failed", slog.Any("error", err))
	}
	return nil
}

// RefreshContacts reloads the owner's contact list from the store and
// installs it in the cache under a generation guard.
func (g *Gateway) RefreshContacts(ctx context.Context, userID string) ([]Contact, error) {
	cache := g.cacheFor(userID)
	gen := cache.begin()
	items, err := g.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cache.applyContacts(gen, items)
	return items, nil
}

// RefreshLabels reloads the owner's label list from the store.
func (g *Gateway) RefreshLabels(ctx context.Context, userID string) ([]labels.Label, error) {
	cache := g.cacheFor(userID)
	gen := cache.begin()
	items, err := g.labelSvc.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	cache.applyLabels(gen, items)
	return items, nil
}

// Contacts returns the cached contact list for the owner.
func (g *Gateway) Contacts(userID string) []Contact {
	return g.cacheFor(userID).snapshotContacts()
}

// Labels returns the cached label list for the owner.
func (g *Gateway) Labels(userID string) []labels.Label {
	return g.cacheFor(userID).snapshotLabels()
}

// Subscribe returns a channel signalled after every cache mutation for the
// owner. Presentation layers use this instead of polling.
func (g *Gateway) Subscribe(userID string) <-chan struct{} {
	return g.cacheFor(userID).subscribe()
}

func (g *Gateway) cacheFor(userID string) *listCache {
	g.mu.Lock()
	defer g.mu.Unlock()
	cache, ok := g.caches[userID]
	if !ok {
		cache = &listCache{}
		g.caches[userID] = cache
	}
	return cache
}

// nameFromDescription falls back to the leading capitalized words of the
// description: two when the first two words are both capitalized, one when
// only the first is, otherwise nothing.
func nameFromDescription(description string) string {
	words := strings.Fields(description)
	if len(words) >= 2 && isCapitalized(words[0]) && isCapitalized(words[1]) {
		return words[0] + " " + words[1]
	}
	if len(words) >= 1 && isCapitalized(words[0]) {
		return words[0]
	}
	return ""
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
