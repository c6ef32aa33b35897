package labels

import (
	"context"
	"log/slog"
	"strings"

	"github.com/simplehq/simple-server/internal/ai"
)

// Suggester asks the language model which existing label names fit a description.
type Suggester interface {
	SuggestLabels(ctx context.Context, description string, existingNames []string) (ai.LabelSuggestion, error)
}

// Matcher turns model label suggestions into concrete Label entities.
// Suggestion is strictly best-effort: any failure yields an empty result.
type Matcher struct {
	suggester Suggester
	logger    *slog.Logger
}

// NewMatcher creates a label matcher.
func NewMatcher(log *slog.Logger, suggester Suggester) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{
		suggester: suggester,
		logger:    log.With(slog.String("service", "label-matcher")),
	}
}

// Suggest returns the subset of existing labels the model matched for the
// description, plus the model's proposed new label names. New names are
// informational only; they are never persisted here. Errors are logged and
// produce empty results.
func (m *Matcher) Suggest(ctx context.Context, description string, existing []Label) ([]Label, []string) {
	if m.suggester == nil || strings.TrimSpace(description) == "" {
		return nil, nil
	}
	names := make([]string, 0, len(existing))
	for _, label := range existing {
		names = append(names, label.Name)
	}
	suggestion, err := m.suggester.SuggestLabels(ctx, description, names)
	if err != nil {
		m.logger.Warn("label suggestion failed", slog.Any("error", err))
		return nil, nil
	}
	return MatchSuggested(existing, suggestion.ExistingLabels), suggestion.NewLabels
}

// MatchSuggested matches suggested names against existing labels
// case-insensitively. The result preserves the order of existing (not the
// suggestion order) so output is deterministic, and only existing labels
// ever appear.
func MatchSuggested(existing []Label, suggested []string) []Label {
	if len(existing) == 0 || len(suggested) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(suggested))
	for _, name := range suggested {
		trimmed := strings.ToLower(strings.TrimSpace(name))
		if trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}
	matched := make([]Label, 0, len(wanted))
	for _, label := range existing {
		if _, ok := wanted[strings.ToLower(label.Name)]; ok {
			matched = append(matched, label)
		}
	}
	return matched
}
