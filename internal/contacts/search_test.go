package contacts

import (
	"testing"

	"github.com/simplehq/simple-server/internal/labels"
)

func TestRank(t *testing.T) {
	t.Parallel()

	items := []Contact{
		{ID: "1", Name: "Sarah Chen", TextDescription: "Designer, met at the conference"},
		{ID: "2", Name: "John Smith", TextDescription: "We discussed his love of hiking"},
		{ID: "3", Name: "Ana Torres", Labels: []labels.Label{{Name: "Hiking"}}},
		{ID: "4", Name: "Bo", TextDescription: "Barista at the corner cafe"},
	}

	t.Run("name substring outranks description token", func(t *testing.T) {
		got := Rank(items, "sarah")
		if len(got) != 1 || got[0].ID != "1" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("query tokens score against description independently", func(t *testing.T) {
		// "loves" is no substring of the description but "hiking" is,
		// so the contact still scores. The label "Hiking" does not
		// match because labels compare against the full query.
		got := Rank(items, "loves hiking")
		if len(got) != 1 || got[0].ID != "2" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("label match outranks description token", func(t *testing.T) {
		got := Rank(items, "hiking")
		if len(got) != 2 {
			t.Fatalf("got %d results", len(got))
		}
		if got[0].ID != "3" || got[1].ID != "2" {
			t.Fatalf("order = %s, %s", got[0].ID, got[1].ID)
		}
	})

	t.Run("zero scores excluded", func(t *testing.T) {
		if got := Rank(items, "nonexistent"); len(got) != 0 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		tied := []Contact{
			{ID: "a", TextDescription: "plays chess on tuesdays"},
			{ID: "b", TextDescription: "chess club organizer"},
		}
		got := Rank(tied, "chess")
		if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("blank query matches nothing", func(t *testing.T) {
		if got := Rank(items, "   "); got != nil {
			t.Fatalf("got %+v", got)
		}
	})
}
