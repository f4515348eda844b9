package services

import (
	"testing"
	"time"

	"reviews-mapper/models"
	"reviews-mapper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger("error") }

func rawPlace(id, name string, rating float64, reviews int) *models.RawPlace {
	return &models.RawPlace{
		PlaceID:     id,
		Name:        name,
		Rating:      rating,
		ReviewCount: reviews,
		Types:       []string{"restaurant"},
		FetchedAt:   time.Now(),
	}
}

func TestCleanerDeduplicatesByPlaceID(t *testing.T) {
	c := NewCleaner(newTestLogger(), nil)

	raw := []*models.RawPlace{
		rawPlace("a", "First Diner", 4.5, 200),
		rawPlace("b", "Second Diner", 4.0, 150),
		rawPlace("a", "First Diner", 4.5, 200),
		rawPlace("a", "First Diner", 4.5, 200),
		rawPlace("c", "Third Diner", 3.5, 90),
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 3 {
		t.Fatalf("expected 3 distinct places, got %d", len(cleaned))
	}
}

func TestCleanerFirstSeenWins(t *testing.T) {
	c := NewCleaner(newTestLogger(), nil)

	raw := []*models.RawPlace{
		rawPlace("a", "Original Name", 4.5, 200),
		rawPlace("a", "Conflicting Name", 1.0, 5),
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 place, got %d", len(cleaned))
	}
	if cleaned[0].Name != "Original Name" {
		t.Errorf("first-seen should win: got %q", cleaned[0].Name)
	}
}

func TestCleanerIdempotent(t *testing.T) {
	c := NewCleaner(newTestLogger(), nil)

	raw := []*models.RawPlace{
		rawPlace("a", "Diner A", 4.5, 200),
		rawPlace("b", "Diner B", 4.0, 150),
		rawPlace("a", "Diner A", 4.5, 200),
	}

	first := c.Clean(raw)
	second := c.Clean(raw)

	if len(first) != len(second) {
		t.Fatalf("runs disagree on length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].PlaceID != second[i].PlaceID || first[i].Rating != second[i].Rating {
			t.Errorf("row %d differs between runs", i)
		}
	}
}

func TestCleanerDropsEmptyPlaceID(t *testing.T) {
	c := NewCleaner(newTestLogger(), nil)

	raw := []*models.RawPlace{
		rawPlace("", "No ID", 4.5, 200),
		rawPlace("a", "Has ID", 4.0, 150),
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 place after dropping empty id, got %d", len(cleaned))
	}
	if cleaned[0].PlaceID != "a" {
		t.Errorf("wrong survivor: %q", cleaned[0].PlaceID)
	}
}

func TestCleanerMalformedFields(t *testing.T) {
	c := NewCleaner(newTestLogger(), nil)

	raw := []*models.RawPlace{
		rawPlace("a", "Too High", 6.3, 200),
		rawPlace("b", "Too Low", 0.4, 100),
		rawPlace("c", "Negative Reviews", 4.2, -7),
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 3 {
		t.Fatalf("malformed fields must not drop records: got %d of 3", len(cleaned))
	}
	if cleaned[0].Rated() || cleaned[1].Rated() {
		t.Error("out-of-range ratings should be stored as absent")
	}
	if cleaned[2].ReviewCount != 0 {
		t.Errorf("negative review count should clamp to 0, got %d", cleaned[2].ReviewCount)
	}
}

func TestCleanerTypeFilter(t *testing.T) {
	c := NewCleaner(newTestLogger(), []string{"restaurant", "cafe"})

	bar := rawPlace("b", "A Bar", 4.0, 150)
	bar.Types = []string{"bar", "point_of_interest"}
	cafe := rawPlace("c", "A Cafe", 4.2, 80)
	cafe.Types = []string{"cafe", "food"}

	cleaned := c.Clean([]*models.RawPlace{
		rawPlace("a", "A Restaurant", 4.5, 200),
		bar,
		cafe,
	})

	if len(cleaned) != 2 {
		t.Fatalf("expected 2 places after type filter, got %d", len(cleaned))
	}
	for _, p := range cleaned {
		if p.Name == "A Bar" {
			t.Error("off-type place survived the filter")
		}
	}
}

func TestCleanerNormalisesWhitespace(t *testing.T) {
	c := NewCleaner(newTestLogger(), nil)

	raw := rawPlace("a", "  Joe's   Diner ", 4.5, 200)
	raw.Vicinity = " 12 Main\tSt "

	cleaned := c.Clean([]*models.RawPlace{raw})
	if cleaned[0].Name != "Joe's Diner" {
		t.Errorf("name not normalised: %q", cleaned[0].Name)
	}
	if cleaned[0].Vicinity != "12 Main St" {
		t.Errorf("vicinity not normalised: %q", cleaned[0].Vicinity)
	}
}

func TestNormaliseName(t *testing.T) {
	if NormaliseName("  Joe's   DINER ") != "joe's diner" {
		t.Errorf("got %q", NormaliseName("  Joe's   DINER "))
	}
}
