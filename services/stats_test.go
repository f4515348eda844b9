package services

import (
	"fmt"
	"math"
	"testing"

	"reviews-mapper/models"
)

func place(id, name string, rating float64, reviews int, types ...string) *models.Place {
	if len(types) == 0 {
		types = []string{"restaurant"}
	}
	return &models.Place{
		PlaceID:     id,
		Name:        name,
		Vicinity:    "somewhere",
		Rating:      rating,
		ReviewCount: reviews,
		Types:       types,
	}
}

// fiveRatings yields one place per rating value 1..5, all past the review floor.
func fiveRatings() []*models.Place {
	var out []*models.Place
	for i := 1; i <= 5; i++ {
		out = append(out, place(fmt.Sprintf("p%d", i), fmt.Sprintf("Place %d", i), float64(i), 100+i))
	}
	return out
}

func TestStatsCounts(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	places := []*models.Place{
		place("a", "Rated Busy", 4.5, 500),
		place("b", "Rated Quiet", 4.0, 12),
		place("c", "Unrated Busy", 0, 300),
	}

	r := svc.Generate(places)
	if r.TotalPlaces != 3 {
		t.Errorf("TotalPlaces: got %d, want 3", r.TotalPlaces)
	}
	// Only a: b lacks reviews, c lacks a rating.
	if r.ReviewedPlaces != 1 {
		t.Errorf("ReviewedPlaces: got %d, want 1", r.ReviewedPlaces)
	}
}

func TestStatsQuantiles(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(fiveRatings())

	if !r.HasRatingStats {
		t.Fatal("expected rating stats")
	}
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"min", r.MinRating, 1},
		{"Q1", r.FirstQuartile, 2},
		{"median", r.Median, 3},
		{"Q3", r.ThirdQuartile, 4},
		{"max", r.MaxRating, 5},
		{"mean", r.MeanRating, 3},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestStatsQuantileInterpolation(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	// Ratings 1, 2, 3, 4: type-7 Q1 = 1.75, median = 2.5, Q3 = 3.25.
	var places []*models.Place
	for i := 1; i <= 4; i++ {
		places = append(places, place(fmt.Sprintf("p%d", i), fmt.Sprintf("P%d", i), float64(i), 150))
	}
	r := svc.Generate(places)

	if math.Abs(r.FirstQuartile-1.75) > 1e-9 {
		t.Errorf("Q1: got %v, want 1.75", r.FirstQuartile)
	}
	if math.Abs(r.Median-2.5) > 1e-9 {
		t.Errorf("median: got %v, want 2.5", r.Median)
	}
	if math.Abs(r.ThirdQuartile-3.25) > 1e-9 {
		t.Errorf("Q3: got %v, want 3.25", r.ThirdQuartile)
	}
}

func TestStatsEmptyInput(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	r := svc.Generate(nil)
	if r.TotalPlaces != 0 || r.ReviewedPlaces != 0 {
		t.Error("empty input should produce zero counts")
	}
	if r.HasRatingStats {
		t.Error("empty input must not claim rating stats")
	}
	if len(r.TopRated) != 0 || len(r.TopChains) != 0 {
		t.Error("empty input should produce empty rankings")
	}
}

func TestStatsNoQualifyingRatings(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	r := svc.Generate([]*models.Place{
		place("a", "Quiet", 4.8, 3),
		place("b", "Unrated", 0, 500),
	})
	if r.HasRatingStats {
		t.Error("no place qualifies, quantiles must be the no-data state")
	}
}

func TestStatsIdempotent(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	places := fiveRatings()

	a := svc.Generate(places)
	b := svc.Generate(places)

	if a.TotalPlaces != b.TotalPlaces || a.Median != b.Median {
		t.Error("two runs over the same input disagree")
	}
	if len(a.TopRated) != len(b.TopRated) {
		t.Fatal("top lists differ in length")
	}
	for i := range a.TopRated {
		if a.TopRated[i] != b.TopRated[i] {
			t.Errorf("top list row %d differs", i)
		}
	}
}

func TestStatsShortLists(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	r := svc.Generate([]*models.Place{
		place("a", "One", 4.0, 200),
		place("b", "Two", 3.0, 150),
	})
	if len(r.TopRated) != 2 {
		t.Errorf("TopRated: got %d entries, want 2", len(r.TopRated))
	}
	if len(r.BottomRated) != 2 {
		t.Errorf("BottomRated: got %d entries, want 2", len(r.BottomRated))
	}
}

func TestStatsTopAndBottomOrder(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(fiveRatings())

	if r.TopRated[0].Rating != 5 {
		t.Errorf("top_1 rating: got %v, want 5", r.TopRated[0].Rating)
	}
	if r.BottomRated[0].Rating != 1 {
		t.Errorf("bot_1 rating: got %v, want 1", r.BottomRated[0].Rating)
	}
}

func TestStatsAirportExcludedFromBottomOnly(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	places := fiveRatings()
	// Worst *and* best places sit in the airport.
	places[0].Types = []string{"restaurant", "airport"}
	places[4].Types = []string{"restaurant", "airport"}

	r := svc.Generate(places)

	if r.BottomRated[0].Rating != 2 {
		t.Errorf("airport place must be excluded from bottom list: bot_1 rating %v", r.BottomRated[0].Rating)
	}
	for _, e := range r.BottomRated {
		if e.Name == "Place 1" || e.Name == "Place 5" {
			t.Errorf("airport place %q in the bottom list", e.Name)
		}
	}
	if r.TopRated[0].Name != "Place 5" {
		t.Errorf("airport place remains eligible for the top list, top_1 = %q", r.TopRated[0].Name)
	}
}

func TestStatsPopularityOverAllRecords(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	r := svc.Generate([]*models.Place{
		place("a", "Rated", 4.5, 120),
		place("b", "Unrated But Busy", 0, 9000),
		place("c", "Few Reviews", 3.0, 4),
	})

	if len(r.MostReviewed) != 3 {
		t.Fatalf("MostReviewed: got %d entries", len(r.MostReviewed))
	}
	if r.MostReviewed[0].Name != "Unrated But Busy" {
		t.Errorf("popularity ignores the rating filter: pop_1 = %q", r.MostReviewed[0].Name)
	}
}

func TestStatsTieBreakStable(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	r := svc.Generate([]*models.Place{
		place("z", "Zed", 4.5, 200),
		place("a", "Ay", 4.5, 200),
	})
	// Equal rating and reviews: place id ascending decides.
	if r.TopRated[0].Name != "Ay" {
		t.Errorf("tie-break by id: got %q first", r.TopRated[0].Name)
	}
}

func chainOf(name string, n int, rating float64, reviewsEach int) []*models.Place {
	var out []*models.Place
	for i := 0; i < n; i++ {
		out = append(out, place(fmt.Sprintf("%s-%d", name, i), name, rating, reviewsEach))
	}
	return out
}

func TestChainMinimumLocations(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	// Two locations with stellar ratings and plenty of reviews.
	places := chainOf("Duo Cafe", 2, 5.0, 1000)
	places = append(places, chainOf("Trio Grill", 3, 3.0, 100)...)

	r := svc.Generate(places)
	for _, c := range append(r.TopChains, r.BottomChains...) {
		if c.Name == "Duo Cafe" {
			t.Fatal("a 2-location group must never appear in chain rankings")
		}
	}
	if len(r.TopChains) != 1 || r.TopChains[0].Name != "Trio Grill" {
		t.Errorf("expected only Trio Grill to qualify, got %+v", r.TopChains)
	}
}

func TestChainMinimumReviews(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	// Three locations but only 30 combined reviews.
	r := svc.Generate(chainOf("Tiny Chain", 3, 4.5, 10))
	if len(r.TopChains) != 0 {
		t.Errorf("group below 100 combined reviews must not qualify: %+v", r.TopChains)
	}
}

func TestChainWeightedAverage(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	places := []*models.Place{
		place("a", "Chain X", 5.0, 100),
		place("b", "Chain X", 3.0, 300),
		place("c", "chain  x", 4.0, 100), // same chain after normalisation
	}

	r := svc.Generate(places)
	if len(r.TopChains) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(r.TopChains))
	}
	c := r.TopChains[0]
	if c.Locations != 3 {
		t.Errorf("locations: got %d, want 3", c.Locations)
	}
	if c.TotalReviews != 500 {
		t.Errorf("total reviews: got %d, want 500", c.TotalReviews)
	}
	// (5*100 + 3*300 + 4*100) / 500 = 3.6
	if math.Abs(c.WeightedRating-3.6) > 1e-9 {
		t.Errorf("weighted rating: got %v, want 3.6", c.WeightedRating)
	}
}

func TestChainRankingOrder(t *testing.T) {
	svc := NewStatsService(newTestLogger())

	var places []*models.Place
	places = append(places, chainOf("Best Chain", 3, 4.8, 100)...)
	places = append(places, chainOf("Mid Chain", 3, 4.0, 100)...)
	places = append(places, chainOf("Worst Chain", 3, 2.1, 100)...)

	r := svc.Generate(places)
	if r.TopChains[0].Name != "Best Chain" {
		t.Errorf("top_chain_1: got %q", r.TopChains[0].Name)
	}
	if r.BottomChains[0].Name != "Worst Chain" {
		t.Errorf("bot_chain_1: got %q", r.BottomChains[0].Name)
	}
}
