package services

import (
	"math"
	"sort"
	"time"

	"reviews-mapper/models"
	"reviews-mapper/utils"
)

const (
	rankedListSize = 5

	// reviewFloor gates the rating statistics: places below it have too
	// few reviews for their rating to mean much.
	reviewFloor = 100

	// chainMinLocations and chainMinReviews gate chain rankings.
	chainMinLocations = 3
	chainMinReviews   = 100

	// airportTag marks establishments inside an airport; they are kept
	// out of the bottom-rated list (captive customers rate harshly).
	airportTag = "airport"
)

// StatsService computes the summary statistics over the deduplicated
// place table.
type StatsService struct {
	logger *utils.Logger
}

// NewStatsService creates a StatsService with the given logger.
func NewStatsService(logger *utils.Logger) *StatsService {
	return &StatsService{logger: logger}
}

// Generate builds the full StatsReport. It is a pure function of its
// input: running it twice on the same table yields the same report.
func (s *StatsService) Generate(places []*models.Place) *models.StatsReport {
	report := &models.StatsReport{GeneratedAt: time.Now()}

	report.TotalPlaces = len(places)
	if len(places) == 0 {
		return report
	}

	// The filtered subset: rated places with enough reviews.
	var reviewed []*models.Place
	for _, p := range places {
		if p.Rated() && p.ReviewCount >= reviewFloor {
			reviewed = append(reviewed, p)
		}
	}
	report.ReviewedPlaces = len(reviewed)

	s.ratingSummary(report, reviewed)
	report.TopRated = topRated(reviewed)
	report.BottomRated = bottomRated(reviewed)
	report.MostReviewed = mostReviewed(places)

	chains := chainGroups(places)
	report.TopChains = headChains(chains)
	report.BottomChains = tailChains(chains)

	s.logger.Info("[stats] %d places, %d with %d+ reviews, %d qualifying chains",
		report.TotalPlaces, report.ReviewedPlaces, reviewFloor, len(chains))
	return report
}

// ratingSummary fills mean and the five-number summary of ratings over the
// filtered subset. An empty subset leaves HasRatingStats false and the
// report renders N/A instead of inventing numbers.
func (s *StatsService) ratingSummary(report *models.StatsReport, reviewed []*models.Place) {
	if len(reviewed) == 0 {
		return
	}

	ratings := make([]float64, len(reviewed))
	var sum float64
	for i, p := range reviewed {
		ratings[i] = p.Rating
		sum += p.Rating
	}
	sort.Float64s(ratings)

	report.HasRatingStats = true
	report.MeanRating = round2(sum / float64(len(ratings)))
	report.MinRating = ratings[0]
	report.FirstQuartile = quantile(ratings, 0.25)
	report.Median = quantile(ratings, 0.5)
	report.ThirdQuartile = quantile(ratings, 0.75)
	report.MaxRating = ratings[len(ratings)-1]
}

// quantile interpolates linearly between order statistics (type 7,
// h = (n-1)p). Input must be sorted and non-empty.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// byRatingDesc orders by rating, breaking ties by review count then by
// place id so rankings are stable across runs.
func byRatingDesc(places []*models.Place) func(i, j int) bool {
	return func(i, j int) bool {
		if places[i].Rating != places[j].Rating {
			return places[i].Rating > places[j].Rating
		}
		if places[i].ReviewCount != places[j].ReviewCount {
			return places[i].ReviewCount > places[j].ReviewCount
		}
		return places[i].PlaceID < places[j].PlaceID
	}
}

func topRated(reviewed []*models.Place) []models.RankedPlace {
	ranked := make([]*models.Place, len(reviewed))
	copy(ranked, reviewed)
	sort.Slice(ranked, byRatingDesc(ranked))
	return takeRanked(ranked)
}

func bottomRated(reviewed []*models.Place) []models.RankedPlace {
	var ranked []*models.Place
	for _, p := range reviewed {
		if p.HasType(airportTag) {
			continue
		}
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, byRatingDesc(ranked))
	// Worst first.
	for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	}
	return takeRanked(ranked)
}

func mostReviewed(places []*models.Place) []models.RankedPlace {
	ranked := make([]*models.Place, len(places))
	copy(ranked, places)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ReviewCount != ranked[j].ReviewCount {
			return ranked[i].ReviewCount > ranked[j].ReviewCount
		}
		return ranked[i].PlaceID < ranked[j].PlaceID
	})
	return takeRanked(ranked)
}

func takeRanked(ranked []*models.Place) []models.RankedPlace {
	n := len(ranked)
	if n > rankedListSize {
		n = rankedListSize
	}
	out := make([]models.RankedPlace, 0, n)
	for _, p := range ranked[:n] {
		out = append(out, models.RankedPlace{
			Name:        p.Name,
			Vicinity:    p.Vicinity,
			Rating:      p.Rating,
			ReviewCount: p.ReviewCount,
		})
	}
	return out
}

// chainGroups folds the table by normalised name and keeps groups with
// enough locations and combined reviews. The weighted average counts only
// rated members; a group with none is dropped outright. Result is sorted
// best chain first.
func chainGroups(places []*models.Place) []models.ChainGroup {
	type acc struct {
		name      string
		locations int
		reviews   int
		stars     float64 // Σ rating×reviews over rated members
		rated     int     // Σ reviews over rated members
	}

	groups := make(map[string]*acc)
	for _, p := range places {
		key := NormaliseName(p.Name)
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{name: p.Name}
			groups[key] = g
		}
		g.locations++
		g.reviews += p.ReviewCount
		if p.Rated() {
			g.stars += p.Rating * float64(p.ReviewCount)
			g.rated += p.ReviewCount
		}
	}

	var chains []models.ChainGroup
	for _, g := range groups {
		if g.locations < chainMinLocations || g.reviews < chainMinReviews || g.rated == 0 {
			continue
		}
		chains = append(chains, models.ChainGroup{
			Name:           g.name,
			Locations:      g.locations,
			TotalReviews:   g.reviews,
			WeightedRating: g.stars / float64(g.rated),
		})
	}

	sort.Slice(chains, func(i, j int) bool {
		if chains[i].WeightedRating != chains[j].WeightedRating {
			return chains[i].WeightedRating > chains[j].WeightedRating
		}
		if chains[i].TotalReviews != chains[j].TotalReviews {
			return chains[i].TotalReviews > chains[j].TotalReviews
		}
		return chains[i].Name < chains[j].Name
	})
	return chains
}

func headChains(chains []models.ChainGroup) []models.ChainGroup {
	n := len(chains)
	if n > rankedListSize {
		n = rankedListSize
	}
	out := make([]models.ChainGroup, n)
	copy(out, chains[:n])
	return out
}

func tailChains(chains []models.ChainGroup) []models.ChainGroup {
	n := len(chains)
	if n > rankedListSize {
		n = rankedListSize
	}
	// Worst first.
	out := make([]models.ChainGroup, 0, n)
	for i := len(chains) - 1; i >= len(chains)-n; i-- {
		out = append(out, chains[i])
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
