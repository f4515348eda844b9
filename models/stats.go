package models

import "time"

// RankedPlace is one entry of a top/bottom list in the summary report.
type RankedPlace struct {
	Name        string
	Vicinity    string
	Rating      float64
	ReviewCount int
}

// ChainGroup aggregates establishments sharing a normalised name.
// A group qualifies for chain rankings with at least 3 locations and
// at least 100 combined reviews.
type ChainGroup struct {
	Name           string
	Locations      int
	TotalReviews   int
	WeightedRating float64
}

// StatsReport holds the computed aggregates over the deduplicated table.
// Quantile fields are only meaningful when HasRatingStats is true; the
// ranked slices hold up to five entries each and may be shorter.
type StatsReport struct {
	GeneratedAt time.Time

	TotalPlaces    int
	ReviewedPlaces int

	HasRatingStats bool
	MeanRating     float64
	MinRating      float64
	FirstQuartile  float64
	Median         float64
	ThirdQuartile  float64
	MaxRating      float64

	TopRated     []RankedPlace
	BottomRated  []RankedPlace
	MostReviewed []RankedPlace
	TopChains    []ChainGroup
	BottomChains []ChainGroup
}
