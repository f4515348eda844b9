package services

import (
	"strings"
	"time"
	"unicode"

	"reviews-mapper/models"
	"reviews-mapper/utils"
)

// Cleaner deduplicates raw fetch results into the aggregate table of
// Places, keyed by provider place id.
type Cleaner struct {
	logger *utils.Logger

	// includedTypes restricts records to establishments whose primary
	// type (first tag) is in the set. Empty means keep everything.
	includedTypes map[string]struct{}
}

// NewCleaner creates a Cleaner filtering to the given primary place types.
func NewCleaner(logger *utils.Logger, includedTypes []string) *Cleaner {
	set := make(map[string]struct{}, len(includedTypes))
	for _, t := range includedTypes {
		set[t] = struct{}{}
	}
	return &Cleaner{logger: logger, includedTypes: set}
}

// Clean merges raw records into deduplicated Places. The first occurrence
// of a place id wins; the provider is not expected to return conflicting
// fields for the same id. Malformed ratings are stored as absent (0) and
// negative review counts clamped to zero, so a bad field never drops the
// record or crashes the run.
func (c *Cleaner) Clean(raw []*models.RawPlace) []*models.Place {
	seen := make(map[string]struct{}, len(raw))
	result := make([]*models.Place, 0, len(raw))

	var droppedType int
	for _, r := range raw {
		id := strings.TrimSpace(r.PlaceID)
		if id == "" {
			c.logger.Warn("[cleaner] Dropping record with empty place id: %s", r.Name)
			continue
		}

		if _, dup := seen[id]; dup {
			c.logger.Debug("[cleaner] Duplicate place id skipped: %s", id)
			continue
		}

		if !c.typeIncluded(r.Types) {
			droppedType++
			continue
		}
		seen[id] = struct{}{}

		reviews := r.ReviewCount
		if reviews < 0 {
			reviews = 0
		}

		result = append(result, &models.Place{
			PlaceID:     id,
			Name:        normaliseText(r.Name),
			Vicinity:    normaliseText(r.Vicinity),
			Rating:      validRating(r.Rating),
			ReviewCount: reviews,
			PriceLevel:  r.PriceLevel,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Types:       r.Types,
			CreatedAt:   time.Now(),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d places (%d duplicates/invalid, %d off-type)",
		len(raw), len(result), len(raw)-len(result)-droppedType, droppedType)
	return result
}

func (c *Cleaner) typeIncluded(types []string) bool {
	if len(c.includedTypes) == 0 {
		return true
	}
	if len(types) == 0 {
		return false
	}
	_, ok := c.includedTypes[types[0]]
	return ok
}

// validRating returns the rating when it falls in the provider's 1.0-5.0
// range, otherwise 0 (absent).
func validRating(r float64) float64 {
	if r < 1.0 || r > 5.0 {
		return 0
	}
	return r
}

// NormaliseName is the chain-grouping key: lowercased with collapsed
// whitespace, so "Joe's  Diner" and "joe's diner" fold together.
func NormaliseName(s string) string {
	return strings.ToLower(normaliseText(s))
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
