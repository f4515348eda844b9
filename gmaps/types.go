package gmaps

// nearbyResponse is the envelope of the legacy Nearby Search endpoint.
type nearbyResponse struct {
	Results       []placeResult `json:"results"`
	NextPageToken string        `json:"next_page_token"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// placeResult is one establishment as the provider returns it. Rating and
// user_ratings_total are omitted for places with no reviews.
type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Geometry         geometry `json:"geometry"`
	Types            []string `json:"types"`
	BusinessStatus   string   `json:"business_status,omitempty"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// API status values we act on; anything else is an error.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)
