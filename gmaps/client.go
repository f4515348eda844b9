package gmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"reviews-mapper/config"
	"reviews-mapper/geo"
	"reviews-mapper/models"
	"reviews-mapper/utils"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// maxPages caps pagination per grid point; the provider serves at most
// three pages of twenty results.
const maxPages = 3

// Client queries the Places Nearby Search endpoint. Requests are paced by
// a shared rate limiter and retried with exponential back-off.
type Client struct {
	apiKey     string
	keyword    string
	baseURL    string
	tokenDelay time.Duration

	http    *http.Client
	limiter *rate.Limiter
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// NewClient creates a ready-to-use Places client from the application
// configuration.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		apiKey:     cfg.GMapsAPIKey,
		keyword:    cfg.SearchKeyword,
		baseURL:    defaultBaseURL,
		tokenDelay: time.Duration(cfg.PageTokenDelayMs) * time.Millisecond,
		http:       &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}
}

// NearbySearch returns the establishments around one grid point, walking
// all result pages. Results are raw: the same place id may repeat across
// calls for neighbouring points.
func (c *Client) NearbySearch(ctx context.Context, pt geo.Point, radiusM int) ([]*models.RawPlace, error) {
	var raw []*models.RawPlace

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.7f,%.7f", pt.Lat, pt.Lon))
	params.Set("radius", strconv.Itoa(radiusM))
	params.Set("keyword", c.keyword)
	params.Set("rankby", "prominence")
	params.Set("key", c.apiKey)

	page := 1
	for {
		resp, err := c.fetchPage(ctx, params, page)
		if err != nil {
			return raw, err
		}

		now := time.Now()
		for _, r := range resp.Results {
			raw = append(raw, toRawPlace(r, now))
		}

		if resp.NextPageToken == "" || page >= maxPages {
			c.logger.Debug("[gmaps] %d records in %d page(s) around %.5f,%.5f",
				len(raw), page, pt.Lat, pt.Lon)
			return raw, nil
		}
		page++

		// The next_page_token takes a moment to become valid.
		select {
		case <-ctx.Done():
			return raw, ctx.Err()
		case <-time.After(c.tokenDelay):
		}

		params = url.Values{}
		params.Set("pagetoken", resp.NextPageToken)
		params.Set("key", c.apiKey)
	}
}

func (c *Client) fetchPage(ctx context.Context, params url.Values, page int) (*nearbyResponse, error) {
	var resp *nearbyResponse

	err := c.retry.Do(ctx, fmt.Sprintf("nearby-search-page-%d", page), func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("gmaps: build request: %w", err)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("gmaps: request: %w", err)
		}
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("gmaps: read response: %w", err)
		}
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("gmaps: unexpected HTTP status %d", res.StatusCode)
		}

		var nr nearbyResponse
		if err := json.Unmarshal(body, &nr); err != nil {
			return fmt.Errorf("gmaps: decode response: %w", err)
		}

		switch nr.Status {
		case statusOK, statusZeroResults:
			resp = &nr
			return nil
		default:
			return fmt.Errorf("gmaps: API status %s: %s", nr.Status, nr.ErrorMessage)
		}
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func toRawPlace(r placeResult, fetchedAt time.Time) *models.RawPlace {
	p := &models.RawPlace{
		PlaceID:   r.PlaceID,
		Name:      r.Name,
		Vicinity:  r.Vicinity,
		Latitude:  r.Geometry.Location.Lat,
		Longitude: r.Geometry.Location.Lng,
		Types:     r.Types,
		FetchedAt: fetchedAt,
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if r.UserRatingsTotal != nil {
		p.ReviewCount = *r.UserRatingsTotal
	}
	if r.PriceLevel != nil {
		p.PriceLevel = *r.PriceLevel
	}
	return p
}
