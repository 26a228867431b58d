package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/pkg/metrics"
)

// Geocoder implements ports.Geocoder against the Mapbox Geocoding v5 API.
type Geocoder struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// New creates a Mapbox geocoding client.
func New(baseURL, accessToken string) *Geocoder {
	return &Geocoder{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// geoJSON is the subset of the Mapbox response we consume. Mapbox returns
// coordinates in [lng, lat] order.
type geoJSON struct {
	Features []struct {
		ID        string    `json:"id"`
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"`
	} `json:"features"`
}

// ForwardGeocode resolves free-text input to candidate places.
func (g *Geocoder) ForwardGeocode(ctx context.Context, query string, limit int) ([]domain.GeocodedFeature, error) {
	metrics.GeocodeRequests.WithLabelValues("forward").Inc()
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json",
		g.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {g.accessToken},
		"limit":        {strconv.Itoa(limit)},
		"types":        {"address,place,postcode"},
	}
	feats, err := g.fetch(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		metrics.GeocodeErrors.WithLabelValues("forward").Inc()
		return nil, err
	}
	return feats, nil
}

// ReverseGeocode resolves coordinates to a place name. Returns (nil, nil)
// when no feature covers the point.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodedFeature, error) {
	metrics.GeocodeRequests.WithLabelValues("reverse").Inc()
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json",
		g.baseURL, lng, lat)
	params := url.Values{
		"access_token": {g.accessToken},
		"limit":        {"1"},
	}
	feats, err := g.fetch(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		metrics.GeocodeErrors.WithLabelValues("reverse").Inc()
		return nil, err
	}
	if len(feats) == 0 {
		return nil, nil
	}
	return &feats[0], nil
}

func (g *Geocoder) fetch(ctx context.Context, rawURL string) ([]domain.GeocodedFeature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox status %d", resp.StatusCode)
	}

	var body geoJSON
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("mapbox decode: %w", err)
	}

	feats := make([]domain.GeocodedFeature, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Center) < 2 {
			continue
		}
		feats = append(feats, domain.GeocodedFeature{
			ID:        f.ID,
			PlaceName: f.PlaceName,
			Coordinates: domain.GeoPoint{
				Lat: f.Center[1],
				Lng: f.Center[0],
			},
		})
	}
	return feats, nil
}
