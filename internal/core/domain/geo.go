package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// GeocodedFeature is a single result from the geocoding provider.
type GeocodedFeature struct {
	ID          string   `json:"id"`
	PlaceName   string   `json:"place_name"`
	Coordinates GeoPoint `json:"coordinates"`
}
