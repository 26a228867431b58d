package mapbox

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const forwardBody = `{
	"features": [
		{"id": "address.1", "place_name": "123 Main St, Orange, California", "center": [-117.8531, 33.7879]},
		{"id": "place.2", "place_name": "Orange, California", "center": [-117.8531, 33.7878]}
	]
}`

func TestForwardGeocode(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forwardBody))
	}))
	defer srv.Close()

	g := New(srv.URL, "test-token")
	feats, err := g.ForwardGeocode(context.Background(), "123 Main St", 5)
	if err != nil {
		t.Fatalf("forward geocode: %v", err)
	}
	if len(feats) != 2 {
		t.Fatalf("expected 2 features, got %d", len(feats))
	}
	if !strings.Contains(gotPath, "123%20Main%20St.json") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "limit=5") {
		t.Errorf("limit missing from query %q", gotQuery)
	}

	// Mapbox centers are [lng, lat]; the adapter must swap them.
	if math.Abs(feats[0].Coordinates.Lat-33.7879) > 1e-9 {
		t.Errorf("lat = %f, want 33.7879", feats[0].Coordinates.Lat)
	}
	if math.Abs(feats[0].Coordinates.Lng-(-117.8531)) > 1e-9 {
		t.Errorf("lng = %f, want -117.8531", feats[0].Coordinates.Lng)
	}
}

func TestReverseGeocodeNoFeature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "test-token")
	feat, err := g.ReverseGeocode(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if feat != nil {
		t.Fatalf("expected nil feature for empty result, got %+v", feat)
	}
}

func TestGeocodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := New(srv.URL, "bad-token")
	if _, err := g.ForwardGeocode(context.Background(), "anywhere", 5); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestForwardGeocodeSkipsMalformedCenters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features": [{"id": "x", "place_name": "Nowhere", "center": []}]}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "test-token")
	feats, err := g.ForwardGeocode(context.Background(), "nowhere", 5)
	if err != nil {
		t.Fatalf("forward geocode: %v", err)
	}
	if len(feats) != 0 {
		t.Fatalf("expected malformed feature to be dropped, got %d", len(feats))
	}
}
