package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_ZeroAtIdentity(t *testing.T) {
	points := [][2]float64{
		{33.7879, -117.8531}, // Orange, CA
		{0, 0},
		{-89.9, 179.9},
	}
	for _, p := range points {
		if d := Haversine(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("Haversine(%v, %v, same) = %v, want 0", p[0], p[1], d)
		}
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	d1 := Haversine(33.7879, -117.8531, 33.7455, -117.8677)
	d2 := Haversine(33.7455, -117.8677, 33.7879, -117.8531)
	if d1 != d2 {
		t.Errorf("not symmetric: %v vs %v", d1, d2)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Orange, CA to Santa Ana, CA: roughly 4.9 km.
	d := Haversine(33.7879, -117.8531, 33.7455, -117.8677)
	if d < 4 || d > 6 {
		t.Errorf("Orange→Santa Ana = %v km, want ~4.9", d)
	}

	// Houston to Austin: roughly 235 km.
	d = Haversine(29.7604, -95.3698, 30.2672, -97.7431)
	if d < 225 || d > 245 {
		t.Errorf("Houston→Austin = %v km, want ~235", d)
	}
}

func TestHaversine_MonotonicWithSeparation(t *testing.T) {
	base := [2]float64{33.7879, -117.8531}
	prev := 0.0
	for i := 1; i <= 5; i++ {
		d := Haversine(base[0], base[1], base[0]+float64(i)*0.1, base[1])
		if d <= prev {
			t.Fatalf("distance not increasing at step %d: %v <= %v", i, d, prev)
		}
		prev = d
	}
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	minLat, minLng, maxLat, maxLng := BoundingBox(33.7879, -117.8531, 50)
	if minLat >= 33.7879 || maxLat <= 33.7879 {
		t.Errorf("lat bounds [%v, %v] do not bracket center", minLat, maxLat)
	}
	if minLng >= -117.8531 || maxLng <= -117.8531 {
		t.Errorf("lng bounds [%v, %v] do not bracket center", minLng, maxLng)
	}
	// A 50 km radius spans just under half a degree of latitude.
	if span := maxLat - minLat; math.Abs(span-0.8983) > 0.01 {
		t.Errorf("lat span = %v, want ~0.8983", span)
	}
}
