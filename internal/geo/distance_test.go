package geo

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantMeters             float64
		tolerance              float64 // allowed error in meters
	}{
		{
			name: "Capitol Square to East Towne (~8.2 km)",
			lat1: 43.0747, lon1: -89.3841,
			lat2: 43.1156, lon2: -89.3005,
			wantMeters: 8_170,
			tolerance:  50,
		},
		{
			name: "same point returns zero",
			lat1: 43.0747, lon1: -89.3841,
			lat2: 43.0747, lon2: -89.3841,
			wantMeters: 0,
			tolerance:  0.001,
		},
		{
			name: "north pole to south pole",
			lat1: 90, lon1: 0,
			lat2: -90, lon2: 0,
			wantMeters: math.Pi * earthRadiusMeters,
			tolerance:  1,
		},
		{
			name: "equator quarter circumference",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 90,
			wantMeters: math.Pi / 2 * earthRadiusMeters,
			tolerance:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantMeters) > tt.tolerance {
				t.Errorf("Haversine() = %.1f m, want %.1f m (±%.0f)", got, tt.wantMeters, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := Haversine(43.0747, -89.3841, 43.1156, -89.3005)
	b := Haversine(43.1156, -89.3005, 43.0747, -89.3841)
	if a != b {
		t.Errorf("Haversine not symmetric: %f != %f", a, b)
	}
}

func TestDecimalHaversine(t *testing.T) {
	d := decimal.RequireFromString
	got := DecimalHaversine(d("43.0747"), d("-89.3841"), d("43.1156"), d("-89.3005"))
	want := Haversine(43.0747, -89.3841, 43.1156, -89.3005)
	if math.Abs(got-want) > 0.001 {
		t.Errorf("DecimalHaversine() = %f, want %f", got, want)
	}
}

func TestMetersToMiles(t *testing.T) {
	tests := []struct {
		meters float64
		want   float64
	}{
		{0, 0},
		{1609.344, 1.0},
		{3218.688, 2.0},
	}
	for _, tt := range tests {
		got := MetersToMiles(tt.meters)
		if math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("MetersToMiles(%f) = %f, want %f", tt.meters, got, tt.want)
		}
	}
}

func TestRankByDistance(t *testing.T) {
	type bus struct {
		name     string
		lat, lon float64
		located  bool
	}
	buses := []bus{
		{"far", 43.20, -89.30, true},
		{"lost", 0, 0, false},
		{"near", 43.075, -89.384, true},
		{"middle", 43.10, -89.35, true},
	}

	ranked := RankByDistance(buses, 43.0747, -89.3841, func(b bus) (float64, float64, bool) {
		return b.lat, b.lon, b.located
	})

	if len(ranked) != 3 {
		t.Fatalf("got %d ranked, want 3", len(ranked))
	}
	want := []string{"near", "middle", "far"}
	for i, w := range want {
		if ranked[i].Item.name != w {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Item.name, w)
		}
	}
	if ranked[0].DistanceMeters > ranked[1].DistanceMeters {
		t.Error("distances should ascend")
	}
}
