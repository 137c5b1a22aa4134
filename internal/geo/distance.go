package geo

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

const earthRadiusMeters = 6_371_000

// Haversine returns the great-circle distance in meters between two lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// DecimalHaversine is Haversine for exact decimal coordinates.
func DecimalHaversine(lat1, lon1, lat2, lon2 decimal.Decimal) float64 {
	return Haversine(lat1.InexactFloat64(), lon1.InexactFloat64(),
		lat2.InexactFloat64(), lon2.InexactFloat64())
}

// MetersToMiles converts meters to miles.
func MetersToMiles(m float64) float64 {
	return m / 1609.344
}

// Ranked is an item with its distance from a query point.
type Ranked[T any] struct {
	Item           T
	DistanceMeters float64
}

// RankByDistance orders items by distance from (lat, lon), nearest first.
// Items for which coord reports false are left out.
func RankByDistance[T any](items []T, lat, lon float64, coord func(T) (float64, float64, bool)) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, it := range items {
		ilat, ilon, ok := coord(it)
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: it, DistanceMeters: Haversine(lat, lon, ilat, ilon)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})
	return ranked
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
