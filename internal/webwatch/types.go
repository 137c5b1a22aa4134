package webwatch

import "github.com/shopspring/decimal"

// NoBusesAvailable is the only arrival time reported for a stop whose
// prediction list is empty.
const NoBusesAvailable = "No buses available"

// RoutePoint is a single point on the path of a route. Routes are drawn as
// several paths in PathOrder, and each path joins its points in PointOrder.
type RoutePoint struct {
	Latitude   decimal.Decimal `json:"latitude"`
	Longitude  decimal.Decimal `json:"longitude"`
	PathOrder  int             `json:"pathOrder"`
	PointOrder int             `json:"pointOrder"`
}

// Direction is the compass octant a vehicle is travelling in: 1 is north,
// 2 northeast, on to 8 for northwest. 0 means unknown.
type Direction int

var directionNames = [...]string{"", "N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// String returns the octant abbreviation, or "" when unknown.
func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return ""
	}
	return directionNames[d]
}

// Known reports whether d is a valid octant.
func (d Direction) Known() bool {
	return d >= 1 && d <= 8
}

// VehicleLocation is where a bus on a route was at the time of the poll.
type VehicleLocation struct {
	RouteID   string              `json:"routeId"`
	Number    string              `json:"number,omitempty"`
	Latitude  decimal.NullDecimal `json:"latitude"`
	Longitude decimal.NullDecimal `json:"longitude"`
	Direction Direction           `json:"direction"`
	NextStop  string              `json:"nextStop,omitempty"`  // next timepoint
	FinalStop string              `json:"finalStop,omitempty"` // last stop in the current direction
}

// RouteStopTime lists the upcoming arrivals of a route at one stop.
type RouteStopTime struct {
	RouteID string   `json:"routeId"`
	StopID  string   `json:"stopId"`
	Times   []string `json:"times"`
}

// StopType tells the two stop feeds of an update response apart.
type StopType int

const (
	StopTypeTimepoint  StopType = 0 // scheduled timepoint
	StopTypePrediction StopType = 1 // arrival prediction point
)

// RouteStop is a stop served by a route.
type RouteStop struct {
	StopID    string          `json:"stopId"`
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
	StopType  StopType        `json:"stopType"`
	Name      string          `json:"name"`
	Direction string          `json:"direction"`
}

// RouteCurrentData is a snapshot of a route's stop predictions and vehicles.
// Both slices are non-nil, even when the service could not be reached.
type RouteCurrentData struct {
	StopTimes []RouteStopTime   `json:"stopTimes"`
	Vehicles  []VehicleLocation `json:"vehicles"`
}

func emptyCurrentData() *RouteCurrentData {
	return &RouteCurrentData{
		StopTimes: []RouteStopTime{},
		Vehicles:  []VehicleLocation{},
	}
}

// stopID derives the identifier of a stop from its coordinates as they were
// written on the wire, so "43.0700" and "43.07" give different IDs.
func stopID(lat, lon decimal.Decimal) string {
	return FormatCoordinate(lat) + FormatCoordinate(lon)
}

// FormatCoordinate renders d with the scale it was parsed with, keeping
// trailing zeros.
func FormatCoordinate(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
