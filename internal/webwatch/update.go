package webwatch

import (
	"strconv"
	"strings"
)

// Update response block indexes.
const (
	predictionStopsBlock = 1
	vehiclesBlock        = 2
	timepointStopsBlock  = 3
)

// Field counts of update response records.
const (
	stopFields    = 5 // lat|lon|name|direction|times
	vehicleFields = 4 // lat|lon|direction|description
)

// Vehicle description lines look like
// "<b>E Towne</b><br>Vehicle No.: 121<br>Next Timepoint: MATC Truax".
const (
	vehicleNumberPrefix = "Vehicle No.: "
	nextStopPrefix      = "Next Timepoint: "
	descriptionLines    = 3
)

// ParseUpdate decodes an update response into the stop predictions and
// vehicle locations of routeID. Stop times from the timepoint feed come first,
// followed by the prediction feed. A response with too few blocks yields an
// empty snapshot.
func ParseUpdate(routeID, body string) *RouteCurrentData {
	data := emptyCurrentData()

	blocks, ok := splitBlocks(body, updateBlocks)
	if !ok {
		return data
	}

	data.StopTimes = append(data.StopTimes, parseStopTimes(blocks[timepointStopsBlock], routeID)...)
	data.StopTimes = append(data.StopTimes, parseStopTimes(blocks[predictionStopsBlock], routeID)...)
	data.Vehicles = append(data.Vehicles, parseVehicles(blocks[vehiclesBlock], routeID)...)
	return data
}

// ParseUpdateStops decodes the stops listed in an update response, timepoint
// stops first.
func ParseUpdateStops(body string) []RouteStop {
	stops := []RouteStop{}

	blocks, ok := splitBlocks(body, updateBlocks)
	if !ok {
		return stops
	}

	stops = append(stops, parseStops(blocks[timepointStopsBlock], StopTypeTimepoint)...)
	stops = append(stops, parseStops(blocks[predictionStopsBlock], StopTypePrediction)...)
	return stops
}

// stopRecord is a stop record that passed the shared checks: enough fields
// and non-zero coordinates.
type stopRecord struct {
	fields []string
	stop   RouteStop
}

func parseStopRecords(block string, stopType StopType) []stopRecord {
	var records []stopRecord
	for _, record := range splitRecords(block) {
		fields, ok := splitFields(record, stopFields)
		if !ok {
			continue
		}
		lat, lon, ok := parseLatLon(fields[0], fields[1])
		if !ok {
			continue
		}
		// Zero coordinates mark a stop without data.
		if lat.IsZero() || lon.IsZero() {
			continue
		}
		records = append(records, stopRecord{
			fields: fields,
			stop: RouteStop{
				StopID:    stopID(lat, lon),
				Latitude:  lat,
				Longitude: lon,
				StopType:  stopType,
				Name:      fields[2],
				Direction: fields[3],
			},
		})
	}
	return records
}

func parseStops(block string, stopType StopType) []RouteStop {
	var stops []RouteStop
	for _, rec := range parseStopRecords(block, stopType) {
		stops = append(stops, rec.stop)
	}
	return stops
}

func parseStopTimes(block, routeID string) []RouteStopTime {
	var stopTimes []RouteStopTime
	for _, rec := range parseStopRecords(block, StopTypeTimepoint) {
		stopTimes = append(stopTimes, RouteStopTime{
			RouteID: routeID,
			StopID:  rec.stop.StopID,
			Times:   parseArrivalTimes(rec.fields[4]),
		})
	}
	return stopTimes
}

func parseArrivalTimes(blob string) []string {
	if blob == "" {
		return []string{NoBusesAvailable}
	}
	times := []string{}
	for _, t := range splitEntries(blob) {
		if strings.TrimSpace(t) == "" {
			continue
		}
		times = append(times, t)
	}
	return times
}

func parseVehicles(block, routeID string) []VehicleLocation {
	var vehicles []VehicleLocation
	for _, record := range splitRecords(block) {
		fields, ok := splitFields(record, vehicleFields)
		if !ok {
			continue
		}
		lat, lon, ok := parseLatLon(fields[0], fields[1])
		if !ok {
			continue
		}
		direction, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}

		v := VehicleLocation{
			RouteID:   routeID,
			Direction: Direction(direction),
		}
		v.Latitude.Decimal, v.Latitude.Valid = lat, true
		v.Longitude.Decimal, v.Longitude.Valid = lon, true

		if lines := splitEntries(fields[3]); len(lines) >= descriptionLines {
			v.FinalStop = stripBold(lines[0])
			v.Number = strings.TrimPrefix(lines[1], vehicleNumberPrefix)
			v.NextStop = strings.TrimPrefix(lines[2], nextStopPrefix)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles
}

func stripBold(s string) string {
	s = strings.ReplaceAll(s, "<b>", "")
	return strings.ReplaceAll(s, "</b>", "")
}
