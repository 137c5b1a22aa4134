package webwatch

import (
	"strings"

	"github.com/shopspring/decimal"
)

// WebWatch responses are plain text cut up by a fixed cascade of delimiters,
// outermost first.
const (
	blockSep  = "*"    // top-level response blocks
	fieldSep  = "|"    // paths in a trace, fields in a stop or vehicle record
	recordSep = ";"    // points in a path, stop or vehicle records in a block
	paramSep  = ","    // numeric sub-parameters, not read by any parser
	tokenSep  = " "    // longitude and latitude within a point
	entrySep  = "<br>" // arrival times, or vehicle description lines
)

// traceBlocks is the minimum block count of a trace response: header, paths
// and pen parameters.
const traceBlocks = 3

// updateBlocks is the minimum block count of an update response: header,
// prediction stops, vehicles and timepoint stops.
const updateBlocks = 4

// unwrapTrace removes the JavaScript assignment the trace script is served as.
func unwrapTrace(body string) string {
	body = strings.ReplaceAll(body, `var parms="`, "")
	return strings.ReplaceAll(body, `"`, "")
}

// splitBlocks splits a response into top-level blocks. It reports false when
// the response has fewer than min blocks.
func splitBlocks(body string, min int) ([]string, bool) {
	if body == "" {
		return nil, false
	}
	blocks := strings.Split(body, blockSep)
	if len(blocks) < min {
		return nil, false
	}
	return blocks, true
}

// splitPaths splits the path block of a trace response into paths.
func splitPaths(block string) []string {
	if block == "" {
		return nil
	}
	return strings.Split(block, fieldSep)
}

// splitRecords splits a block into its non-empty records.
func splitRecords(block string) []string {
	if block == "" {
		return nil
	}
	var records []string
	for _, r := range strings.Split(block, recordSep) {
		if r != "" {
			records = append(records, r)
		}
	}
	return records
}

// splitPoints splits a path into points, keeping empty points so that a
// caller sees exactly what the service sent.
func splitPoints(path string) []string {
	return strings.Split(path, recordSep)
}

// splitFields splits a record into fields. It reports false when the record
// has fewer than min fields.
func splitFields(record string, min int) ([]string, bool) {
	fields := strings.Split(record, fieldSep)
	if len(fields) < min {
		return nil, false
	}
	return fields, true
}

// splitEntries splits a blob on <br>. Blank entries are kept.
func splitEntries(blob string) []string {
	return strings.Split(blob, entrySep)
}

// parseCoordinate reads a "longitude latitude" point. The service puts
// longitude first.
func parseCoordinate(point string) (lat, lon decimal.Decimal, ok bool) {
	tokens := strings.Split(point, tokenSep)
	if len(tokens) < 2 {
		return lat, lon, false
	}
	lon, err := decimal.NewFromString(tokens[0])
	if err != nil {
		return lat, lon, false
	}
	lat, err = decimal.NewFromString(tokens[1])
	if err != nil {
		return lat, lon, false
	}
	return lat, lon, true
}

// parseLatLon reads a latitude and longitude from two record fields.
func parseLatLon(latField, lonField string) (lat, lon decimal.Decimal, ok bool) {
	lat, err := decimal.NewFromString(latField)
	if err != nil {
		return lat, lon, false
	}
	lon, err = decimal.NewFromString(lonField)
	if err != nil {
		return lat, lon, false
	}
	return lat, lon, true
}
