package webwatch

// ParseTrace decodes a trace response into the points of a route's paths.
// body may still be wrapped in the JavaScript assignment the service serves
// it as. A response that is missing its path block yields no points.
//
// Points that are not a longitude/latitude pair are skipped. Paths that
// produce no points are skipped as well, so PathOrder and PointOrder count
// only what is returned and both are dense from zero.
func ParseTrace(body string) []RoutePoint {
	points := []RoutePoint{}

	blocks, ok := splitBlocks(unwrapTrace(body), traceBlocks)
	if !ok {
		return points
	}

	pathOrder := 0
	for _, path := range splitPaths(blocks[1]) {
		pointOrder := 0
		for _, point := range splitPoints(path) {
			lat, lon, ok := parseCoordinate(point)
			if !ok {
				continue
			}
			points = append(points, RoutePoint{
				Latitude:   lat,
				Longitude:  lon,
				PathOrder:  pathOrder,
				PointOrder: pointOrder,
			})
			pointOrder++
		}
		if pointOrder > 0 {
			pathOrder++
		}
	}
	return points
}

// Center returns the first point of a route's path, which the service uses as
// the rough center of the route.
func Center(points []RoutePoint) (RoutePoint, bool) {
	for _, p := range points {
		if p.PathOrder == 0 && p.PointOrder == 0 {
			return p, true
		}
	}
	return RoutePoint{}, false
}

// Paths groups points by PathOrder, each path in PointOrder.
func Paths(points []RoutePoint) [][]RoutePoint {
	var paths [][]RoutePoint
	for _, p := range points {
		for len(paths) <= p.PathOrder {
			paths = append(paths, nil)
		}
		paths[p.PathOrder] = append(paths[p.PathOrder], p)
	}
	return paths
}
