package templates

// Page holds data shared by every page.
type Page struct {
	Title        string
	AssetVersion string // content hash of the static assets, for cache busting
}

// VehicleRow is one bus on a route board.
type VehicleRow struct {
	Number    string
	Heading   string
	NextStop  string
	FinalStop string
}

// StopRow is one stop on a route board with its arrivals joined for display.
type StopRow struct {
	StopID   string
	Arrivals string
}

// RouteBoardData is the data for a route's arrival board.
type RouteBoardData struct {
	Page
	RouteName string
	Vehicles  []VehicleRow
	Stops     []StopRow
}

// RouteLink is an entry in the route index.
type RouteLink struct {
	ID   string
	Name string
}

// RouteIndexData is the data for the route index.
type RouteIndexData struct {
	Page
	Routes []RouteLink
}
