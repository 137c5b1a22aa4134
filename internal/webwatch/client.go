// Package webwatch reads route paths, vehicle locations and stop arrival
// predictions from the Madison Metro WebWatch service.
package webwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"madmetro/internal/routes"
)

// DefaultBaseURL is the root of the WebWatch service.
const DefaultBaseURL = "http://webwatch.cityofmadison.com/webwatch"

// ErrInvalidRoute is returned when a data request names no route or a route
// that is not in the registry. It is the only error the Client returns.
var ErrInvalidRoute = errors.New("a valid route id is required")

// Client fetches and decodes WebWatch data. Every call makes exactly one
// request; nothing is cached or shared between calls.
type Client struct {
	baseURL  string
	fetcher  Fetcher
	registry *routes.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(c *Client) { c.fetcher = f }
}

// WithRegistry replaces the embedded route registry.
func WithRegistry(r *routes.Registry) Option {
	return func(c *Client) { c.registry = r }
}

// WithClock sets the clock used for the update request timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a WebWatch client. By default it uses an HTTP fetcher
// with a 10 second timeout and the embedded route registry.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		registry: routes.Default(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = NewHTTPFetcher(10*time.Second, logger)
	}
	return c
}

// Routes returns every route in the registry.
func (c *Client) Routes() []routes.Route {
	return c.registry.All()
}

// RouteIDs returns the ID of every route in the registry.
func (c *Client) RouteIDs() []string {
	return c.registry.IDs()
}

// Route looks up a route by ID.
func (c *Client) Route(id string) (routes.Route, bool) {
	return c.registry.ByID(id)
}

// RoutePath fetches the points that make up the drawn path of a route. If the
// service cannot be reached or answers with something unreadable, the result
// is empty and the error nil.
func (c *Client) RoutePath(ctx context.Context, routeID string) ([]RoutePoint, error) {
	if err := c.checkRoute(routeID); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/Scripts/Route%s_trace.js", c.baseURL, url.PathEscape(routeID))
	body, ok := c.fetcher.Fetch(ctx, u, acceptHeader("application/x-javascript"))
	if !ok {
		return []RoutePoint{}, nil
	}

	points := ParseTrace(body)
	c.logger.Debug("route path decoded", "route", routeID, "points", len(points))
	return points, nil
}

// RoutePathFor is RoutePath for a route value.
func (c *Client) RoutePathFor(ctx context.Context, route *routes.Route) ([]RoutePoint, error) {
	if route == nil {
		return nil, fmt.Errorf("%w: no route given", ErrInvalidRoute)
	}
	return c.RoutePath(ctx, route.ID)
}

// RouteCurrentData fetches the current stop predictions and vehicle locations
// of a route. If the service cannot be reached or answers with something
// unreadable, both lists are empty and the error nil.
func (c *Client) RouteCurrentData(ctx context.Context, routeID string) (*RouteCurrentData, error) {
	if err := c.checkRoute(routeID); err != nil {
		return nil, err
	}

	body, ok := c.fetchUpdate(ctx, routeID)
	if !ok {
		return emptyCurrentData(), nil
	}

	data := ParseUpdate(routeID, body)
	c.logger.Debug("route update decoded",
		"route", routeID,
		"stop_times", len(data.StopTimes),
		"vehicles", len(data.Vehicles),
	)
	return data, nil
}

// RouteCurrentDataFor is RouteCurrentData for a route value.
func (c *Client) RouteCurrentDataFor(ctx context.Context, route *routes.Route) (*RouteCurrentData, error) {
	if route == nil {
		return nil, fmt.Errorf("%w: no route given", ErrInvalidRoute)
	}
	return c.RouteCurrentData(ctx, route.ID)
}

// RouteStops fetches the stops of a route from the same feed as
// RouteCurrentData.
func (c *Client) RouteStops(ctx context.Context, routeID string) ([]RouteStop, error) {
	if err := c.checkRoute(routeID); err != nil {
		return nil, err
	}

	body, ok := c.fetchUpdate(ctx, routeID)
	if !ok {
		return []RouteStop{}, nil
	}
	return ParseUpdateStops(body), nil
}

func (c *Client) fetchUpdate(ctx context.Context, routeID string) (string, bool) {
	// The timestamp only defeats intermediate caches.
	u := fmt.Sprintf("%s/UpdateWebMap.aspx?u=%s&timestamp=%d",
		c.baseURL, url.QueryEscape(routeID), c.now().Unix())
	return c.fetcher.Fetch(ctx, u, acceptHeader("text/html"))
}

func (c *Client) checkRoute(routeID string) error {
	if routeID == "" {
		return fmt.Errorf("%w: empty route id", ErrInvalidRoute)
	}
	if !c.registry.Has(routeID) {
		return fmt.Errorf("%w: unknown route %q", ErrInvalidRoute, routeID)
	}
	return nil
}
