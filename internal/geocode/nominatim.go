// Package geocode resolves free-form Madison addresses to coordinates using
// OpenStreetMap's Nominatim service.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// madisonViewbox bounds searches to the Madison metro area (lon,lat,lon,lat).
const madisonViewbox = "-89.60,42.98,-89.20,43.18"

// Place is a geocoded address.
type Place struct {
	Latitude    decimal.Decimal
	Longitude   decimal.Decimal
	DisplayName string
}

// Client is a Nominatim geocoding client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates a Nominatim client. userAgent is required by Nominatim's usage
// policy.
func New(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		userAgent:  userAgent,
	}
}

// Search geocodes query within Madison. It returns nil when nothing matches.
func (c *Client) Search(ctx context.Context, query string) (*Place, error) {
	u := c.baseURL + "/search?" + url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"countrycodes":   {"us"},
		"viewbox":        {madisonViewbox},
		"bounded":        {"1"},
		"addressdetails": {"0"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("nominatim decode: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := decimal.NewFromString(results[0].Lat)
	if err != nil {
		return nil, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := decimal.NewFromString(results[0].Lon)
	if err != nil {
		return nil, fmt.Errorf("parse lon: %w", err)
	}

	return &Place{Latitude: lat, Longitude: lon, DisplayName: results[0].DisplayName}, nil
}
