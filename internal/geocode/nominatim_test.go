package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		if r.URL.Path != "/search" || r.URL.Query().Get("viewbox") != madisonViewbox {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Write([]byte(`[{"lat":"43.0747","lon":"-89.3841","display_name":"Capitol Square, Madison"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "madmetro-test")
	place, err := c.Search(context.Background(), "Capitol Square")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if place == nil {
		t.Fatal("Search returned nil place")
	}
	if place.Latitude.String() != "43.0747" || place.Longitude.String() != "-89.3841" {
		t.Errorf("place = %s,%s", place.Latitude, place.Longitude)
	}
	if gotQuery != "Capitol Square" || gotAgent != "madmetro-test" {
		t.Errorf("query = %q, agent = %q", gotQuery, gotAgent)
	}
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	place, err := New(srv.URL, "t").Search(context.Background(), "nowhere")
	if err != nil || place != nil {
		t.Errorf("Search = %v, %v; want nil, nil", place, err)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"bad json", http.StatusOK, `{`},
		{"bad latitude", http.StatusOK, `[{"lat":"north","lon":"-89.4"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			if _, err := New(srv.URL, "t").Search(context.Background(), "x"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
