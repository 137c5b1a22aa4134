package main

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"madmetro/internal/realtime"
	"madmetro/internal/webwatch"
)

func TestParseNear(t *testing.T) {
	tests := []struct {
		in       string
		lat, lon float64
		wantErr  bool
	}{
		{"43.0747,-89.3841", 43.0747, -89.3841, false},
		{" 43.07 , -89.38 ", 43.07, -89.38, false},
		{"43.07", 0, 0, true},
		{"north,-89.38", 0, 0, true},
		{"43.07,west", 0, 0, true},
		{"91,-89.38", 0, 0, true},
		{"43.07,-181", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lat, lon, err := parseNear(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseNear(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && (lat != tt.lat || lon != tt.lon) {
				t.Errorf("parseNear(%q) = %v,%v, want %v,%v", tt.in, lat, lon, tt.lat, tt.lon)
			}
		})
	}
}

func TestVehicleCoord(t *testing.T) {
	v := webwatch.VehicleLocation{
		Latitude:  decimal.NewNullDecimal(decimal.RequireFromString("43.0731")),
		Longitude: decimal.NewNullDecimal(decimal.RequireFromString("-89.3811")),
	}
	lat, lon, ok := vehicleCoord(v)
	if !ok || lat != 43.0731 || lon != -89.3811 {
		t.Errorf("vehicleCoord = %v,%v,%v", lat, lon, ok)
	}

	if _, _, ok := vehicleCoord(webwatch.VehicleLocation{}); ok {
		t.Error("vehicle without a position should report false")
	}
}

// slowSource takes a while to answer so that a poll is in flight when the
// poller is stopped.
type slowSource struct {
	mu       sync.Mutex
	inFlight int
	calls    int
}

func (s *slowSource) RouteCurrentData(ctx context.Context, routeID string) (*webwatch.RouteCurrentData, error) {
	s.mu.Lock()
	s.inFlight++
	s.calls++
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return &webwatch.RouteCurrentData{}, nil
}

type countingArchive struct {
	mu      sync.Mutex
	records int
}

func (a *countingArchive) RecordPoll(context.Context, string, time.Time, *webwatch.RouteCurrentData) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records++
	return "poll", nil
}

func (a *countingArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records
}

func TestRunPoller_StopWaitsForPoll(t *testing.T) {
	src := &slowSource{}
	archive := &countingArchive{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := realtime.NewPoller(src, []string{"01", "02"}, realtime.NewStore(), time.Millisecond, 2, logger).
		WithArchive(archive)

	stop := runPoller(context.Background(), p)

	deadline := time.After(2 * time.Second)
	for {
		src.mu.Lock()
		n := src.calls
		src.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller never polled")
		case <-time.After(time.Millisecond):
		}
	}

	stop()

	src.mu.Lock()
	inFlight := src.inFlight
	src.mu.Unlock()
	if inFlight != 0 {
		t.Errorf("%d polls still running after stop", inFlight)
	}

	recorded := archive.count()
	time.Sleep(50 * time.Millisecond)
	if got := archive.count(); got != recorded {
		t.Errorf("archive written after stop: %d records, then %d", recorded, got)
	}
}
