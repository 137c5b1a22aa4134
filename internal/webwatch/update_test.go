package webwatch

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func updateBody(predictionStops, vehicles, timepointStops string) string {
	return "0*" + predictionStops + "*" + vehicles + "*" + timepointStops
}

func TestParseUpdate_StopTimes(t *testing.T) {
	tests := []struct {
		name      string
		record    string
		wantID    string
		wantTimes []string
	}{
		{
			name:      "times with trailing break",
			record:    "43.0731|-89.4012|Capitol Square|EB|5 min<br>12 min<br>",
			wantID:    "43.0731-89.4012",
			wantTimes: []string{"5 min", "12 min"},
		},
		{
			name:      "empty blob",
			record:    "43.0731|-89.4012|Capitol Square|EB|",
			wantID:    "43.0731-89.4012",
			wantTimes: []string{NoBusesAvailable},
		},
		{
			name:      "blank segments dropped",
			record:    "43.1|-89.3|Stop|N|<br> <br>3:05 PM<br>",
			wantID:    "43.1-89.3",
			wantTimes: []string{"3:05 PM"},
		},
		{
			name:      "scale kept in rendering",
			record:    "43.10|-89.300|Stop|N|1 min",
			wantID:    "43.10-89.300",
			wantTimes: []string{"1 min"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ParseUpdate("06", updateBody(tt.record, "", ""))
			if len(data.StopTimes) != 1 {
				t.Fatalf("got %d stop times, want 1", len(data.StopTimes))
			}
			st := data.StopTimes[0]
			if st.RouteID != "06" {
				t.Errorf("RouteID = %q, want 06", st.RouteID)
			}
			if st.StopID != tt.wantID {
				t.Errorf("StopID = %q, want %q", st.StopID, tt.wantID)
			}
			if !reflect.DeepEqual(st.Times, tt.wantTimes) {
				t.Errorf("Times = %q, want %q", st.Times, tt.wantTimes)
			}
		})
	}
}

func TestParseUpdate_StopIDsFollowWireText(t *testing.T) {
	data := ParseUpdate("06", updateBody("43.07|-89.4|A|N|1 min;43.0700|-89.4000|B|S|2 min", "", ""))
	if len(data.StopTimes) != 2 {
		t.Fatalf("got %d stop times, want 2", len(data.StopTimes))
	}
	if got := data.StopTimes[0].StopID; got != "43.07-89.4" {
		t.Errorf("first StopID = %q, want 43.07-89.4", got)
	}
	if got := data.StopTimes[1].StopID; got != "43.0700-89.4000" {
		t.Errorf("second StopID = %q, want 43.0700-89.4000", got)
	}
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"43.0700", "43.0700"},
		{"-89.4", "-89.4"},
		{"-89.300", "-89.300"},
		{"43", "43"},
		{"0.000", "0.000"},
	}
	for _, tt := range tests {
		if got := FormatCoordinate(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatCoordinate(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUpdate_DiscardedStops(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"zero coordinates", "0|0|Stop A|N|"},
		{"zero latitude", "0|-89.4|Stop A|N|5 min"},
		{"zero longitude", "43.07|0.000|Stop A|N|5 min"},
		{"too few fields", "43.07|-89.4|Stop A|N"},
		{"bad latitude", "north|-89.4|Stop A|N|5 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ParseUpdate("06", updateBody(tt.record, "", ""))
			if len(data.StopTimes) != 0 {
				t.Errorf("got %d stop times, want 0: %+v", len(data.StopTimes), data.StopTimes)
			}
		})
	}
}

func TestParseUpdate_MalformedStopDoesNotAffectSiblings(t *testing.T) {
	stops := "0|0|Stop A|N|;43.07|-89.4|Stop B|S|5 min;garbage;43.08|-89.41|Stop C|S|"
	data := ParseUpdate("06", updateBody(stops, "", ""))
	if len(data.StopTimes) != 2 {
		t.Fatalf("got %d stop times, want 2", len(data.StopTimes))
	}
	if data.StopTimes[0].StopID != "43.07-89.4" || data.StopTimes[1].StopID != "43.08-89.41" {
		t.Errorf("stop ids = %q, %q", data.StopTimes[0].StopID, data.StopTimes[1].StopID)
	}
}

func TestParseUpdate_FeedsMerged(t *testing.T) {
	prediction := "43.07|-89.4|Prediction|N|5 min"
	timepoint := "43.09|-89.5|Timepoint|S|10:15 AM"
	data := ParseUpdate("06", updateBody(prediction, "", timepoint))
	if len(data.StopTimes) != 2 {
		t.Fatalf("got %d stop times, want 2", len(data.StopTimes))
	}
	if data.StopTimes[0].StopID != "43.09-89.5" {
		t.Errorf("first stop = %q, want the timepoint stop", data.StopTimes[0].StopID)
	}
	if data.StopTimes[1].StopID != "43.07-89.4" {
		t.Errorf("second stop = %q, want the prediction stop", data.StopTimes[1].StopID)
	}
}

func TestParseUpdate_SharedCoordinatesShareID(t *testing.T) {
	stops := "43.07|-89.4|A|N|1 min;43.07|-89.4|B|S|2 min"
	data := ParseUpdate("06", updateBody(stops, "", ""))
	if len(data.StopTimes) != 2 {
		t.Fatalf("got %d stop times, want 2", len(data.StopTimes))
	}
	if data.StopTimes[0].StopID != data.StopTimes[1].StopID {
		t.Errorf("stop ids differ: %q, %q", data.StopTimes[0].StopID, data.StopTimes[1].StopID)
	}
}

func TestParseUpdate_Vehicle(t *testing.T) {
	vehicles := "43.0731|-89.3811|3|<b>E Towne</b><br>Vehicle No.: 121<br>Next Timepoint: MATC Truax"
	data := ParseUpdate("06", updateBody("", vehicles, ""))
	if len(data.Vehicles) != 1 {
		t.Fatalf("got %d vehicles, want 1", len(data.Vehicles))
	}
	v := data.Vehicles[0]
	if v.RouteID != "06" {
		t.Errorf("RouteID = %q", v.RouteID)
	}
	if v.FinalStop != "E Towne" {
		t.Errorf("FinalStop = %q, want E Towne", v.FinalStop)
	}
	if v.Number != "121" {
		t.Errorf("Number = %q, want 121", v.Number)
	}
	if v.NextStop != "MATC Truax" {
		t.Errorf("NextStop = %q, want MATC Truax", v.NextStop)
	}
	if v.Direction != 3 || v.Direction.String() != "E" {
		t.Errorf("Direction = %d (%s), want 3 (E)", v.Direction, v.Direction)
	}
	if !v.Latitude.Valid || v.Latitude.Decimal.String() != "43.0731" {
		t.Errorf("Latitude = %+v", v.Latitude)
	}
	if !v.Longitude.Valid || v.Longitude.Decimal.String() != "-89.3811" {
		t.Errorf("Longitude = %+v", v.Longitude)
	}
}

func TestParseUpdate_VehicleShortDescription(t *testing.T) {
	vehicles := "43.07|-89.38|0|<b>Out of service</b>"
	data := ParseUpdate("06", updateBody("", vehicles, ""))
	if len(data.Vehicles) != 1 {
		t.Fatalf("got %d vehicles, want 1", len(data.Vehicles))
	}
	v := data.Vehicles[0]
	if v.Number != "" || v.NextStop != "" || v.FinalStop != "" {
		t.Errorf("labels should be empty, got %+v", v)
	}
	if v.Direction.Known() {
		t.Errorf("direction 0 should be unknown")
	}
}

func TestParseUpdate_DroppedVehicles(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"three fields", "43.07|-89.38|3"},
		{"bad direction", "43.07|-89.38|NE|x<br>y<br>z"},
		{"bad longitude", "43.07||3|x<br>y<br>z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ParseUpdate("06", updateBody("", tt.record, ""))
			if len(data.Vehicles) != 0 {
				t.Errorf("got %d vehicles, want 0", len(data.Vehicles))
			}
		})
	}
}

func TestParseUpdate_MultipleVehicles(t *testing.T) {
	vehicles := "43.07|-89.38|1|a<br>Vehicle No.: 1<br>Next Timepoint: X;" +
		"43.08|-89.39|5;" +
		"43.09|-89.40|8|b<br>Vehicle No.: 2<br>Next Timepoint: Y;"
	data := ParseUpdate("02", updateBody("", vehicles, ""))
	if len(data.Vehicles) != 2 {
		t.Fatalf("got %d vehicles, want 2", len(data.Vehicles))
	}
	if data.Vehicles[0].Number != "1" || data.Vehicles[1].Number != "2" {
		t.Errorf("numbers = %q, %q", data.Vehicles[0].Number, data.Vehicles[1].Number)
	}
}

func TestParseUpdate_Undecodable(t *testing.T) {
	for _, body := range []string{"", "garbage", "0*1*2"} {
		data := ParseUpdate("06", body)
		if data.StopTimes == nil || data.Vehicles == nil {
			t.Errorf("ParseUpdate(%q) returned nil slices", body)
		}
		if len(data.StopTimes) != 0 || len(data.Vehicles) != 0 {
			t.Errorf("ParseUpdate(%q) = %+v, want empty", body, data)
		}
	}
}

func TestParseUpdateStops(t *testing.T) {
	prediction := "43.07|-89.4|Park & Main|NB|5 min;0|0|none|N|"
	timepoint := "43.09|-89.5|West Transfer|SB|10:15 AM"
	stops := ParseUpdateStops(updateBody(prediction, "", timepoint))

	want := []struct {
		id, name, dir string
		typ           StopType
	}{
		{"43.09-89.5", "West Transfer", "SB", StopTypeTimepoint},
		{"43.07-89.4", "Park & Main", "NB", StopTypePrediction},
	}
	if len(stops) != len(want) {
		t.Fatalf("got %d stops, want %d", len(stops), len(want))
	}
	for i, w := range want {
		s := stops[i]
		if s.StopID != w.id || s.Name != w.name || s.Direction != w.dir || s.StopType != w.typ {
			t.Errorf("stop %d = %+v, want %+v", i, s, w)
		}
	}

	if got := ParseUpdateStops("nope"); got == nil || len(got) != 0 {
		t.Errorf("ParseUpdateStops(nope) = %v, want empty", got)
	}
}

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{0, ""},
		{1, "N"},
		{2, "NE"},
		{4, "SE"},
		{8, "NW"},
		{9, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}
