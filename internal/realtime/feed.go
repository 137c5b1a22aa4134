package realtime

import (
	"fmt"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"madmetro/internal/webwatch"
)

// VehicleFeed builds a GTFS-realtime VehiclePositions feed from snapshots.
// Vehicles without a position are left out.
func VehicleFeed(snapshots []Snapshot, now time.Time) *gtfs.FeedMessage {
	incrementality := gtfs.FeedHeader_FULL_DATASET
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
	}

	for _, snap := range snapshots {
		if snap.Data == nil {
			continue
		}
		for i, v := range snap.Data.Vehicles {
			if !v.Latitude.Valid || !v.Longitude.Valid {
				continue
			}
			feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
				Id:      proto.String(entityID(snap.RouteID, v, i)),
				Vehicle: vehiclePosition(snap, v),
			})
		}
	}
	return feed
}

// MarshalVehicleFeed encodes VehicleFeed as protobuf bytes.
func MarshalVehicleFeed(snapshots []Snapshot, now time.Time) ([]byte, error) {
	data, err := proto.Marshal(VehicleFeed(snapshots, now))
	if err != nil {
		return nil, fmt.Errorf("marshal vehicle feed: %w", err)
	}
	return data, nil
}

func vehiclePosition(snap Snapshot, v webwatch.VehicleLocation) *gtfs.VehiclePosition {
	pos := &gtfs.Position{
		Latitude:  proto.Float32(float32(v.Latitude.Decimal.InexactFloat64())),
		Longitude: proto.Float32(float32(v.Longitude.Decimal.InexactFloat64())),
	}
	if b, ok := bearing(v.Direction); ok {
		pos.Bearing = proto.Float32(b)
	}

	vp := &gtfs.VehiclePosition{
		Trip:      &gtfs.TripDescriptor{RouteId: proto.String(snap.RouteID)},
		Position:  pos,
		Timestamp: proto.Uint64(uint64(snap.PolledAt.Unix())),
	}
	if v.Number != "" {
		vp.Vehicle = &gtfs.VehicleDescriptor{
			Id:    proto.String(v.Number),
			Label: proto.String(v.Number),
		}
	}
	return vp
}

// bearing converts a direction octant to degrees clockwise from north.
func bearing(d webwatch.Direction) (float32, bool) {
	if !d.Known() {
		return 0, false
	}
	return float32(d-1) * 45, true
}

func entityID(routeID string, v webwatch.VehicleLocation, index int) string {
	if v.Number != "" {
		return routeID + "-" + v.Number
	}
	return fmt.Sprintf("%s-#%d", routeID, index)
}
