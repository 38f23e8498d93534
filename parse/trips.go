package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

type tripCSV struct {
	ID          string `csv:"trip_id"`
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	Headsign    string `csv:"trip_headsign"`
	ShortName   string `csv:"trip_short_name"`
	DirectionID int8   `csv:"direction_id"`
	ShapeID     string `csv:"shape_id"`
}

// ParseTrips parses trips.txt, returning the set of seen trip IDs.
func ParseTrips(fs *model.FeedSet, data io.Reader, routes map[string]bool, services map[string]bool) (map[string]bool, error) {
	rows := []*tripCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling trips.txt")
	}

	ids := map[string]bool{}
	for _, t := range rows {
		if ids[t.ID] {
			return nil, errors.Errorf("repeated trip_id '%s'", t.ID)
		}
		ids[t.ID] = true

		if t.ID == "" {
			return nil, errors.New("empty trip_id")
		}
		if t.RouteID == "" {
			return nil, errors.New("empty route_id")
		}
		if !routes[t.RouteID] {
			return nil, errors.Errorf("unknown route_id '%s'", t.RouteID)
		}
		if !services[t.ServiceID] {
			return nil, errors.Errorf("unknown service_id '%s'", t.ServiceID)
		}
		if t.DirectionID != 0 && t.DirectionID != 1 {
			return nil, errors.Errorf("invalid direction_id '%d'", t.DirectionID)
		}

		fs.Trips = append(fs.Trips, model.Trip{
			ID:          t.ID,
			RouteID:     t.RouteID,
			ServiceID:   t.ServiceID,
			Headsign:    t.Headsign,
			ShortName:   t.ShortName,
			DirectionID: t.DirectionID,
			ShapeID:     t.ShapeID,
		})
	}

	return ids, nil
}
