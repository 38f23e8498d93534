package parse

import (
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/gtfstime"
	"github.com/transitcore/raptor/model"
)

type stopTimeCSV struct {
	TripID       string `csv:"trip_id"`
	StopID       string `csv:"stop_id"`
	Headsign     string `csv:"stop_headsign"`
	StopSequence uint32 `csv:"stop_sequence"`
	Arrival      string `csv:"arrival_time"`
	Departure    string `csv:"departure_time"`
}

// ParseStopTimes parses stop_times.txt. Rows are sorted stable by
// (trip_id, stop_sequence) before being appended to fs, so downstream
// consumers (the RAPTOR schedule index builder) can assume per-trip
// sequence order without re-sorting.
//
// Arrival/departure times are validated with gtfstime.ParseHMS, which
// tolerates hour values >= 24 for trips running past local midnight
// (GTFS's service-day overflow convention); they are kept in that raw
// HH:MM:SS form in model.StopTime and only converted to gtfstime.Seconds
// when the RAPTOR index is built.
func ParseStopTimes(fs *model.FeedSet, data io.Reader, trips map[string]bool, stops map[string]bool) error {
	rows := []*stopTimeCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return errors.Wrap(err, "unmarshaling stop_times.txt")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TripID != rows[j].TripID {
			return rows[i].TripID < rows[j].TripID
		}
		return rows[i].StopSequence < rows[j].StopSequence
	})

	seenSequence := map[string]map[uint32]bool{}
	lastDeparture := map[string]gtfstime.Seconds{}
	lastSequence := map[string]uint32{}
	sawTrip := map[string]bool{}

	for _, st := range rows {
		if st.TripID == "" {
			return errors.New("empty trip_id in stop_times.txt")
		}
		if !trips[st.TripID] {
			return errors.Errorf("stop_times.txt references unknown trip_id '%s'", st.TripID)
		}
		if st.StopID == "" {
			return errors.Errorf("trip_id '%s' has stop_time with empty stop_id", st.TripID)
		}
		if !stops[st.StopID] {
			return errors.Errorf("trip_id '%s' references unknown stop_id '%s'", st.TripID, st.StopID)
		}

		if seenSequence[st.TripID] == nil {
			seenSequence[st.TripID] = map[uint32]bool{}
		}
		if seenSequence[st.TripID][st.StopSequence] {
			return errors.Errorf("trip_id '%s' has repeated stop_sequence %d", st.TripID, st.StopSequence)
		}
		seenSequence[st.TripID][st.StopSequence] = true

		if sawTrip[st.TripID] && st.StopSequence <= lastSequence[st.TripID] {
			return errors.Errorf("trip_id '%s' has out-of-order stop_sequence %d", st.TripID, st.StopSequence)
		}

		arrival, err := gtfstime.ParseHMS(st.Arrival)
		if err != nil {
			return errors.Wrapf(err, "trip_id '%s' stop_sequence %d has invalid arrival_time", st.TripID, st.StopSequence)
		}
		departure, err := gtfstime.ParseHMS(st.Departure)
		if err != nil {
			return errors.Wrapf(err, "trip_id '%s' stop_sequence %d has invalid departure_time", st.TripID, st.StopSequence)
		}
		if departure < arrival {
			return errors.Errorf("trip_id '%s' stop_sequence %d has departure before arrival", st.TripID, st.StopSequence)
		}
		if sawTrip[st.TripID] && arrival < lastDeparture[st.TripID] {
			return errors.Errorf("trip_id '%s' stop_sequence %d moves backward in time", st.TripID, st.StopSequence)
		}

		sawTrip[st.TripID] = true
		lastSequence[st.TripID] = st.StopSequence
		lastDeparture[st.TripID] = departure

		fs.StopTimes = append(fs.StopTimes, model.StopTime{
			TripID:       st.TripID,
			StopID:       st.StopID,
			Headsign:     st.Headsign,
			StopSequence: st.StopSequence,
			Arrival:      st.Arrival,
			Departure:    st.Departure,
		})
	}

	return nil
}
