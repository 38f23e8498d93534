package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

type stopCSV struct {
	ID            string  `csv:"stop_id"`
	Code          string  `csv:"stop_code"`
	Name          string  `csv:"stop_name"`
	Desc          string  `csv:"stop_desc"`
	Lat           float64 `csv:"stop_lat"`
	Lon           float64 `csv:"stop_lon"`
	URL           string  `csv:"stop_url"`
	LocationType  int8    `csv:"location_type"`
	ParentStation string  `csv:"parent_station"`
	PlatformCode  string  `csv:"platform_code"`
}

// ParseStops parses stops.txt, returning the set of seen stop IDs.
func ParseStops(fs *model.FeedSet, data io.Reader) (map[string]bool, error) {
	rows := []*stopCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling stops.txt")
	}

	ids := map[string]bool{}
	parentRef := map[string]string{}
	for _, st := range rows {
		if ids[st.ID] {
			return nil, errors.Errorf("repeated stop_id '%s'", st.ID)
		}
		ids[st.ID] = true

		if st.ID == "" {
			return nil, errors.New("empty stop_id")
		}

		locationType := model.LocationType(st.LocationType)
		if locationType != model.LocationTypeGenericNode && locationType != model.LocationTypeBoardingArea {
			if st.Name == "" {
				return nil, errors.Errorf("empty stop_name for stop_id '%s'", st.ID)
			}
			if st.Lat == 0 && st.Lon == 0 {
				return nil, errors.Errorf("empty stop_lat/stop_lon for stop_id '%s'", st.ID)
			}
		}

		fs.Stops = append(fs.Stops, model.Stop{
			ID:            st.ID,
			Code:          st.Code,
			Name:          st.Name,
			Desc:          st.Desc,
			Lat:           st.Lat,
			Lon:           st.Lon,
			URL:           st.URL,
			LocationType:  locationType,
			ParentStation: st.ParentStation,
			PlatformCode:  st.PlatformCode,
		})

		if st.ParentStation != "" {
			parentRef[st.ID] = st.ParentStation
		}
	}

	for stopID, parentID := range parentRef {
		if !ids[parentID] {
			return nil, errors.Errorf("stop '%s' references unknown parent_station '%s'", stopID, parentID)
		}
	}

	return ids, nil
}
