package parse

import (
	"encoding/hex"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

type routeCSV struct {
	ID        string `csv:"route_id"`
	AgencyID  string `csv:"agency_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Desc      string `csv:"route_desc"`
	Type      string `csv:"route_type"`
	URL       string `csv:"route_url"`
	Color     string `csv:"route_color"`
	TextColor string `csv:"route_text_color"`
}

func legalRouteType(t model.RouteType) bool {
	if t >= 0 && t <= 7 {
		return true
	}
	return t == model.RouteTypeTrolleybus || t == model.RouteTypeMonorail
}

func validRouteColor(color string) bool {
	if len(color) != 6 {
		return false
	}
	_, err := hex.DecodeString(color)
	return err == nil
}

// ParseRoutes parses routes.txt, returning the set of seen route IDs.
func ParseRoutes(fs *model.FeedSet, data io.Reader, agencies map[string]bool) (map[string]bool, error) {
	rows := []*routeCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling routes.txt")
	}

	ids := map[string]bool{}
	for _, r := range rows {
		if ids[r.ID] {
			return nil, errors.Errorf("repeated route_id '%s'", r.ID)
		}
		ids[r.ID] = true

		if r.ID == "" {
			return nil, errors.New("route has no route_id")
		}

		if len(agencies) > 1 && r.AgencyID == "" {
			return nil, errors.Errorf("route_id '%s' has no agency_id", r.ID)
		}
		if r.AgencyID != "" && !agencies[r.AgencyID] {
			return nil, errors.Errorf("unknown agency_id '%s'", r.AgencyID)
		}

		if r.ShortName == "" && r.LongName == "" {
			return nil, errors.Errorf("route_id '%s' has no short_name or long_name", r.ID)
		}

		if r.Type == "" {
			return nil, errors.Errorf("route_id '%s' has no route_type", r.ID)
		}
		routeType, err := strconv.Atoi(r.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "route_id '%s' has invalid route_type", r.ID)
		}
		if !legalRouteType(model.RouteType(routeType)) {
			return nil, errors.Errorf("route_id '%s' has invalid route_type %d", r.ID, routeType)
		}

		if r.Color == "" {
			r.Color = "FFFFFF"
		} else if !validRouteColor(r.Color) {
			return nil, errors.Errorf("route_id '%s' has invalid route_color", r.ID)
		}
		if r.TextColor == "" {
			r.TextColor = "000000"
		} else if !validRouteColor(r.TextColor) {
			return nil, errors.Errorf("route_id '%s' has invalid route_text_color", r.ID)
		}

		fs.Routes = append(fs.Routes, model.Route{
			ID:        r.ID,
			AgencyID:  r.AgencyID,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Desc:      r.Desc,
			Type:      model.RouteType(routeType),
			URL:       r.URL,
			Color:     r.Color,
			TextColor: r.TextColor,
		})
	}

	return ids, nil
}
