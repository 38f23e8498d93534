package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

type agencyCSV struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
}

// ParseAgency parses agency.txt, returning the set of seen agency IDs and
// the feed's shared timezone.
func ParseAgency(fs *model.FeedSet, data io.Reader) (map[string]bool, string, error) {
	rows := []*agencyCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, "", errors.Wrap(err, "unmarshaling agency.txt")
	}

	if len(rows) == 0 {
		return nil, "", errors.New("no agency record found")
	}

	timezones := map[string]bool{}
	for _, a := range rows {
		timezones[a.Timezone] = true
	}
	if len(timezones) != 1 {
		return nil, "", errors.New("agency.txt has multiple agency_timezone values")
	}

	tz := rows[0].Timezone
	if tz == "" {
		return nil, "", errors.New("missing agency_timezone")
	}

	ids := map[string]bool{}
	for _, a := range rows {
		if ids[a.ID] {
			return nil, "", errors.Errorf("duplicated agency_id '%s'", a.ID)
		}
		ids[a.ID] = true

		if a.Name == "" {
			return nil, "", errors.New("missing agency_name")
		}
		if a.URL == "" {
			return nil, "", errors.New("missing agency_url")
		}

		fs.Agencies = append(fs.Agencies, model.Agency{
			ID:       a.ID,
			Name:     a.Name,
			URL:      a.URL,
			Timezone: tz,
		})
	}

	return ids, tz, nil
}
