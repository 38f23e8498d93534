package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

// Weekday bitmask values, bit i set when service runs on that day.
const (
	WeekdayMonday = 1 << iota
	WeekdayTuesday
	WeekdayWednesday
	WeekdayThursday
	WeekdayFriday
	WeekdaySaturday
	WeekdaySunday
)

type calendarCSV struct {
	ServiceID string `csv:"service_id"`
	Monday    int8   `csv:"monday"`
	Tuesday   int8   `csv:"tuesday"`
	Wednesday int8   `csv:"wednesday"`
	Thursday  int8   `csv:"thursday"`
	Friday    int8   `csv:"friday"`
	Saturday  int8   `csv:"saturday"`
	Sunday    int8   `csv:"sunday"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

func validGTFSDate(d string) bool {
	if len(d) != 8 {
		return false
	}
	for _, c := range d {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseCalendar parses calendar.txt, returning the set of seen service IDs.
// calendar.txt is optional in GTFS; callers should skip this when the file
// is absent and rely on calendar_dates.txt alone.
func ParseCalendar(fs *model.FeedSet, data io.Reader) (map[string]bool, error) {
	rows := []*calendarCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling calendar.txt")
	}

	ids := map[string]bool{}
	for _, c := range rows {
		if ids[c.ServiceID] {
			return nil, errors.Errorf("repeated service_id '%s'", c.ServiceID)
		}
		ids[c.ServiceID] = true

		if c.ServiceID == "" {
			return nil, errors.New("empty service_id")
		}
		if !validGTFSDate(c.StartDate) || !validGTFSDate(c.EndDate) {
			return nil, errors.Errorf("service_id '%s' has invalid start_date/end_date", c.ServiceID)
		}
		if c.StartDate > c.EndDate {
			return nil, errors.Errorf("service_id '%s' has start_date after end_date", c.ServiceID)
		}

		var weekday int8
		for bit, flag := range []int8{c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday} {
			if flag != 0 && flag != 1 {
				return nil, errors.Errorf("service_id '%s' has invalid weekday flag", c.ServiceID)
			}
			if flag == 1 {
				weekday |= 1 << uint(bit)
			}
		}

		fs.Calendars = append(fs.Calendars, model.Calendar{
			ServiceID: c.ServiceID,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
			Weekday:   weekday,
		})
	}

	return ids, nil
}
