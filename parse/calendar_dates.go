package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

const (
	ExceptionTypeAdded   = 1
	ExceptionTypeRemoved = 2
)

type calendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

// ParseCalendarDates parses calendar_dates.txt. Unlike the other tables,
// service_id is not required to have been declared in calendar.txt: a
// service can be defined purely through calendar_dates.txt exceptions, so
// the returned set of service IDs is merged into the caller's known set
// rather than validated against it.
func ParseCalendarDates(fs *model.FeedSet, data io.Reader) (map[string]bool, error) {
	rows := []*calendarDateCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling calendar_dates.txt")
	}

	seen := map[string]bool{}
	ids := map[string]bool{}
	for _, cd := range rows {
		if cd.ServiceID == "" {
			return nil, errors.New("empty service_id")
		}
		if !validGTFSDate(cd.Date) {
			return nil, errors.Errorf("service_id '%s' has invalid date", cd.ServiceID)
		}
		if cd.ExceptionType != ExceptionTypeAdded && cd.ExceptionType != ExceptionTypeRemoved {
			return nil, errors.Errorf("service_id '%s' has invalid exception_type %d", cd.ServiceID, cd.ExceptionType)
		}

		key := cd.ServiceID + "|" + cd.Date
		if seen[key] {
			return nil, errors.Errorf("repeated (service_id, date) pair '%s'", key)
		}
		seen[key] = true
		ids[cd.ServiceID] = true

		fs.CalendarDates = append(fs.CalendarDates, model.CalendarDate{
			ServiceID:     cd.ServiceID,
			Date:          cd.Date,
			ExceptionType: cd.ExceptionType,
		})
	}

	return ids, nil
}
