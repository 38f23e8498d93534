package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/model"
)

func TestParseCalendarDates(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		ids     map[string]bool
		want    []model.CalendarDate
		err     bool
	}{
		{
			"added exception",
			`
service_id,date,exception_type
svc,20260704,1`,
			map[string]bool{"svc": true},
			[]model.CalendarDate{{ServiceID: "svc", Date: "20260704", ExceptionType: ExceptionTypeAdded}},
			false,
		},
		{
			"removed exception",
			`
service_id,date,exception_type
svc,20260704,2`,
			map[string]bool{"svc": true},
			[]model.CalendarDate{{ServiceID: "svc", Date: "20260704", ExceptionType: ExceptionTypeRemoved}},
			false,
		},
		{
			"invalid exception_type rejected",
			`
service_id,date,exception_type
svc,20260704,9`,
			nil, nil, true,
		},
		{
			"repeated pair rejected",
			`
service_id,date,exception_type
svc,20260704,1
svc,20260704,2`,
			nil, nil, true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fs := &model.FeedSet{}
			ids, err := ParseCalendarDates(fs, strings.NewReader(tc.content))
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.ids, ids)
			assert.Equal(t, tc.want, fs.CalendarDates)
		})
	}
}
