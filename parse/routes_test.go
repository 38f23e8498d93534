package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptor/model"
)

func TestParseRoutes(t *testing.T) {
	agencies := map[string]bool{"a": true}

	for _, tc := range []struct {
		name     string
		content  string
		agencies map[string]bool
		want     []model.Route
		err      bool
	}{
		{
			"minimal route defaults colors",
			`
route_id,route_short_name,route_type
r,R1,3`,
			agencies,
			[]model.Route{{ID: "r", ShortName: "R1", Type: model.RouteTypeBus, Color: "FFFFFF", TextColor: "000000"}},
			false,
		},
		{
			"unknown agency rejected",
			`
route_id,agency_id,route_short_name,route_type
r,missing,R1,3`,
			agencies,
			nil, true,
		},
		{
			"missing names rejected",
			`
route_id,route_type
r,3`,
			agencies,
			nil, true,
		},
		{
			"invalid route_type rejected",
			`
route_id,route_short_name,route_type
r,R1,99`,
			agencies,
			nil, true,
		},
		{
			"invalid color rejected",
			`
route_id,route_short_name,route_type,route_color
r,R1,3,notacolor`,
			agencies,
			nil, true,
		},
		{
			"duplicate route_id rejected",
			`
route_id,route_short_name,route_type
r,R1,3
r,R2,3`,
			agencies,
			nil, true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fs := &model.FeedSet{}
			_, err := ParseRoutes(fs, strings.NewReader(tc.content), tc.agencies)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, fs.Routes)
		})
	}
}
