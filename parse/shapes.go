package parse

import (
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

type shapeCSV struct {
	ShapeID  string  `csv:"shape_id"`
	Lat      float64 `csv:"shape_pt_lat"`
	Lon      float64 `csv:"shape_pt_lon"`
	Sequence uint32  `csv:"shape_pt_sequence"`
}

// ParseShapes parses the optional shapes.txt, used to render the
// polyline geometry of a board leg (spec.md §6). Rows are sorted stable
// by (shape_id, shape_pt_sequence).
func ParseShapes(fs *model.FeedSet, data io.Reader) error {
	rows := []*shapeCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return errors.Wrap(err, "unmarshaling shapes.txt")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ShapeID != rows[j].ShapeID {
			return rows[i].ShapeID < rows[j].ShapeID
		}
		return rows[i].Sequence < rows[j].Sequence
	})

	seen := map[string]map[uint32]bool{}
	for _, sp := range rows {
		if sp.ShapeID == "" {
			return errors.New("empty shape_id in shapes.txt")
		}
		if seen[sp.ShapeID] == nil {
			seen[sp.ShapeID] = map[uint32]bool{}
		}
		if seen[sp.ShapeID][sp.Sequence] {
			return errors.Errorf("shape_id '%s' has repeated shape_pt_sequence %d", sp.ShapeID, sp.Sequence)
		}
		seen[sp.ShapeID][sp.Sequence] = true

		fs.Shapes = append(fs.Shapes, model.ShapePoint{
			ShapeID:  sp.ShapeID,
			Lat:      sp.Lat,
			Lon:      sp.Lon,
			Sequence: sp.Sequence,
		})
	}

	return nil
}
