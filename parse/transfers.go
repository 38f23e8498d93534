package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/transitcore/raptor/model"
)

const (
	TransferTypeRecommended  = 0
	TransferTypeTimed        = 1
	TransferTypeMinimumTime  = 2
	TransferTypeNotPossible  = 3
)

type transferCSV struct {
	FromStopID      string `csv:"from_stop_id"`
	ToStopID        string `csv:"to_stop_id"`
	Type            int8   `csv:"transfer_type"`
	MinTransferTime int    `csv:"min_transfer_time"`
}

// ParseTransfers parses the optional transfers.txt, used to override the
// footpath builder's computed Haversine walking durations (spec.md §4.2).
func ParseTransfers(fs *model.FeedSet, data io.Reader, stops map[string]bool) error {
	rows := []*transferCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return errors.Wrap(err, "unmarshaling transfers.txt")
	}

	for _, t := range rows {
		if !stops[t.FromStopID] {
			return errors.Errorf("transfers.txt references unknown from_stop_id '%s'", t.FromStopID)
		}
		if !stops[t.ToStopID] {
			return errors.Errorf("transfers.txt references unknown to_stop_id '%s'", t.ToStopID)
		}
		if t.Type < TransferTypeRecommended || t.Type > TransferTypeNotPossible {
			return errors.Errorf("transfer from '%s' to '%s' has invalid transfer_type %d", t.FromStopID, t.ToStopID, t.Type)
		}
		if t.Type == TransferTypeMinimumTime && t.MinTransferTime <= 0 {
			return errors.Errorf("transfer from '%s' to '%s' has non-positive min_transfer_time", t.FromStopID, t.ToStopID)
		}

		fs.Transfers = append(fs.Transfers, model.Transfer{
			FromStopID:      t.FromStopID,
			ToStopID:        t.ToStopID,
			Type:            t.Type,
			MinTransferTime: t.MinTransferTime,
		})
	}

	return nil
}
