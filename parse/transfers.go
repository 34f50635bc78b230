package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"roundel.dev/transit/model"
)

type TransferCSV struct {
	FromStopID      string `csv:"from_stop_id"`
	ToStopID        string `csv:"to_stop_id"`
	TransferType    int8   `csv:"transfer_type"`
	MinTransferTime int    `csv:"min_transfer_time"`

	// Validity window extension carried by some feeds; blank means
	// the transfer is always available.
	StartTime string `csv:"start_time"`
	EndTime   string `csv:"end_time"`
}

// Returns all foot transfers. Same-stop transfers are kept; the
// timetable turns them into interchange entries.
func ParseTransfers(data io.Reader, stops map[string]string) ([]model.Transfer, error) {
	transferCsv := []*TransferCSV{}
	if err := gocsv.Unmarshal(data, &transferCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling transfers csv: %w", err)
	}

	transfers := []model.Transfer{}
	for i, t := range transferCsv {
		if _, found := stops[t.FromStopID]; !found {
			return nil, fmt.Errorf("unknown from_stop_id: '%s' (row %d)", t.FromStopID, i+1)
		}
		if _, found := stops[t.ToStopID]; !found {
			return nil, fmt.Errorf("unknown to_stop_id: '%s' (row %d)", t.ToStopID, i+1)
		}
		if t.MinTransferTime < 0 {
			return nil, fmt.Errorf("negative min_transfer_time (row %d)", i+1)
		}

		var start, end int
		var err error
		if t.StartTime != "" {
			start, err = model.ParseTime(t.StartTime)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing start_time (row %d)", i+1)
			}
		}
		if t.EndTime != "" {
			end, err = model.ParseTime(t.EndTime)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing end_time (row %d)", i+1)
			}
		}

		transfers = append(transfers, model.Transfer{
			From:     t.FromStopID,
			To:       t.ToStopID,
			Duration: t.MinTransferTime,
			Start:    start,
			End:      end,
			Type:     t.TransferType,
		})
	}

	return transfers, nil
}
