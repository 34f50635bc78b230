package parse

import (
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"roundel.dev/transit/model"
)

type StopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	Headsign      string `csv:"stop_headsign"`
	PickupType    string `csv:"pickup_type"`
	DropOffType   string `csv:"drop_off_type"`
}

// GTFS expresses "no pickup/dropoff" as type 1; everything else
// (blank, 0, phone-agency, coordinate-with-driver) still allows
// boarding or alighting. The scanner only ever sees the boolean.
func boardable(pickupType string) bool {
	return pickupType != "1"
}

// Attaches all stop times to their trips, ordered by stop_sequence.
func ParseStopTimes(
	data io.Reader,
	trips map[string]*model.Trip,
	stops map[string]string,
) error {

	i := -1
	err := gocsv.UnmarshalToCallbackWithError(data, func(st *StopTimeCSV) error {
		i += 1
		trip, found := trips[st.TripID]
		if !found {
			return fmt.Errorf("unknown trip_id: '%s' (row %d)", st.TripID, i+1)
		}
		if st.StopID == "" {
			return fmt.Errorf("missing stop_id (row %d)", i+1)
		}
		if _, found := stops[st.StopID]; !found {
			return fmt.Errorf("unknown stop_id: '%s' (row %d)", st.StopID, i+1)
		}

		arrival, err := model.ParseTime(st.ArrivalTime)
		if err != nil {
			return errors.Wrapf(err, "parsing arrival_time (row %d)", i+1)
		}

		departure, err := model.ParseTime(st.DepartureTime)
		if err != nil {
			return errors.Wrapf(err, "parsing departure_time (row %d)", i+1)
		}

		if arrival > departure {
			return fmt.Errorf("arrival after departure (row %d)", i+1)
		}

		trip.StopTimes = append(trip.StopTimes, model.StopTime{
			TripID:    st.TripID,
			StopID:    st.StopID,
			Seq:       st.StopSequence,
			Arrival:   arrival,
			Departure: departure,
			PickUp:    boardable(st.PickupType),
			DropOff:   boardable(st.DropOffType),
			Headsign:  st.Headsign,
		})

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unmarshaling stop_times csv")
	}

	// Order each trip's calls and verify stop_sequence is unique.
	for _, trip := range trips {
		sort.SliceStable(trip.StopTimes, func(i, j int) bool {
			return trip.StopTimes[i].Seq < trip.StopTimes[j].Seq
		})
		for i := 1; i < len(trip.StopTimes); i++ {
			if trip.StopTimes[i].Seq == trip.StopTimes[i-1].Seq {
				return fmt.Errorf(
					"duplicate stop_sequence %d for trip_id '%s'",
					trip.StopTimes[i].Seq, trip.ID,
				)
			}
		}
	}

	return nil
}
