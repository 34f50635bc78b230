package transit

import (
	"fmt"
	"time"

	"roundel.dev/transit/model"
)

// LegDescriptor identifies a previously ridden leg by its line and
// the stops it visited, independent of the concrete trip.
type LegDescriptor struct {
	RouteID     string
	DirectionID int8
	Stops       []string
}

// Descriptors extracts re-matchable descriptors from a journey's trip
// legs. Foot transfers carry no trip and are dropped.
func (j Journey) Descriptors() []LegDescriptor {
	out := []LegDescriptor{}
	for _, l := range j.Legs {
		if l.Kind != LegTrip {
			continue
		}
		stops := make([]string, len(l.StopTimes))
		for i, st := range l.StopTimes {
			stops[i] = st.StopID
		}
		out = append(out, LegDescriptor{
			RouteID:     l.RouteID,
			DirectionID: l.DirectionID,
			Stops:       stops,
		})
	}
	return out
}

// ReMatch re-anchors a previously computed journey on a new reference
// time, re-selecting concrete trips that realise the same per-leg
// stop sequences. With depart true, each leg gets the earliest trip
// departing at or after the anchor; with depart false, legs are
// matched in reverse with the latest trip arriving at or before it.
//
// If any leg has no matching trip the whole re-match fails with
// ErrNoMatch and nothing is returned.
func (e *Engine) ReMatch(legs []LegDescriptor, date, tsec int, depart bool) ([]Leg, error) {
	day := model.DayOfWeek(date)
	anchor := tsec
	matched := make([]Leg, len(legs))

	for n := 0; n < len(legs); n++ {
		i := n
		if !depart {
			i = len(legs) - 1 - n
		}
		ld := legs[i]
		if len(ld.Stops) < 2 {
			return nil, fmt.Errorf("leg %d: %w", i, ErrBadLeg)
		}

		trip, board, alight := e.matchTrip(ld, date, day, anchor, depart)
		if trip == nil {
			return nil, fmt.Errorf("leg %d (route '%s'): %w", i, ld.RouteID, ErrNoMatch)
		}

		leg, err := e.tripLeg(&connection{kind: connTrip, trip: trip, board: board, alight: alight})
		if err != nil {
			return nil, err
		}
		matched[i] = leg

		if depart {
			anchor = trip.StopTimes[alight].Departure + e.opts.MinInterchange
		} else {
			anchor = trip.StopTimes[board].Arrival - e.opts.MinInterchange
		}
	}

	return matched, nil
}

// matchTrip scans the line's trips for the one whose matching slice
// sits closest to the anchor: minimal first departure at or after it
// when departing, maximal last arrival at or before it otherwise.
// Ties go to the lexicographically smaller trip ID.
func (e *Engine) matchTrip(ld LegDescriptor, date int, day time.Weekday, anchor int, depart bool) (*model.Trip, int, int) {
	var best *model.Trip
	var bestBoard, bestAlight, bestTime int

	for _, t := range e.tt.TripsByLine(ld.RouteID, ld.DirectionID) {
		if !t.Service.RunsOn(date, day) {
			continue
		}
		board, alight, ok := matchSlice(t, ld.Stops)
		if !ok {
			continue
		}

		if depart {
			dep := t.StopTimes[board].Departure
			if dep < anchor {
				continue
			}
			if best == nil || dep < bestTime || (dep == bestTime && t.ID < best.ID) {
				best, bestBoard, bestAlight, bestTime = t, board, alight, dep
			}
		} else {
			arr := t.StopTimes[alight].Arrival
			if arr > anchor {
				continue
			}
			if best == nil || arr > bestTime || (arr == bestTime && t.ID < best.ID) {
				best, bestBoard, bestAlight, bestTime = t, board, alight, arr
			}
		}
	}

	return best, bestBoard, bestAlight
}

// matchSlice finds the descriptor's stops as an ordered subsequence
// of the trip's calls, returning the boarding and alighting indexes.
func matchSlice(t *model.Trip, stops []string) (int, int, bool) {
	i := 0
	board, alight := 0, 0
	for j := 0; j < len(t.StopTimes) && i < len(stops); j++ {
		if t.StopTimes[j].StopID == stops[i] {
			if i == 0 {
				board = j
			}
			alight = j
			i++
		}
	}
	return board, alight, i == len(stops)
}
