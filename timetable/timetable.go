package timetable

import (
	"fmt"
	"sort"
	"strings"

	"roundel.dev/transit/model"
)

// Route is a route in the RAPTOR sense: the maximal set of trips
// sharing one exact ordered stop pattern. Not the operator's marketed
// route.
type Route struct {
	Stops []int         // dense stop indices along the pattern
	Trips []*model.Trip // ascending first-stop departure, ties by trip ID
}

// StopRoute locates one occurrence of a stop along a route.
type StopRoute struct {
	Route  int
	Offset int
}

// Transfer is a foot transfer re-expressed over dense stop indices.
type Transfer struct {
	From     int
	To       int
	Duration int
	Start    int
	End      int
	Type     int8
}

type lineKey struct {
	RouteID     string
	DirectionID int8
}

// Timetable is the immutable prepared index every query scans
// against. Stops are addressed by dense integer index; StopIndex
// translates at the boundary.
type Timetable struct {
	StopIDs   []string
	StopIndex map[string]int
	StopNames map[string]string

	Routes       []*Route
	RoutesByStop [][]StopRoute
	TransfersOut [][]Transfer
	TransfersIn  [][]Transfer
	Interchange  []int // seconds of dwell per stop when switching trips

	Trips []*model.Trip

	tripsByLine map[lineKey][]*model.Trip
}

// New derives the RAPTOR index from a loaded feed. The feed is
// validated in the process; any violation is fatal.
func New(feed *model.Feed, minInterchange int) (*Timetable, error) {
	if err := validateTrips(feed.Trips); err != nil {
		return nil, err
	}

	tt := &Timetable{
		StopIndex:   map[string]int{},
		StopNames:   feed.Stops,
		Trips:       feed.Trips,
		tripsByLine: map[lineKey][]*model.Trip{},
	}

	// Dense stop indices, in order of first appearance. Feed.Trips is
	// sorted by trip ID, so the numbering is deterministic.
	for _, trip := range feed.Trips {
		for _, st := range trip.StopTimes {
			tt.index(st.StopID)
		}
	}
	for _, tr := range feed.Transfers {
		tt.index(tr.From)
		tt.index(tr.To)
	}

	n := len(tt.StopIDs)
	tt.RoutesByStop = make([][]StopRoute, n)
	tt.TransfersOut = make([][]Transfer, n)
	tt.TransfersIn = make([][]Transfer, n)
	tt.Interchange = make([]int, n)
	for i := range tt.Interchange {
		tt.Interchange[i] = minInterchange
	}

	tt.deriveRoutes(feed.Trips)

	for _, tr := range feed.Transfers {
		from := tt.StopIndex[tr.From]
		to := tt.StopIndex[tr.To]
		if from == to {
			// Same-stop transfer: the minimum dwell at that stop.
			tt.Interchange[from] = tr.Duration
			continue
		}
		t := Transfer{
			From:     from,
			To:       to,
			Duration: tr.Duration,
			Start:    tr.Start,
			End:      tr.End,
			Type:     tr.Type,
		}
		tt.TransfersOut[from] = append(tt.TransfersOut[from], t)
		tt.TransfersIn[to] = append(tt.TransfersIn[to], t)
	}

	for _, trip := range feed.Trips {
		key := lineKey{trip.RouteID, trip.DirectionID}
		tt.tripsByLine[key] = append(tt.tripsByLine[key], trip)
	}
	for _, trips := range tt.tripsByLine {
		sortTrips(trips)
	}

	return tt, nil
}

func (tt *Timetable) index(stopID string) int {
	if i, found := tt.StopIndex[stopID]; found {
		return i
	}
	i := len(tt.StopIDs)
	tt.StopIDs = append(tt.StopIDs, stopID)
	tt.StopIndex[stopID] = i
	return i
}

// Stops returns the number of indexed stops.
func (tt *Timetable) Stops() int {
	return len(tt.StopIDs)
}

// TripsByLine returns all trips of a route+direction, ordered by
// first-stop departure. Used by trip re-matching.
func (tt *Timetable) TripsByLine(routeID string, directionID int8) []*model.Trip {
	return tt.tripsByLine[lineKey{routeID, directionID}]
}

// Group trips by their exact ordered stop pattern. Routes are ordered
// by pattern key, trips within a route by first-stop departure with a
// trip-ID tie-break, so the derivation is deterministic.
func (tt *Timetable) deriveRoutes(trips []*model.Trip) {
	byPattern := map[string][]*model.Trip{}
	for _, trip := range trips {
		ids := make([]string, len(trip.StopTimes))
		for i, st := range trip.StopTimes {
			ids[i] = st.StopID
		}
		key := strings.Join(ids, "\x1f")
		byPattern[key] = append(byPattern[key], trip)
	}

	keys := make([]string, 0, len(byPattern))
	for key := range byPattern {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		routeTrips := byPattern[key]
		sortTrips(routeTrips)

		stops := make([]int, len(routeTrips[0].StopTimes))
		for i, st := range routeTrips[0].StopTimes {
			stops[i] = tt.StopIndex[st.StopID]
		}

		ri := len(tt.Routes)
		tt.Routes = append(tt.Routes, &Route{Stops: stops, Trips: routeTrips})

		for offset, s := range stops {
			tt.RoutesByStop[s] = append(tt.RoutesByStop[s], StopRoute{Route: ri, Offset: offset})
		}
	}
}

func sortTrips(trips []*model.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		di := trips[i].StopTimes[0].Departure
		dj := trips[j].StopTimes[0].Departure
		if di != dj {
			return di < dj
		}
		return trips[i].ID < trips[j].ID
	})
}

func validateTrips(trips []*model.Trip) error {
	for _, trip := range trips {
		if len(trip.StopTimes) < 2 {
			return fmt.Errorf("trip '%s': fewer than 2 stop_times", trip.ID)
		}
		if trip.Service == nil {
			return fmt.Errorf("trip '%s': unresolved service '%s'", trip.ID, trip.ServiceID)
		}
		for i, st := range trip.StopTimes {
			if st.Arrival > st.Departure {
				return fmt.Errorf("trip '%s': arrival after departure at seq %d", trip.ID, st.Seq)
			}
			if i == 0 {
				continue
			}
			prev := trip.StopTimes[i-1]
			if st.Seq <= prev.Seq {
				return fmt.Errorf("trip '%s': stop_sequence not increasing at seq %d", trip.ID, st.Seq)
			}
			if prev.Departure > st.Arrival {
				return fmt.Errorf(
					"trip '%s': departs %s at seq %d but arrives %s at seq %d",
					trip.ID,
					model.FormatTime(prev.Departure), prev.Seq,
					model.FormatTime(st.Arrival), st.Seq,
				)
			}
		}
	}
	return nil
}
