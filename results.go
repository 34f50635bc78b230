package transit

import (
	"fmt"

	"roundel.dev/transit/model"
)

type LegKind int8

const (
	LegTrip LegKind = iota
	LegTransfer
)

// Leg is one segment of a journey: a ride on a trip between two of
// its calls, or a foot transfer. Times are seconds since midnight of
// the journey's reference date; legs from a stitched multi-day
// journey carry times shifted accordingly.
type Leg struct {
	Kind        LegKind
	Origin      string
	Destination string
	Departure   int
	Arrival     int

	// Trip legs only.
	Trip        *model.Trip
	StopTimes   []model.StopTime // calls ridden, boarding to alighting inclusive
	RouteID     string
	DirectionID int8
	Headsign    string

	// Transfer legs only.
	Duration int
}

// Journey is an ordered sequence of legs. Consecutive legs connect:
// each leg starts where the previous one ended.
type Journey struct {
	Legs          []Leg
	DepartureTime int
	ArrivalTime   int
}

// Transfers counts trips beyond the first; foot transfers don't
// count.
func (j Journey) Transfers() int {
	n := 0
	for _, l := range j.Legs {
		if l.Kind == LegTrip {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// newJourney assembles legs into a journey. The departure is the
// first trip leg's departure minus any preceding walking; the arrival
// is the last trip leg's arrival plus any trailing walking. A journey
// with no trip leg has both times zero.
func newJourney(legs []Leg) Journey {
	j := Journey{Legs: legs}

	firstTrip, lastTrip := -1, -1
	for i, l := range legs {
		if l.Kind == LegTrip {
			if firstTrip < 0 {
				firstTrip = i
			}
			lastTrip = i
		}
	}
	if firstTrip < 0 {
		return j
	}

	dep := legs[firstTrip].Departure
	for i := 0; i < firstTrip; i++ {
		dep -= legs[i].Duration
	}
	arr := legs[lastTrip].Arrival
	for i := lastTrip + 1; i < len(legs); i++ {
		arr += legs[i].Duration
	}

	j.DepartureTime = dep
	j.ArrivalTime = arr
	return j
}

// Results rebuilds complete journeys to a destination from a forward
// scan: one journey per round at which the destination was improved,
// walked backward through the connection index.
func (e *Engine) Results(res *ScanResult, destination string) ([]Journey, error) {
	s, found := e.tt.StopIndex[destination]
	if !found {
		return nil, nil
	}

	journeys := []Journey{}
	for k := 1; k < len(res.conns); k++ {
		if res.conns[k][s] == nil {
			continue
		}
		legs, err := e.walkBack(res, s, k)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, newJourney(legs))
	}
	return journeys, nil
}

// ReverseResults is the mirror for a reverse scan: journeys from an
// origin toward the scan's destination anchors, with legs produced in
// forward order directly.
func (e *Engine) ReverseResults(res *ScanResult, origin string) ([]Journey, error) {
	s, found := e.tt.StopIndex[origin]
	if !found {
		return nil, nil
	}

	journeys := []Journey{}
	for k := 1; k < len(res.conns); k++ {
		if res.conns[k][s] == nil {
			continue
		}
		legs, err := e.walkForward(res, s, k)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, newJourney(legs))
	}
	return journeys, nil
}

func (e *Engine) walkBack(res *ScanResult, s, k int) ([]Leg, error) {
	rev := []Leg{}
	for {
		c := res.conns[k][s]
		if c == nil {
			break
		}
		switch c.kind {
		case connTrip:
			leg, err := e.tripLeg(c)
			if err != nil {
				return nil, err
			}
			rev = append(rev, leg)
			s = e.tt.Routes[c.route].Stops[c.board]
			k--
		case connTransfer:
			arr := res.rounds[k][s]
			rev = append(rev, Leg{
				Kind:        LegTransfer,
				Origin:      e.tt.StopIDs[c.transfer.From],
				Destination: e.tt.StopIDs[c.transfer.To],
				Departure:   arr - c.transfer.Duration,
				Arrival:     arr,
				Duration:    c.transfer.Duration,
			})
			s = c.transfer.From
		}
	}

	legs := make([]Leg, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		legs = append(legs, rev[i])
	}
	return legs, nil
}

func (e *Engine) walkForward(res *ScanResult, s, k int) ([]Leg, error) {
	legs := []Leg{}
	for {
		c := res.conns[k][s]
		if c == nil {
			break
		}
		switch c.kind {
		case connTrip:
			leg, err := e.tripLeg(c)
			if err != nil {
				return nil, err
			}
			legs = append(legs, leg)
			s = e.tt.Routes[c.route].Stops[c.alight]
			k--
		case connTransfer:
			dep := res.rounds[k][s]
			legs = append(legs, Leg{
				Kind:        LegTransfer,
				Origin:      e.tt.StopIDs[c.transfer.From],
				Destination: e.tt.StopIDs[c.transfer.To],
				Departure:   dep,
				Arrival:     dep + c.transfer.Duration,
				Duration:    c.transfer.Duration,
			})
			s = c.transfer.To
		}
	}
	return legs, nil
}

func (e *Engine) tripLeg(c *connection) (Leg, error) {
	if c.board >= c.alight {
		return Leg{}, fmt.Errorf(
			"trip '%s': board %d not before alight %d: %w",
			c.trip.ID, c.board, c.alight, ErrBadLeg,
		)
	}

	calls := c.trip.StopTimes[c.board : c.alight+1]
	headsign := calls[0].Headsign
	if headsign == "" {
		headsign = c.trip.Headsign
	}

	return Leg{
		Kind:        LegTrip,
		Origin:      calls[0].StopID,
		Destination: calls[len(calls)-1].StopID,
		Departure:   calls[0].Departure,
		Arrival:     calls[len(calls)-1].Arrival,
		Trip:        c.trip,
		StopTimes:   calls,
		RouteID:     c.trip.RouteID,
		DirectionID: c.trip.DirectionID,
		Headsign:    headsign,
	}, nil
}

// shiftedLegs copies legs with departure and arrival displaced by
// offset seconds. The underlying stop times stay service-day local.
func shiftedLegs(legs []Leg, offset int) []Leg {
	out := make([]Leg, len(legs))
	copy(out, legs)
	for i := range out {
		out[i].Departure += offset
		out[i].Arrival += offset
	}
	return out
}
