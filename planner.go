package transit

import (
	"github.com/sirupsen/logrus"

	"roundel.dev/transit/model"
)

// PlanDepartAfter computes Pareto-optimal journeys from any origin to
// any destination, departing at or after tsec (seconds since midnight
// of date). If the reference day yields nothing, the search extends
// across consecutive operating days, up to MaxSearchDays, stitching
// cross-midnight journeys together.
//
// An empty result is not an error. ErrUnknownStop is returned when no
// origin or no destination exists in the timetable.
func (e *Engine) PlanDepartAfter(origins, destinations []string, date, tsec int) ([]Journey, error) {
	if err := e.checkStops(origins, destinations); err != nil {
		return nil, err
	}

	anchors := map[string]int{}
	for _, o := range origins {
		anchors[o] = tsec
	}

	stack := []*ScanResult{}
	d := date

	for day := 0; day < e.opts.MaxSearchDays; day++ {
		res := e.ScanDepartAfter(anchors, d, model.DayOfWeek(d))

		found := []Journey{}
		seen := map[string]bool{}
		for _, dest := range destinations {
			if seen[dest] {
				continue
			}
			seen[dest] = true
			js, err := e.Results(res, dest)
			if err != nil {
				return nil, err
			}
			found = append(found, js...)
		}

		if len(found) > 0 {
			out := []Journey{}
			for _, j := range found {
				shifted := shiftedLegs(j.Legs, day*DayRolloverOffset)
				prefixes, err := e.forwardPrefixes(stack, day-1, j.Legs[0].Origin)
				if err != nil {
					return nil, err
				}
				for _, pre := range prefixes {
					if !e.fits(pre, shifted) {
						continue
					}
					legs := append(append([]Leg{}, pre...), shifted...)
					out = append(out, newJourney(legs))
				}
			}
			e.log.WithFields(logrus.Fields{
				"days": day + 1, "journeys": len(out),
			}).Debug("plan complete")
			return FilterDepartAfter(out), nil
		}

		// Nothing made it. Shift every reached stop onto the next
		// service day and rescan from there.
		next := map[string]int{}
		for id, t := range res.Arrivals() {
			next[id] = t - DayRolloverOffset
		}
		anchors = next
		stack = append(stack, res)
		d = model.AddDays(d, 1)
	}

	return []Journey{}, nil
}

// PlanArriveBy is the mirror: journeys arriving at any destination no
// later than tsec, searching backwards across days when needed.
func (e *Engine) PlanArriveBy(origins, destinations []string, date, tsec int) ([]Journey, error) {
	if err := e.checkStops(origins, destinations); err != nil {
		return nil, err
	}

	anchors := map[string]int{}
	for _, dest := range destinations {
		anchors[dest] = tsec
	}

	stack := []*ScanResult{}
	d := date

	for day := 0; day < e.opts.MaxSearchDays; day++ {
		res := e.ScanArriveBy(anchors, d, model.DayOfWeek(d))

		found := []Journey{}
		seen := map[string]bool{}
		for _, o := range origins {
			if seen[o] {
				continue
			}
			seen[o] = true
			js, err := e.ReverseResults(res, o)
			if err != nil {
				return nil, err
			}
			found = append(found, js...)
		}

		if len(found) > 0 {
			out := []Journey{}
			for _, j := range found {
				shifted := shiftedLegs(j.Legs, -day*DayRolloverOffset)
				last := j.Legs[len(j.Legs)-1].Destination
				suffixes, err := e.reverseSuffixes(stack, day-1, last)
				if err != nil {
					return nil, err
				}
				for _, suf := range suffixes {
					if !e.fits(shifted, suf) {
						continue
					}
					legs := append(append([]Leg{}, shifted...), suf...)
					out = append(out, newJourney(legs))
				}
			}
			e.log.WithFields(logrus.Fields{
				"days": day + 1, "journeys": len(out),
			}).Debug("plan complete")
			return FilterArriveBy(out), nil
		}

		next := map[string]int{}
		for id, t := range res.Arrivals() {
			next[id] = t + DayRolloverOffset
		}
		anchors = next
		stack = append(stack, res)
		d = model.AddDays(d, -1)
	}

	return []Journey{}, nil
}

func (e *Engine) checkStops(origins, destinations []string) error {
	knownO, knownD := 0, 0
	for _, o := range origins {
		if _, found := e.tt.StopIndex[o]; found {
			knownO++
		}
	}
	for _, dest := range destinations {
		if _, found := e.tt.StopIndex[dest]; found {
			knownD++
		}
	}
	if knownO == 0 || knownD == 0 {
		return ErrUnknownStop
	}
	return nil
}

// forwardPrefixes rebuilds, from the saved connection index of day d,
// every way of reaching stop by that day's end — each recursively
// prefixed by the days before it. Legs come back shifted into the
// reference day's clock. A nil entry means the journey starts at stop
// on the reference day itself.
func (e *Engine) forwardPrefixes(stack []*ScanResult, d int, stop string) ([][]Leg, error) {
	if d < 0 {
		return [][]Leg{nil}, nil
	}
	res := stack[d]

	out := [][]Leg{}
	js, err := e.Results(res, stop)
	if err != nil {
		return nil, err
	}
	for _, pj := range js {
		shifted := shiftedLegs(pj.Legs, d*DayRolloverOffset)
		prefixes, err := e.forwardPrefixes(stack, d-1, pj.Legs[0].Origin)
		if err != nil {
			return nil, err
		}
		for _, pre := range prefixes {
			if !e.fits(pre, shifted) {
				continue
			}
			out = append(out, append(append([]Leg{}, pre...), shifted...))
		}
	}

	// The stop may also simply be where we waited overnight: an
	// anchor of this day's scan.
	if s, found := e.tt.StopIndex[stop]; found && res.seeded(s) {
		if d == 0 {
			out = append(out, nil)
		} else {
			more, err := e.forwardPrefixes(stack, d-1, stop)
			if err != nil {
				return nil, err
			}
			out = append(out, more...)
		}
	}

	return out, nil
}

// reverseSuffixes is the arrive-by mirror: every way of continuing
// from stop toward the destinations, rebuilt from the saved index of
// day d (d days before the reference day on the earlier side of the
// stitch is d days *after* in scan order).
func (e *Engine) reverseSuffixes(stack []*ScanResult, d int, stop string) ([][]Leg, error) {
	if d < 0 {
		return [][]Leg{nil}, nil
	}
	res := stack[d]

	out := [][]Leg{}
	js, err := e.ReverseResults(res, stop)
	if err != nil {
		return nil, err
	}
	for _, sj := range js {
		shifted := shiftedLegs(sj.Legs, -d*DayRolloverOffset)
		last := sj.Legs[len(sj.Legs)-1].Destination
		suffixes, err := e.reverseSuffixes(stack, d-1, last)
		if err != nil {
			return nil, err
		}
		for _, suf := range suffixes {
			if !e.fits(shifted, suf) {
				continue
			}
			out = append(out, append(append([]Leg{}, shifted...), suf...))
		}
	}

	if s, found := e.tt.StopIndex[stop]; found && res.seeded(s) {
		if d == 0 {
			out = append(out, nil)
		} else {
			more, err := e.reverseSuffixes(stack, d-1, stop)
			if err != nil {
				return nil, err
			}
			out = append(out, more...)
		}
	}

	return out, nil
}

// fits checks that the second portion of a stitched journey boards no
// earlier than the first portion's arrival plus the dwell at the
// junction stop.
func (e *Engine) fits(pre, next []Leg) bool {
	if len(pre) == 0 || len(next) == 0 {
		return true
	}
	last := pre[len(pre)-1]
	ic := e.opts.MinInterchange
	if s, found := e.tt.StopIndex[last.Destination]; found {
		ic = e.tt.Interchange[s]
	}
	return next[0].Departure >= last.Arrival+ic
}
