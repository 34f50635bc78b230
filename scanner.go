package transit

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"roundel.dev/transit/model"
	"roundel.dev/transit/timetable"
)

// ScanDepartAfter runs the forward RAPTOR scan: origins maps stop IDs
// to their earliest departure times, in seconds since midnight of the
// given service date. Unknown stop IDs are treated as absent.
//
// Each round k adds at most one trip to candidate journeys; the scan
// stops when a round marks no stop, or after MaxRounds rounds.
func (e *Engine) ScanDepartAfter(origins map[string]int, date int, day time.Weekday) *ScanResult {
	res := newScanResult(e.tt, departAfter, e.opts.MaxRounds, date)
	e.seed(res, origins)
	e.scan(res, date, day)
	e.logScan(res, origins)
	return res
}

// ScanArriveBy runs the reverse scan, the structural mirror of
// ScanDepartAfter: destinations maps stop IDs to their latest
// acceptable arrival times, and all improvements are "later is
// better".
func (e *Engine) ScanArriveBy(destinations map[string]int, date int, day time.Weekday) *ScanResult {
	res := newScanResult(e.tt, arriveBy, e.opts.MaxRounds, date)
	e.seed(res, destinations)
	e.scan(res, date, day)
	e.logScan(res, destinations)
	return res
}

func (e *Engine) seed(res *ScanResult, anchors map[string]int) {
	for id, t := range anchors {
		s, found := e.tt.StopIndex[id]
		if !found {
			e.log.WithField("stop", id).Debug("unknown stop in query, skipped")
			continue
		}
		res.rounds[0][s] = t
		res.marked[s] = true
	}
}

func (e *Engine) scan(res *ScanResult, date int, day time.Weekday) {
	tt := e.tt

	for k := 1; k < len(res.rounds); k++ {
		// Collect candidate routes: for each route touched by a
		// marked stop, the first offset along the route we could
		// board at. Stops are visited in index order so ties resolve
		// the same way on every run.
		offsets := map[int]int{}
		order := []int{}
		for s := range res.marked {
			if !res.marked[s] {
				continue
			}
			res.marked[s] = false
			for _, sr := range tt.RoutesByStop[s] {
				off, seen := offsets[sr.Route]
				if !seen {
					offsets[sr.Route] = sr.Offset
					order = append(order, sr.Route)
					continue
				}
				if res.dir == departAfter && sr.Offset < off {
					offsets[sr.Route] = sr.Offset
				}
				if res.dir == arriveBy && sr.Offset > off {
					offsets[sr.Route] = sr.Offset
				}
			}
		}
		if len(order) == 0 {
			break
		}

		for _, ri := range order {
			if res.dir == departAfter {
				e.traverseForward(res, k, ri, offsets[ri], date, day)
			} else {
				e.traverseReverse(res, k, ri, offsets[ri], date, day)
			}
		}

		e.applyTransfers(res, k)

		improved := false
		for s := range res.marked {
			if res.marked[s] {
				improved = true
				break
			}
		}
		if !improved {
			break
		}
	}
}

// traverseForward walks one route from the chosen board offset to its
// end, riding the earliest catchable trip and recording improvements.
func (e *Engine) traverseForward(res *ScanResult, k, ri, offset, date int, day time.Weekday) {
	tt := e.tt
	route := tt.Routes[ri]

	var trip *model.Trip
	board := -1

	for i := offset; i < len(route.Stops); i++ {
		s := route.Stops[i]
		ic := tt.Interchange[s]

		if trip != nil {
			arr := trip.StopTimes[i].Arrival
			if arr+ic < res.best[s] {
				res.best[s] = arr
				res.rounds[k][s] = arr
				res.conns[k][s] = &connection{
					kind:   connTrip,
					trip:   trip,
					route:  ri,
					board:  board,
					alight: i,
				}
				res.marked[s] = true
			}
		}

		// Hop on the earliest service still catchable here, unless
		// the trip we already hold can be caught at this stop.
		prev := res.rounds[k-1][s]
		if prev == res.dir.worst() {
			continue
		}
		bound := prev + changePenalty(res, k-1, s, ic)
		if trip == nil || bound > trip.StopTimes[i].Departure {
			if t := earliestTrip(route, i, bound, date, day); t != nil {
				trip = t
				board = i
			}
		}
	}
}

// traverseReverse walks one route backwards from the chosen offset,
// riding the latest trip that still makes the connection.
func (e *Engine) traverseReverse(res *ScanResult, k, ri, offset, date int, day time.Weekday) {
	tt := e.tt
	route := tt.Routes[ri]

	var trip *model.Trip
	alight := -1

	for i := offset; i >= 0; i-- {
		s := route.Stops[i]
		ic := tt.Interchange[s]

		if trip != nil {
			dep := trip.StopTimes[i].Departure
			if dep-ic > res.best[s] {
				res.best[s] = dep
				res.rounds[k][s] = dep
				res.conns[k][s] = &connection{
					kind:   connTrip,
					trip:   trip,
					route:  ri,
					board:  i,
					alight: alight,
				}
				res.marked[s] = true
			}
		}

		prev := res.rounds[k-1][s]
		if prev == res.dir.worst() {
			continue
		}
		bound := prev - changePenalty(res, k-1, s, ic)
		if trip == nil || bound < trip.StopTimes[i].Arrival {
			if t := latestTrip(route, i, bound, date, day); t != nil {
				trip = t
				alight = i
			}
		}
	}
}

// changePenalty is the dwell required before boarding at a stop. It
// only applies when the previous round reached the stop riding or
// walking: an anchor seed is already standing on the platform.
func changePenalty(res *ScanResult, k, s, ic int) int {
	if res.conns[k][s] == nil {
		return 0
	}
	return ic
}

// earliestTrip finds the first trip on the route departing the given
// offset at or after bound, running on the given date. The trip list
// is ordered by departure, so a binary search lands on the earliest
// candidate; ties were broken by trip ID when the route was built.
func earliestTrip(route *timetable.Route, offset, bound, date int, day time.Weekday) *model.Trip {
	trips := route.Trips
	lo := sort.Search(len(trips), func(j int) bool {
		return trips[j].StopTimes[offset].Departure >= bound
	})
	for ; lo < len(trips); lo++ {
		if trips[lo].Service.RunsOn(date, day) {
			return trips[lo]
		}
	}
	return nil
}

// latestTrip is the reverse mirror: the last trip arriving at the
// offset no later than bound.
func latestTrip(route *timetable.Route, offset, bound, date int, day time.Weekday) *model.Trip {
	trips := route.Trips
	hi := sort.Search(len(trips), func(j int) bool {
		return trips[j].StopTimes[offset].Arrival > bound
	})
	for hi--; hi >= 0; hi-- {
		if trips[hi].Service.RunsOn(date, day) {
			return trips[hi]
		}
	}
	return nil
}

// applyTransfers relaxes foot transfers out of every stop the round
// improved by trip. Transfers never chain: a stop reached on foot is
// not walked out of again within the round.
func (e *Engine) applyTransfers(res *ScanResult, k int) {
	tt := e.tt

	type hop struct {
		stop int
		at   int
	}
	byTrip := []hop{}
	for s := range res.marked {
		if res.marked[s] && res.conns[k][s] != nil && res.conns[k][s].kind == connTrip {
			byTrip = append(byTrip, hop{stop: s, at: res.rounds[k][s]})
		}
	}

	for _, h := range byTrip {
		if res.dir == departAfter {
			for _, tr := range tt.TransfersOut[h.stop] {
				if !transferOpen(tr, h.at) {
					continue
				}
				cand := h.at + tr.Duration
				if cand < res.best[tr.To] {
					res.best[tr.To] = cand
					res.rounds[k][tr.To] = cand
					res.conns[k][tr.To] = &connection{kind: connTransfer, transfer: tr}
					res.marked[tr.To] = true
				}
			}
		} else {
			for _, tr := range tt.TransfersIn[h.stop] {
				cand := h.at - tr.Duration
				if !transferOpen(tr, cand) {
					continue
				}
				if cand > res.best[tr.From] {
					res.best[tr.From] = cand
					res.rounds[k][tr.From] = cand
					res.conns[k][tr.From] = &connection{kind: connTransfer, transfer: tr}
					res.marked[tr.From] = true
				}
			}
		}
	}
}

// transferOpen checks the validity window against the time the walk
// would start at the transfer's origin.
func transferOpen(tr timetable.Transfer, at int) bool {
	if tr.Start == 0 && tr.End == 0 {
		return true
	}
	return at >= tr.Start && at <= tr.End
}

func (e *Engine) logScan(res *ScanResult, origins map[string]int) {
	if !e.log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	reached := 0
	for s := range res.best {
		if res.best[s] != res.dir.worst() {
			reached++
		}
	}
	e.log.WithFields(logrus.Fields{
		"anchors": len(origins),
		"date":    res.date,
		"reached": reached,
	}).Debug("scan complete")
}
