package transit

import (
	"math"

	"roundel.dev/transit/model"
	"roundel.dev/transit/timetable"
)

type direction int8

const (
	departAfter direction = iota
	arriveBy
)

// worst is the value every buffer slot starts at: nothing reached.
func (d direction) worst() int {
	if d == departAfter {
		return math.MaxInt
	}
	return math.MinInt
}

// better reports whether time a beats time b under the scan
// direction: earlier for depart-after, later for arrive-by.
func (d direction) better(a, b int) bool {
	if d == departAfter {
		return a < b
	}
	return a > b
}

type connKind int8

const (
	connTrip connKind = iota
	connTransfer
)

// connection records the best known way to reach a stop at a given
// round: a trip segment or a foot transfer, per kind. For trip
// connections board and alight index into trip.StopTimes, board
// before alight; the reverse scan records them the same way, with
// the journey walk proceeding toward the destination.
type connection struct {
	kind     connKind
	trip     *model.Trip
	route    int
	board    int
	alight   int
	transfer timetable.Transfer
}

// ScanResult is the scratch state of one scan: best times per stop,
// per-round times, and the connection index journeys are rebuilt
// from. Stops are addressed by dense index throughout; translation to
// stop IDs happens at the API boundary. Allocated per query, never
// shared.
type ScanResult struct {
	tt     *timetable.Timetable
	dir    direction
	date   int
	best   []int
	rounds [][]int         // rounds[k][stop]
	conns  [][]*connection // conns[k][stop]
	marked []bool
}

func newScanResult(tt *timetable.Timetable, dir direction, maxRounds, date int) *ScanResult {
	stops := tt.Stops()
	r := &ScanResult{
		tt:     tt,
		dir:    dir,
		date:   date,
		best:   make([]int, stops),
		rounds: make([][]int, maxRounds+1),
		conns:  make([][]*connection, maxRounds+1),
		marked: make([]bool, stops),
	}
	for i := range r.best {
		r.best[i] = dir.worst()
	}
	for k := range r.rounds {
		r.rounds[k] = make([]int, stops)
		for i := range r.rounds[k] {
			r.rounds[k][i] = dir.worst()
		}
		r.conns[k] = make([]*connection, stops)
	}
	return r
}

// seeded reports whether the stop was an anchor of this scan.
func (r *ScanResult) seeded(stop int) bool {
	return r.rounds[0][stop] != r.dir.worst()
}

// reachedAt returns the best presence time recorded for a stop,
// whether that is a scan improvement or the round-0 seed itself.
func (r *ScanResult) reachedAt(stop int) (int, bool) {
	t, ok := 0, false
	if r.best[stop] != r.dir.worst() {
		t, ok = r.best[stop], true
	}
	if r.seeded(stop) {
		if !ok || r.dir.better(r.rounds[0][stop], t) {
			t = r.rounds[0][stop]
		}
		ok = true
	}
	return t, ok
}

// Date returns the service date the scan ran on.
func (r *ScanResult) Date() int {
	return r.date
}

// Arrivals returns the best time per reached stop ID: earliest
// arrivals for a forward scan, latest departures for a reverse one.
// Anchor stops are included at their seed times.
func (r *ScanResult) Arrivals() map[string]int {
	out := map[string]int{}
	for s := range r.best {
		if t, ok := r.reachedAt(s); ok {
			out[r.tt.StopIDs[s]] = t
		}
	}
	return out
}
