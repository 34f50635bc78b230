package transit

import "sort"

// FilterDepartAfter keeps journeys that are Pareto-optimal on
// (arrival time, transfer count) and that visit no route twice.
// Results come back ordered by arrival, then transfer count.
func FilterDepartAfter(journeys []Journey) []Journey {
	kept := pareto(journeys, func(a, b Journey) bool {
		return dominates(a.ArrivalTime, b.ArrivalTime, a.Transfers(), b.Transfers())
	})
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ArrivalTime != kept[j].ArrivalTime {
			return kept[i].ArrivalTime < kept[j].ArrivalTime
		}
		return kept[i].Transfers() < kept[j].Transfers()
	})
	return kept
}

// FilterArriveBy keeps journeys Pareto-optimal on (departure time,
// transfer count), later departures being better. Ordered by
// departure descending, then transfer count.
func FilterArriveBy(journeys []Journey) []Journey {
	kept := pareto(journeys, func(a, b Journey) bool {
		return dominates(-a.DepartureTime, -b.DepartureTime, a.Transfers(), b.Transfers())
	})
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].DepartureTime != kept[j].DepartureTime {
			return kept[i].DepartureTime > kept[j].DepartureTime
		}
		return kept[i].Transfers() < kept[j].Transfers()
	})
	return kept
}

// dominates reports whether (ta, xa) beats (tb, xb): no worse on both
// criteria, strictly better on at least one.
func dominates(ta, tb, xa, xb int) bool {
	if ta > tb || xa > xb {
		return false
	}
	return ta < tb || xa < xb
}

func pareto(journeys []Journey, dom func(a, b Journey) bool) []Journey {
	kept := []Journey{}
	for i, j := range journeys {
		if !uniqueRoutes(j) {
			continue
		}
		dominated := false
		for o, other := range journeys {
			if i == o || !uniqueRoutes(other) {
				continue
			}
			if dom(other, j) {
				dominated = true
				break
			}
			// Of two identical journeys, the first one wins.
			if o < i && equalCriteria(other, j) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, j)
		}
	}
	return kept
}

func equalCriteria(a, b Journey) bool {
	return a.ArrivalTime == b.ArrivalTime &&
		a.DepartureTime == b.DepartureTime &&
		a.Transfers() == b.Transfers()
}

// uniqueRoutes rejects journeys that board the same route twice, in
// either direction.
func uniqueRoutes(j Journey) bool {
	seen := map[string]bool{}
	for _, l := range j.Legs {
		if l.Kind != LegTrip {
			continue
		}
		if seen[l.RouteID] {
			return false
		}
		seen[l.RouteID] = true
	}
	return true
}
