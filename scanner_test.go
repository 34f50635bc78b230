package transit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDirect(t *testing.T) {
	engine := engineFromFiles(t, Options{}, directFeed())

	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)

	arrivals := res.Arrivals()
	assert.Equal(t, 27000, arrivals["S1"]) // the seed itself
	assert.Equal(t, 29100, arrivals["S2"])
	assert.Equal(t, 29400, arrivals["S3"])
}

func TestScanUnknownStopsSkipped(t *testing.T) {
	engine := engineFromFiles(t, Options{}, directFeed())

	res := engine.ScanDepartAfter(map[string]int{"S1": 27000, "NOPE": 27000}, 20250101, time.Wednesday)
	arrivals := res.Arrivals()
	assert.Equal(t, 29400, arrivals["S3"])
	assert.NotContains(t, arrivals, "NOPE")
}

func TestScanServiceGating(t *testing.T) {
	files := directFeed()
	files["calendar.txt"] = []string{
		"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
		"daily,20250101,20251231,0,0,0,1,0,0,0",
	}
	engine := engineFromFiles(t, Options{}, files)

	// Thursdays only; 2025-01-01 is a Wednesday.
	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	assert.NotContains(t, res.Arrivals(), "S3")

	res = engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250102, time.Thursday)
	assert.Equal(t, 29400, res.Arrivals()["S3"])
}

func TestScanFootTransfer(t *testing.T) {
	files := directFeed()
	files["stops.txt"] = append(files["stops.txt"], "S4,Fourth")
	files["transfers.txt"] = []string{
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
		"S3,S4,2,60",
	}
	engine := engineFromFiles(t, Options{}, files)

	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	assert.Equal(t, 29460, res.Arrivals()["S4"])
}

func TestScanTransfersNeverChain(t *testing.T) {
	files := directFeed()
	files["stops.txt"] = append(files["stops.txt"], "S4,Fourth", "S5,Fifth")
	files["transfers.txt"] = []string{
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
		"S3,S4,2,60",
		"S4,S5,2,60",
	}
	engine := engineFromFiles(t, Options{}, files)

	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	arrivals := res.Arrivals()
	assert.Equal(t, 29460, arrivals["S4"])
	assert.NotContains(t, arrivals, "S5")
}

func TestScanTransferWindow(t *testing.T) {
	files := directFeed()
	files["stops.txt"] = append(files["stops.txt"], "S4,Fourth")
	files["transfers.txt"] = []string{
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time,start_time,end_time",
		"S3,S4,2,60,10:00:00,11:00:00",
	}
	engine := engineFromFiles(t, Options{}, files)

	// The trip reaches S3 at 08:10, outside the window.
	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	assert.NotContains(t, res.Arrivals(), "S4")
}

func TestScanTripTieBreak(t *testing.T) {
	files := directFeed()
	files["trips.txt"] = []string{
		"trip_id,route_id,service_id,direction_id",
		"TB,L1,daily,0",
		"TA,L1,daily,0",
	}
	files["stop_times.txt"] = []string{
		"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
		"TB,S1,1,08:00:00,08:00:00",
		"TB,S2,2,08:05:00,08:05:00",
		"TB,S3,3,08:10:00,08:10:00",
		"TA,S1,1,08:00:00,08:00:00",
		"TA,S2,2,08:05:00,08:05:00",
		"TA,S3,3,08:10:00,08:10:00",
	}
	engine := engineFromFiles(t, Options{}, files)

	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	journeys, err := engine.Results(res, "S3")
	require.NoError(t, err)
	require.Len(t, journeys, 1)
	require.Len(t, journeys[0].Legs, 1)
	assert.Equal(t, "TA", journeys[0].Legs[0].Trip.ID)
}

func TestScanRoundCap(t *testing.T) {
	engine := engineFromFiles(t, Options{MaxRounds: 1}, transferFeed())

	// S3 needs two trips; a single round can't reach it.
	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	arrivals := res.Arrivals()
	assert.Equal(t, 29100, arrivals["S2"])
	assert.NotContains(t, arrivals, "S3")
}

func TestScanReverse(t *testing.T) {
	engine := engineFromFiles(t, Options{}, transferFeed())

	res := engine.ScanArriveBy(map[string]int{"S3": 30000}, 20250101, time.Wednesday)

	arrivals := res.Arrivals()
	assert.Equal(t, 30000, arrivals["S3"]) // the seed itself
	assert.Equal(t, 29400, arrivals["S2"]) // latest departure on L2
	assert.Equal(t, 28800, arrivals["S1"]) // latest departure on L1
}

func TestScanInterchangeGatesConnection(t *testing.T) {
	// With a 10 minute dwell at S2 the 08:10 connection is lost.
	files := transferFeed()
	files["transfers.txt"] = []string{
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
		"S2,S2,2,600",
	}
	engine := engineFromFiles(t, Options{}, files)

	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	assert.NotContains(t, res.Arrivals(), "S3")
}

// Every per-round value must be dominated by the best value: never
// earlier than best for a forward scan, never later for a reverse
// one.
func TestScanRoundInvariant(t *testing.T) {
	files := transferFeed()
	files["routes.txt"] = append(files["routes.txt"], "L3,l3,1")
	files["trips.txt"] = append(files["trips.txt"], "TL3,L3,daily,0")
	files["stop_times.txt"] = append(files["stop_times.txt"],
		"TL3,S1,1,08:00:00,08:00:00",
		"TL3,S3,2,08:40:00,08:40:00",
	)
	engine := engineFromFiles(t, Options{}, files)

	res := engine.ScanDepartAfter(map[string]int{"S1": 27000}, 20250101, time.Wednesday)
	for k := 1; k < len(res.rounds); k++ {
		for s := range res.rounds[k] {
			if res.rounds[k][s] == res.dir.worst() {
				continue
			}
			assert.GreaterOrEqual(t, res.rounds[k][s], res.best[s])
		}
	}

	rev := engine.ScanArriveBy(map[string]int{"S3": 32000}, 20250101, time.Wednesday)
	for k := 1; k < len(rev.rounds); k++ {
		for s := range rev.rounds[k] {
			if rev.rounds[k][s] == rev.dir.worst() {
				continue
			}
			assert.LessOrEqual(t, rev.rounds[k][s], rev.best[s])
		}
	}
}
