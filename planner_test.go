package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanDirect(t *testing.T) {
	engine := engineFromFiles(t, Options{}, directFeed())

	journeys, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S3"}, 20250101, 27000)
	require.NoError(t, err)

	require.Len(t, journeys, 1)
	j := journeys[0]
	assert.Equal(t, 28800, j.DepartureTime)
	assert.Equal(t, 29400, j.ArrivalTime)
	require.Len(t, j.Legs, 1)
	assert.Equal(t, LegTrip, j.Legs[0].Kind)
	assert.Equal(t, "S1", j.Legs[0].Origin)
	assert.Equal(t, "S3", j.Legs[0].Destination)
	assert.Len(t, j.Legs[0].StopTimes, 3)
	assert.Equal(t, 0, j.Transfers())
}

func TestPlanOneTransfer(t *testing.T) {
	engine := engineFromFiles(t, Options{}, transferFeed())

	journeys, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S3"}, 20250101, 27000)
	require.NoError(t, err)

	require.Len(t, journeys, 1)
	j := journeys[0]
	assert.Equal(t, 28800, j.DepartureTime)
	assert.Equal(t, 30000, j.ArrivalTime)
	require.Len(t, j.Legs, 2)
	assert.Equal(t, "S2", j.Legs[0].Destination)
	assert.Equal(t, "S2", j.Legs[1].Origin)
	assert.Equal(t, 1, j.Transfers())
}

func TestPlanNextDay(t *testing.T) {
	// All trips run before 20:00; a 22:00 query rolls over to the
	// next service day. Times come back in the reference day's
	// clock, so the first leg departs at or beyond 86400.
	engine := engineFromFiles(t, Options{}, transferFeed())

	journeys, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S3"}, 20000101, 79200)
	require.NoError(t, err)

	require.Len(t, journeys, 1)
	j := journeys[0]
	assert.GreaterOrEqual(t, j.Legs[0].Departure, 86400)
	assert.Equal(t, 28800+86400, j.DepartureTime)
	assert.Equal(t, 30000+86400, j.ArrivalTime)
	require.Len(t, j.Legs, 2)
}

func TestPlanArriveBy(t *testing.T) {
	engine := engineFromFiles(t, Options{}, transferFeed())

	journeys, err := engine.PlanArriveBy([]string{"S1"}, []string{"S3"}, 20250101, 30000)
	require.NoError(t, err)

	require.Len(t, journeys, 1)
	j := journeys[0]
	assert.Equal(t, 28800, j.DepartureTime)
	assert.Equal(t, 30000, j.ArrivalTime)
	require.Len(t, j.Legs, 2)
}

func TestPlanArriveByPreviousDay(t *testing.T) {
	// Arriving by 05:00 is only possible with the previous day's
	// service; the stitched journey carries times shifted a full day
	// before the reference date.
	engine := engineFromFiles(t, Options{}, transferFeed())

	journeys, err := engine.PlanArriveBy([]string{"S1"}, []string{"S3"}, 20000102, 18000)
	require.NoError(t, err)

	require.Len(t, journeys, 1)
	j := journeys[0]
	assert.Equal(t, 28800-86400, j.DepartureTime)
	assert.Equal(t, 30000-86400, j.ArrivalTime)
}

func TestPlanForwardReverseSymmetry(t *testing.T) {
	engine := engineFromFiles(t, Options{}, transferFeed())

	reverse, err := engine.PlanArriveBy([]string{"S1"}, []string{"S3"}, 20250101, 30000)
	require.NoError(t, err)
	require.NotEmpty(t, reverse)

	forward, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S3"}, 20250101, reverse[0].DepartureTime)
	require.NoError(t, err)
	require.NotEmpty(t, forward)
	assert.LessOrEqual(t, forward[0].ArrivalTime, reverse[0].ArrivalTime)
}

func TestPlanRouteVisitedTwice(t *testing.T) {
	// The only path S1-S4 boards route L1 twice; the uniqueness
	// filter discards it. The connection existed, so the search does
	// not roll over to another day.
	files := transferFeed()
	files["stops.txt"] = append(files["stops.txt"], "S4,Fourth")
	files["trips.txt"] = append(files["trips.txt"], "TL1b,L1,daily,0")
	files["stop_times.txt"] = append(files["stop_times.txt"],
		"TL1b,S3,1,08:25:00,08:25:00",
		"TL1b,S4,2,08:30:00,08:30:00",
	)
	engine := engineFromFiles(t, Options{}, files)

	journeys, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S4"}, 20250101, 27000)
	require.NoError(t, err)
	assert.Empty(t, journeys)
}

func TestPlanParetoAlternatives(t *testing.T) {
	// A slow direct line and a faster two-trip path are both
	// Pareto-optimal.
	files := transferFeed()
	files["routes.txt"] = append(files["routes.txt"], "L3,l3,1")
	files["trips.txt"] = append(files["trips.txt"], "TL3,L3,daily,0")
	files["stop_times.txt"] = append(files["stop_times.txt"],
		"TL3,S1,1,08:00:00,08:00:00",
		"TL3,S3,2,08:40:00,08:40:00",
	)
	engine := engineFromFiles(t, Options{}, files)

	journeys, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S3"}, 20250101, 27000)
	require.NoError(t, err)

	require.Len(t, journeys, 2)
	assert.Equal(t, 30000, journeys[0].ArrivalTime)
	assert.Equal(t, 1, journeys[0].Transfers())
	assert.Equal(t, 31200, journeys[1].ArrivalTime)
	assert.Equal(t, 0, journeys[1].Transfers())
}

func TestPlanTrailingTransfer(t *testing.T) {
	// The destination is only reachable on foot from the last stop;
	// the walk extends the journey's arrival time.
	files := directFeed()
	files["stops.txt"] = append(files["stops.txt"], "S4,Fourth")
	files["transfers.txt"] = []string{
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
		"S3,S4,2,60",
	}
	engine := engineFromFiles(t, Options{}, files)

	journeys, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S4"}, 20250101, 27000)
	require.NoError(t, err)

	require.Len(t, journeys, 1)
	j := journeys[0]
	require.Len(t, j.Legs, 2)
	assert.Equal(t, LegTransfer, j.Legs[1].Kind)
	assert.Equal(t, 28800, j.DepartureTime)
	assert.Equal(t, 29460, j.ArrivalTime)
}

func TestPlanLeadingTransferArriveBy(t *testing.T) {
	// Reverse scans walk transfers backwards, so a journey may start
	// on foot; the walk pulls the departure time forward.
	files := directFeed()
	files["stops.txt"] = append(files["stops.txt"], "S0,Zeroth")
	files["transfers.txt"] = []string{
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
		"S0,S1,2,60",
	}
	engine := engineFromFiles(t, Options{}, files)

	journeys, err := engine.PlanArriveBy([]string{"S0"}, []string{"S3"}, 20250101, 30000)
	require.NoError(t, err)

	require.Len(t, journeys, 1)
	j := journeys[0]
	require.Len(t, j.Legs, 2)
	assert.Equal(t, LegTransfer, j.Legs[0].Kind)
	assert.Equal(t, 28800-60, j.DepartureTime)
	assert.Equal(t, 29400, j.ArrivalTime)
}

func TestPlanEmptyIsNotAnError(t *testing.T) {
	files := directFeed()
	files["calendar.txt"] = []string{
		"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
		"daily,20250101,20250131,1,1,1,1,1,1,1",
	}
	engine := engineFromFiles(t, Options{}, files)

	// Service ended long before the query date.
	journeys, err := engine.PlanDepartAfter([]string{"S1"}, []string{"S3"}, 20300101, 27000)
	require.NoError(t, err)
	assert.Empty(t, journeys)
}

func TestPlanUnknownStops(t *testing.T) {
	engine := engineFromFiles(t, Options{}, directFeed())

	_, err := engine.PlanDepartAfter([]string{"NOPE"}, []string{"S3"}, 20250101, 27000)
	assert.ErrorIs(t, err, ErrUnknownStop)

	_, err = engine.PlanArriveBy([]string{"S1"}, []string{"NOPE"}, 20250101, 27000)
	assert.ErrorIs(t, err, ErrUnknownStop)

	// A mix of known and unknown stops is fine.
	journeys, err := engine.PlanDepartAfter([]string{"S1", "NOPE"}, []string{"S3"}, 20250101, 27000)
	require.NoError(t, err)
	assert.Len(t, journeys, 1)
}

func TestPlanGroupStations(t *testing.T) {
	// Two origins. Boarding L2 straight from S2 arrives as early as the
	// path from S1 and needs no transfer, so it is the journey kept.
	engine := engineFromFiles(t, Options{}, transferFeed())

	journeys, err := engine.PlanDepartAfter([]string{"S1", "S2"}, []string{"S3"}, 20250101, 27000)
	require.NoError(t, err)

	require.NotEmpty(t, journeys)
	assert.Equal(t, 30000, journeys[0].ArrivalTime)
	// Starting at S2 directly needs no L1 leg.
	require.Len(t, journeys[0].Legs, 1)
	assert.Equal(t, "S2", journeys[0].Legs[0].Origin)
}
