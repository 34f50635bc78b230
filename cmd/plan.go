package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"roundel.dev/transit"
	"roundel.dev/transit/model"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plans journeys between sets of stops",
	RunE:  plan,
}

var (
	fromStops []string
	toStops   []string
	planDate  int
	planTime  string
	arriveBy  bool
)

func init() {
	planCmd.Flags().StringSliceVarP(&fromStops, "from", "f", nil, "Origin stop IDs")
	planCmd.Flags().StringSliceVarP(&toStops, "to", "t", nil, "Destination stop IDs")
	planCmd.Flags().IntVarP(&planDate, "date", "d", 0, "Service date as YYYYMMDD (default today)")
	planCmd.Flags().StringVarP(&planTime, "time", "T", "", "Reference time as HH:MM:SS")
	planCmd.Flags().BoolVarP(&arriveBy, "arrive-by", "a", false, "Treat the reference time as latest arrival")
	planCmd.MarkFlagRequired("from")
	planCmd.MarkFlagRequired("to")
	planCmd.MarkFlagRequired("time")
}

func plan(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	date := planDate
	if date == 0 {
		now := time.Now()
		date = now.Year()*10000 + int(now.Month())*100 + now.Day()
	}

	tsec, err := model.ParseTime(planTime)
	if err != nil {
		return fmt.Errorf("invalid time: %w", err)
	}

	var journeys []transit.Journey
	if arriveBy {
		journeys, err = engine.PlanArriveBy(fromStops, toStops, date, tsec)
	} else {
		journeys, err = engine.PlanDepartAfter(fromStops, toStops, date, tsec)
	}
	if err != nil {
		return err
	}

	if len(journeys) == 0 {
		fmt.Println("no journeys found")
		return nil
	}

	for i, j := range journeys {
		fmt.Printf(
			"journey %d: %s - %s, %d transfers\n",
			i+1,
			model.FormatTime(j.DepartureTime),
			model.FormatTime(j.ArrivalTime),
			j.Transfers(),
		)
		printLegs(j.Legs)
	}

	return nil
}

func printLegs(legs []transit.Leg) {
	for _, l := range legs {
		switch l.Kind {
		case transit.LegTrip:
			fmt.Printf(
				"  %s %s %s -> %s %s (%s)\n",
				model.FormatTime(l.Departure),
				l.RouteID,
				l.Origin,
				l.Destination,
				model.FormatTime(l.Arrival),
				l.Headsign,
			)
		case transit.LegTransfer:
			fmt.Printf(
				"  %s walk %s -> %s (%ds)\n",
				model.FormatTime(l.Departure),
				l.Origin,
				l.Destination,
				l.Duration,
			)
		}
	}
}
