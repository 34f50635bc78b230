package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"roundel.dev/transit"
	"roundel.dev/transit/model"
)

var rematchCmd = &cobra.Command{
	Use:   "rematch <legs.json>",
	Short: "Re-anchors a saved journey on a new reference time",
	Args:  cobra.ExactArgs(1),
	RunE:  rematch,
}

var (
	rematchDate int
	rematchTime string
	rematchLate bool
)

func init() {
	rematchCmd.Flags().IntVarP(&rematchDate, "date", "d", 0, "New anchor date as YYYYMMDD")
	rematchCmd.Flags().StringVarP(&rematchTime, "time", "T", "", "New anchor time as HH:MM:SS")
	rematchCmd.Flags().BoolVarP(&rematchLate, "arrive-by", "a", false, "Match the latest trips at or before the anchor")
	rematchCmd.MarkFlagRequired("date")
	rematchCmd.MarkFlagRequired("time")
}

func rematch(cmd *cobra.Command, args []string) error {
	buf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading legs: %w", err)
	}

	legs := []transit.LegDescriptor{}
	if err := json.Unmarshal(buf, &legs); err != nil {
		return fmt.Errorf("decoding legs: %w", err)
	}

	tsec, err := model.ParseTime(rematchTime)
	if err != nil {
		return fmt.Errorf("invalid time: %w", err)
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}

	matched, err := engine.ReMatch(legs, rematchDate, tsec, !rematchLate)
	if err != nil {
		return err
	}

	printLegs(matched)
	return nil
}
