package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

type StopCSV struct {
	ID   string `csv:"stop_id"`
	Name string `csv:"stop_name"`
}

// Returns a map of stop ID to stop name.
func ParseStops(data io.Reader) (map[string]string, error) {
	stopCsv := []*StopCSV{}
	if err := gocsv.Unmarshal(data, &stopCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling stops csv: %w", err)
	}

	stops := map[string]string{}
	for _, s := range stopCsv {
		if s.ID == "" {
			return nil, fmt.Errorf("empty stop_id")
		}
		if _, found := stops[s.ID]; found {
			return nil, fmt.Errorf("repeated stop_id '%s'", s.ID)
		}
		stops[s.ID] = s.Name
	}

	return stops, nil
}
