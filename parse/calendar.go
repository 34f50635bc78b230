package parse

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"roundel.dev/transit/model"
)

type CalendarCSV struct {
	ServiceID string `csv:"service_id"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
	Monday    int8   `csv:"monday"`
	Tuesday   int8   `csv:"tuesday"`
	Wednesday int8   `csv:"wednesday"`
	Thursday  int8   `csv:"thursday"`
	Friday    int8   `csv:"friday"`
	Saturday  int8   `csv:"saturday"`
	Sunday    int8   `csv:"sunday"`
}

func parseCalendarDate(s string) (int, error) {
	if _, err := time.ParseInLocation("20060102", s, time.UTC); err != nil {
		return 0, fmt.Errorf("parsing date '%s': %w", s, err)
	}
	return strconv.Atoi(s)
}

// Returns all services keyed by service ID.
func ParseCalendar(data io.Reader) (map[string]*model.Service, error) {
	calendarCsv := []*CalendarCSV{}
	if err := gocsv.Unmarshal(data, &calendarCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling csv: %w", err)
	}

	services := map[string]*model.Service{}

	for _, c := range calendarCsv {
		if c.ServiceID == "" {
			return nil, fmt.Errorf("empty service_id")
		}
		if _, found := services[c.ServiceID]; found {
			return nil, fmt.Errorf("repeated service_id '%s'", c.ServiceID)
		}

		var weekday int8
		days := []struct {
			val int8
			day time.Weekday
		}{
			{c.Monday, time.Monday},
			{c.Tuesday, time.Tuesday},
			{c.Wednesday, time.Wednesday},
			{c.Thursday, time.Thursday},
			{c.Friday, time.Friday},
			{c.Saturday, time.Saturday},
			{c.Sunday, time.Sunday},
		}
		for _, d := range days {
			if d.val == 1 {
				weekday |= 1 << d.day
			} else if d.val != 0 {
				return nil, fmt.Errorf("invalid %s value '%d'", d.day, d.val)
			}
		}

		startDate, err := parseCalendarDate(c.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date: %w", err)
		}
		endDate, err := parseCalendarDate(c.EndDate)
		if err != nil {
			return nil, fmt.Errorf("parsing end_date: %w", err)
		}

		services[c.ServiceID] = &model.Service{
			ID:        c.ServiceID,
			StartDate: startDate,
			EndDate:   endDate,
			Weekday:   weekday,
			Dates:     map[int]bool{},
		}
	}

	return services, nil
}
