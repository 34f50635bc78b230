package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"roundel.dev/transit/model"
)

type CalendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

// Adds calendar exceptions to the given services. Services appearing
// only in calendar_dates.txt are created with an empty date range, so
// that the exceptions alone decide when they run.
func ParseCalendarDates(data io.Reader, services map[string]*model.Service) error {
	calendarDateCsv := []*CalendarDateCSV{}
	if err := gocsv.Unmarshal(data, &calendarDateCsv); err != nil {
		return fmt.Errorf("unmarshaling calendar_dates csv: %w", err)
	}

	for _, cd := range calendarDateCsv {
		if cd.ServiceID == "" {
			return fmt.Errorf("empty service_id")
		}
		if cd.ExceptionType < 1 || cd.ExceptionType > 2 {
			return fmt.Errorf("illegal exception_type: '%d'", cd.ExceptionType)
		}

		date, err := parseCalendarDate(cd.Date)
		if err != nil {
			return err
		}

		service, found := services[cd.ServiceID]
		if !found {
			service = &model.Service{
				ID:    cd.ServiceID,
				Dates: map[int]bool{},
			}
			services[cd.ServiceID] = service
		}

		if _, dup := service.Dates[date]; dup {
			return fmt.Errorf("duplicate service/date: '%d-%s'", date, cd.ServiceID)
		}

		service.Dates[date] = cd.ExceptionType == 1
	}

	return nil
}
