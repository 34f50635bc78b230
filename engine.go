package transit

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"roundel.dev/transit/model"
	"roundel.dev/transit/timetable"
)

// DayRolloverOffset is the shift between consecutive service days
// when a search is extended across midnight.
const DayRolloverOffset = 86400

const (
	DefaultMinInterchange = 120
	DefaultMaxRounds      = 8
	DefaultMaxSearchDays  = 3
)

var (
	// ErrUnknownStop is returned by Plan calls when no origin or no
	// destination resolves to a stop in the timetable.
	ErrUnknownStop = errors.New("unknown stop")

	// ErrNoMatch is returned by ReMatch when some leg has no trip
	// realising the requested stop sequence at the anchor.
	ErrNoMatch = errors.New("no matching trip")

	// ErrBadLeg signals a corrupt leg descriptor or connection index:
	// the first stop of a slice does not precede its last.
	ErrBadLeg = errors.New("invalid leg")
)

type Options struct {
	MinInterchange int // dwell when switching trips at a stop without an explicit entry
	MaxRounds      int // trip cap per journey
	MaxSearchDays  int // day-stacking cap in Plan calls
	Logger         *logrus.Logger
}

func DefaultOptions() Options {
	return Options{
		MinInterchange: DefaultMinInterchange,
		MaxRounds:      DefaultMaxRounds,
		MaxSearchDays:  DefaultMaxSearchDays,
	}
}

// Engine owns the immutable timetable index. One engine serves any
// number of concurrent queries; all per-query state lives in the
// ScanResult, so no locking is needed.
type Engine struct {
	tt   *timetable.Timetable
	opts Options
	log  *logrus.Logger
}

// New prepares the RAPTOR index from a loaded feed and returns the
// engine handle. A malformed feed (dangling references, non-monotonic
// stop times) fails here; the engine refuses to start.
func New(feed *model.Feed, opts Options) (*Engine, error) {
	if opts.MinInterchange <= 0 {
		opts.MinInterchange = DefaultMinInterchange
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.MaxSearchDays <= 0 {
		opts.MaxSearchDays = DefaultMaxSearchDays
	}

	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	tt, err := timetable.New(feed, opts.MinInterchange)
	if err != nil {
		return nil, fmt.Errorf("preparing timetable: %w", err)
	}

	log.WithFields(logrus.Fields{
		"stops":  tt.Stops(),
		"trips":  len(tt.Trips),
		"routes": len(tt.Routes),
	}).Info("timetable prepared")

	return &Engine{tt: tt, opts: opts, log: log}, nil
}

// Timetable exposes the prepared index, read-only.
func (e *Engine) Timetable() *timetable.Timetable {
	return e.tt
}
