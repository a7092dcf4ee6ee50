package analyzer

import (
	"fmt"
	"time"
)

const (
	WindowDay  = "day"
	WindowWeek = "week"
)

// Window is the half-open interval [Start, End) a report covers.
// ReportDate is the local day the report is filed under.
type Window struct {
	Start      time.Time
	End        time.Time
	ReportDate time.Time
}

// WindowFor returns the window containing now: the local calendar day, or the
// seven local days ending with it.
func WindowFor(now time.Time, kind string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := day.AddDate(0, 0, 1)

	switch kind {
	case "", WindowDay:
		return Window{Start: day, End: end, ReportDate: day}, nil
	case WindowWeek:
		return Window{Start: day.AddDate(0, 0, -6), End: end, ReportDate: day}, nil
	default:
		return Window{}, fmt.Errorf("unknown analysis window %q", kind)
	}
}
