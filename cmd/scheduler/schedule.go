package main

import "time"

// nextMidnight returns the first local midnight strictly after now.
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
}

// reportTime is the instant the sweep fired at midnight reports on: the last
// second of the day that just ended.
func reportTime(midnight time.Time) time.Time {
	return midnight.Add(-time.Second)
}
