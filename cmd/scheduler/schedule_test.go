package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutri-lens/analyzer"
)

func TestNextMidnight(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 20, 15, 0, 0, time.UTC) // 01:45 on the 20th in Kolkata
	got := nextMidnight(now, kolkata)
	assert.Equal(t, time.Date(2026, 10, 21, 0, 0, 0, 0, kolkata), got)

	exact := time.Date(2026, 10, 19, 0, 0, 0, 0, kolkata)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, kolkata), nextMidnight(exact, kolkata))
}

func TestReportTimeFallsInEndedDay(t *testing.T) {
	midnight := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	w, err := analyzer.WindowFor(reportTime(midnight), analyzer.WindowDay, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, midnight, w.End)
}

func TestNextMidnightAcrossMonthEnd(t *testing.T) {
	now := time.Date(2026, 10, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), nextMidnight(now, time.UTC))
}
