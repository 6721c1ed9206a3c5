package worker

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestRollupSchedule(t *testing.T) {
	sched, err := cron.ParseStandard(rollupSchedule)
	if err != nil {
		t.Fatalf("rollup schedule does not parse: %v", err)
	}

	// A Wednesday; the next firing must be the following Monday 06:00 UTC.
	from := time.Date(2025, time.June, 11, 12, 0, 0, 0, time.UTC)
	next := sched.Next(from)

	want := time.Date(2025, time.June, 16, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next firing = %v, want %v", next, want)
	}
	if next.Weekday() != time.Monday {
		t.Errorf("rollup must fire on Monday, got %v", next.Weekday())
	}
}
