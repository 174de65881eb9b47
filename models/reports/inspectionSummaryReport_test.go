package reports_test

import (
	"testing"
	"time"

	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/models/reports"
)

func TestYield(t *testing.T) {
	cases := []struct {
		inspected, rejected int
		want                float64
	}{
		{100, 0, 1.0},
		{100, 5, 0.95},
		{100, 100, 0},
		{0, 0, 0},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := reports.Yield(c.inspected, c.rejected); !almostEqual(got, c.want) {
			t.Errorf("Yield(%d, %d) = %v, want %v", c.inspected, c.rejected, got, c.want)
		}
	}
}

func TestRejectionRate(t *testing.T) {
	cases := []struct {
		inspected, rejected int
		want                float64
	}{
		{100, 5, 0.05},
		{100, 0, 0},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := reports.RejectionRate(c.inspected, c.rejected); !almostEqual(got, c.want) {
			t.Errorf("RejectionRate(%d, %d) = %v, want %v", c.inspected, c.rejected, got, c.want)
		}
	}
}

func TestPeriodKey(t *testing.T) {
	date := time.Date(2025, time.August, 7, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		frequency models.Frequency
		want      string
	}{
		{models.FrequencyDaily, "2025-08-07"},
		{models.FrequencyMonthly, "2025-08"},
		{models.FrequencyYearly, "2025"},
	}
	for _, c := range cases {
		got, err := reports.PeriodKey(date, c.frequency)
		if err != nil {
			t.Fatalf("PeriodKey(%v): %v", c.frequency, err)
		}
		if got != c.want {
			t.Errorf("PeriodKey(%v) = %q, want %q", c.frequency, got, c.want)
		}
	}
}

func TestPeriodKeyWeekly(t *testing.T) {
	// Weekly buckets mirror MySQL WEEK(date, 5): zero-origin weeks
	// starting on Monday, so days before the year's first Monday fall
	// into week 00. This labels year boundaries differently from ISO
	// weeks; chart consumers rely on the current labels.
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "2025-00"},
		{time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), "2025-01"},
		{time.Date(2025, time.August, 7, 0, 0, 0, 0, time.UTC), "2025-31"},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "2025-52"},
	}
	for _, c := range cases {
		got, err := reports.PeriodKey(c.date, models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("PeriodKey weekly: %v", err)
		}
		if got != c.want {
			t.Errorf("PeriodKey(%s) = %q, want %q", c.date.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestPeriodKeyUnknownFrequency(t *testing.T) {
	if _, err := reports.PeriodKey(time.Now(), models.Frequency("hourly")); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}
