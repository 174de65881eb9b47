package models_test

import (
	"testing"

	"github.com/smtworks/qcreport_backend/models"
)

func TestPeriodExpr(t *testing.T) {
	// The weekly key must keep the zero-origin Monday-start numbering of
	// historically exported labels. WEEK mode 5 is that numbering; %u
	// (mode 1) is not, it shifts years whose Jan 1 falls Tue-Thu.
	cases := []struct {
		frequency models.Frequency
		want      string
	}{
		{models.FrequencyDaily, "DATE_FORMAT(report_date, '%Y-%m-%d')"},
		{models.FrequencyWeekly, "CONCAT(YEAR(report_date), '-', LPAD(WEEK(report_date, 5), 2, '0'))"},
		{models.FrequencyMonthly, "DATE_FORMAT(report_date, '%Y-%m')"},
		{models.FrequencyYearly, "DATE_FORMAT(report_date, '%Y')"},
	}
	for _, c := range cases {
		got, err := c.frequency.PeriodExpr()
		if err != nil {
			t.Fatalf("PeriodExpr(%v): %v", c.frequency, err)
		}
		if got != c.want {
			t.Errorf("PeriodExpr(%v) = %q, want %q", c.frequency, got, c.want)
		}
	}
	if _, err := models.Frequency("hourly").PeriodExpr(); err == nil {
		t.Error("expected error for unknown frequency")
	}
}
