package reports_test

import (
	"testing"

	"github.com/smtworks/qcreport_backend/models/reports"
)

func TestPopulationStddev(t *testing.T) {
	cases := []struct {
		values []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{5}, 0},
		{[]float64{3, 3, 3}, 0},
		{[]float64{2, 4, 4, 4, 5, 5, 7, 9}, 2},
	}
	for _, c := range cases {
		if got := reports.PopulationStddev(c.values); !almostEqual(got, c.want) {
			t.Errorf("PopulationStddev(%v) = %v, want %v", c.values, got, c.want)
		}
	}
}
