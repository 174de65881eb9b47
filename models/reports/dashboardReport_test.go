package reports_test

import (
	"testing"

	"github.com/smtworks/qcreport_backend/models/reports"
)

func TestHighlightForDueIn(t *testing.T) {
	cases := []struct {
		dueIn int
		want  string
	}{
		{-1, "danger"},
		{0, "danger"},
		{2, "danger"},
		{3, "warning"},
		{6, "warning"},
		{7, ""},
		{30, ""},
	}
	for _, c := range cases {
		if got := reports.HighlightForDueIn(c.dueIn); got != c.want {
			t.Errorf("HighlightForDueIn(%d) = %q, want %q", c.dueIn, got, c.want)
		}
	}
}
