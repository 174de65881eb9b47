package reports

import (
	"context"
	"sort"
	"time"
)

// JobBoardRow is one open job on the floor dashboard. Highlight drives
// the row color: "danger" within two days of the due date, "warning"
// within six.
type JobBoardRow struct {
	Job       string `json:"job"`
	DueDate   string `json:"due_date"`
	DueIn     int    `json:"due_in"`
	Locations string `json:"locations"`
	Total     int    `json:"total"`
	Highlight string `json:"highlight"`
}

// HighlightForDueIn maps days-until-due to a row highlight class.
func HighlightForDueIn(dueIn int) string {
	switch {
	case dueIn <= 2:
		return "danger"
	case dueIn <= 6:
		return "warning"
	}
	return ""
}

// placeholder until the ERP job feed is wired up
var placeholderJobs = []struct {
	Job       string
	DueOffset int
	Locations string
	Total     int
}{
	{"J-2025-1041", 1, "SMT-1, AOI", 250},
	{"J-2025-1044", 3, "SMT-2", 120},
	{"J-2025-1047", 5, "SMT-1, FI", 600},
	{"J-2025-1052", 9, "SMT-2, AOI", 75},
}

// GetJobBoardReport returns the open-job rows sorted by due-date
// proximity. Data is canned pending the ERP integration; the shape and
// highlight rules are final.
func GetJobBoardReport(ctx context.Context) ([]*JobBoardRow, error) {

	today := time.Now()
	rows := make([]*JobBoardRow, 0, len(placeholderJobs))
	for _, j := range placeholderJobs {
		due := today.AddDate(0, 0, j.DueOffset)
		rows = append(rows, &JobBoardRow{
			Job:       j.Job,
			DueDate:   due.Format("2006-01-02"),
			DueIn:     j.DueOffset,
			Locations: j.Locations,
			Total:     j.Total,
			Highlight: HighlightForDueIn(j.DueOffset),
		})
	}
	sort.Slice(rows, func(i, k int) bool { return rows[i].DueIn < rows[k].DueIn })
	return rows, nil
}
