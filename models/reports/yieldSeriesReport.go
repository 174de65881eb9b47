package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

type YieldSeriesPoint struct {
	Period       string  `json:"period"`
	QtyInspected int     `json:"qty_inspected"`
	QtyRejected  int     `json:"qty_rejected"`
	Yield        float64 `json:"yield"`
}

// GetYieldSeriesReport buckets the filtered records into periods of the
// given frequency and derives a yield per bucket. When the filter has
// no start date, the window is anchored at the latest report_date in
// the table minus the frequency's default range.
func GetYieldSeriesReport(ctx context.Context, stage models.ReportStage, frequency models.Frequency, filter models.InspectionFilter) ([]*YieldSeriesPoint, error) {

	db := config.GetDB()

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}
	periodExpr, err := frequency.PeriodExpr()
	if err != nil {
		return nil, err
	}

	if filter.StartDate == "" {
		days, err := frequency.DefaultRangeDays()
		if err != nil {
			return nil, err
		}
		latest, err := models.LatestReportDate(ctx, db, stage)
		if err != nil {
			return nil, err
		}
		if !latest.IsZero() {
			filter.StartDate = latest.AddDate(0, 0, -(days - 1)).Format("2006-01-02")
			filter.EndDate = latest.Format("2006-01-02")
		}
	}

	sqlT := `
SELECT
    ` + periodExpr + ` AS period,
    SUM(qty_inspected) AS qty_inspected,
    SUM(qty_rejected) AS qty_rejected
FROM
    ` + table + summaryFilterSql + `
GROUP BY period
ORDER BY period
`
	templateData, namedArgs := summaryFilterArgs(filter)
	sql, err := utils.ExecTemplate(sqlT, templateData)
	if err != nil {
		return nil, err
	}

	var points []*YieldSeriesPoint
	if err := db.WithContext(ctx).Raw(sql, namedArgs).Scan(&points).Error; err != nil {
		return nil, err
	}
	for _, p := range points {
		p.Yield = Yield(p.QtyInspected, p.QtyRejected)
	}
	return points, nil
}

// PeriodKey formats a date with the same semantics as the SQL series
// grouping, for callers that bucket in memory.
func PeriodKey(t time.Time, frequency models.Frequency) (string, error) {
	switch frequency {
	case models.FrequencyDaily:
		return t.Format("2006-01-02"), nil
	case models.FrequencyWeekly:
		// mirrors WEEK(date, 5): zero-origin week of year, Monday start
		return t.Format("2006") + "-" + weekOfYear(t), nil
	case models.FrequencyMonthly:
		return t.Format("2006-01"), nil
	case models.FrequencyYearly:
		return t.Format("2006"), nil
	}
	_, err := frequency.PeriodExpr()
	return "", err
}

func weekOfYear(t time.Time) string {
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	// days from the Monday on or before Jan 1
	offset := (int(yearStart.Weekday()) + 6) % 7
	week := (t.YearDay() - 1 + offset) / 7
	return fmt.Sprintf("%02d", week)
}
