package reports

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

// MoatFilter narrows the MOAT analytics queries. Metric picks the
// counter column; Models and Lines are optional IN / LIKE filters;
// MinBoards drops low-volume models whose rates are mostly noise.
type MoatFilter struct {
	Metric    string
	StartDate string
	EndDate   string
	Models    []string
	Line      string
	ModelType string // "smt" or "th", matched against model_name
	MinBoards int
}

// moatMetricColumns is the allow-list for the metric column; the value
// is interpolated into SQL and must never come from the request
// verbatim.
var moatMetricColumns = map[string]string{
	"ng_parts":        "ng_parts",
	"falsecall_parts": "falsecall_parts",
	"":                "falsecall_parts",
}

func (f MoatFilter) metricColumn() (string, error) {
	column, ok := moatMetricColumns[f.Metric]
	if !ok {
		return "", fmt.Errorf("unknown metric %q", f.Metric)
	}
	return column, nil
}

type MoatChartPoint struct {
	ReportDate string  `json:"report_date"`
	Line       string  `json:"line"`
	ModelName  string  `json:"model_name"`
	Rate       float64 `json:"rate"`
}

type MoatStddevResponse struct {
	Mean   float64         `json:"mean"`
	Stddev float64         `json:"stddev"`
	Models []MoatModelRate `json:"models"`
}

type MoatModelRate struct {
	ModelName   string  `json:"model_name"`
	TotalBoards int     `json:"total_boards"`
	Rate        float64 `json:"rate"`
}

type MoatPpmPoint struct {
	Period     string          `json:"period"`
	TotalParts int             `json:"total_parts"`
	MetricSum  int             `json:"metric_sum"`
	Ppm        decimal.Decimal `json:"ppm"`
}

const moatChartSql = `
SELECT
    report_date,
    line,
    model_name,
    {{.Metric}} / total_boards AS rate
FROM
    moat_records
WHERE
    total_boards >= @minBoards
{{if .StartDate}} AND report_date >= @startDate{{end}}
{{if .EndDate}} AND report_date <= @endDate{{end}}
{{if .Models}} AND model_name IN @models{{end}}
{{if .Line}} AND filename LIKE @linePattern{{end}}
{{if .ModelType}} AND model_name {{if .SmtType}}NOT {{end}}LIKE '%-TH%'{{end}}
ORDER BY report_date, line, model_name
`

// GetMoatChartReport returns the per-row defect or false-call rate
// (metric per board) under the filter, for the scatter chart.
func GetMoatChartReport(ctx context.Context, filter MoatFilter) ([]*MoatChartPoint, error) {

	metric, err := filter.metricColumn()
	if err != nil {
		return nil, err
	}
	if filter.MinBoards < 1 {
		filter.MinBoards = 1
	}

	sql, err := utils.ExecTemplate(moatChartSql, map[string]interface{}{
		"Metric":    metric,
		"StartDate": filter.StartDate,
		"EndDate":   filter.EndDate,
		"Models":    filter.Models,
		"Line":      filter.Line,
		"ModelType": filter.ModelType,
		"SmtType":   strings.EqualFold(filter.ModelType, "smt"),
	})
	if err != nil {
		return nil, err
	}

	var points []*MoatChartPoint
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"minBoards":   filter.MinBoards,
		"startDate":   filter.StartDate,
		"endDate":     filter.EndDate,
		"models":      filter.Models,
		"linePattern": "%" + filter.Line + "%",
	}).Scan(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

// PopulationStddev computes the population standard deviation. An
// empty sample returns 0.
func PopulationStddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

const moatStddevSql = `
SELECT
    model_name,
    SUM(total_boards) AS total_boards,
    SUM({{.Metric}}) / SUM(total_boards) AS rate
FROM
    moat_records
WHERE
    total_boards > 0
{{if .StartDate}} AND report_date >= @startDate{{end}}
{{if .EndDate}} AND report_date <= @endDate{{end}}
{{if .Line}} AND filename LIKE @linePattern{{end}}
GROUP BY model_name
HAVING SUM(total_boards) >= @minBoards
ORDER BY model_name
`

// GetMoatStddevReport aggregates a rate per model and reports the mean
// and population stddev across models, for flagging models drifting
// out of family.
func GetMoatStddevReport(ctx context.Context, filter MoatFilter) (*MoatStddevResponse, error) {

	metric, err := filter.metricColumn()
	if err != nil {
		return nil, err
	}
	if filter.MinBoards < 1 {
		filter.MinBoards = 1
	}

	sql, err := utils.ExecTemplate(moatStddevSql, map[string]interface{}{
		"Metric":    metric,
		"StartDate": filter.StartDate,
		"EndDate":   filter.EndDate,
		"Line":      filter.Line,
	})
	if err != nil {
		return nil, err
	}

	var modelRates []MoatModelRate
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"startDate":   filter.StartDate,
		"endDate":     filter.EndDate,
		"linePattern": "%" + filter.Line + "%",
		"minBoards":   filter.MinBoards,
	}).Scan(&modelRates).Error; err != nil {
		return nil, err
	}

	rates := make([]float64, len(modelRates))
	var sum float64
	for i, m := range modelRates {
		rates[i] = m.Rate
		sum += m.Rate
	}
	result := &MoatStddevResponse{Models: modelRates}
	if len(rates) > 0 {
		result.Mean = sum / float64(len(rates))
		result.Stddev = PopulationStddev(rates)
	}
	return result, nil
}

const moatPpmSql = `
SELECT
    {{.PeriodExpr}} AS period,
    SUM(total_parts) AS total_parts,
    SUM({{.Metric}}) AS metric_sum
FROM
    moat_records
WHERE
    report_date >= @startDate AND report_date <= @endDate
{{if .Line}} AND filename LIKE @linePattern{{end}}
GROUP BY period
ORDER BY period
`

var million = decimal.NewFromInt(1000000)

// GetMoatPpmReport sums the metric per period and scales to parts per
// million in exact decimal arithmetic. With no explicit range the
// window is anchored at the newest report_date minus the frequency's
// default span.
func GetMoatPpmReport(ctx context.Context, frequency models.Frequency, filter MoatFilter) ([]*MoatPpmPoint, error) {

	db := config.GetDB()

	metric, err := filter.metricColumn()
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
		var maxDate string
		if err := db.WithContext(ctx).Raw(
			"SELECT COALESCE(MAX(report_date), '') FROM moat_records",
		).Scan(&maxDate).Error; err != nil {
			return nil, err
		}
		if maxDate == "" {
			return []*MoatPpmPoint{}, nil
		}
		latest, err := time.Parse("2006-01-02", maxDate)
		if err != nil {
			return nil, err
		}
		filter.StartDate = latest.AddDate(0, 0, -(days - 1)).Format("2006-01-02")
		filter.EndDate = latest.Format("2006-01-02")
	}

	sql, err := utils.ExecTemplate(moatPpmSql, map[string]interface{}{
		"Metric":     metric,
		"PeriodExpr": periodExpr,
		"Line":       filter.Line,
	})
	if err != nil {
		return nil, err
	}

	var points []*MoatPpmPoint
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"startDate":   filter.StartDate,
		"endDate":     filter.EndDate,
		"linePattern": "%" + filter.Line + "%",
	}).Scan(&points).Error; err != nil {
		return nil, err
	}

	for _, p := range points {
		if p.TotalParts == 0 {
			p.Ppm = decimal.Zero
			continue
		}
		p.Ppm = decimal.NewFromInt(int64(p.MetricSum)).Mul(million).
			DivRound(decimal.NewFromInt(int64(p.TotalParts)), 2)
	}
	return points, nil
}
