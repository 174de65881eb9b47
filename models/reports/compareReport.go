package reports

import (
	"context"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

// ComparePoint is one day of one stage's totals. Yield is null when
// nothing was inspected that day, so chart gaps render as gaps instead
// of zero dips.
type ComparePoint struct {
	ReportDate   string   `json:"report_date"`
	QtyInspected int      `json:"qty_inspected"`
	QtyRejected  int      `json:"qty_rejected"`
	Yield        *float64 `json:"yield"`
}

type CompareResponse struct {
	Aoi []*ComparePoint `json:"aoi"`
	Fi  []*ComparePoint `json:"fi"`
}

// JobCompareRow pairs the two stages' totals for one (job, assembly).
type JobCompareRow struct {
	JobNumber    string `json:"job_number"`
	Assembly     string `json:"assembly"`
	AoiInspected int    `json:"aoi_inspected"`
	AoiRejected  int    `json:"aoi_rejected"`
	FiInspected  int    `json:"fi_inspected"`
	FiRejected   int    `json:"fi_rejected"`
}

const compareSeriesSql = `
SELECT
    report_date,
    SUM(qty_inspected) AS qty_inspected,
    SUM(qty_rejected) AS qty_rejected
FROM
    {{.Table}}
WHERE 1 = 1
{{if .StartDate}} AND report_date >= @startDate{{end}}
{{if .EndDate}} AND report_date <= @endDate{{end}}
{{if .Customer}} AND customer = @customer{{end}}
{{if .Assembly}} AND assembly = @assembly{{end}}
GROUP BY report_date
ORDER BY report_date
`

func compareSeries(ctx context.Context, stage models.ReportStage, filter models.InspectionFilter) ([]*ComparePoint, error) {

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}
	sql, err := utils.ExecTemplate(compareSeriesSql, map[string]interface{}{
		"Table":     table,
		"StartDate": filter.StartDate,
		"EndDate":   filter.EndDate,
		"Customer":  filter.Customer,
		"Assembly":  filter.Assembly,
	})
	if err != nil {
		return nil, err
	}

	var points []*ComparePoint
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"startDate": filter.StartDate,
		"endDate":   filter.EndDate,
		"customer":  filter.Customer,
		"assembly":  filter.Assembly,
	}).Scan(&points).Error; err != nil {
		return nil, err
	}
	for _, p := range points {
		if p.QtyInspected > 0 {
			y := Yield(p.QtyInspected, p.QtyRejected)
			p.Yield = &y
		}
	}
	return points, nil
}

// GetCompareReport builds the AOI and FI daily series side by side for
// the escape-rate chart.
func GetCompareReport(ctx context.Context, filter models.InspectionFilter) (*CompareResponse, error) {

	aoi, err := compareSeries(ctx, models.ReportStageAOI, filter)
	if err != nil {
		return nil, err
	}
	fi, err := compareSeries(ctx, models.ReportStageFI, filter)
	if err != nil {
		return nil, err
	}
	return &CompareResponse{Aoi: aoi, Fi: fi}, nil
}

const jobCompareSql = `
SELECT
    aoi.job_number,
    aoi.assembly,
    aoi.qty_inspected AS aoi_inspected,
    aoi.qty_rejected AS aoi_rejected,
    COALESCE(fi.qty_inspected, 0) AS fi_inspected,
    COALESCE(fi.qty_rejected, 0) AS fi_rejected
FROM
    (SELECT
        job_number,
        assembly,
        SUM(qty_inspected) AS qty_inspected,
        SUM(qty_rejected) AS qty_rejected
    FROM
        aoi_reports
    WHERE
        job_number <> ''
        {{if .JobNumber}} AND job_number = @jobNumber{{end}}
    GROUP BY job_number, assembly) AS aoi
        LEFT JOIN
    (SELECT
        job_number,
        assembly,
        SUM(qty_inspected) AS qty_inspected,
        SUM(qty_rejected) AS qty_rejected
    FROM
        fi_reports
    WHERE
        job_number <> ''
    GROUP BY job_number, assembly) AS fi
    ON aoi.job_number = fi.job_number AND aoi.assembly = fi.assembly
ORDER BY aoi.job_number, aoi.assembly
`

// StageTotals is one stage's aggregate for a single job.
type StageTotals struct {
	QtyInspected int      `json:"qty_inspected"`
	QtyRejected  int      `json:"qty_rejected"`
	Yield        *float64 `json:"yield"`
}

// SingleJobCompareResponse pairs a job's two stages; a stage with no
// records for the job is null.
type SingleJobCompareResponse struct {
	JobNumber string       `json:"job_number"`
	Aoi       *StageTotals `json:"aoi"`
	Fi        *StageTotals `json:"fi"`
}

// GetSingleJobCompare sums both stages for one job number. Either side
// may be null when the job never passed through that stage.
func GetSingleJobCompare(ctx context.Context, jobNumber string) (*SingleJobCompareResponse, error) {

	result := &SingleJobCompareResponse{JobNumber: jobNumber}
	db := config.GetDB()

	for _, stage := range []models.ReportStage{models.ReportStageAOI, models.ReportStageFI} {
		table, err := stage.TableName()
		if err != nil {
			return nil, err
		}
		var row struct {
			RecordCount  int
			QtyInspected int
			QtyRejected  int
		}
		sql := `
SELECT
    COUNT(*) AS record_count,
    COALESCE(SUM(qty_inspected), 0) AS qty_inspected,
    COALESCE(SUM(qty_rejected), 0) AS qty_rejected
FROM
    ` + table + `
WHERE
    job_number = @jobNumber
`
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"jobNumber": jobNumber,
		}).Scan(&row).Error; err != nil {
			return nil, err
		}
		if row.RecordCount == 0 {
			continue
		}
		totals := &StageTotals{QtyInspected: row.QtyInspected, QtyRejected: row.QtyRejected}
		if row.QtyInspected > 0 {
			y := Yield(row.QtyInspected, row.QtyRejected)
			totals.Yield = &y
		}
		if stage == models.ReportStageAOI {
			result.Aoi = totals
		} else {
			result.Fi = totals
		}
	}
	return result, nil
}

// GetJobCompareReport joins the two stages by (job_number, assembly).
// An empty jobNumber returns every correlated pair.
func GetJobCompareReport(ctx context.Context, jobNumber string) ([]*JobCompareRow, error) {

	sql, err := utils.ExecTemplate(jobCompareSql, map[string]interface{}{
		"JobNumber": jobNumber,
	})
	if err != nil {
		return nil, err
	}

	var rows []*JobCompareRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"jobNumber": jobNumber,
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
