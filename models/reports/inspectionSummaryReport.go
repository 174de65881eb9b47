package reports

import (
	"context"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

type OperatorSummaryResponse struct {
	Operator     string  `json:"operator"`
	QtyInspected int     `json:"qty_inspected"`
	QtyRejected  int     `json:"qty_rejected"`
	Yield        float64 `json:"yield"`
}

type AssemblySummaryResponse struct {
	Assembly     string  `json:"assembly"`
	QtyInspected int     `json:"qty_inspected"`
	QtyRejected  int     `json:"qty_rejected"`
	Yield        float64 `json:"yield"`
}

type ShiftSummaryResponse struct {
	ReportDate   string `json:"report_date"`
	Shift        string `json:"shift"`
	QtyInspected int    `json:"qty_inspected"`
	QtyRejected  int    `json:"qty_rejected"`
}

type CustomerSummaryResponse struct {
	Customer      string  `json:"customer"`
	QtyInspected  int     `json:"qty_inspected"`
	QtyRejected   int     `json:"qty_rejected"`
	RejectionRate float64 `json:"rejection_rate"`
}

// summaryFilterSql is the shared WHERE-fragment template for the
// summary queries. Filters are AND-combined; empty ones drop out.
const summaryFilterSql = `
WHERE 1 = 1
{{if .StartDate}} AND report_date >= @startDate{{end}}
{{if .EndDate}} AND report_date <= @endDate{{end}}
{{if .Customer}} AND customer = @customer{{end}}
{{if .Shift}} AND shift = @shift{{end}}
{{if .Operator}} AND operator = @operator{{end}}
{{if .Assembly}} AND assembly = @assembly{{end}}
`

func summaryFilterArgs(filter models.InspectionFilter) (map[string]interface{}, map[string]interface{}) {
	templateData := map[string]interface{}{
		"StartDate": filter.StartDate,
		"EndDate":   filter.EndDate,
		"Customer":  filter.Customer,
		"Shift":     filter.Shift,
		"Operator":  filter.Operator,
		"Assembly":  filter.Assembly,
	}
	namedArgs := map[string]interface{}{
		"startDate": filter.StartDate,
		"endDate":   filter.EndDate,
		"customer":  filter.Customer,
		"shift":     filter.Shift,
		"operator":  filter.Operator,
		"assembly":  filter.Assembly,
	}
	return templateData, namedArgs
}

// Yield computes 1 - rejected/inspected. A group with nothing
// inspected yields 0, not an error.
func Yield(inspected, rejected int) float64 {
	if inspected == 0 {
		return 0
	}
	return 1 - float64(rejected)/float64(inspected)
}

// RejectionRate computes rejected/inspected, treating 0/0 as 0.
func RejectionRate(inspected, rejected int) float64 {
	if inspected == 0 {
		return 0
	}
	return float64(rejected) / float64(inspected)
}

// GetOperatorSummaryReport sums inspected and rejected quantities per
// operator over the filtered records.
func GetOperatorSummaryReport(ctx context.Context, stage models.ReportStage, filter models.InspectionFilter) ([]*OperatorSummaryResponse, error) {

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}

	sqlT := `
SELECT
    operator,
    SUM(qty_inspected) AS qty_inspected,
    SUM(qty_rejected) AS qty_rejected
FROM
    ` + table + summaryFilterSql + `
GROUP BY operator
ORDER BY operator
`
	templateData, namedArgs := summaryFilterArgs(filter)
	sql, err := utils.ExecTemplate(sqlT, templateData)
	if err != nil {
		return nil, err
	}

	var records []*OperatorSummaryResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, namedArgs).Scan(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		r.Yield = Yield(r.QtyInspected, r.QtyRejected)
	}
	return records, nil
}

// GetAssemblySummaryReport sums inspected and rejected quantities per
// assembly over the filtered records.
func GetAssemblySummaryReport(ctx context.Context, stage models.ReportStage, filter models.InspectionFilter) ([]*AssemblySummaryResponse, error) {

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}

	sqlT := `
SELECT
    assembly,
    SUM(qty_inspected) AS qty_inspected,
    SUM(qty_rejected) AS qty_rejected
FROM
    ` + table + summaryFilterSql + `
GROUP BY assembly
ORDER BY assembly
`
	templateData, namedArgs := summaryFilterArgs(filter)
	sql, err := utils.ExecTemplate(sqlT, templateData)
	if err != nil {
		return nil, err
	}

	var records []*AssemblySummaryResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, namedArgs).Scan(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		r.Yield = Yield(r.QtyInspected, r.QtyRejected)
	}
	return records, nil
}

// GetShiftSummaryReport returns raw totals per (report_date, shift).
func GetShiftSummaryReport(ctx context.Context, stage models.ReportStage, filter models.InspectionFilter) ([]*ShiftSummaryResponse, error) {

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}

	sqlT := `
SELECT
    report_date,
    shift,
    SUM(qty_inspected) AS qty_inspected,
    SUM(qty_rejected) AS qty_rejected
FROM
    ` + table + summaryFilterSql + `
GROUP BY report_date, shift
ORDER BY report_date, shift
`
	templateData, namedArgs := summaryFilterArgs(filter)
	sql, err := utils.ExecTemplate(sqlT, templateData)
	if err != nil {
		return nil, err
	}

	var records []*ShiftSummaryResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, namedArgs).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetCustomerSummaryReport sums per customer and derives the rejection
// rate.
func GetCustomerSummaryReport(ctx context.Context, stage models.ReportStage, filter models.InspectionFilter) ([]*CustomerSummaryResponse, error) {

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}

	sqlT := `
SELECT
    customer,
    SUM(qty_inspected) AS qty_inspected,
    SUM(qty_rejected) AS qty_rejected
FROM
    ` + table + summaryFilterSql + `
GROUP BY customer
ORDER BY customer
`
	templateData, namedArgs := summaryFilterArgs(filter)
	sql, err := utils.ExecTemplate(sqlT, templateData)
	if err != nil {
		return nil, err
	}

	var records []*CustomerSummaryResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, namedArgs).Scan(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		r.RejectionRate = RejectionRate(r.QtyInspected, r.QtyRejected)
	}
	return records, nil
}
