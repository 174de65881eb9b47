package reports

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

// AoiOperatorGroup is one (operator, job, assembly) aggregate from the
// AOI table. Inspected quantity is the apportionment exposure.
type AoiOperatorGroup struct {
	Operator     string `json:"operator"`
	JobNumber    string `json:"job_number"`
	Assembly     string `json:"assembly"`
	QtyInspected int    `json:"qty_inspected"`
	QtyRejected  int    `json:"qty_rejected"`
}

// FiJobGroup is one (job, assembly) reject total from the FI table.
type FiJobGroup struct {
	JobNumber   string `json:"job_number"`
	Assembly    string `json:"assembly"`
	QtyRejected int    `json:"qty_rejected"`
}

// OperatorGradeResponse is one operator's coverage result. Coverage and
// Grade are null when the operator has no defect signal at all (zero
// own rejects and zero attributed escapes).
type OperatorGradeResponse struct {
	Operator            string                `json:"operator"`
	AoiRejected         int                   `json:"aoi_rejected"`
	AttributedFiRejects float64               `json:"attributed_fi_rejects"`
	Coverage            *float64              `json:"coverage"`
	Grade               *models.CoverageGrade `json:"grade"`
}

// GradeForCoverage buckets a coverage ratio into its letter grade.
func GradeForCoverage(coverage float64) models.CoverageGrade {
	switch {
	case coverage >= 0.8:
		return models.CoverageGradeA
	case coverage >= 0.6:
		return models.CoverageGradeB
	case coverage >= 0.4:
		return models.CoverageGradeC
	}
	return models.CoverageGradeD
}

// ComputeOperatorGrades apportions FI-stage rejects back to AOI
// operators and grades each operator's defect coverage.
//
// For every (job_number, assembly) pair, each operator's share of the
// pair's FI rejects is their fraction of the pair's AOI inspected
// quantity. Coverage is own AOI rejects over own plus attributed FI
// rejects, summed across every pair the operator touched. Records with
// a blank job number never participate; they carry no correlation key.
// An FI total of zero still yields a defined coverage of 1.0 when the
// operator caught rejects of their own.
func ComputeOperatorGrades(aoiGroups []AoiOperatorGroup, fiGroups []FiJobGroup) []OperatorGradeResponse {

	type jobKey struct {
		JobNumber string
		Assembly  string
	}

	fiRejects := make(map[jobKey]int, len(fiGroups))
	for _, fi := range fiGroups {
		if fi.JobNumber == "" {
			continue
		}
		fiRejects[jobKey{fi.JobNumber, fi.Assembly}] += fi.QtyRejected
	}

	pairInspected := make(map[jobKey]int)
	for _, aoi := range aoiGroups {
		if aoi.JobNumber == "" {
			continue
		}
		pairInspected[jobKey{aoi.JobNumber, aoi.Assembly}] += aoi.QtyInspected
	}

	type tally struct {
		own        int
		attributed float64
	}
	tallies := make(map[string]*tally)

	for _, aoi := range aoiGroups {
		if aoi.JobNumber == "" {
			continue
		}
		t := tallies[aoi.Operator]
		if t == nil {
			t = &tally{}
			tallies[aoi.Operator] = t
		}
		t.own += aoi.QtyRejected

		key := jobKey{aoi.JobNumber, aoi.Assembly}
		total := pairInspected[key]
		if total > 0 {
			share := float64(aoi.QtyInspected) / float64(total)
			t.attributed += share * float64(fiRejects[key])
		}
	}

	operators := make([]string, 0, len(tallies))
	for operator := range tallies {
		operators = append(operators, operator)
	}
	sort.Strings(operators)

	results := make([]OperatorGradeResponse, 0, len(operators))
	for _, operator := range operators {
		t := tallies[operator]
		r := OperatorGradeResponse{
			Operator:            operator,
			AoiRejected:         t.own,
			AttributedFiRejects: t.attributed,
		}
		denominator := float64(t.own) + t.attributed
		if denominator > 0 {
			coverage := float64(t.own) / denominator
			grade := GradeForCoverage(coverage)
			r.Coverage = &coverage
			r.Grade = &grade
		}
		results = append(results, r)
	}
	return results
}

const aoiOperatorGroupsSql = `
SELECT
    operator,
    job_number,
    assembly,
    SUM(qty_inspected) AS qty_inspected,
    SUM(qty_rejected) AS qty_rejected
FROM
    aoi_reports
WHERE
    job_number <> ''
{{if .StartDate}} AND report_date >= @startDate{{end}}
{{if .EndDate}} AND report_date <= @endDate{{end}}
{{if .Customer}} AND customer = @customer{{end}}
GROUP BY operator, job_number, assembly
`

const fiJobGroupsSql = `
SELECT
    job_number,
    assembly,
    SUM(qty_rejected) AS qty_rejected
FROM
    fi_reports
WHERE
    job_number <> ''
{{if .StartDate}} AND report_date >= @startDate{{end}}
{{if .EndDate}} AND report_date <= @endDate{{end}}
{{if .Customer}} AND customer = @customer{{end}}
GROUP BY job_number, assembly
`

// GetOperatorGradeReport fetches the stage aggregates and runs the
// apportionment over them.
func GetOperatorGradeReport(ctx context.Context, filter models.InspectionFilter) ([]OperatorGradeResponse, error) {

	db := config.GetDB()

	templateData := map[string]interface{}{
		"StartDate": filter.StartDate,
		"EndDate":   filter.EndDate,
		"Customer":  filter.Customer,
	}
	namedArgs := map[string]interface{}{
		"startDate": filter.StartDate,
		"endDate":   filter.EndDate,
		"customer":  filter.Customer,
	}

	aoiSql, err := utils.ExecTemplate(aoiOperatorGroupsSql, templateData)
	if err != nil {
		return nil, err
	}
	var aoiGroups []AoiOperatorGroup
	if err := db.WithContext(ctx).Raw(aoiSql, namedArgs).Scan(&aoiGroups).Error; err != nil {
		return nil, err
	}

	fiSql, err := utils.ExecTemplate(fiJobGroupsSql, templateData)
	if err != nil {
		return nil, err
	}
	var fiGroups []FiJobGroup
	if err := db.WithContext(ctx).Raw(fiSql, namedArgs).Scan(&fiGroups).Error; err != nil {
		return nil, err
	}

	return ComputeOperatorGrades(aoiGroups, fiGroups), nil
}

// ExportOperatorGrades writes the grade rows as an xlsx workbook.
func ExportOperatorGrades(grades []OperatorGradeResponse, w io.Writer) error {

	f := excelize.NewFile()
	sheetName := "Sheet1"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Add headers
	f.SetCellValue(sheetName, "A1", "Operator")
	f.SetCellValue(sheetName, "B1", "AOI Rejects")
	f.SetCellValue(sheetName, "C1", "Attributed FI Rejects")
	f.SetCellValue(sheetName, "D1", "Coverage")
	f.SetCellValue(sheetName, "E1", "Grade")

	// Add data
	for i, g := range grades {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, g.Operator)
		f.SetCellValue(sheetName, "B"+row, g.AoiRejected)
		f.SetCellValue(sheetName, "C"+row, g.AttributedFiRejects)
		if g.Coverage != nil {
			f.SetCellValue(sheetName, "D"+row, *g.Coverage)
		} else {
			f.SetCellValue(sheetName, "D"+row, "N/A")
		}
		if g.Grade != nil {
			f.SetCellValue(sheetName, "E"+row, string(*g.Grade))
		} else {
			f.SetCellValue(sheetName, "E"+row, "N/A")
		}
	}

	return f.Write(w)
}
