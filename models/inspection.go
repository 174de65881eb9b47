package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/utils"
)

// InspectionRecord is one spreadsheet row after normalization. AOI and
// FI share this shape; the stage only decides which table the record
// is written to.
type InspectionRecord struct {
	Id             int    `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportDate     string `gorm:"size:32;index" json:"report_date"`
	Shift          string `gorm:"size:64" json:"shift"`
	Operator       string `gorm:"size:128;index" json:"operator"`
	Customer       string `gorm:"size:128;index" json:"customer"`
	Assembly       string `gorm:"size:128;index" json:"assembly"`
	Rev            string `gorm:"size:64" json:"rev"`
	JobNumber      string `gorm:"size:64;index" json:"job_number"`
	QtyInspected   int    `json:"qty_inspected"`
	QtyRejected    int    `json:"qty_rejected"`
	AdditionalInfo string `gorm:"type:text" json:"additional_info"`
}

// inspectionUpdatableFields is the allow-list for single-field updates.
// Identity and quantity columns may be corrected after ingestion;
// nothing else is writable through the update endpoint.
var inspectionUpdatableFields = map[string]bool{
	"report_date":     true,
	"shift":           true,
	"operator":        true,
	"customer":        true,
	"assembly":        true,
	"rev":             true,
	"job_number":      true,
	"qty_inspected":   true,
	"qty_rejected":    true,
	"additional_info": true,
}

// InspectionFilter narrows listing queries. Empty fields are ignored.
type InspectionFilter struct {
	StartDate string
	EndDate   string
	Operator  string
	Customer  string
	Assembly  string
	JobNumber string
	Shift     string
}

// CreateInspectionRecords inserts a parsed batch in one transaction so a
// failed upload never leaves a partial report behind.
func CreateInspectionRecords(ctx context.Context, db *gorm.DB, stage ReportStage, records []InspectionRecord) error {
	logger := config.GetLogger()

	table, err := stage.TableName()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("no records to insert")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(table).CreateInBatches(records, 200).Error
	})
	if err != nil {
		config.LogError(logger, "models", "CreateInspectionRecords", "inserting records", map[string]interface{}{"table": table, "count": len(records)}, err)
		return err
	}
	return nil
}

// UpdateInspectionField sets one column on one row. Field names outside
// the allow-list are rejected before touching the database.
func UpdateInspectionField(ctx context.Context, db *gorm.DB, stage ReportStage, id int, field string, value interface{}) error {
	logger := config.GetLogger()

	table, err := stage.TableName()
	if err != nil {
		return err
	}
	if !inspectionUpdatableFields[field] {
		return fmt.Errorf("field %q is not updatable", field)
	}

	result := db.WithContext(ctx).Table(table).Where("id = ?", id).Update(field, value)
	if result.Error != nil {
		config.LogError(logger, "models", "UpdateInspectionField", "updating record", map[string]interface{}{"table": table, "id": id, "field": field}, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func DeleteInspectionRecord(ctx context.Context, db *gorm.DB, stage ReportStage, id int) error {
	logger := config.GetLogger()

	table, err := stage.TableName()
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).Table(table).Where("id = ?", id).Delete(&InspectionRecord{})
	if result.Error != nil {
		config.LogError(logger, "models", "DeleteInspectionRecord", "deleting record", map[string]interface{}{"table": table, "id": id}, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

const listInspectionRecordsSql = `
SELECT id, report_date, shift, operator, customer, assembly, rev, job_number,
       qty_inspected, qty_rejected, additional_info
FROM {{.Table}}
WHERE 1 = 1
{{if .StartDate}} AND report_date >= @startDate{{end}}
{{if .EndDate}} AND report_date <= @endDate{{end}}
{{if .Operator}} AND operator = @operator{{end}}
{{if .Customer}} AND customer = @customer{{end}}
{{if .Assembly}} AND assembly = @assembly{{end}}
{{if .JobNumber}} AND job_number = @jobNumber{{end}}
{{if .Shift}} AND shift = @shift{{end}}
ORDER BY report_date DESC, id DESC
`

// ListInspectionRecords returns rows matching the filter, newest first.
func ListInspectionRecords(ctx context.Context, db *gorm.DB, stage ReportStage, filter InspectionFilter) ([]InspectionRecord, error) {
	logger := config.GetLogger()

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}

	sql, err := utils.ExecTemplate(listInspectionRecordsSql, map[string]interface{}{
		"Table":     table,
		"StartDate": filter.StartDate,
		"EndDate":   filter.EndDate,
		"Operator":  filter.Operator,
		"Customer":  filter.Customer,
		"Assembly":  filter.Assembly,
		"JobNumber": filter.JobNumber,
		"Shift":     filter.Shift,
	})
	if err != nil {
		return nil, err
	}

	var records []InspectionRecord
	err = db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"startDate": filter.StartDate,
		"endDate":   filter.EndDate,
		"operator":  filter.Operator,
		"customer":  filter.Customer,
		"assembly":  filter.Assembly,
		"jobNumber": filter.JobNumber,
		"shift":     filter.Shift,
	}).Scan(&records).Error
	if err != nil {
		config.LogError(logger, "models", "ListInspectionRecords", "listing records", map[string]interface{}{"table": table}, err)
		return nil, err
	}
	return records, nil
}

// inspectionOptionColumns are the columns exposed as filter dropdowns.
var inspectionOptionColumns = map[string]bool{
	"operator":   true,
	"customer":   true,
	"assembly":   true,
	"job_number": true,
	"shift":      true,
}

// ListInspectionOptions returns the distinct non-empty values of one
// filterable column, for populating filter dropdowns.
func ListInspectionOptions(ctx context.Context, db *gorm.DB, stage ReportStage, column string) ([]string, error) {
	logger := config.GetLogger()

	table, err := stage.TableName()
	if err != nil {
		return nil, err
	}
	if !inspectionOptionColumns[column] {
		return nil, fmt.Errorf("column %q is not filterable", column)
	}

	var values []string
	sql := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s <> '' ORDER BY %s", column, table, column, column)
	err = db.WithContext(ctx).Raw(sql).Scan(&values).Error
	if err != nil {
		config.LogError(logger, "models", "ListInspectionOptions", "listing options", map[string]interface{}{"table": table, "column": column}, err)
		return nil, err
	}
	return values, nil
}

// LatestReportDate returns the most recent report_date in the table, or
// the zero time when the table is empty.
func LatestReportDate(ctx context.Context, db *gorm.DB, stage ReportStage) (time.Time, error) {
	logger := config.GetLogger()

	table, err := stage.TableName()
	if err != nil {
		return time.Time{}, err
	}

	var maxDate string
	sql := fmt.Sprintf("SELECT COALESCE(MAX(report_date), '') FROM %s", table)
	err = db.WithContext(ctx).Raw(sql).Scan(&maxDate).Error
	if err != nil {
		config.LogError(logger, "models", "LatestReportDate", "fetching max date", map[string]interface{}{"table": table}, err)
		return time.Time{}, err
	}
	if maxDate == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", maxDate)
}
