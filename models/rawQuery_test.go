package models_test

import (
	"testing"

	"github.com/smtworks/qcreport_backend/models"
)

var inspectionTables = map[string]bool{
	"aoi_reports": true,
	"fi_reports":  true,
}

func TestValidateRawQueryAllowsSelectOnListedTables(t *testing.T) {
	queries := []string{
		"SELECT operator, SUM(qty_rejected) FROM aoi_reports GROUP BY operator",
		"select * from fi_reports where report_date >= ?",
		"SELECT a.operator FROM aoi_reports a JOIN fi_reports f ON a.job_number = f.job_number",
		"SELECT * FROM `aoi_reports`;",
	}
	for _, q := range queries {
		if err := models.ValidateRawQuery(q, inspectionTables); err != nil {
			t.Errorf("ValidateRawQuery(%q): %v", q, err)
		}
	}
}

func TestValidateRawQueryRejectsMultipleStatements(t *testing.T) {
	q := "SELECT * FROM aoi_reports; DROP TABLE aoi_reports"
	if err := models.ValidateRawQuery(q, inspectionTables); err == nil {
		t.Fatal("expected multi-statement query to be rejected")
	}
}

func TestValidateRawQueryRejectsNonSelect(t *testing.T) {
	queries := []string{
		"DELETE FROM aoi_reports",
		"UPDATE aoi_reports SET qty_rejected = 0",
		"INSERT INTO aoi_reports (operator) VALUES ('x')",
	}
	for _, q := range queries {
		if err := models.ValidateRawQuery(q, inspectionTables); err == nil {
			t.Errorf("expected %q to be rejected", q)
		}
	}
}

func TestValidateRawQueryRejectsUnlistedTables(t *testing.T) {
	queries := []string{
		"SELECT * FROM users",
		"SELECT * FROM aoi_reports JOIN users ON 1 = 1",
	}
	for _, q := range queries {
		if err := models.ValidateRawQuery(q, inspectionTables); err == nil {
			t.Errorf("expected %q to be rejected", q)
		}
	}
}

func TestValidateRawQueryRejectsEmptyAndTableless(t *testing.T) {
	for _, q := range []string{"", "   ;  ", "SELECT 1"} {
		if err := models.ValidateRawQuery(q, inspectionTables); err == nil {
			t.Errorf("expected %q to be rejected", q)
		}
	}
}
