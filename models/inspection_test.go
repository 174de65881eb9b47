package models_test

import (
	"context"
	"testing"

	"github.com/smtworks/qcreport_backend/models"
)

func TestUpdateInspectionFieldRejectsUnknownField(t *testing.T) {
	// the allow-list check runs before any database access, so a nil db
	// is fine here
	for _, field := range []string{"id", "created_at", "password", "qty_inspected; DROP TABLE users"} {
		err := models.UpdateInspectionField(context.Background(), nil, models.ReportStageAOI, 1, field, "x")
		if err == nil {
			t.Errorf("expected field %q to be rejected", field)
		}
	}
}

func TestUpdateInspectionFieldRejectsUnknownStage(t *testing.T) {
	err := models.UpdateInspectionField(context.Background(), nil, models.ReportStage("nope"), 1, "operator", "x")
	if err == nil {
		t.Fatal("expected invalid stage to be rejected")
	}
}

func TestParseReportStage(t *testing.T) {
	cases := []struct {
		in   string
		want models.ReportStage
	}{
		{"aoi", models.ReportStageAOI},
		{"AOI", models.ReportStageAOI},
		{"fi", models.ReportStageFI},
		{"FI", models.ReportStageFI},
		{"final-inspect", models.ReportStageFI},
	}
	for _, c := range cases {
		got, err := models.ParseReportStage(c.in)
		if err != nil {
			t.Errorf("ParseReportStage(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseReportStage(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, err := models.ParseReportStage("smt"); err == nil {
		t.Error("expected unknown stage to be rejected")
	}
}

func TestStageTableNames(t *testing.T) {
	aoiTable, err := models.ReportStageAOI.TableName()
	if err != nil || aoiTable != "aoi_reports" {
		t.Errorf("AOI table = %q, %v", aoiTable, err)
	}
	fiTable, err := models.ReportStageFI.TableName()
	if err != nil || fiTable != "fi_reports" {
		t.Errorf("FI table = %q, %v", fiTable, err)
	}
}
