package reports_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/models/reports"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGradeForCoverage(t *testing.T) {
	cases := []struct {
		coverage float64
		want     models.CoverageGrade
	}{
		{1.0, models.CoverageGradeA},
		{0.8, models.CoverageGradeA},
		{0.799, models.CoverageGradeB},
		{0.6, models.CoverageGradeB},
		{0.599, models.CoverageGradeC},
		{0.4, models.CoverageGradeC},
		{0.399, models.CoverageGradeD},
		{0, models.CoverageGradeD},
	}
	for _, c := range cases {
		if got := reports.GradeForCoverage(c.coverage); got != c.want {
			t.Errorf("GradeForCoverage(%v) = %v, want %v", c.coverage, got, c.want)
		}
	}
}

func TestComputeOperatorGradesSingleOperatorPerJob(t *testing.T) {
	aoi := []reports.AoiOperatorGroup{
		{Operator: "Jim", JobNumber: "J1", Assembly: "A1", QtyInspected: 100, QtyRejected: 2},
		{Operator: "Jane", JobNumber: "J2", Assembly: "A2", QtyInspected: 50, QtyRejected: 5},
	}
	fi := []reports.FiJobGroup{
		{JobNumber: "J1", Assembly: "A1", QtyRejected: 6},
		{JobNumber: "J2", Assembly: "A2", QtyRejected: 1},
	}

	grades := reports.ComputeOperatorGrades(aoi, fi)
	if len(grades) != 2 {
		t.Fatalf("expected 2 operators, got %d", len(grades))
	}

	// sorted by operator name
	jane, jim := grades[0], grades[1]

	if jane.Operator != "Jane" {
		t.Fatalf("expected Jane first, got %q", jane.Operator)
	}
	if jane.Coverage == nil || !almostEqual(*jane.Coverage, 5.0/6.0) {
		t.Errorf("Jane coverage = %v, want 5/6", jane.Coverage)
	}
	if jane.Grade == nil || *jane.Grade != models.CoverageGradeA {
		t.Errorf("Jane grade = %v, want A", jane.Grade)
	}

	if jim.Operator != "Jim" {
		t.Fatalf("expected Jim second, got %q", jim.Operator)
	}
	if jim.Coverage == nil || !almostEqual(*jim.Coverage, 0.25) {
		t.Errorf("Jim coverage = %v, want 0.25", jim.Coverage)
	}
	if jim.Grade == nil || *jim.Grade != models.CoverageGradeD {
		t.Errorf("Jim grade = %v, want D", jim.Grade)
	}
}

func TestComputeOperatorGradesApportionsByInspectedShare(t *testing.T) {
	// Alice and Bob split the same job 80:20 by inspected quantity, so
	// the 30 FI rejects split 24:6.
	aoi := []reports.AoiOperatorGroup{
		{Operator: "Alice", JobNumber: "J1", Assembly: "A1", QtyInspected: 800, QtyRejected: 8},
		{Operator: "Bob", JobNumber: "J1", Assembly: "A1", QtyInspected: 200, QtyRejected: 1},
	}
	fi := []reports.FiJobGroup{
		{JobNumber: "J1", Assembly: "A1", QtyRejected: 30},
	}

	grades := reports.ComputeOperatorGrades(aoi, fi)
	if len(grades) != 2 {
		t.Fatalf("expected 2 operators, got %d", len(grades))
	}

	alice, bob := grades[0], grades[1]
	if !almostEqual(alice.AttributedFiRejects, 24) {
		t.Errorf("Alice attributed = %v, want 24", alice.AttributedFiRejects)
	}
	if alice.Coverage == nil || !almostEqual(*alice.Coverage, 8.0/32.0) {
		t.Errorf("Alice coverage = %v, want 0.25", alice.Coverage)
	}
	if alice.Grade == nil || *alice.Grade != models.CoverageGradeD {
		t.Errorf("Alice grade = %v, want D", alice.Grade)
	}

	if !almostEqual(bob.AttributedFiRejects, 6) {
		t.Errorf("Bob attributed = %v, want 6", bob.AttributedFiRejects)
	}
	if bob.Coverage == nil || !almostEqual(*bob.Coverage, 1.0/7.0) {
		t.Errorf("Bob coverage = %v, want 1/7", bob.Coverage)
	}
	if bob.Grade == nil || *bob.Grade != models.CoverageGradeD {
		t.Errorf("Bob grade = %v, want D", bob.Grade)
	}
}

func TestComputeOperatorGradesBlankJobExcluded(t *testing.T) {
	aoi := []reports.AoiOperatorGroup{
		{Operator: "Alice", JobNumber: "", Assembly: "A1", QtyInspected: 100, QtyRejected: 50},
		{Operator: "Alice", JobNumber: "J1", Assembly: "A1", QtyInspected: 10, QtyRejected: 4},
	}
	fi := []reports.FiJobGroup{
		{JobNumber: "", Assembly: "A1", QtyRejected: 99},
		{JobNumber: "J1", Assembly: "A1", QtyRejected: 1},
	}

	grades := reports.ComputeOperatorGrades(aoi, fi)
	if len(grades) != 1 {
		t.Fatalf("expected 1 operator, got %d", len(grades))
	}
	alice := grades[0]
	if alice.AoiRejected != 4 {
		t.Errorf("blank-job AOI rejects leaked in: %d", alice.AoiRejected)
	}
	if !almostEqual(alice.AttributedFiRejects, 1) {
		t.Errorf("blank-job FI rejects leaked in: %v", alice.AttributedFiRejects)
	}
}

func TestComputeOperatorGradesNoSignalIsNull(t *testing.T) {
	aoi := []reports.AoiOperatorGroup{
		{Operator: "Alice", JobNumber: "J1", Assembly: "A1", QtyInspected: 100, QtyRejected: 0},
	}
	grades := reports.ComputeOperatorGrades(aoi, nil)
	if len(grades) != 1 {
		t.Fatalf("expected 1 operator, got %d", len(grades))
	}
	if grades[0].Coverage != nil || grades[0].Grade != nil {
		t.Errorf("operator with no defect signal should have null coverage and grade: %+v", grades[0])
	}
}

func TestComputeOperatorGradesPerfectCoverageWithoutEscapes(t *testing.T) {
	aoi := []reports.AoiOperatorGroup{
		{Operator: "Alice", JobNumber: "J1", Assembly: "A1", QtyInspected: 100, QtyRejected: 3},
	}
	grades := reports.ComputeOperatorGrades(aoi, nil)
	if grades[0].Coverage == nil || !almostEqual(*grades[0].Coverage, 1.0) {
		t.Fatalf("expected coverage 1.0, got %v", grades[0].Coverage)
	}
	if grades[0].Grade == nil || *grades[0].Grade != models.CoverageGradeA {
		t.Errorf("expected grade A, got %v", grades[0].Grade)
	}
}

func TestComputeOperatorGradesAssemblyDisambiguatesJob(t *testing.T) {
	// same job number on two assemblies stays two separate pairs
	aoi := []reports.AoiOperatorGroup{
		{Operator: "Alice", JobNumber: "J1", Assembly: "A1", QtyInspected: 100, QtyRejected: 0},
		{Operator: "Bob", JobNumber: "J1", Assembly: "A2", QtyInspected: 100, QtyRejected: 0},
	}
	fi := []reports.FiJobGroup{
		{JobNumber: "J1", Assembly: "A1", QtyRejected: 10},
	}

	grades := reports.ComputeOperatorGrades(aoi, fi)
	alice, bob := grades[0], grades[1]
	if !almostEqual(alice.AttributedFiRejects, 10) {
		t.Errorf("Alice attributed = %v, want 10", alice.AttributedFiRejects)
	}
	if !almostEqual(bob.AttributedFiRejects, 0) {
		t.Errorf("Bob attributed = %v, want 0", bob.AttributedFiRejects)
	}
}

func TestExportOperatorGrades(t *testing.T) {
	coverage := 0.25
	grade := models.CoverageGradeD
	grades := []reports.OperatorGradeResponse{
		{Operator: "Alice", AoiRejected: 8, AttributedFiRejects: 24, Coverage: &coverage, Grade: &grade},
		{Operator: "Carol", AoiRejected: 0, AttributedFiRejects: 0},
	}

	var buf bytes.Buffer
	if err := reports.ExportOperatorGrades(grades, &buf); err != nil {
		t.Fatalf("ExportOperatorGrades: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("opening exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	wantHeader := []string{"Operator", "AOI Rejects", "Attributed FI Rejects", "Coverage", "Grade"}
	for i, want := range wantHeader {
		if rows[0][i] != want {
			t.Errorf("header column %d = %q, want %q", i, rows[0][i], want)
		}
	}
	if rows[1][0] != "Alice" || rows[1][4] != "D" {
		t.Errorf("graded row mismatch: %v", rows[1])
	}
	if rows[2][3] != "N/A" || rows[2][4] != "N/A" {
		t.Errorf("ungraded row should export N/A cells: %v", rows[2])
	}
}
