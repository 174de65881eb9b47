package ingest

import (
	"errors"
	"testing"
)

func TestExtractFixedRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Operator", "Customer", "Assembly", "Rev", "Job #", "Qty Inspected", "Qty Rejected", "Additional Info"},
		{"Alice", "Cust1", "Asm1", "R1", "J100", "10", "1", "note1"},
		{},
		{"Bob", "Cust2", "Asm2", "R2", "J200", "20", "2", "note2"},
	}

	records, err := ExtractFixed(rows, ExtractOptions{ReportDate: "2025-08-07", Shift: "1st"})
	if err != nil {
		t.Fatalf("ExtractFixed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Operator != "Alice" || records[0].Rev != "R1" || records[0].QtyRejected != 1 {
		t.Errorf("first record mismatch: %+v", records[0])
	}
	if records[1].Operator != "Bob" || records[1].Rev != "R2" || records[1].QtyRejected != 2 {
		t.Errorf("second record mismatch: %+v", records[1])
	}
	for _, r := range records {
		if r.ReportDate != "2025-08-07" || r.Shift != "1st" {
			t.Errorf("form date/shift not applied: %+v", r)
		}
	}
}

func TestExtractFixedCoercesQuantities(t *testing.T) {
	rows := [][]string{
		{"Alice", "Cust1", "Asm1", "R1", "J100", "", "garbage", ""},
		{"Bob", "Cust1", "Asm1", "R1", "J100", "-5", "12.0", ""},
	}

	records, err := ExtractFixed(rows, ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractFixed: %v", err)
	}
	if records[0].QtyInspected != 0 || records[0].QtyRejected != 0 {
		t.Errorf("blank/garbage cells should coerce to 0: %+v", records[0])
	}
	if records[1].QtyInspected != 0 {
		t.Errorf("negative quantity should clamp to 0, got %d", records[1].QtyInspected)
	}
	if records[1].QtyRejected != 12 {
		t.Errorf("excel-style decimal should coerce to 12, got %d", records[1].QtyRejected)
	}
}

func TestExtractBlocksHeaderWithParenthesizedDate(t *testing.T) {
	rows := [][]string{
		{"AOI Something Shift (8/7/25)"},
		{"Operator", "Customer", "Assembly", "Qty Inspected", "Qty Rejected", "Additional Info"},
		{"Alice", "Cust1", "Asm1", "10", "1", "ok"},
		{"Bob", "Cust1", "Asm2", "20", "2", ""},
	}

	records, err := ExtractBlocks(rows, ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Shift != "Something" {
			t.Errorf("expected shift %q, got %q", "Something", r.Shift)
		}
		if r.ReportDate != "2025-08-07" {
			t.Errorf("expected date 2025-08-07, got %q", r.ReportDate)
		}
	}
}

func TestExtractBlocksHeaderWithBareDashDate(t *testing.T) {
	rows := [][]string{
		{"AOI Solder Shift 8-7-2025"},
		{"Operator"},
		{"Alice", "Cust1", "Asm1", "10", "1", ""},
	}

	records, err := ExtractBlocks(rows, ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if records[0].Shift != "Solder" || records[0].ReportDate != "2025-08-07" {
		t.Errorf("header parse mismatch: %+v", records[0])
	}
}

func TestExtractBlocksDateFallsBackToFilename(t *testing.T) {
	rows := [][]string{
		{"AOI Solder Shift"},
		{"Operator"},
		{"Alice", "Cust1", "Asm1", "10", "1", ""},
	}

	records, err := ExtractBlocks(rows, ExtractOptions{Filename: "report_8-7-2025.xlsx"})
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if records[0].ReportDate != "2025-08-07" {
		t.Errorf("expected filename date 2025-08-07, got %q", records[0].ReportDate)
	}
}

func TestExtractBlocksManualDateOverridesHeader(t *testing.T) {
	rows := [][]string{
		{"AOI 1st Shift (8/7/25)"},
		{"Operator"},
		{"Alice", "Cust1", "Asm1", "10", "1", ""},
		{"AOI 2nd Shift 8-8-2025"},
		{"Operator"},
		{"Bob", "Cust2", "Asm2", "20", "2", ""},
	}

	records, err := ExtractBlocks(rows, ExtractOptions{Filename: "report_8-9-2025.xlsx", ReportDate: "2025-01-02"})
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	for _, r := range records {
		if r.ReportDate != "2025-01-02" {
			t.Errorf("form date should beat header and filename dates: got %q", r.ReportDate)
		}
	}
}

func TestExtractBlocksDateFallsBackToManual(t *testing.T) {
	rows := [][]string{
		{"AOI Solder Shift"},
		{"Operator"},
		{"Alice", "Cust1", "Asm1", "10", "1", ""},
	}

	records, err := ExtractBlocks(rows, ExtractOptions{Filename: "report.xlsx", ReportDate: "2025-01-02"})
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if records[0].ReportDate != "2025-01-02" {
		t.Errorf("expected manual date 2025-01-02, got %q", records[0].ReportDate)
	}
}

func TestExtractBlocksMultipleShiftBlocks(t *testing.T) {
	rows := [][]string{
		{"junk row"},
		{"AOI 1st Shift (8/7/25)"},
		{"Operator", "Customer", "Assembly"},
		{"Alice", "Cust1", "Asm1", "10", "1", ""},
		{""},
		{"AOI 2nd Shift (8/7/25)"},
		{"Operator", "Customer", "Assembly"},
		{"Bob", "Cust2", "Asm2", "20", "2", ""},
		{"Carol", "Cust2", "Asm2", "30", "0", ""},
	}

	records, err := ExtractBlocks(rows, ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records across 2 blocks, got %d", len(records))
	}
	if records[0].Shift != "1st" {
		t.Errorf("expected first block shift 1st, got %q", records[0].Shift)
	}
	if records[1].Shift != "2nd" || records[2].Shift != "2nd" {
		t.Errorf("expected second block shift 2nd, got %q / %q", records[1].Shift, records[2].Shift)
	}
}

func TestExtractBlocksNewHeaderEndsBlock(t *testing.T) {
	// no blank row between blocks: the next AOI header itself ends the
	// data section
	rows := [][]string{
		{"AOI 1st Shift (8/7/25)"},
		{"Operator"},
		{"Alice", "Cust1", "Asm1", "10", "1", ""},
		{"AOI 2nd Shift (8/8/25)"},
		{"Operator"},
		{"Bob", "Cust2", "Asm2", "20", "2", ""},
	}

	records, err := ExtractBlocks(rows, ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractBlocks: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ReportDate != "2025-08-07" || records[1].ReportDate != "2025-08-08" {
		t.Errorf("block dates mismatch: %q / %q", records[0].ReportDate, records[1].ReportDate)
	}
}

func TestExtractBlocksNoRecords(t *testing.T) {
	rows := [][]string{
		{"nothing"},
		{"to see"},
	}
	_, err := ExtractBlocks(rows, ExtractOptions{})
	if !errors.Is(err, ErrNoRecordsFound) {
		t.Fatalf("expected ErrNoRecordsFound, got %v", err)
	}
}

func TestExtractPicksLayoutByHeaderProbe(t *testing.T) {
	legacy := [][]string{
		{"AOI 1st Shift (8/7/25)"},
		{"Operator"},
		{"Alice", "Cust1", "Asm1", "10", "1", ""},
	}
	records, err := Extract(legacy, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract legacy: %v", err)
	}
	if records[0].Shift != "1st" {
		t.Errorf("legacy layout not detected: %+v", records[0])
	}

	fixed := [][]string{
		{"Alice", "Cust1", "Asm1", "R1", "J100", "10", "1", "note"},
	}
	records, err = Extract(fixed, ExtractOptions{ReportDate: "2025-08-07", Shift: "1st"})
	if err != nil {
		t.Fatalf("Extract fixed: %v", err)
	}
	if records[0].JobNumber != "J100" {
		t.Errorf("fixed layout not detected: %+v", records[0])
	}
}
