package ingest

import (
	"errors"
	"testing"
)

func TestParseMoatFilename(t *testing.T) {
	cases := []struct {
		filename string
		wantDate string
		wantLine string
	}{
		{"MOAT 2025-8-7 L1.xlsx", "2025-08-07", "L1"},
		{"2025-08-07_LOffline_moat.xls", "2025-08-07", "LOffline"},
		{"moat_2025-12-31_loffline.xlsx", "2025-12-31", "LOffline"},
		{"2025-1-2 l0.xlsx", "2025-01-02", "L0"},
	}
	for _, c := range cases {
		date, line, err := ParseMoatFilename(c.filename)
		if err != nil {
			t.Errorf("ParseMoatFilename(%q): %v", c.filename, err)
			continue
		}
		if date != c.wantDate || line != c.wantLine {
			t.Errorf("ParseMoatFilename(%q) = (%q, %q), want (%q, %q)",
				c.filename, date, line, c.wantDate, c.wantLine)
		}
	}
}

func TestParseMoatFilenameRejectsUnrecognized(t *testing.T) {
	for _, filename := range []string{"moat.xlsx", "2025-08-07.xlsx", "L1 report.xlsx"} {
		if _, _, err := ParseMoatFilename(filename); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("ParseMoatFilename(%q): expected ErrMalformedInput, got %v", filename, err)
		}
	}
}

func moatTestRows(data ...[]string) [][]string {
	rows := make([][]string, moatHeaderRowIndex+1)
	rows[moatHeaderRowIndex] = []string{"", "Model", "Boards", "Parts/Board", "Parts", "NG", "NG PPM", "FC", "FC PPM"}
	return append(rows, data...)
}

func TestExtractMoat(t *testing.T) {
	rows := moatTestRows(
		[]string{"", "MODEL-A", "100", "50", "5,000", "3", "600.0", "12", "2400.0"},
		[]string{"", "", "ignored row without a model"},
		[]string{"", "MODEL-B-TH", "20", "10", "200", "0", "0", "1", "5000"},
		[]string{"", "Total", "120", "", "5,200", "3", "", "13", ""},
	)

	records, err := ExtractMoat(rows, "MOAT 2025-8-7 L1.xlsx")
	if err != nil {
		t.Fatalf("ExtractMoat: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (Total row skipped), got %d", len(records))
	}

	first := records[0]
	if first.ModelName != "MODEL-A" || first.TotalBoards != 100 || first.TotalParts != 5000 {
		t.Errorf("first record mismatch: %+v", first)
	}
	if first.NgPpm != 600.0 || first.FalsecallPpm != 2400.0 {
		t.Errorf("ppm mismatch: %+v", first)
	}
	if first.ReportDate != "2025-08-07" || first.Line != "L1" {
		t.Errorf("filename metadata not attached: %+v", first)
	}
	if records[1].ModelName != "MODEL-B-TH" {
		t.Errorf("second record mismatch: %+v", records[1])
	}
}

func TestExtractMoatEmptySheet(t *testing.T) {
	if _, err := ExtractMoat(moatTestRows(), "MOAT 2025-8-7 L1.xlsx"); !errors.Is(err, ErrNoRecordsFound) {
		t.Fatalf("expected ErrNoRecordsFound, got %v", err)
	}
}

func TestExtractMoatBadFilename(t *testing.T) {
	rows := moatTestRows([]string{"", "MODEL-A", "1", "1", "1", "0", "0", "0", "0"})
	if _, err := ExtractMoat(rows, "whatever.xlsx"); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}
