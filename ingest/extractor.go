package ingest

import (
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

// ExtractOptions carries the caller-supplied context for an upload.
// Filename feeds the date fallback chain; ReportDate and Shift are the
// manually entered values from the upload form.
type ExtractOptions struct {
	Filename   string
	ReportDate string
	Shift      string
}

// ReadRows opens an uploaded workbook and returns the first sheet as a
// row-major string grid. A file excelize cannot open at all maps to
// ErrMalformedInput.
func ReadRows(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrMalformedInput
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMalformedInput
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrMalformedInput
	}
	return rows, nil
}

// cell returns the trimmed cell at index i, or "" past the row's end.
// excelize trims trailing empty cells, so short rows are normal.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// qty coerces a quantity cell to a non-negative integer. Blank and
// non-numeric cells count as zero.
func qty(raw string) int {
	if raw == "" {
		return 0
	}
	d, err := utils.ParseDecimal(raw)
	if err != nil {
		return 0
	}
	n := int(d.IntPart())
	if n < 0 {
		return 0
	}
	return n
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ExtractFixed reads the modern fixed-column layout: eight columns
// mapping to operator, customer, assembly, rev, job_number,
// qty_inspected, qty_rejected, additional_info. The report date and
// shift come from the upload form, not the sheet.
func ExtractFixed(rows [][]string, opts ExtractOptions) ([]models.InspectionRecord, error) {
	var records []models.InspectionRecord

	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		// header row of a freshly exported sheet
		if strings.EqualFold(cell(row, 0), "Operator") {
			continue
		}
		records = append(records, models.InspectionRecord{
			ReportDate:     opts.ReportDate,
			Shift:          opts.Shift,
			Operator:       cell(row, 0),
			Customer:       cell(row, 1),
			Assembly:       cell(row, 2),
			Rev:            cell(row, 3),
			JobNumber:      cell(row, 4),
			QtyInspected:   qty(cell(row, 5)),
			QtyRejected:    qty(cell(row, 6)),
			AdditionalInfo: cell(row, 7),
		})
	}

	if len(records) == 0 {
		return nil, ErrNoRecordsFound
	}
	return records, nil
}

// blockHeaderPattern matches a legacy shift-block header such as
// "AOI Solder Shift (8/7/25)" or "AOI 2nd Shift 8-7-2025". The date
// group is optional. A form-supplied date overrides every block's
// parsed date; without one the header date is used, then the filename
// date.
var blockHeaderPattern = regexp.MustCompile(`(?i)^AOI\s+(.+?)\s+Shift(?:\s*\(?\s*([0-9]{1,4}[/-][0-9]{1,2}[/-][0-9]{1,4})\s*\)?)?\s*$`)

// scanState is the cursor position of the legacy block scanner.
type scanState int

const (
	// looking for the next "AOI <shift> Shift" header line
	stateScanHeader scanState = iota
	// header found, skipping forward to the "Operator" column row
	stateSeekColumns
	// consuming data rows until a blank first cell or a new header
	stateData
)

// ExtractBlocks reads the legacy multi-shift layout: a linear scan down
// the sheet for shift-block headers, each followed by an "Operator"
// column row and its data rows. Columns map positionally to operator,
// customer, assembly, qty_inspected, qty_rejected, additional_info.
// Malformed rows inside a block are zero-filled, never fatal.
func ExtractBlocks(rows [][]string, opts ExtractOptions) ([]models.InspectionRecord, error) {
	var records []models.InspectionRecord

	state := stateScanHeader
	var blockShift, blockDate string

	startBlock := func(row []string) bool {
		m := blockHeaderPattern.FindStringSubmatch(cell(row, 0))
		if m == nil {
			return false
		}
		blockShift = m[1]
		blockDate = ResolveDate(
			Literal(opts.ReportDate),
			func() string { return NormalizeDate(m[2]) },
			func() string { return DateFromFilename(opts.Filename) },
		)
		state = stateSeekColumns
		return true
	}

	for _, row := range rows {
		switch state {
		case stateScanHeader:
			startBlock(row)

		case stateSeekColumns:
			if strings.EqualFold(cell(row, 0), "Operator") {
				state = stateData
			} else {
				// a second header before any data restarts the block
				startBlock(row)
			}

		case stateData:
			if cell(row, 0) == "" {
				state = stateScanHeader
				continue
			}
			if startBlock(row) {
				continue
			}
			records = append(records, models.InspectionRecord{
				ReportDate:     blockDate,
				Shift:          blockShift,
				Operator:       cell(row, 0),
				Customer:       cell(row, 1),
				Assembly:       cell(row, 2),
				QtyInspected:   qty(cell(row, 3)),
				QtyRejected:    qty(cell(row, 4)),
				AdditionalInfo: cell(row, 5),
			})
		}
	}

	if len(records) == 0 {
		return nil, ErrNoRecordsFound
	}
	return records, nil
}

// Extract picks the layout by probing for a legacy block header
// anywhere in the sheet, falling back to the fixed-column mapping.
func Extract(rows [][]string, opts ExtractOptions) ([]models.InspectionRecord, error) {
	for _, row := range rows {
		if blockHeaderPattern.MatchString(cell(row, 0)) {
			return ExtractBlocks(rows, opts)
		}
	}
	return ExtractFixed(rows, opts)
}
