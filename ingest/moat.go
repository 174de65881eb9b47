package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

// moatFilenamePattern pulls the report date and SMT line out of a MOAT
// export filename, e.g. "MOAT 2025-8-7 L1.xlsx" or
// "2025-08-07_LOffline_moat.xls".
var moatFilenamePattern = regexp.MustCompile(`(?i)(\d{4}-\d{1,2}-\d{1,2}).*(L(?:Offline|[0-2]))`)

// moat exports put the column headers on row 6; data starts on row 7
// in columns B through I.
const moatHeaderRowIndex = 5

// ParseMoatFilename extracts the normalized report date and line label
// from a MOAT filename. The line token is case-folded to the canonical
// "L0".."L2"/"LOffline" spellings.
func ParseMoatFilename(filename string) (reportDate string, line string, err error) {
	m := moatFilenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", "", ErrMalformedInput
	}
	reportDate = NormalizeDate(m[1])
	if reportDate == "" {
		return "", "", ErrMalformedInput
	}
	line = strings.ToUpper(m[2])
	if line == "LOFFLINE" {
		line = "LOffline"
	}
	return reportDate, line, nil
}

// ppm coerces a ppm cell, which the machine writes as a decimal and
// sometimes with a thousands separator, to a float.
func ppm(raw string) float64 {
	if raw == "" {
		return 0
	}
	d, err := utils.ParseDecimal(raw)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ExtractMoat reads a MOAT export: data rows live below the header row
// in columns B..I, one row per model, terminated by the machine's
// "Total" summary row which is skipped.
func ExtractMoat(rows [][]string, filename string) ([]models.MoatRecord, error) {
	reportDate, line, err := ParseMoatFilename(filename)
	if err != nil {
		return nil, err
	}
	if len(rows) <= moatHeaderRowIndex+1 {
		return nil, ErrNoRecordsFound
	}

	intCell := func(row []string, i int) int {
		n, err := strconv.Atoi(strings.ReplaceAll(cell(row, i), ",", ""))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}

	var records []models.MoatRecord
	for _, row := range rows[moatHeaderRowIndex+1:] {
		modelName := cell(row, 1)
		if modelName == "" {
			continue
		}
		if strings.EqualFold(modelName, "Total") {
			continue
		}
		records = append(records, models.MoatRecord{
			ModelName:          modelName,
			TotalBoards:        intCell(row, 2),
			TotalPartsPerBoard: intCell(row, 3),
			TotalParts:         intCell(row, 4),
			NgParts:            intCell(row, 5),
			NgPpm:              ppm(cell(row, 6)),
			FalsecallParts:     intCell(row, 7),
			FalsecallPpm:       ppm(cell(row, 8)),
			Filename:           filename,
			ReportDate:         reportDate,
			Line:               line,
		})
	}

	if len(records) == 0 {
		return nil, ErrNoRecordsFound
	}
	return records, nil
}
