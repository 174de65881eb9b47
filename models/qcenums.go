package models

import "errors"

// ReportStage selects which inspection table a record lives in. The two
// stages are structurally identical and correlated only by
// (job_number, assembly).
type ReportStage string

const (
	ReportStageAOI ReportStage = "AOI"
	ReportStageFI  ReportStage = "FI"
)

func (s ReportStage) TableName() (string, error) {
	switch s {
	case ReportStageAOI:
		return "aoi_reports", nil
	case ReportStageFI:
		return "fi_reports", nil
	}
	return "", errors.New("invalid report stage")
}

func ParseReportStage(s string) (ReportStage, error) {
	switch s {
	case "aoi", "AOI":
		return ReportStageAOI, nil
	case "fi", "FI", "final-inspect":
		return ReportStageFI, nil
	}
	return "", errors.New("invalid report stage")
}

// Frequency is the period granularity of yield / ppm time series.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// PeriodExpr returns the MySQL expression that buckets report_date into
// the frequency's period key. Weekly keys are zero-origin Monday-start
// week-of-year numbers (WEEK mode 5: week 00 holds the days before the
// year's first Monday), not ISO calendar weeks, to stay byte-compatible
// with historically exported keys.
func (f Frequency) PeriodExpr() (string, error) {
	switch f {
	case FrequencyDaily:
		return "DATE_FORMAT(report_date, '%Y-%m-%d')", nil
	case FrequencyWeekly:
		return "CONCAT(YEAR(report_date), '-', LPAD(WEEK(report_date, 5), 2, '0'))", nil
	case FrequencyMonthly:
		return "DATE_FORMAT(report_date, '%Y-%m')", nil
	case FrequencyYearly:
		return "DATE_FORMAT(report_date, '%Y')", nil
	}
	return "", errors.New("invalid frequency")
}

// DefaultRangeDays is the window length used when the caller supplies no
// explicit date range.
func (f Frequency) DefaultRangeDays() (int, error) {
	switch f {
	case FrequencyDaily:
		return 1, nil
	case FrequencyWeekly:
		return 7, nil
	case FrequencyMonthly:
		return 30, nil
	case FrequencyYearly:
		return 365, nil
	}
	return 0, errors.New("invalid frequency")
}

func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "daily", "":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	case "yearly":
		return FrequencyYearly, nil
	}
	return "", errors.New("invalid frequency")
}

// CoverageGrade is the letter bucket of an operator's defect coverage.
type CoverageGrade string

const (
	CoverageGradeA CoverageGrade = "A"
	CoverageGradeB CoverageGrade = "B"
	CoverageGradeC CoverageGrade = "C"
	CoverageGradeD CoverageGrade = "D"
)
