package models

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/utils"
)

// MoatRecord is one machine-output row of a PPM/false-call summary
// export. ReportDate and Line come out of the source filename, which is
// kept so a whole upload can be deleted at once.
type MoatRecord struct {
	Id                 int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ModelName          string    `gorm:"size:128;index" json:"model_name"`
	TotalBoards        int       `json:"total_boards"`
	TotalPartsPerBoard int       `json:"total_parts_per_board"`
	TotalParts         int       `json:"total_parts"`
	NgParts            int       `json:"ng_parts"`
	NgPpm              float64   `json:"ng_ppm"`
	FalsecallParts     int       `json:"falsecall_parts"`
	FalsecallPpm       float64   `json:"falsecall_ppm"`
	UploadTime         time.Time `gorm:"autoCreateTime" json:"upload_time"`
	Filename           string    `gorm:"size:255;index" json:"filename"`
	ReportDate         string    `gorm:"size:32;index" json:"report_date"`
	Line               string    `gorm:"size:32;index" json:"line"`
}

// CreateMoatRecords inserts one upload's rows transactionally, tagged
// with the source filename.
func CreateMoatRecords(ctx context.Context, db *gorm.DB, records []MoatRecord) error {
	logger := config.GetLogger()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 200).Error
	})
	if err != nil {
		config.LogError(logger, "models", "CreateMoatRecords", "inserting records", map[string]interface{}{"count": len(records)}, err)
		return err
	}
	return nil
}

// ListMoatFilenames returns the distinct uploaded filenames, newest
// report date first.
func ListMoatFilenames(ctx context.Context, db *gorm.DB) ([]string, error) {
	logger := config.GetLogger()

	var filenames []string
	err := db.WithContext(ctx).Raw(
		"SELECT filename FROM moat_records GROUP BY filename ORDER BY MAX(report_date) DESC",
	).Scan(&filenames).Error
	if err != nil {
		config.LogError(logger, "models", "ListMoatFilenames", "listing filenames", nil, err)
		return nil, err
	}
	return filenames, nil
}

// DeleteMoatByFilename removes every row that came from one upload.
func DeleteMoatByFilename(ctx context.Context, db *gorm.DB, filename string) error {
	logger := config.GetLogger()

	result := db.WithContext(ctx).Where("filename = ?", filename).Delete(&MoatRecord{})
	if result.Error != nil {
		config.LogError(logger, "models", "DeleteMoatByFilename", "deleting records", map[string]interface{}{"filename": filename}, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
