package models

import (
	"context"

	"gorm.io/gorm"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/utils"
)

// VerifiedMarking is a part-marking that inspection has confirmed
// against its datasheet.
type VerifiedMarking struct {
	Id           int    `gorm:"primaryKey;autoIncrement" json:"id"`
	PartNumber   string `gorm:"size:128;index" json:"part_number"`
	Marking      string `gorm:"size:255" json:"marking"`
	Manufacturer string `gorm:"size:128" json:"manufacturer"`
	Description  string `gorm:"type:text" json:"description"`
	VerifiedBy   string `gorm:"size:128" json:"verified_by"`
	VerifiedDate string `gorm:"size:32" json:"verified_date"`
}

// Stencil tracks a solder-paste stencil and where it lives.
type Stencil struct {
	Id       int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Assembly string `gorm:"size:128;index" json:"assembly"`
	Rev      string `gorm:"size:64" json:"rev"`
	Location string `gorm:"size:128" json:"location"`
	Notes    string `gorm:"type:text" json:"notes"`
}

func CreateVerifiedMarking(ctx context.Context, db *gorm.DB, marking *VerifiedMarking) error {
	logger := config.GetLogger()

	err := db.WithContext(ctx).Create(marking).Error
	if err != nil {
		config.LogError(logger, "models", "CreateVerifiedMarking", "inserting marking", map[string]interface{}{"partNumber": marking.PartNumber}, err)
		return err
	}
	return nil
}

// SearchVerifiedMarkings matches the query against part number and
// marking. An empty query returns everything.
func SearchVerifiedMarkings(ctx context.Context, db *gorm.DB, query string) ([]VerifiedMarking, error) {
	logger := config.GetLogger()

	var markings []VerifiedMarking
	tx := db.WithContext(ctx)
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("part_number LIKE ? OR marking LIKE ?", like, like)
	}
	err := tx.Order("part_number").Find(&markings).Error
	if err != nil {
		config.LogError(logger, "models", "SearchVerifiedMarkings", "searching markings", map[string]interface{}{"query": query}, err)
		return nil, err
	}
	return markings, nil
}

func DeleteVerifiedMarking(ctx context.Context, db *gorm.DB, id int) error {
	logger := config.GetLogger()

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&VerifiedMarking{})
	if result.Error != nil {
		config.LogError(logger, "models", "DeleteVerifiedMarking", "deleting marking", map[string]interface{}{"id": id}, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func CreateStencil(ctx context.Context, db *gorm.DB, stencil *Stencil) error {
	logger := config.GetLogger()

	err := db.WithContext(ctx).Create(stencil).Error
	if err != nil {
		config.LogError(logger, "models", "CreateStencil", "inserting stencil", map[string]interface{}{"assembly": stencil.Assembly}, err)
		return err
	}
	return nil
}

func SearchStencils(ctx context.Context, db *gorm.DB, query string) ([]Stencil, error) {
	logger := config.GetLogger()

	var stencils []Stencil
	tx := db.WithContext(ctx)
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("assembly LIKE ?", like)
	}
	err := tx.Order("assembly").Find(&stencils).Error
	if err != nil {
		config.LogError(logger, "models", "SearchStencils", "searching stencils", map[string]interface{}{"query": query}, err)
		return nil, err
	}
	return stencils, nil
}

func DeleteStencil(ctx context.Context, db *gorm.DB, id int) error {
	logger := config.GetLogger()

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&Stencil{})
	if result.Error != nil {
		config.LogError(logger, "models", "DeleteStencil", "deleting stencil", map[string]interface{}{"id": id}, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
