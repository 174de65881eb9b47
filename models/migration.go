package models

import (
	"log"

	"github.com/smtworks/qcreport_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&MoatRecord{},
		&VerifiedMarking{}, &Stencil{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}

	// AOI and FI share the InspectionRecord shape but live in separate
	// tables, so migrate each table explicitly.
	for _, stage := range []ReportStage{ReportStageAOI, ReportStageFI} {
		table, err := stage.TableName()
		if err != nil {
			log.Fatal(err)
		}
		if err := db.Table(table).AutoMigrate(&InspectionRecord{}); err != nil {
			log.Fatal(err)
		}
	}
}
