package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/ingest"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/models/reports"
	"github.com/smtworks/qcreport_backend/utils"
)

// stageFromParam resolves the :stage route segment. The AOI and FI
// screens share every handler below; only the target table differs.
func stageFromParam(c *gin.Context) (models.ReportStage, bool) {
	stage, err := models.ParseReportStage(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report stage"})
		return "", false
	}
	return stage, true
}

func filterFromQuery(c *gin.Context) models.InspectionFilter {
	return models.InspectionFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Operator:  c.Query("operator"),
		Customer:  c.Query("customer"),
		Assembly:  c.Query("assembly"),
		JobNumber: c.Query("job_number"),
		Shift:     c.Query("shift"),
	}
}

// uploadReportHandler ingests an inspection spreadsheet: parse the
// whole file in memory, then insert the batch in one transaction under
// the per-stage upload lock.
func uploadReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		if requireFeature(c, models.FeatureAoi) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		file, filename, err := openUpload(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer file.Close()

		rows, err := ingest.ReadRows(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		records, err := ingest.Extract(rows, ingest.ExtractOptions{
			Filename:   filename,
			ReportDate: c.PostForm("report_date"),
			Shift:      c.PostForm("shift"),
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		err = withUploadLock(ctx, string(stage), func() error {
			return models.CreateInspectionRecords(ctx, config.GetDB(), stage, records)
		})
		if err != nil {
			config.LogError(logger, "aoi.go", "uploadReportHandler", "inserting upload", map[string]interface{}{"stage": stage, "filename": filename}, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store records"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{"records_created": len(records)}})
	}
}

// createRecordHandler is the manual single-row entry form.
func createRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAoi) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}

		var record models.InspectionRecord
		if err := c.ShouldBindJSON(&record); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if record.QtyInspected < 0 || record.QtyRejected < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantities must be non-negative"})
			return
		}
		record.Id = 0

		ctx := c.Request.Context()
		if err := models.CreateInspectionRecords(ctx, config.GetDB(), stage, []models.InspectionRecord{record}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store record"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "record created"})
	}
}

func listRecordsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAoi) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}

		records, err := models.ListInspectionRecords(c.Request.Context(), config.GetDB(), stage, filterFromQuery(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": records})
	}
}

type updateFieldRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

func updateRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAoi) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
			return
		}

		var req updateFieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "field is required"})
			return
		}

		err = models.UpdateInspectionField(c.Request.Context(), config.GetDB(), stage, id, req.Field, req.Value)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "record updated"})
	}
}

func deleteRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAoi) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
			return
		}

		err = models.DeleteInspectionRecord(c.Request.Context(), config.GetDB(), stage, id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "record deleted"})
	}
}

func listOptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAoi) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}

		values, err := models.ListInspectionOptions(c.Request.Context(), config.GetDB(), stage, c.Param("column"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": values})
	}
}

// summaryHandler serves the four group-by aggregates behind one route,
// selected by the group query param.
func summaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureReports) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		filter := filterFromQuery(c)

		switch c.Query("group") {
		case "operator", "":
			data, err := reports.GetOperatorSummaryReport(ctx, stage, filter)
			respond(c, data, err)
		case "assembly":
			data, err := reports.GetAssemblySummaryReport(ctx, stage, filter)
			respond(c, data, err)
		case "shift":
			data, err := reports.GetShiftSummaryReport(ctx, stage, filter)
			respond(c, data, err)
		case "customer":
			data, err := reports.GetCustomerSummaryReport(ctx, stage, filter)
			respond(c, data, err)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown group"})
		}
	}
}

func yieldSeriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureReports) == nil {
			return
		}
		stage, ok := stageFromParam(c)
		if !ok {
			return
		}
		frequency, err := models.ParseFrequency(c.Query("frequency"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		data, err := reports.GetYieldSeriesReport(c.Request.Context(), stage, frequency, filterFromQuery(c))
		respond(c, data, err)
	}
}

// inspectionSqlTables limits the ad-hoc query endpoint to the two
// inspection tables.
var inspectionSqlTables = map[string]bool{
	"aoi_reports": true,
	"fi_reports":  true,
}

func inspectionSqlHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureReports) == nil {
			return
		}

		var req models.RawQueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}
		rows, err := models.RunRawQuery(c.Request.Context(), req, inspectionSqlTables)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
