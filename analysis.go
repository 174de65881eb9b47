package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/ingest"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/models/reports"
	"github.com/smtworks/qcreport_backend/utils"
)

func compareHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		data, err := reports.GetCompareReport(c.Request.Context(), filterFromQuery(c))
		respond(c, data, err)
	}
}

func compareJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		jobNumber := c.Param("job")
		if jobNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "job number is required"})
			return
		}
		data, err := reports.GetSingleJobCompare(c.Request.Context(), jobNumber)
		respond(c, data, err)
	}
}

func compareJobsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		data, err := reports.GetJobCompareReport(c.Request.Context(), c.Query("job_number"))
		respond(c, data, err)
	}
}

func operatorGradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		data, err := reports.GetOperatorGradeReport(c.Request.Context(), filterFromQuery(c))
		respond(c, data, err)
	}
}

func operatorGradesExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		grades, err := reports.GetOperatorGradeReport(c.Request.Context(), filterFromQuery(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var buf bytes.Buffer
		if err := reports.ExportOperatorGrades(grades, &buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="operator_grades.xlsx"`)
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			buf.Bytes())
	}
}

// uploadMoatHandler ingests one MOAT export; the batch carries the
// filename so it can be deleted as a unit.
func uploadMoatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		if requireFeature(c, models.FeatureAnalysis) == nil {
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

		var content bytes.Buffer
		rows, err := ingest.ReadRows(io.TeeReader(file, &content))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		records, err := ingest.ExtractMoat(rows, filename)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		err = withUploadLock(ctx, "moat", func() error {
			if err := models.CreateMoatRecords(ctx, config.GetDB(), records); err != nil {
				return err
			}
			// keep the raw file for later download; rows are already
			// committed, a failed save is logged but not fatal
			if _, err := saveUpload(&content, filename); err != nil {
				config.LogError(logger, "analysis.go", "uploadMoatHandler", "saving file", map[string]interface{}{"filename": filename}, err)
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store records"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{"records_created": len(records)}})
	}
}

func listMoatFilesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		filenames, err := models.ListMoatFilenames(c.Request.Context(), config.GetDB())
		respond(c, filenames, err)
	}
}

func deleteMoatFileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		filename := sanitizeFilename(c.Param("filename"))
		if filename == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
			return
		}

		err := models.DeleteMoatByFilename(c.Request.Context(), config.GetDB(), filename)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no records for that filename"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := removeUpload(filename); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "records removed but file deletion failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "batch deleted"})
	}
}

func moatFilterFromQuery(c *gin.Context) reports.MoatFilter {
	minBoards, _ := strconv.Atoi(c.Query("min_boards"))
	return reports.MoatFilter{
		Metric:    c.Query("metric"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Models:    c.QueryArray("models"),
		Line:      c.Query("line"),
		ModelType: c.Query("model_type"),
		MinBoards: minBoards,
	}
}

func moatChartDataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		data, err := reports.GetMoatChartReport(c.Request.Context(), moatFilterFromQuery(c))
		respond(c, data, err)
	}
}

func moatStddevDataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		data, err := reports.GetMoatStddevReport(c.Request.Context(), moatFilterFromQuery(c))
		respond(c, data, err)
	}
}

func moatReportDataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}
		frequency, err := models.ParseFrequency(c.Query("frequency"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		data, err := reports.GetMoatPpmReport(c.Request.Context(), frequency, moatFilterFromQuery(c))
		respond(c, data, err)
	}
}

var moatSqlTables = map[string]bool{
	"moat_records": true,
}

func moatSqlHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureAnalysis) == nil {
			return
		}

		var req models.RawQueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}
		rows, err := models.RunRawQuery(c.Request.Context(), req, moatSqlTables)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeatureDashboard) == nil {
			return
		}
		data, err := reports.GetJobBoardReport(c.Request.Context())
		respond(c, data, err)
	}
}
