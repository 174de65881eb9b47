package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

func searchMarkingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeaturePartMarkings) == nil {
			return
		}
		markings, err := models.SearchVerifiedMarkings(c.Request.Context(), config.GetDB(), c.Query("q"))
		respond(c, markings, err)
	}
}

func createMarkingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeaturePartMarkings) == nil {
			return
		}

		var marking models.VerifiedMarking
		if err := c.ShouldBindJSON(&marking); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if marking.PartNumber == "" || marking.Marking == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "part_number and marking are required"})
			return
		}
		marking.Id = 0

		if err := models.CreateVerifiedMarking(c.Request.Context(), config.GetDB(), &marking); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": marking})
	}
}

func deleteMarkingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeaturePartMarkings) == nil {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid marking id"})
			return
		}

		err = models.DeleteVerifiedMarking(c.Request.Context(), config.GetDB(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "marking not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "marking deleted"})
	}
}

func searchStencilsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeaturePartMarkings) == nil {
			return
		}
		stencils, err := models.SearchStencils(c.Request.Context(), config.GetDB(), c.Query("q"))
		respond(c, stencils, err)
	}
}

func createStencilHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeaturePartMarkings) == nil {
			return
		}

		var stencil models.Stencil
		if err := c.ShouldBindJSON(&stencil); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if stencil.Assembly == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assembly is required"})
			return
		}
		stencil.Id = 0

		if err := models.CreateStencil(c.Request.Context(), config.GetDB(), &stencil); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stencil})
	}
}

func deleteStencilHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeaturePartMarkings) == nil {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stencil id"})
			return
		}

		err = models.DeleteStencil(c.Request.Context(), config.GetDB(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stencil not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "stencil deleted"})
	}
}
