package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smtworks/qcreport_backend/models"
)

const sapLookupTimeout = 10 * time.Second

// sapMaterialHandler proxies material-master lookups through whichever
// SAP client the USE_SAP flag selects.
func sapMaterialHandler(client models.SAPClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireFeature(c, models.FeaturePartMarkings) == nil {
			return
		}

		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "material id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), sapLookupTimeout)
		defer cancel()

		material, err := client.GetMaterialData(ctx, id)
		if errors.Is(err, models.ErrMaterialNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "material not found"})
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "sap lookup timed out"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": material})
	}
}
