package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smtworks/qcreport_backend/models"
)

// requireFeature loads the session user and checks one permission
// flag. On failure it writes the response and returns nil.
func requireFeature(c *gin.Context, feature models.Feature) *models.User {
	user, err := getSessionUser(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	if !user.HasFeature(feature) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return nil
	}
	return user
}
