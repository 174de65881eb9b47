package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

// reservedAdminUsername is the seeded superuser. It never shows up in
// user listings and cannot be edited or deleted through the API.
const reservedAdminUsername = "ADMIN"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}

		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": info})
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "logged out"})
	}
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := getSessionUser(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "old_password and new_password (min 8 chars) are required"})
			return
		}

		ctx := utils.SetUserIdInContext(c.Request.Context(), user.ID)
		if _, err := models.ChangePassword(ctx, req.OldPassword, req.NewPassword); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "password changed; all sessions revoked"})
	}
}

// requireUserAdmin gates the user-management endpoints. C-suite
// accounts may manage users as well as admins.
func requireUserAdmin(c *gin.Context) *models.User {
	user, err := getSessionUser(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	if !user.IsAdmin && !user.CSuite {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return nil
	}
	return user
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireUserAdmin(c) == nil {
			return
		}

		users, err := models.GetAllUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		visible := make([]*models.User, 0, len(users))
		for _, u := range users {
			if u.Username == reservedAdminUsername {
				continue
			}
			visible = append(visible, u)
		}
		c.JSON(http.StatusOK, gin.H{"data": visible})
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireUserAdmin(c) == nil {
			return
		}

		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Username == reservedAdminUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username is reserved"})
			return
		}

		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user})
	}
}

func updateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requireUserAdmin(c) == nil {
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		existing, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if existing.Username == reservedAdminUsername {
			c.JSON(http.StatusForbidden, gin.H{"error": "this account cannot be edited"})
			return
		}

		var input models.User
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Username == reservedAdminUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username is reserved"})
			return
		}

		user, err := input.UpdateUser(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user})
	}
}

func deleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := requireUserAdmin(c)
		if admin == nil {
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		existing, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if existing.Username == reservedAdminUsername || existing.ID == admin.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "this account cannot be deleted"})
			return
		}

		var user models.User
		if _, err := user.DeleteUser(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": "user deleted"})
	}
}
