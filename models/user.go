package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/utils"
)

// User carries one boolean per application feature instead of a role
// table. Admin and c_suite accounts pass every feature check.
type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Username     string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        *string   `gorm:"size:100;unique" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"password"`
	IsActive     *bool     `gorm:"not null" json:"is_active"`
	IsAdmin      bool      `gorm:"not null;default:0" json:"is_admin"`
	CSuite       bool      `gorm:"not null;default:0" json:"c_suite"`
	PartMarkings bool      `gorm:"not null;default:0" json:"part_markings"`
	Aoi          bool      `gorm:"not null;default:0" json:"aoi"`
	Analysis     bool      `gorm:"not null;default:0" json:"analysis"`
	Dashboard    bool      `gorm:"not null;default:0" json:"dashboard"`
	Reports      bool      `gorm:"not null;default:0" json:"reports"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username     string `json:"username" binding:"required"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password" binding:"required"`
	IsActive     *bool  `json:"is_active" binding:"required"`
	IsAdmin      bool   `json:"is_admin"`
	CSuite       bool   `json:"c_suite"`
	PartMarkings bool   `json:"part_markings"`
	Aoi          bool   `json:"aoi"`
	Analysis     bool   `json:"analysis"`
	Dashboard    bool   `json:"dashboard"`
	Reports      bool   `json:"reports"`
}

type LoginInfo struct {
	Token        string `json:"token"`
	Name         string `json:"name"`
	IsAdmin      bool   `json:"is_admin"`
	CSuite       bool   `json:"c_suite"`
	PartMarkings bool   `json:"part_markings"`
	Aoi          bool   `json:"aoi"`
	Analysis     bool   `json:"analysis"`
	Dashboard    bool   `json:"dashboard"`
	Reports      bool   `json:"reports"`
}

// Feature names the permission columns checkable through HasFeature.
type Feature string

const (
	FeaturePartMarkings Feature = "part_markings"
	FeatureAoi          Feature = "aoi"
	FeatureAnalysis     Feature = "analysis"
	FeatureDashboard    Feature = "dashboard"
	FeatureReports      Feature = "reports"
	FeatureAdmin        Feature = "admin"
)

// HasFeature reports whether the user may use the feature. Admins and
// c_suite accounts are allowed everything; the admin feature itself
// requires is_admin.
func (user User) HasFeature(feature Feature) bool {
	if feature == FeatureAdmin {
		return user.IsAdmin
	}
	if user.IsAdmin || user.CSuite {
		return true
	}
	switch feature {
	case FeaturePartMarkings:
		return user.PartMarkings
	case FeatureAoi:
		return user.Aoi
	case FeatureAnalysis:
		return user.Analysis
	case FeatureDashboard:
		return user.Dashboard
	case FeatureReports:
		return user.Reports
	}
	return false
}

func (result *User) PrepareGive() {
	result.Password = ""
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	err := config.RemoveRedisKey("Token:" + fmt.Sprint(token))
	if err != nil {
		return false, nil
	}
	// remove current token from tokens list
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var err error
	var result LoginInfo

	user := User{}

	err = db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return &result, errors.New("invalid username or password")
	}

	// check login credentials
	err = utils.ComparePassword(user.Password, password)

	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return &result, errors.New("invalid username or password")
	}

	isActive := *user.IsActive
	if !isActive {
		return &result, errors.New("user is disabled")
	}

	// generate token & response
	token := uuid.New()
	result.Token = token.String()
	result.Name = user.Username
	result.IsAdmin = user.IsAdmin
	result.CSuite = user.CSuite
	result.PartMarkings = user.HasFeature(FeaturePartMarkings)
	result.Aoi = user.HasFeature(FeatureAoi)
	result.Analysis = user.HasFeature(FeatureAnalysis)
	result.Dashboard = user.HasFeature(FeatureDashboard)
	result.Reports = user.HasFeature(FeatureReports)

	// store token in redis
	token_lifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil {
		return &result, err
	}

	// add new token to the user's tokens set
	if err := config.AddRedisSet("Tokens:"+user.Username, token.String()); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token.String(), user.Username, time.Duration(token_lifespan)*time.Hour); err != nil {
		return &result, err
	}

	return &result, nil
}

func GetAllUsers(ctx context.Context) ([]*User, error) {

	db := config.GetDB()
	var results []*User

	if err := db.WithContext(ctx).Find(&results).Error; err != nil {
		return results, errors.New("no user")
	}

	for i, u := range results {
		u.Password = ""
		results[i] = u
	}

	return results, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {

	db := config.GetDB()
	var result User

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	var count int64

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return &User{}, errors.New("invalid email address")
	}

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Or("email = ?", input.Email).Count(&count).Error
	if err != nil {
		return &User{}, err
	}
	if count > 0 {
		return &User{}, errors.New("duplicate username or email")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return &User{}, err
	}
	input.Email = strings.ToLower(input.Email)

	user := User{
		Username:     html.EscapeString(strings.TrimSpace(input.Username)),
		Name:         input.Name,
		Email:        utils.NilIfEmpty(input.Email),
		Password:     string(hashedPassword),
		IsActive:     input.IsActive,
		IsAdmin:      input.IsAdmin,
		CSuite:       input.CSuite,
		PartMarkings: input.PartMarkings,
		Aoi:          input.Aoi,
		Analysis:     input.Analysis,
		Dashboard:    input.Dashboard,
		Reports:      input.Reports,
	}

	err = db.WithContext(ctx).Create(&user).Error
	if err != nil {
		return &User{}, err
	}
	user.Password = ""
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {

	db := config.GetDB()
	var result User

	err := db.WithContext(ctx).First(&result, id).Error

	if err != nil {
		return &result, utils.ErrorRecordNotFound
	}

	result.PrepareGive()

	return &result, nil
}

// UpdateUser rewrites the user's profile and permission flags. The
// password is only replaced when a non-empty one is supplied.
func (input *User) UpdateUser(id int) (*User, error) {

	db := config.GetDB()
	var count int64

	err := db.Model(&User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return &User{}, err
	}
	if count <= 0 {
		return nil, utils.ErrorRecordNotFound
	}

	if err = db.Model(&User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Not("id = ?", id).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return &User{}, errors.New("duplicate email or username")
	}

	updates := map[string]interface{}{
		"name":          input.Name,
		"email":         input.Email,
		"username":      input.Username,
		"is_active":     input.IsActive,
		"is_admin":      input.IsAdmin,
		"c_suite":       input.CSuite,
		"part_markings": input.PartMarkings,
		"aoi":           input.Aoi,
		"analysis":      input.Analysis,
		"dashboard":     input.Dashboard,
		"reports":       input.Reports,
	}
	if input.Password != "" {
		hashedPassword, err := utils.HashPassword(input.Password)
		if err != nil {
			return &User{}, err
		}
		updates["password"] = string(hashedPassword)
	}

	err = db.Model(&User{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return &User{}, err
	}
	input.ID = id
	input.Password = ""
	return input, nil
}

func (input *User) DeleteUser(id int) (*User, error) {

	db := config.GetDB()

	err := db.Model(&User{}).Where("id = ?", id).First(&input).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	err = db.Delete(&input).Error
	if err != nil {
		return &User{}, err
	}
	return input, nil
}

func (user *User) DestroyAllSessions(ctx context.Context) error {
	allTokens, err := config.GetRedisSetMembers("Tokens:" + user.Username)
	if err != nil {
		return err
	}
	for _, token := range allTokens {
		if err := config.RemoveRedisKey("Token:" + token); err != nil {
			return err
		}
	}
	if err := config.RemoveRedisKey("Tokens:" + user.Username); err != nil {
		return err
	}

	return nil
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return nil, err
	}
	// check oldPassword
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, errors.New("old password is wrong")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	newPassword = string(hashedPassword)

	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&user).UpdateColumn("password", newPassword).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// destroying all session tokens
	if err := user.DestroyAllSessions(ctx); err != nil {
		tx.Rollback()
		return nil, err
	}

	return &user, tx.Commit().Error
}
