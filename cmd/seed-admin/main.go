// seed-admin creates or updates the two bootstrap accounts: the ADMIN
// superuser and the shared floor account USER.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/smtworks/qcreport_backend/config"
	"github.com/smtworks/qcreport_backend/models"
	"github.com/smtworks/qcreport_backend/utils"
)

type seedAccount struct {
	Username string
	Name     string
	Password string
	IsAdmin  bool
	Features bool
}

var seedAccounts = []seedAccount{
	{Username: "ADMIN", Name: "Master Admin", Password: "MasterAdmin", IsAdmin: true},
	{Username: "USER", Name: "Floor User", Password: "fuji", Features: true},
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	for _, account := range seedAccounts {
		if err := seed(ctx, db, account); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed %q: %v\n", account.Username, err)
			os.Exit(1)
		}
	}
}

func seed(ctx context.Context, db *gorm.DB, account seedAccount) error {
	hashed, err := utils.HashPassword(account.Password)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"name":          account.Name,
		"password":      string(hashed),
		"is_active":     utils.NewTrue(),
		"is_admin":      account.IsAdmin,
		"c_suite":       false,
		"part_markings": account.Features,
		"aoi":           account.Features,
		"analysis":      account.Features,
		"dashboard":     account.Features,
		"reports":       account.Features,
	}

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", account.Username).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		u := models.User{
			Username:     account.Username,
			Name:         account.Name,
			Password:     string(hashed),
			IsActive:     utils.NewTrue(),
			IsAdmin:      account.IsAdmin,
			PartMarkings: account.Features,
			Aoi:          account.Features,
			Analysis:     account.Features,
			Dashboard:    account.Features,
			Reports:      account.Features,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			return err
		}
		fmt.Printf("Created user: username=%q\n", account.Username)
		return nil
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", account.Username).Updates(fields).Error; err != nil {
		return err
	}
	fmt.Printf("Updated user: username=%q\n", account.Username)
	return nil
}
