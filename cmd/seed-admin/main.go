// Bootstrap tool: create or repair the initial admin account.
// cmd/seed-admin/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"task-review-api/config"
	"task-review-api/models"
	"task-review-api/utils"
)

func main() {
	email := flag.String("email", "", "admin email address")
	name := flag.String("name", "Administrator", "admin display name")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-admin -email admin@example.org [-name \"Administrator\"]")
		os.Exit(2)
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_PASSWORD must be set")
		os.Exit(2)
	}
	if ok, msg := utils.ValidatePassword(password); !ok {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(2)
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found")
	}

	config.InitDB()

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}

	var existing models.User
	if err := config.DB.Where("email = ?", *email).First(&existing).Error; err == nil {
		// Account exists: promote to admin and reset the password.
		updates := map[string]interface{}{
			"role":          models.RoleAdmin,
			"is_approved":   true,
			"password_hash": hash,
		}
		if err := config.DB.Model(&existing).Updates(updates).Error; err != nil {
			log.WithError(err).Fatal("failed to update admin account")
		}
		log.WithField("email", *email).Info("existing account promoted to admin")
		return
	}

	admin := models.User{
		Email:        *email,
		PasswordHash: hash,
		Name:         *name,
		Role:         models.RoleAdmin,
		IsApproved:   true,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		log.WithError(err).Fatal("failed to create admin account")
	}
	log.WithField("email", *email).Info("admin account created")
}
