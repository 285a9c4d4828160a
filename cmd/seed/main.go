package main

import (
	"log"
	"os"

	"github.com/campusqa/peerboard/internal/config"
	"github.com/campusqa/peerboard/internal/database"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/utils"
	"github.com/google/uuid"
)

// Seeds the privileged accounts. Admin and staff cannot self-register
// through the API, so they are created here from environment variables.
func main() {
	cfg := config.Load()

	database.Connect(cfg)
	database.Migrate()

	seedUser("ADMIN", models.RoleAdmin)
	seedUser("STAFF", models.RoleStaff)
}

func seedUser(prefix string, role models.Role) {
	username := os.Getenv(prefix + "_USERNAME")
	email := os.Getenv(prefix + "_EMAIL")
	password := os.Getenv(prefix + "_PASSWORD")

	if username == "" || email == "" || password == "" {
		log.Printf("Skipping %s seed: %s_USERNAME, %s_EMAIL and %s_PASSWORD must all be set", role, prefix, prefix, prefix)
		return
	}

	var existing models.User
	err := database.DB.Where("username = ?", username).First(&existing).Error
	if err == nil {
		log.Printf("User %s already exists, skipping", username)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password for %s: %v", username, err)
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    os.Getenv(prefix + "_FIRST_NAME"),
		LastName:     os.Getenv(prefix + "_LAST_NAME"),
		Role:         role,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create %s user: %v", role, err)
	}

	log.Printf("Created %s user %s", role, username)
}
