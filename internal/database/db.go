package database

import (
	"log"

	"github.com/campusqa/peerboard/internal/config"
	"github.com/campusqa/peerboard/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})

	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}

	log.Println("Database connect successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Answer{},
		&models.Review{},
		&models.StaffMessage{},
		&models.StudentMessage{},
		&models.ReviewerMessage{},
	)

	if err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Database migration completed")
}
