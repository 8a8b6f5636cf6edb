package main

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userhub/internal/config"
	"userhub/internal/db"
	"userhub/internal/model"
	"userhub/internal/repository"
)

// seedUser is a demo account created for local development. The password for
// every seeded account is "password123".
type seedUser struct {
	Name    string
	Mobile  string
	Email   string
	DOB     string
	Gender  string
	Address string
}

var seedUsers = []seedUser{
	{Name: "Asha Rao", Mobile: "9876543210", Email: "asha@example.com", DOB: "1992-04-11", Gender: "female", Address: "12 Lake View Road"},
	{Name: "Vikram Shah", Mobile: "9123456780", Email: "vikram@example.com", DOB: "1988-09-02", Gender: "male", Address: "44 Hill Street"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	created, skipped := 0, 0
	for _, su := range seedUsers {
		if _, err := userRepo.FindByEmail(ctx, su.Email); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check existing user %s: %v", su.Email, err)
		}

		dob, err := time.Parse("2006-01-02", su.DOB)
		if err != nil {
			log.Fatalf("Invalid seed dob for %s: %v", su.Email, err)
		}

		// Seeded users have no outstanding OTP: they behave like
		// accounts whose signup code was already verified.
		user := &model.User{
			Name:         su.Name,
			Mobile:       su.Mobile,
			Email:        su.Email,
			DateOfBirth:  dob,
			Gender:       su.Gender,
			Address:      su.Address,
			PasswordHash: string(hashed),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to seed user %s: %v", su.Email, err)
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}
