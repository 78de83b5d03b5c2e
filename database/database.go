package database

import (
	"fmt"
	"log"

	config "github.com/edubank/academy/configs"
	"github.com/edubank/academy/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Course{},
		&models.Class{},
		&models.QuizQuestion{},
		&models.Transaction{},
		&models.Receipt{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedAdmin makes sure the admin user and the platform ledger account exist.
// The platform account receives the non-instructor share of every completed
// purchase so escrowed money always lands somewhere visible.
func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var admin models.User
	err := DB.Where("email = ?", adminEmail).First(&admin).Error
	if err == nil {
		log.Println("Admin user already exists.")
	} else {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("🔥 Failed to hash admin password: %v", err)
			return
		}

		admin = models.User{
			FullName: config.Config("ADMIN_FULL_NAME"),
			Email:    adminEmail,
			Password: string(hashedPassword),
			Role:     "admin",
		}
		if err := DB.Create(&admin).Error; err != nil {
			log.Fatalf("🔥 Failed to seed admin user: %v", err)
			return
		}
		log.Println("✅ Admin user seeded successfully")
	}

	platformNumber := config.Config("PLATFORM_ACCOUNT_NUMBER")
	if platformNumber == "" {
		platformNumber = "0000000001"
	}

	var count int64
	DB.Model(&models.Account{}).Where("account_number = ?", platformNumber).Count(&count)
	if count > 0 {
		return
	}

	secretHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash platform account secret: %v", err)
		return
	}

	platformAccount := models.Account{
		UserID:        admin.ID,
		AccountNumber: platformNumber,
		SecretHash:    string(secretHash),
		Balance:       0,
	}
	if err := DB.Create(&platformAccount).Error; err != nil {
		log.Fatalf("🔥 Failed to seed platform account: %v", err)
		return
	}
	log.Println("✅ Platform ledger account seeded successfully")
}
