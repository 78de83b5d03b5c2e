package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/edubank/academy/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Course{},
		&models.Class{},
		&models.QuizQuestion{},
		&models.Transaction{},
		&models.Receipt{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{
		FullName: name,
		Email:    fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// createAccount inserts an account directly with a known balance, bypassing
// the opening bonus, so scenarios can start from exact figures.
func createAccount(t *testing.T, db *gorm.DB, userID uuid.UUID, number, secret string, balance int64) models.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	account := models.Account{
		UserID:        userID,
		AccountNumber: number,
		SecretHash:    string(hash),
		Balance:       balance,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func createCourse(t *testing.T, db *gorm.DB, instructorID uuid.UUID, title string, price int64, status string) models.Course {
	t.Helper()
	course := models.Course{
		Title:        title,
		Description:  "test course",
		Price:        price,
		InstructorID: instructorID,
		Status:       status,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func accountBalance(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var account models.Account
	if err := db.First(&account, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return account.Balance
}
