package utils

import (
	"math/rand"
	"time"

	"github.com/edubank/academy/models"
	"gorm.io/gorm"
)

const accountNumberLength = 10
const digitBytes = "0123456789"

// GenerateUniqueAccountNumber suggests an unused account number for callers
// who don't bring their own.
func GenerateUniqueAccountNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, accountNumberLength)
		for i := range b {
			b[i] = digitBytes[seededRand.Intn(len(digitBytes))]
		}
		number := string(b)

		var account models.Account
		err := tx.Where("account_number = ?", number).First(&account).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return number, nil
			}
			return "", err
		}
	}
}
