package services

import (
	"errors"

	"github.com/edubank/academy/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OpeningBonus is the simulation seed money granted on account creation.
const OpeningBonus int64 = 1000

// LedgerService owns every balance mutation. Debits are gated by the account
// secret; credits are system-initiated (payouts, refunds, incentives) and are
// never secret-gated. Both paths use guarded UPDATEs so concurrent callers
// against the same account serialize without lost updates.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

func (s *LedgerService) OpenAccount(userID uuid.UUID, accountNumber, secret string) (*models.Account, error) {
	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var account models.Account
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).
			Where("user_id = ? OR account_number = ?", userID, accountNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateAccount
		}

		account = models.Account{
			UserID:        userID,
			AccountNumber: accountNumber,
			SecretHash:    string(secretHash),
			Balance:       OpeningBonus,
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *LedgerService) GetBalance(userID uuid.UUID) (int64, error) {
	var account models.Account
	if err := s.db.First(&account, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoAccount
		}
		return 0, err
	}
	return account.Balance, nil
}

func (s *LedgerService) Debit(userID uuid.UUID, amount int64, secret string) (int64, error) {
	var newBalance int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.DebitTx(tx, userID, amount, secret)
		return err
	})
	return newBalance, err
}

// DebitTx runs inside a caller-supplied transaction so the escrow engine can
// make debit + transaction-record creation a single ACID unit. The balance
// check is part of the UPDATE's WHERE clause: two concurrent debits can never
// both drain the same funds, and a balance can never go negative.
func (s *LedgerService) DebitTx(tx *gorm.DB, userID uuid.UUID, amount int64, secret string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var account models.Account
	if err := tx.First(&account, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoAccount
		}
		return 0, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.SecretHash), []byte(secret)) != nil {
		return 0, ErrInvalidSecret
	}

	res := tx.Model(&models.Account{}).
		Where("id = ? AND balance >= ?", account.ID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficientFunds
	}

	if err := tx.First(&account, "id = ?", account.ID).Error; err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (s *LedgerService) Credit(userID uuid.UUID, amount int64) (int64, error) {
	var newBalance int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.CreditTx(tx, userID, amount)
		return err
	})
	return newBalance, err
}

func (s *LedgerService) CreditTx(tx *gorm.DB, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	res := tx.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNoAccount
	}

	var account models.Account
	if err := tx.First(&account, "user_id = ?", userID).Error; err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// CreditAccountNumberTx credits by account number instead of owner. Used for
// the platform account, which is addressed by a configured number.
func (s *LedgerService) CreditAccountNumberTx(tx *gorm.DB, accountNumber string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	res := tx.Model(&models.Account{}).
		Where("account_number = ?", accountNumber).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoAccount
	}
	return nil
}
