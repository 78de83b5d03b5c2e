package services

import (
	"errors"
	"log"

	"github.com/edubank/academy/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// instructorSharePercent is the instructor's cut of a completed purchase.
// The split floors, so the instructor never receives more than 60% and the
// platform account absorbs the remainder.
const instructorSharePercent = 60

// EscrowService drives a purchase through its lifecycle:
//
//	pending_admin -> pending_instructor | declined | refunded
//	pending_instructor -> completed | declined
//
// completed, declined and refunded are terminal. Every transition is applied
// with an UPDATE guarded on the expected current status; a duplicate request
// loses the race, gets ErrInvalidStateTransition and moves no money.
type EscrowService struct {
	db              *gorm.DB
	ledger          *LedgerService
	platformAccount string
}

func NewEscrowService(db *gorm.DB, ledger *LedgerService, platformAccount string) *EscrowService {
	if platformAccount == "" {
		platformAccount = "0000000001"
	}
	return &EscrowService{
		db:              db,
		ledger:          ledger,
		platformAccount: platformAccount,
	}
}

// InitiatePurchase debits the learner and creates the escrow record as one
// database transaction: either both happen or neither does. The course status
// is re-checked here, not trusted from the listing, and instructor, title and
// price are snapshotted onto the transaction.
func (s *EscrowService) InitiatePurchase(learnerID, courseID uuid.UUID, secret string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if course.Status != models.CourseStatusApproved {
			return ErrCourseNotApproved
		}

		if _, err := s.ledger.DebitTx(tx, learnerID, course.Price, secret); err != nil {
			return err
		}

		txn = models.Transaction{
			LearnerID:    learnerID,
			InstructorID: course.InstructorID,
			CourseID:     course.ID,
			CourseTitle:  course.Title,
			Amount:       course.Price,
			Status:       models.TxStatusPendingAdmin,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// AdminResolve clears or declines a pending_admin transaction. Approval moves
// no money: the debit stays in escrow until the instructor acknowledges.
// Decline refunds the learner in full.
func (s *EscrowService) AdminResolve(txID uuid.UUID, approve bool) (*models.Transaction, error) {
	next := models.TxStatusPendingInstructor
	if !approve {
		next = models.TxStatusDeclined
	}

	var txn models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&txn, "id = ?", txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}

		if err := s.transition(tx, txID, models.TxStatusPendingAdmin, next); err != nil {
			return err
		}

		if !approve {
			if _, err := s.ledger.CreditTx(tx, txn.LearnerID, txn.Amount); err != nil {
				return err
			}
		}
		txn.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// InstructorResolve settles or declines a transaction the admin already
// cleared. Accepting credits the instructor their share and routes the
// remainder to the platform account so the escrowed debit is fully accounted
// for. Declining refunds the learner in full.
func (s *EscrowService) InstructorResolve(txID, instructorID uuid.UUID, accept bool) (*models.Transaction, error) {
	next := models.TxStatusCompleted
	if !accept {
		next = models.TxStatusDeclined
	}

	var txn models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&txn, "id = ?", txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if txn.InstructorID != instructorID {
			return ErrForbidden
		}

		if err := s.transition(tx, txID, models.TxStatusPendingInstructor, next); err != nil {
			return err
		}

		if accept {
			instructorShare := txn.Amount * instructorSharePercent / 100
			platformShare := txn.Amount - instructorShare

			if _, err := s.ledger.CreditTx(tx, txn.InstructorID, instructorShare); err != nil {
				return err
			}
			if platformShare > 0 {
				if err := s.ledger.CreditAccountNumberTx(tx, s.platformAccount, platformShare); err != nil {
					if !errors.Is(err, ErrNoAccount) {
						return err
					}
					log.Printf("⚠️ Platform account %s missing, %d units unallocated for transaction %s", s.platformAccount, platformShare, txn.ID)
				}
			}
		} else {
			if _, err := s.ledger.CreditTx(tx, txn.LearnerID, txn.Amount); err != nil {
				return err
			}
		}
		txn.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// LearnerRefund lets the learner pull a purchase back while it still awaits
// admin review. Once the admin has cleared it, only the decline paths remain.
func (s *EscrowService) LearnerRefund(txID, learnerID uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&txn, "id = ?", txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if txn.LearnerID != learnerID {
			return ErrForbidden
		}

		if err := s.transition(tx, txID, models.TxStatusPendingAdmin, models.TxStatusRefunded); err != nil {
			return err
		}

		if _, err := s.ledger.CreditTx(tx, txn.LearnerID, txn.Amount); err != nil {
			return err
		}
		txn.Status = models.TxStatusRefunded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// transition applies a single guarded status update. A lost race or duplicate
// submit affects zero rows, which is logged for audit and rolls the enclosing
// transaction back untouched.
func (s *EscrowService) transition(tx *gorm.DB, txID uuid.UUID, from, to string) error {
	res := tx.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("⚠️ Rejected transition %s -> %s for transaction %s: status no longer %s", from, to, txID, from)
		return ErrInvalidStateTransition
	}
	return nil
}

func (s *EscrowService) ListForLearner(learnerID uuid.UUID) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.
		Preload("Instructor").
		Where("learner_id = ? AND archived_by_learner = ?", learnerID, false).
		Order("created_at desc").
		Find(&txns).Error
	return txns, err
}

func (s *EscrowService) ListForInstructor(instructorID uuid.UUID) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.
		Preload("Learner").
		Where("instructor_id = ? AND archived_by_instructor = ?", instructorID, false).
		Order("created_at desc").
		Find(&txns).Error
	return txns, err
}

func (s *EscrowService) ListAll(status string, offset, limit int) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{})
	countQuery := s.db.Model(&models.Transaction{})
	if status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.Transaction
	err := query.
		Preload("Learner").
		Preload("Instructor").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&txns).Error
	return txns, total, err
}

// ArchiveHistory hides an actor's settled transactions from their list. It is
// a soft flag, never a delete: the ledger of record stays intact, and rows
// still pending or refunded are never touched.
func (s *EscrowService) ArchiveHistory(actorID uuid.UUID, role string) (int64, error) {
	column := "archived_by_learner"
	owner := "learner_id"
	if role == "instructor" {
		column = "archived_by_instructor"
		owner = "instructor_id"
	}

	res := s.db.Model(&models.Transaction{}).
		Where(owner+" = ? AND status IN ?", actorID, []string{models.TxStatusCompleted, models.TxStatusDeclined}).
		Update(column, true)
	return res.RowsAffected, res.Error
}
