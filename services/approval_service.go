package services

import (
	"crypto/subtle"
	"errors"

	"github.com/edubank/academy/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalIncentive is the one-time payment an instructor receives when a
// course of theirs clears review.
const ApprovalIncentive int64 = 500

// ApprovalService gates course visibility. A course is purchasable only while
// approved; edits push it back to pending for re-review. Approval requires
// the configured operator passphrase, a capability check shared by all
// operators in the simulation.
type ApprovalService struct {
	db             *gorm.DB
	ledger         *LedgerService
	operatorSecret string
}

func NewApprovalService(db *gorm.DB, ledger *LedgerService, operatorSecret string) *ApprovalService {
	return &ApprovalService{db: db, ledger: ledger, operatorSecret: operatorSecret}
}

// Approve moves a pending course to approved and pays the instructor the
// incentive in the same database transaction. Approving a course that is not
// pending fails with ErrInvalidStateTransition and pays nothing twice.
func (s *ApprovalService) Approve(courseID uuid.UUID, operatorSecret string) (*models.Course, error) {
	if s.operatorSecret == "" ||
		subtle.ConstantTimeCompare([]byte(operatorSecret), []byte(s.operatorSecret)) != 1 {
		return nil, ErrInvalidSecret
	}

	var course models.Course
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		res := tx.Model(&models.Course{}).
			Where("id = ? AND status = ?", courseID, models.CourseStatusPending).
			Update("status", models.CourseStatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStateTransition
		}

		if _, err := s.ledger.CreditTx(tx, course.InstructorID, ApprovalIncentive); err != nil {
			return err
		}
		course.Status = models.CourseStatusApproved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ResetForReview pushes a course back to pending. Called whenever the
// instructor edits content, so approved material cannot change unreviewed.
func (s *ApprovalService) ResetForReview(tx *gorm.DB, courseID uuid.UUID) error {
	res := tx.Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("status", models.CourseStatusPending)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// Reject marks a pending course rejected. No money moves.
func (s *ApprovalService) Reject(courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := s.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	res := s.db.Model(&models.Course{}).
		Where("id = ? AND status = ?", courseID, models.CourseStatusPending).
		Update("status", models.CourseStatusRejected)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidStateTransition
	}

	course.Status = models.CourseStatusRejected
	return &course, nil
}
