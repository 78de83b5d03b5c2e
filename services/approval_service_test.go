package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubank/academy/models"
)

const testOperatorSecret = "operator-pass"

func TestApproveCourse(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	approval := NewApprovalService(db, ledger, testOperatorSecret)

	instructor := createUser(t, db, "Ivan Instructor", "instructor")
	createAccount(t, db, instructor.ID, "2222222222", "8765", 0)
	course := createCourse(t, db, instructor.ID, "Go From Scratch", 1000, models.CourseStatusPending)

	approved, err := approval.Approve(course.ID, testOperatorSecret)
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusApproved, approved.Status)

	// The one-time incentive lands with the approval.
	assert.Equal(t, ApprovalIncentive, accountBalance(t, db, instructor.ID))

	var reloaded models.Course
	require.NoError(t, db.First(&reloaded, "id = ?", course.ID).Error)
	assert.Equal(t, models.CourseStatusApproved, reloaded.Status)

	t.Run("approving twice pays once", func(t *testing.T) {
		_, err := approval.Approve(course.ID, testOperatorSecret)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Equal(t, ApprovalIncentive, accountBalance(t, db, instructor.ID))
	})
}

func TestApproveCourseFailures(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	approval := NewApprovalService(db, ledger, testOperatorSecret)

	instructor := createUser(t, db, "Ivan Instructor", "instructor")
	createAccount(t, db, instructor.ID, "2222222222", "8765", 0)
	course := createCourse(t, db, instructor.ID, "Go From Scratch", 1000, models.CourseStatusPending)

	t.Run("wrong operator passphrase", func(t *testing.T) {
		_, err := approval.Approve(course.ID, "nope")
		assert.ErrorIs(t, err, ErrInvalidSecret)
		assert.Equal(t, int64(0), accountBalance(t, db, instructor.ID))

		var reloaded models.Course
		require.NoError(t, db.First(&reloaded, "id = ?", course.ID).Error)
		assert.Equal(t, models.CourseStatusPending, reloaded.Status)
	})

	t.Run("unconfigured passphrase rejects everything", func(t *testing.T) {
		unconfigured := NewApprovalService(db, ledger, "")
		_, err := unconfigured.Approve(course.ID, "")
		assert.ErrorIs(t, err, ErrInvalidSecret)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := approval.Approve(uuid.New(), testOperatorSecret)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("instructor without account rolls approval back", func(t *testing.T) {
		noAccount := createUser(t, db, "New Instructor", "instructor")
		orphan := createCourse(t, db, noAccount.ID, "Orphan Course", 500, models.CourseStatusPending)

		_, err := approval.Approve(orphan.ID, testOperatorSecret)
		assert.ErrorIs(t, err, ErrNoAccount)

		var reloaded models.Course
		require.NoError(t, db.First(&reloaded, "id = ?", orphan.ID).Error)
		assert.Equal(t, models.CourseStatusPending, reloaded.Status)
	})
}

func TestResetForReview(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	approval := NewApprovalService(db, ledger, testOperatorSecret)

	instructor := createUser(t, db, "Ivan Instructor", "instructor")
	createAccount(t, db, instructor.ID, "2222222222", "8765", 0)
	course := createCourse(t, db, instructor.ID, "Go From Scratch", 1000, models.CourseStatusPending)

	_, err := approval.Approve(course.ID, testOperatorSecret)
	require.NoError(t, err)

	require.NoError(t, approval.ResetForReview(db, course.ID))

	var reloaded models.Course
	require.NoError(t, db.First(&reloaded, "id = ?", course.ID).Error)
	assert.Equal(t, models.CourseStatusPending, reloaded.Status)

	t.Run("re-approval pays the incentive again", func(t *testing.T) {
		_, err := approval.Approve(course.ID, testOperatorSecret)
		require.NoError(t, err)
		assert.Equal(t, 2*ApprovalIncentive, accountBalance(t, db, instructor.ID))
	})

	t.Run("unknown course", func(t *testing.T) {
		err := approval.ResetForReview(db, uuid.New())
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestRejectCourse(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	approval := NewApprovalService(db, ledger, testOperatorSecret)

	instructor := createUser(t, db, "Ivan Instructor", "instructor")
	createAccount(t, db, instructor.ID, "2222222222", "8765", 0)
	course := createCourse(t, db, instructor.ID, "Go From Scratch", 1000, models.CourseStatusPending)

	rejected, err := approval.Reject(course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusRejected, rejected.Status)

	// No money moves on rejection.
	assert.Equal(t, int64(0), accountBalance(t, db, instructor.ID))

	t.Run("rejecting a settled course fails", func(t *testing.T) {
		_, err := approval.Reject(course.ID)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := approval.Reject(uuid.New())
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}
