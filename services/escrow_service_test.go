package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edubank/academy/models"
)

const testPlatformAccount = "9999999999"

type escrowFixture struct {
	db         *gorm.DB
	ledger     *LedgerService
	escrow     *EscrowService
	learner    models.User
	instructor models.User
	platform   models.User
	course     models.Course
}

// newEscrowFixture builds the standard scenario: learner with 5000 on
// account, instructor and platform accounts at 0, one approved course priced
// at 1000.
func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	f := &escrowFixture{
		db:         db,
		ledger:     ledger,
		escrow:     NewEscrowService(db, ledger, testPlatformAccount),
		learner:    createUser(t, db, "Alice Learner", "student"),
		instructor: createUser(t, db, "Ivan Instructor", "instructor"),
		platform:   createUser(t, db, "Platform Admin", "admin"),
	}
	createAccount(t, db, f.learner.ID, "1234567890", "4321", 5000)
	createAccount(t, db, f.instructor.ID, "2222222222", "8765", 0)
	createAccount(t, db, f.platform.ID, testPlatformAccount, "0000", 0)
	f.course = createCourse(t, db, f.instructor.ID, "Go From Scratch", 1000, models.CourseStatusApproved)
	return f
}

func (f *escrowFixture) transactionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	f.db.Model(&models.Transaction{}).Count(&count)
	return count
}

func TestInitiatePurchase(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)

	assert.Equal(t, models.TxStatusPendingAdmin, txn.Status)
	assert.Equal(t, int64(1000), txn.Amount)
	assert.Equal(t, f.instructor.ID, txn.InstructorID)
	assert.Equal(t, "Go From Scratch", txn.CourseTitle)
	assert.Equal(t, int64(4000), accountBalance(t, f.db, f.learner.ID))
}

func TestInitiatePurchaseFailures(t *testing.T) {
	t.Run("insufficient funds leaves balance and creates no transaction", func(t *testing.T) {
		f := newEscrowFixture(t)
		f.db.Model(&models.Account{}).Where("user_id = ?", f.learner.ID).Update("balance", 500)

		_, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, int64(500), accountBalance(t, f.db, f.learner.ID))
		assert.Equal(t, int64(0), f.transactionCount(t))
	})

	t.Run("wrong secret", func(t *testing.T) {
		f := newEscrowFixture(t)
		_, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "0000")
		assert.ErrorIs(t, err, ErrInvalidSecret)
		assert.Equal(t, int64(5000), accountBalance(t, f.db, f.learner.ID))
		assert.Equal(t, int64(0), f.transactionCount(t))
	})

	t.Run("learner without account", func(t *testing.T) {
		f := newEscrowFixture(t)
		stranger := createUser(t, f.db, "No Account", "student")
		_, err := f.escrow.InitiatePurchase(stranger.ID, f.course.ID, "4321")
		assert.ErrorIs(t, err, ErrNoAccount)
	})

	t.Run("course not approved", func(t *testing.T) {
		f := newEscrowFixture(t)
		pending := createCourse(t, f.db, f.instructor.ID, "Draft Course", 1000, models.CourseStatusPending)
		_, err := f.escrow.InitiatePurchase(f.learner.ID, pending.ID, "4321")
		assert.ErrorIs(t, err, ErrCourseNotApproved)
		assert.Equal(t, int64(5000), accountBalance(t, f.db, f.learner.ID))
	})

	t.Run("course not found", func(t *testing.T) {
		f := newEscrowFixture(t)
		_, err := f.escrow.InitiatePurchase(f.learner.ID, uuid.New(), "4321")
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestAdminApproveThenInstructorAccept(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)

	txn, err = f.escrow.AdminResolve(txn.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusPendingInstructor, txn.Status)

	// Admin approval moves no money; the debit stays in escrow.
	assert.Equal(t, int64(4000), accountBalance(t, f.db, f.learner.ID))
	assert.Equal(t, int64(0), accountBalance(t, f.db, f.instructor.ID))

	txn, err = f.escrow.InstructorResolve(txn.ID, f.instructor.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, txn.Status)

	// 60/40 split, floored. Instructor 600, platform 400, learner still 4000.
	assert.Equal(t, int64(600), accountBalance(t, f.db, f.instructor.ID))
	assert.Equal(t, int64(400), accountBalance(t, f.db, f.platform.ID))
	assert.Equal(t, int64(4000), accountBalance(t, f.db, f.learner.ID))
}

func TestMoneyConservation(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)
	_, err = f.escrow.AdminResolve(txn.ID, true)
	require.NoError(t, err)
	_, err = f.escrow.InstructorResolve(txn.ID, f.instructor.ID, true)
	require.NoError(t, err)

	debited := int64(5000) - accountBalance(t, f.db, f.learner.ID)
	credited := accountBalance(t, f.db, f.instructor.ID) + accountBalance(t, f.db, f.platform.ID)
	assert.Equal(t, debited, credited)
}

func TestAdminDecline(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)

	txn, err = f.escrow.AdminResolve(txn.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusDeclined, txn.Status)
	assert.Equal(t, int64(5000), accountBalance(t, f.db, f.learner.ID))

	t.Run("second decline refunds nothing", func(t *testing.T) {
		_, err := f.escrow.AdminResolve(txn.ID, false)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Equal(t, int64(5000), accountBalance(t, f.db, f.learner.ID))
	})

	t.Run("approve after decline fails", func(t *testing.T) {
		_, err := f.escrow.AdminResolve(txn.ID, true)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})
}

func TestInstructorDecline(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)
	_, err = f.escrow.AdminResolve(txn.ID, true)
	require.NoError(t, err)

	txn, err = f.escrow.InstructorResolve(txn.ID, f.instructor.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusDeclined, txn.Status)

	// Instructor never received funds, so the learner gets the full amount back.
	assert.Equal(t, int64(5000), accountBalance(t, f.db, f.learner.ID))
	assert.Equal(t, int64(0), accountBalance(t, f.db, f.instructor.ID))
	assert.Equal(t, int64(0), accountBalance(t, f.db, f.platform.ID))
}

func TestInstructorResolveGuards(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)

	t.Run("cannot settle before admin clears it", func(t *testing.T) {
		_, err := f.escrow.InstructorResolve(txn.ID, f.instructor.ID, true)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Equal(t, int64(0), accountBalance(t, f.db, f.instructor.ID))
	})

	_, err = f.escrow.AdminResolve(txn.ID, true)
	require.NoError(t, err)

	t.Run("only the snapshotted instructor may resolve", func(t *testing.T) {
		other := createUser(t, f.db, "Other Instructor", "instructor")
		_, err := f.escrow.InstructorResolve(txn.ID, other.ID, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("double accept pays once", func(t *testing.T) {
		_, err := f.escrow.InstructorResolve(txn.ID, f.instructor.ID, true)
		require.NoError(t, err)
		_, err = f.escrow.InstructorResolve(txn.ID, f.instructor.ID, true)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Equal(t, int64(600), accountBalance(t, f.db, f.instructor.ID))
		assert.Equal(t, int64(400), accountBalance(t, f.db, f.platform.ID))
	})
}

func TestLearnerRefund(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)

	t.Run("only the buyer may refund", func(t *testing.T) {
		stranger := createUser(t, f.db, "Mallory", "student")
		_, err := f.escrow.LearnerRefund(txn.ID, stranger.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	txn, err = f.escrow.LearnerRefund(txn.ID, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusRefunded, txn.Status)
	assert.Equal(t, int64(5000), accountBalance(t, f.db, f.learner.ID))

	t.Run("no refund once cleared by admin", func(t *testing.T) {
		txn2, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
		require.NoError(t, err)
		_, err = f.escrow.AdminResolve(txn2.ID, true)
		require.NoError(t, err)

		_, err = f.escrow.LearnerRefund(txn2.ID, f.learner.ID)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Equal(t, int64(4000), accountBalance(t, f.db, f.learner.ID))
	})
}

func TestSnapshotsSurviveCourseChanges(t *testing.T) {
	f := newEscrowFixture(t)

	txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)

	// Repricing and retitling the course after purchase must not affect the
	// in-flight payment or its history.
	f.db.Model(&models.Course{}).Where("id = ?", f.course.ID).
		Updates(map[string]interface{}{"price": 99999, "title": "Renamed"})

	_, err = f.escrow.AdminResolve(txn.ID, true)
	require.NoError(t, err)
	settled, err := f.escrow.InstructorResolve(txn.ID, f.instructor.ID, true)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), settled.Amount)
	assert.Equal(t, "Go From Scratch", settled.CourseTitle)
	assert.Equal(t, int64(600), accountBalance(t, f.db, f.instructor.ID))

	t.Run("history survives course deletion", func(t *testing.T) {
		require.NoError(t, f.db.Delete(&models.Course{}, "id = ?", f.course.ID).Error)

		txns, err := f.escrow.ListForLearner(f.learner.ID)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "Go From Scratch", txns[0].CourseTitle)
	})
}

func TestArchiveHistory(t *testing.T) {
	f := newEscrowFixture(t)

	completed, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)
	_, err = f.escrow.AdminResolve(completed.ID, true)
	require.NoError(t, err)
	_, err = f.escrow.InstructorResolve(completed.ID, f.instructor.ID, true)
	require.NoError(t, err)

	declined, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)
	_, err = f.escrow.AdminResolve(declined.ID, false)
	require.NoError(t, err)

	pending, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)

	refunded, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
	require.NoError(t, err)
	_, err = f.escrow.LearnerRefund(refunded.ID, f.learner.ID)
	require.NoError(t, err)

	archived, err := f.escrow.ArchiveHistory(f.learner.ID, "student")
	require.NoError(t, err)
	assert.Equal(t, int64(2), archived)

	// Pending and refunded rows stay visible; nothing is ever deleted.
	txns, err := f.escrow.ListForLearner(f.learner.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	statuses := []string{txns[0].Status, txns[1].Status}
	assert.Contains(t, statuses, models.TxStatusPendingAdmin)
	assert.Contains(t, statuses, models.TxStatusRefunded)

	var total int64
	f.db.Model(&models.Transaction{}).Count(&total)
	assert.Equal(t, int64(4), total)

	t.Run("instructor archive is independent", func(t *testing.T) {
		txns, err := f.escrow.ListForInstructor(f.instructor.ID)
		require.NoError(t, err)
		assert.Len(t, txns, 4)

		archived, err := f.escrow.ArchiveHistory(f.instructor.ID, "instructor")
		require.NoError(t, err)
		assert.Equal(t, int64(2), archived)

		txns, err = f.escrow.ListForInstructor(f.instructor.ID)
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	_ = pending
}

func TestListAll(t *testing.T) {
	f := newEscrowFixture(t)

	for i := 0; i < 3; i++ {
		txn, err := f.escrow.InitiatePurchase(f.learner.ID, f.course.ID, "4321")
		require.NoError(t, err)
		if i == 0 {
			_, err = f.escrow.AdminResolve(txn.ID, false)
			require.NoError(t, err)
		}
	}

	all, total, err := f.escrow.ListAll("", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
	assert.Equal(t, "Alice Learner", all[0].Learner.FullName)

	pendingOnly, total, err := f.escrow.ListAll(models.TxStatusPendingAdmin, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, pendingOnly, 2)
}
