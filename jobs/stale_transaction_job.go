package jobs

import (
	"log"
	"time"

	"github.com/edubank/academy/database"
	"github.com/edubank/academy/models"
)

const stalePendingAge = 72 * time.Hour

// FlagStaleTransactions surfaces purchases stuck in a pending state for too
// long. It only logs for the operators: pending money is never auto-refunded,
// the decline paths are the only way out of escrow.
func FlagStaleTransactions() {
	log.Println("Running job: FlagStaleTransactions...")

	cutoff := time.Now().Add(-stalePendingAge)

	var stale []models.Transaction
	err := database.DB.
		Where("status IN ? AND created_at < ?",
			[]string{models.TxStatusPendingAdmin, models.TxStatusPendingInstructor}, cutoff).
		Order("created_at asc").
		Find(&stale).Error
	if err != nil {
		log.Printf("Error checking for stale transactions: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	for _, txn := range stale {
		log.Printf("⚠️ Transaction %s has been %s since %s (amount %d, course %q)",
			txn.ID, txn.Status, txn.CreatedAt.Format(time.RFC3339), txn.Amount, txn.CourseTitle)
	}
	log.Printf("Found %d stale pending transaction(s) awaiting action.", len(stale))
}
