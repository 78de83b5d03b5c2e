package handlers

import (
	"fmt"

	"github.com/edubank/academy/database"
	"github.com/edubank/academy/models"
	"github.com/edubank/academy/notifications"
	"github.com/edubank/academy/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid"`
	Secret   string `json:"secret" validate:"required"`
}

// InitiatePurchase debits the learner and opens an escrow transaction in
// pending_admin. The debit and the transaction record are one atomic unit.
func InitiatePurchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	learnerID := callerID(c)
	txn, err := escrowService().InitiatePurchase(learnerID, uuid.MustParse(req.CourseID), req.Secret)
	if err != nil {
		return serviceError(c, err)
	}

	websocket.Notify(txn)

	var learner models.User
	if err := database.DB.First(&learner, "id = ?", learnerID).Error; err == nil {
		go notifications.SendEmail(learner.FullName, learner.Email, "Purchase Received",
			fmt.Sprintf("<h1>Purchase Received</h1><p>Your purchase of <b>%s</b> for %d units is awaiting admin review. The amount is held in escrow until then.</p>", txn.CourseTitle, txn.Amount))
	}

	return c.Status(fiber.StatusCreated).JSON(txn)
}

func GetMyPurchases(c *fiber.Ctx) error {
	txns, err := escrowService().ListForLearner(callerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(txns)
}

// RequestRefund cancels a purchase that the admin has not yet cleared. Once
// cleared, the decline paths are the only reversal.
func RequestRefund(c *fiber.Ctx) error {
	txID, err := uuid.Parse(c.Params("transactionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID format"})
	}

	txn, err := escrowService().LearnerRefund(txID, callerID(c))
	if err != nil {
		return serviceError(c, err)
	}

	websocket.Notify(txn)
	return c.JSON(fiber.Map{"message": "Purchase refunded", "transaction": txn})
}

// ArchivePurchaseHistory hides settled transactions from the caller's list.
// The records themselves are kept; this is presentation only.
func ArchivePurchaseHistory(c *fiber.Ctx) error {
	role := callerRole(c)
	if role == "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admins keep the full ledger of record"})
	}

	archived, err := escrowService().ArchiveHistory(callerID(c), role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to archive history"})
	}
	return c.JSON(fiber.Map{"message": "History archived", "archived": archived})
}
