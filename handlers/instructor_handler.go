package handlers

import (
	"fmt"

	"github.com/edubank/academy/database"
	"github.com/edubank/academy/models"
	"github.com/edubank/academy/notifications"
	"github.com/edubank/academy/services"
	"github.com/edubank/academy/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func GetMyTransactions(c *fiber.Ctx) error {
	txns, err := escrowService().ListForInstructor(callerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(txns)
}

// ResolveTransaction lets the instructor accept or decline a purchase the
// admin already cleared. Accepting settles the escrow: the instructor gets
// their share and the platform account the remainder. Declining refunds the
// learner in full.
func ResolveTransaction(c *fiber.Ctx) error {
	txID, err := uuid.Parse(c.Params("transactionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID format"})
	}

	type ResolveRequest struct {
		Decision string `json:"decision" validate:"required,oneof=accept decline"`
	}
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	txn, err := escrowService().InstructorResolve(txID, callerID(c), req.Decision == "accept")
	if err != nil {
		return serviceError(c, err)
	}

	websocket.Notify(txn)

	if txn.Status == models.TxStatusCompleted {
		go services.GenerateReceipt(*txn)
	}

	var learner models.User
	if err := database.DB.First(&learner, "id = ?", txn.LearnerID).Error; err == nil {
		if txn.Status == models.TxStatusCompleted {
			go notifications.SendEmail(learner.FullName, learner.Email, "Your Course is Ready!",
				fmt.Sprintf("<h1>Purchase Complete</h1><p>The instructor has accepted your purchase of <b>%s</b>. Enjoy the course!</p>", txn.CourseTitle))
		} else {
			go notifications.SendEmail(learner.FullName, learner.Email, "Purchase Declined",
				fmt.Sprintf("<h1>Purchase Declined</h1><p>The instructor declined your purchase of <b>%s</b>. The full amount of %d units has been returned to your account.</p>", txn.CourseTitle, txn.Amount))
		}
	}

	return c.JSON(fiber.Map{"message": "Transaction resolved", "transaction": txn})
}
