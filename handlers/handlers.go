package handlers

import (
	"errors"

	config "github.com/edubank/academy/configs"
	"github.com/edubank/academy/database"
	"github.com/edubank/academy/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func ledgerService() *services.LedgerService {
	return services.NewLedgerService(database.DB)
}

func escrowService() *services.EscrowService {
	return services.NewEscrowService(database.DB, ledgerService(), config.Config("PLATFORM_ACCOUNT_NUMBER"))
}

func approvalService() *services.ApprovalService {
	return services.NewApprovalService(database.DB, ledgerService(), config.Config("APPROVAL_SECRET"))
}

func callerID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

func callerRole(c *fiber.Ctx) string {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	role, _ := claims["role"].(string)
	return role
}

// serviceError translates service sentinels into HTTP responses. Anything
// unrecognized is an infrastructure fault and surfaces as a 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDuplicateAccount):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNoAccount),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidSecret):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrCourseNotApproved),
		errors.Is(err, services.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
