package handlers

import (
	"github.com/edubank/academy/database"
	"github.com/edubank/academy/utils"
	"github.com/gofiber/fiber/v2"
)

type OpenAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"omitempty,numeric,len=10"`
	Secret        string `json:"secret" validate:"required,min=4"`
}

func OpenAccount(c *fiber.Ctx) error {
	var req OpenAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	accountNumber := req.AccountNumber
	if accountNumber == "" {
		var err error
		accountNumber, err = utils.GenerateUniqueAccountNumber(database.DB)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate account number"})
		}
	}

	account, err := ledgerService().OpenAccount(callerID(c), accountNumber, req.Secret)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

func GetMyBalance(c *fiber.Ctx) error {
	balance, err := ledgerService().GetBalance(callerID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"balance": balance})
}
