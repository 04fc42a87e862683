package controllers

import (
	"time"

	"hadeed-backend/database"
	"hadeed-backend/middlewares"
	"hadeed-backend/models"
	"hadeed-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenseRequest struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Category    string  `json:"category"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateExpenseRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	Category    *string  `json:"category"`
}

func CreateExpense(c *fiber.Ctx) error {
	var req CreateExpenseRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	utils.NormalizeDTO(&req)

	date := time.Now()
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}
	if req.Category == "" {
		req.Category = "Operational"
	}

	expense := models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
	}
	if err := database.DB.Create(&expense).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(expense)
}

// GetExpenses lists expenses newest first, optionally bounded by
// ?from=YYYY-MM-DD&to=YYYY-MM-DD (to is inclusive).
func GetExpenses(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Expense{}).Order("date DESC")

	if from := c.Query("from"); from != "" {
		start, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date")
		}
		q = q.Where("date >= ?", start)
	}
	if to := c.Query("to"); to != "" {
		end, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date")
		}
		q = q.Where("date < ?", end.AddDate(0, 0, 1))
	}

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return err
	}
	return c.JSON(expenses)
}

func UpdateExpense(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateExpenseRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&req)

	updates := utils.UpdatesFromPtrDTO(&req, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "nothing to update")
	}

	res := database.DB.Model(&models.Expense{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "expense not found")
	}

	var expense models.Expense
	if err := database.DB.First(&expense, id).Error; err != nil {
		return err
	}
	return c.JSON(expense)
}

func DeleteExpense(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	res := database.DB.Delete(&models.Expense{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "expense not found")
	}
	return c.JSON(fiber.Map{"success": true})
}
