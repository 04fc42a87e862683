package controllers

import (
	"strconv"
	"time"

	"hadeed-backend/database"
	"hadeed-backend/ledger"
	"hadeed-backend/middlewares"
	"hadeed-backend/models"

	"github.com/gofiber/fiber/v2"
)

func saleEngine() *ledger.Engine {
	return ledger.NewEngine(database.NewLedgerStore(database.DB))
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

type SaleLineInput struct {
	ProductID uint    `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type CreateSaleRequest struct {
	Customer   string          `json:"customer"`
	Items      []SaleLineInput `json:"items" validate:"required,min=1,dive"`
	Discount   float64         `json:"discount" validate:"gte=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=QUOTATION PAID CREDIT"`
	PaidAmount *float64        `json:"paidAmount" validate:"omitempty,gte=0"`
}

type UpdateSaleRequest struct {
	Customer   *string         `json:"customer"`
	Items      []SaleLineInput `json:"items" validate:"omitempty,min=1,dive"`
	Discount   *float64        `json:"discount" validate:"omitempty,gte=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=QUOTATION PAID CREDIT DELIVERED"`
	PaidAmount *float64        `json:"paidAmount" validate:"omitempty,gte=0"`
}

type PaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func linesFromInput(items []SaleLineInput) []ledger.Line {
	if items == nil {
		return nil
	}
	lines := make([]ledger.Line, len(items))
	for i, it := range items {
		lines[i] = ledger.Line{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return lines
}

func CreateSale(c *fiber.Ctx) error {
	var req CreateSaleRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	sale, err := saleEngine().CreateSale(ledger.CreateSaleInput{
		Customer:   req.Customer,
		Items:      linesFromInput(req.Items),
		Discount:   req.Discount,
		Status:     models.SaleStatus(req.Status),
		PaidAmount: req.PaidAmount,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GetSales lists sales, optionally filtered by status and by a single
// YYYY-MM-DD day, newest first.
func GetSales(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Sale{}).
		Preload("Items").Preload("Items.Product").
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if day := c.Query("date"); day != "" {
		start, err := time.Parse("2006-01-02", day)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
		q = q.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1))
	}

	var sales []models.Sale
	if err := q.Find(&sales).Error; err != nil {
		return err
	}
	return c.JSON(sales)
}

func GetSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sale, err := saleEngine().GetSale(id)
	if err != nil {
		return err
	}
	return c.JSON(sale)
}

// UpdateSale handles both edit shapes: a body with status=PAID and no items
// converts a quotation into a paid sale; a body with items replaces the
// sale's lines and reconciles stock.
func UpdateSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateSaleRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Items == nil && req.Status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid update payload")
	}

	sale, err := saleEngine().UpdateSale(id, ledger.UpdateSaleInput{
		Customer:   req.Customer,
		Items:      linesFromInput(req.Items),
		Discount:   req.Discount,
		Status:     models.SaleStatus(req.Status),
		PaidAmount: req.PaidAmount,
	})
	if err != nil {
		return err
	}
	return c.JSON(sale)
}

func DeleteSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := saleEngine().DeleteSale(id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Sale deleted successfully"})
}

// RecordPayment applies a partial payment to a credit sale.
func RecordPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req PaymentRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	sale, err := saleEngine().RecordPayment(id, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(sale)
}

func GetSaleRevisions(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	revs, err := saleEngine().ListRevisions(id)
	if err != nil {
		return err
	}
	return c.JSON(revs)
}
