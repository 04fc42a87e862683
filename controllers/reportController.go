package controllers

import (
	"fmt"
	"time"

	"hadeed-backend/database"
	"hadeed-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ExportSalesReport streams an xlsx of sales in the requested range
// (?from=YYYY-MM-DD&to=YYYY-MM-DD, both optional, to inclusive).
func ExportSalesReport(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Sale{}).Order("created_at ASC")

	if from := c.Query("from"); from != "" {
		start, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date")
		}
		q = q.Where("created_at >= ?", start)
	}
	if to := c.Query("to"); to != "" {
		end, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date")
		}
		q = q.Where("created_at < ?", end.AddDate(0, 0, 1))
	}

	var sales []models.Sale
	if err := q.Find(&sales).Error; err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("closing report workbook")
		}
	}()

	const sheet = "Sales"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Invoice #", "Customer", "Status", "Total", "Discount", "Paid", "Remaining", "Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, s := range sales {
		invoice := ""
		if s.InvoiceNumber != nil {
			invoice = fmt.Sprintf("%d", *s.InvoiceNumber)
		}
		values := []any{invoice, s.Customer, string(s.Status), s.Total, s.Discount, s.PaidAmount, s.RemainingAmount, s.CreatedAt.Format("2006-01-02")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="sales.xlsx"`)
	return c.Send(buf.Bytes())
}
