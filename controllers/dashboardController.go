package controllers

import (
	"time"

	"hadeed-backend/database"
	"hadeed-backend/models"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard aggregates the numbers the landing page shows. Each query is
// an independent read-only summation; there is no shared invariant here.
func GetDashboard(c *fiber.Ctx) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var dailySales, monthlySales, monthlyExpenses float64

	err := database.DB.Model(&models.Sale{}).
		Where("created_at >= ?", today).
		Select("COALESCE(SUM(total), 0)").Scan(&dailySales).Error
	if err != nil {
		return err
	}

	err = database.DB.Model(&models.Sale{}).
		Where("created_at >= ?", firstOfMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&monthlySales).Error
	if err != nil {
		return err
	}

	err = database.DB.Model(&models.Expense{}).
		Where("date >= ?", firstOfMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthlyExpenses).Error
	if err != nil {
		return err
	}

	var lowStock []models.Product
	err = database.DB.Where("quantity < ?", 10).
		Order("quantity ASC").Limit(5).Find(&lowStock).Error
	if err != nil {
		return err
	}

	var recentSales []models.Sale
	err = database.DB.Preload("Items").Preload("Items.Product").
		Order("created_at DESC").Limit(5).Find(&recentSales).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"dailySales":      dailySales,
		"monthlySales":    monthlySales,
		"monthlyExpenses": monthlyExpenses,
		"netProfit":       monthlySales - monthlyExpenses,
		"lowStockItems":   lowStock,
		"recentSales":     recentSales,
	})
}
