package controllers

import (
	"hadeed-backend/database"
	"hadeed-backend/middlewares"
	"hadeed-backend/models"
	"hadeed-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns the most recent notifications, newest first.
// Default window is 20; override with ?limit=.
func GetNotifications(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 20)

	var notifications []models.Notification
	err := database.DB.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return err
	}
	return c.JSON(notifications)
}

// MarkNotificationsRead flips the read flag on the given ids. Notifications
// are otherwise append-only.
func MarkNotificationsRead(c *fiber.Ctx) error {
	var input struct {
		Ids []uint `json:"ids" validate:"required,min=1"`
	}
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	err := database.DB.Model(&models.Notification{}).
		Where("id IN ?", input.Ids).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
