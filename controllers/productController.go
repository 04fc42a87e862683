package controllers

import (
	"errors"
	"fmt"

	"hadeed-backend/database"
	"hadeed-backend/ledger"
	"hadeed-backend/middlewares"
	"hadeed-backend/models"
	"hadeed-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name          string  `json:"name" validate:"required"`
	Type          string  `json:"type"`
	Price         float64 `json:"price" validate:"gte=0"`
	Quantity      int     `json:"quantity"`
	Length        float64 `json:"length" validate:"gte=0"`
	Width         float64 `json:"width" validate:"gte=0"`
	Thickness     float64 `json:"thickness" validate:"gte=0"`
	WeightPerUnit float64 `json:"weightPerUnit" validate:"gte=0"`
	CategoryId    uint    `json:"categoryId"`
}

// QuickEditInput is the PATCH shape: only quantity and/or price.
type QuickEditInput struct {
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
}

func CreateProduct(c *fiber.Ctx) error {
	var input ProductInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	if input.CategoryId == 0 {
		input.CategoryId = 1
	}

	product := models.Product{
		Name:          input.Name,
		Type:          input.Type,
		Price:         input.Price,
		Quantity:      input.Quantity,
		Length:        input.Length,
		Width:         input.Width,
		Thickness:     input.Thickness,
		WeightPerUnit: input.WeightPerUnit,
		CategoryId:    input.CategoryId,
	}
	if err := database.DB.Create(&product).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func GetProducts(c *fiber.Ctx) error {
	var products []models.Product
	err := database.DB.Preload("Category").Order("created_at DESC").Find(&products).Error
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var product models.Product
	if err := database.DB.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.ErrProductNotFound
		}
		return err
	}
	return c.JSON(product)
}

// UpdateProduct fully replaces the editable fields. A manual edit that leaves
// the stock at or below the threshold still raises a low-stock notification.
func UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var input ProductInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.ErrProductNotFound
		}
		return err
	}

	product.Name = input.Name
	product.Type = input.Type
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.Length = input.Length
	product.Width = input.Width
	product.Thickness = input.Thickness
	product.WeightPerUnit = input.WeightPerUnit
	if input.CategoryId != 0 {
		product.CategoryId = input.CategoryId
	}

	if err := database.DB.Save(&product).Error; err != nil {
		return err
	}

	if product.Quantity <= ledger.LowStockThreshold {
		n := models.Notification{
			Title:   "Low stock alert (manual edit)",
			Message: fmt.Sprintf("Stock of %s was set to %d units in section %s. Please verify.", product.Name, product.Quantity, product.Type),
			Type:    models.NotificationWarning,
		}
		if err := database.DB.Create(&n).Error; err != nil {
			return err
		}
	}

	return c.JSON(product)
}

// QuickEditProduct patches quantity and/or price only.
func QuickEditProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var input QuickEditInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	updates := utils.UpdatesFromPtrDTO(&input, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "nothing to update")
	}

	res := database.DB.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrProductNotFound
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		return err
	}
	return c.JSON(product)
}

func DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	res := database.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrProductNotFound
	}
	return c.JSON(fiber.Map{"success": true})
}

func GetCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := database.DB.Order("id ASC").Find(&categories).Error; err != nil {
		return err
	}
	return c.JSON(categories)
}

func CreateCategory(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name" validate:"required"`
	}
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	category := models.Category{Name: input.Name}
	if err := database.DB.Create(&category).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}
