package routes

import (
	"github.com/gofiber/fiber/v2"

	"hadeed-backend/controllers"
	"hadeed-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard before the handlers mutate anything
	protected.Use(middlewares.Idempotency())

	protected.Get("/me", controllers.Me)

	// Sales (the ledger engine)
	protected.Post("/sale", controllers.CreateSale)
	protected.Get("/sales", controllers.GetSales)
	protected.Get("/sale/:id", controllers.GetSale)
	protected.Put("/sale/:id", controllers.UpdateSale)
	protected.Delete("/sale/:id", controllers.DeleteSale)
	protected.Post("/sale/:id/payments", controllers.RecordPayment)
	protected.Get("/sale/:id/revisions", controllers.GetSaleRevisions)

	// Products & categories
	protected.Post("/product", controllers.CreateProduct)
	protected.Get("/products", controllers.GetProducts)
	protected.Get("/product/:id", controllers.GetProduct)
	protected.Put("/product/:id", controllers.UpdateProduct)
	protected.Patch("/product/:id", controllers.QuickEditProduct)
	protected.Delete("/product/:id", controllers.DeleteProduct)
	protected.Get("/categories", controllers.GetCategories)
	protected.Post("/category", controllers.CreateCategory)

	// Notifications
	protected.Get("/notifications", controllers.GetNotifications)
	protected.Put("/notifications/read", controllers.MarkNotificationsRead)

	// Expenses
	protected.Post("/expense", controllers.CreateExpense)
	protected.Get("/expenses", controllers.GetExpenses)
	protected.Put("/expense/:id", controllers.UpdateExpense)
	protected.Delete("/expense/:id", controllers.DeleteExpense)

	// Dashboard & reports
	protected.Get("/dashboard", controllers.GetDashboard)
	protected.Get("/reports/sales.xlsx", controllers.ExportSalesReport)
}
