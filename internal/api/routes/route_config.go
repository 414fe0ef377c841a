package routes

import (
	"github.com/gofiber/fiber/v2"

	"receipt-tracker/internal/api/handlers"
	"receipt-tracker/internal/middleware"
	"receipt-tracker/pkg/jwt"
)

type Config struct {
	App            *fiber.App
	UserHandler    handlers.UserHandler
	ReceiptHandler handlers.ReceiptHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Receipts()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	// user routes
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) Receipts() {
	receipts := c.App.Group("/api/v1/receipts", c.Middleware.AuthMiddleware(c.JWTService))

	// /search must be registered before /:id so it is not captured as an id.
	receipts.Get("/search", c.ReceiptHandler.SearchReceipts)

	receipts.Post("", c.ReceiptHandler.CreateReceipt)
	receipts.Get("", c.ReceiptHandler.GetReceipts)
	receipts.Get("/:id", c.ReceiptHandler.GetReceiptByID)
	receipts.Put("/:id", c.ReceiptHandler.UpdateReceipt)
	receipts.Delete("/:id", c.ReceiptHandler.DeleteReceipt)
}
