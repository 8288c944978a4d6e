package http

import (
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// AppConfig opciones comunes a los dos servicios.
type AppConfig struct {
	Name        string
	Log         *logger.Logger
	SwaggerFile string // vacío = sin /docs
}

// NewApp construye la aplicación Fiber con recover, log de peticiones, /health y Swagger UI.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(RequestLogger(cfg.Log))

	// Swagger UI: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    cfg.Name,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	return app
}

// SalesRouter registra las rutas del servicio de ventas.
func SalesRouter(app *fiber.App, uc *sales.SaleUseCase) {
	h := NewSaleHandler(uc)
	g := app.Group("/sales")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}

// ProductsRouter registra las rutas del servicio de productos.
func ProductsRouter(app *fiber.App, uc *usecase.ProductUseCase) {
	h := NewProductHandler(uc)
	g := app.Group("/products")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}
