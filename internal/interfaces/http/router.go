package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sewellco/hts-manager/internal/application/usecase"
	"github.com/sewellco/hts-manager/internal/infrastructure/shipstation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	ClassifyUC *usecase.ClassifyUseCase
	Exporter   *shipstation.ExportBuilder
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.ClassifyUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole("admin"), productHandler.Delete)
	// El override manual es terminal para el pipeline automático: solo roles de gestión.
	products.Put("/:id/hts", RequireRole("admin", "manager"), productHandler.SetManualCode)

	// Classification (protegido)
	classificationHandler := NewClassificationHandler(deps.ClassifyUC)
	products.Post("/:id/classify", classificationHandler.Classify)
	classify := protected.Group("/classify")
	classify.Post("/bulk", RequireRole("admin", "manager"), classificationHandler.BulkClassify)
	classify.Get("/status", classificationHandler.Status)

	// Export aduanero (protegido)
	exportHandler := NewExportHandler(deps.Exporter)
	protected.Post("/export/shipstation", exportHandler.Export)
}
