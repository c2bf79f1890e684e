package main

import (
	"log"
	"strings"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/batch"
	"uretim-backend/internal/catalog"
	"uretim-backend/internal/config"
	"uretim-backend/internal/database"
	"uretim-backend/internal/lot"
	"uretim-backend/internal/models"
	"uretim-backend/internal/qa"
	"uretim-backend/internal/recipe"
	"uretim-backend/internal/release"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes - tanım yönetimi
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Kullanıcı yönetimi
	adminRoutes.Post("/users", auth.CreateUserHandler())

	// Malzeme / tedarikçi / ürün tanımları
	adminRoutes.Post("/materials", catalog.CreateMaterialHandler())
	adminRoutes.Put("/materials/:id", catalog.UpdateMaterialHandler())
	adminRoutes.Post("/suppliers", catalog.CreateSupplierHandler())
	adminRoutes.Put("/suppliers/:id", catalog.UpdateSupplierHandler())
	adminRoutes.Post("/products", catalog.CreateProductHandler())
	adminRoutes.Put("/products/:id", catalog.UpdateProductHandler())

	// Kontrol noktası konfigürasyonu
	adminRoutes.Post("/checkpoints", catalog.CreateCheckpointHandler())
	adminRoutes.Put("/checkpoints/:id", catalog.UpdateCheckpointHandler())

	// Reçete yazımı
	adminRoutes.Post("/recipes", recipe.CreateRecipeHandler())
	adminRoutes.Put("/recipes/:id/deactivate", recipe.DeactivateRecipeHandler())

	// Belge gereksinimleri
	adminRoutes.Post("/document-requirements", release.CreateDocRequirementHandler())

	// Ortak (auth gerektiren) route'lar

	// Tanım listeleri
	protected.Get("/materials", catalog.ListMaterialsHandler())
	protected.Get("/suppliers", catalog.ListSuppliersHandler())
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/checkpoints", catalog.ListCheckpointsHandler())
	protected.Get("/document-requirements", release.ListDocRequirementsHandler())

	// Reçeteler
	protected.Get("/recipes", recipe.ListRecipesHandler())
	protected.Get("/recipes/:id", recipe.GetRecipeHandler())
	protected.Post("/recipes/:id/scale", recipe.ScaleRecipeHandler())

	// Partiler
	protected.Post("/batches", batch.CreateBatchHandler())
	protected.Get("/batches", batch.ListBatchesHandler())
	protected.Get("/batches/:id", batch.GetBatchHandler())
	protected.Put("/batches/:id/ingredients/:ingredientId/actual", batch.RecordActualHandler())
	protected.Get("/batches/:id/trace", batch.BatchTraceHandler())

	// QA ilerleme motoru
	protected.Post("/batches/:id/checks", qa.RecordCheckHandler())
	protected.Get("/batches/:id/checks", qa.ListChecksHandler())
	protected.Get("/batches/:id/progress", qa.GetProgressHandler())
	protected.Post("/batches/:id/complete", qa.CompleteBatchHandler())

	// Serbest bırakma
	protected.Get("/batches/:id/release", release.GetReleaseHandler())
	protected.Post("/batches/:id/documents", release.CreateDocumentHandler())
	protected.Post("/batches/:id/tests", release.CreateTestHandler())

	// Lotlar ve izlenebilirlik
	protected.Post("/lots", lot.CreateLotHandler())
	protected.Get("/lots", lot.ListLotsHandler())
	protected.Get("/lots/:id/trace", lot.LotTraceHandler())
	protected.Post("/lots/import-excel", lot.ImportLotsExcelHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Manager/admin gerektiren kararlar. Bu grup en sonda kalmalı:
	// RequireRole kendinden sonra eklenen tüm route'lara uygulanır.
	managerRoutes := protected.Group("")
	managerRoutes.Use(auth.RequireRole(models.RoleManager, models.RoleAdmin))
	managerRoutes.Post("/batches/:id/release/approve", release.ApproveHandler())
	managerRoutes.Post("/batches/:id/release/reject", release.RejectHandler())
	managerRoutes.Post("/batches/:id/release/hold", release.HoldHandler())
	managerRoutes.Post("/batches/:id/release/resume", release.ResumeHandler())
	managerRoutes.Post("/lots/:id/recall", lot.RecallLotHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
