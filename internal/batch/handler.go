package batch

import (
	"fmt"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/compliance"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateBatchRequest struct {
	RecipeID    uint    `json:"recipe_id"`
	InputWeight float64 `json:"input_weight"`
	BatchCode   string  `json:"batch_code"` // boşsa otomatik üretilir
}

// POST /api/batches
func CreateBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.RecipeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "recipe_id zorunlu")
		}
		if body.InputWeight <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Giriş ağırlığı pozitif olmalı")
		}

		result, err := Create(database.DB, body.RecipeID, body.InputWeight, body.BatchCode, actor)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "batch",
			EntityID:    result.Batch.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Parti açıldı: %s (%.1f kg)", result.Batch.BatchCode, result.Batch.InputWeight),
			After:       result.Batch,
		})

		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

type BatchListItem struct {
	ID            uint                 `json:"id"`
	BatchCode     string               `json:"batch_code"`
	ProductName   string               `json:"product_name"`
	InputWeight   float64              `json:"input_weight"`
	Status        models.BatchStatus   `json:"status"`
	ReleaseStatus models.ReleaseStatus `json:"release_status,omitempty"`
	CreatedAt     string               `json:"created_at"`
}

// GET /api/batches?status=in_progress
func ListBatchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Product").Preload("Release").Model(&models.Batch{})
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var batches []models.Batch
		if err := dbq.Order("created_at DESC").Limit(200).Find(&batches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Partiler listelenemedi")
		}

		out := make([]BatchListItem, 0, len(batches))
		for _, b := range batches {
			item := BatchListItem{
				ID:          b.ID,
				BatchCode:   b.BatchCode,
				ProductName: b.Product.Name,
				InputWeight: b.InputWeight,
				Status:      b.Status,
				CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			if b.Release != nil {
				item.ReleaseStatus = b.Release.Status
			}
			out = append(out, item)
		}
		return c.JSON(out)
	}
}

// GET /api/batches/:id - malzemeler ve tolerans uyumu dahil detay
func GetBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}

		var b models.Batch
		if err := database.DB.
			Preload("Product").
			Preload("Recipe").
			Preload("Release").
			Preload("Ingredients.Material").
			First(&b, "id = ?", batchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
		}

		return c.JSON(fiber.Map{
			"batch":                b,
			"tolerance_compliance": compliance.ToleranceCompliancePercent(b.Ingredients),
		})
	}
}

type RecordActualRequest struct {
	ActualAmount *float64 `json:"actual_amount"`
}

// PUT /api/batches/:id/ingredients/:ingredientId/actual - tartım girişi
func RecordActualHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}
		ingredientID, err := c.ParamsInt("ingredientId")
		if err != nil || ingredientID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme ID")
		}

		var body RecordActualRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ActualAmount == nil {
			return fiber.NewError(fiber.StatusBadRequest, "actual_amount zorunlu")
		}

		ing, err := RecordActual(database.DB, uint(batchID), uint(ingredientID), *body.ActualAmount)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "batch_ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Tartım: parti %d, %s = %.2f %s", batchID, ing.Material.Name, *ing.ActualAmount, ing.Unit),
			After:       ing,
		})

		return c.JSON(ing)
	}
}

// GET /api/batches/:id/trace - partinin tükettiği lotlar (izlenebilirlik)
func BatchTraceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}

		var b models.Batch
		if err := database.DB.First(&b, "id = ?", batchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
		}

		type traceRow struct {
			LotID        uint             `json:"lot_id"`
			LotCode      string           `json:"lot_code"`
			MaterialName string           `json:"material_name"`
			Quantity     float64          `json:"quantity"`
			LotStatus    models.LotStatus `json:"lot_status"`
		}

		var rows []traceRow
		err = database.DB.Model(&models.LotAllocation{}).
			Select("lot_allocations.lot_id, material_lots.lot_code, materials.name AS material_name, SUM(lot_allocations.quantity) AS quantity, material_lots.status AS lot_status").
			Joins("JOIN material_lots ON material_lots.id = lot_allocations.lot_id").
			Joins("JOIN materials ON materials.id = material_lots.material_id").
			Where("lot_allocations.batch_id = ?", batchID).
			Group("lot_allocations.lot_id, material_lots.lot_code, materials.name, material_lots.status").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İzlenebilirlik sorgusu başarısız")
		}

		return c.JSON(fiber.Map{
			"batch_id":   b.ID,
			"batch_code": b.BatchCode,
			"lots":       rows,
		})
	}
}
