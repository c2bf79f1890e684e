package recipe

import (
	"fmt"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type IngredientRequest struct {
	MaterialID       uint    `json:"material_id"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	TolerancePercent float64 `json:"tolerance_percent"`
	IsCritical       bool    `json:"is_critical"`
	IsCure           bool    `json:"is_cure"`
	CureType         string  `json:"cure_type"`
}

type CreateRecipeRequest struct {
	ProductID   uint                `json:"product_id"`
	Name        string              `json:"name"`
	BaseWeight  float64             `json:"base_weight"`
	TargetYield float64             `json:"target_yield"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

// POST /api/admin/recipes
func CreateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ProductID == 0 || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "product_id ve name zorunlu")
		}
		if body.BaseWeight <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Baz ağırlık pozitif olmalı")
		}
		if len(body.Ingredients) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir malzeme satırı gerekli")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		lines := make([]models.RecipeIngredient, 0, len(body.Ingredients))
		for i, ing := range body.Ingredients {
			if ing.MaterialID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Satır %d: material_id zorunlu", i+1))
			}
			var material models.Material
			if err := database.DB.First(&material, "id = ?", ing.MaterialID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Satır %d: malzeme bulunamadı (ID: %d)", i+1, ing.MaterialID))
			}
			unit := ing.Unit
			if unit == "" {
				unit = material.Unit
			}
			lines = append(lines, models.RecipeIngredient{
				MaterialID:       ing.MaterialID,
				Quantity:         ing.Quantity,
				Unit:             unit,
				TolerancePercent: ing.TolerancePercent,
				IsCritical:       ing.IsCritical,
				IsCure:           ing.IsCure,
				CureType:         ing.CureType,
				SortOrder:        i,
			})
		}

		// Kür kuralları yazım zamanında doğrulanır (ölçekleme zamanında değil)
		if err := ValidateIngredients(lines); err != nil {
			return apperr.ToFiber(err)
		}

		// Aynı ürünün önceki reçeteleri dursun; versiyon numarası artar
		var maxVersion int
		database.DB.Model(&models.Recipe{}).
			Where("product_id = ?", body.ProductID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion)

		r := models.Recipe{
			ProductID:   body.ProductID,
			Name:        body.Name,
			Version:     maxVersion + 1,
			BaseWeight:  body.BaseWeight,
			TargetYield: body.TargetYield,
			IsActive:    true,
			Ingredients: lines,
		}
		if err := database.DB.Create(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "recipe",
			EntityID:    r.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Reçete oluşturuldu: %s v%d", r.Name, r.Version),
			After:       r,
		})

		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// GET /api/recipes?product_id=1
func ListRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Product").Model(&models.Recipe{})
		if pid := c.QueryInt("product_id"); pid > 0 {
			dbq = dbq.Where("product_id = ?", pid)
		}

		var recipes []models.Recipe
		if err := dbq.Order("product_id ASC, version DESC").Find(&recipes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçeteler listelenemedi")
		}
		return c.JSON(recipes)
	}
}

// GET /api/recipes/:id
func GetRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := c.ParamsInt("id")
		if err != nil || recipeID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz reçete ID")
		}

		var r models.Recipe
		if err := database.DB.
			Preload("Product").
			Preload("Ingredients.Material").
			First(&r, "id = ?", recipeID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}
		return c.JSON(r)
	}
}

// PUT /api/admin/recipes/:id/deactivate - referanslı reçete silinmez, pasife alınır
func DeactivateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := c.ParamsInt("id")
		if err != nil || recipeID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz reçete ID")
		}

		var r models.Recipe
		if err := database.DB.First(&r, "id = ?", recipeID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		r.IsActive = false
		if err := database.DB.Save(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete güncellenemedi")
		}
		return c.JSON(r)
	}
}

type ScaleRequest struct {
	InputWeight float64 `json:"input_weight"`
}

// POST /api/recipes/:id/scale - ölçekleme önizlemesi (parti açmadan)
func ScaleRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := c.ParamsInt("id")
		if err != nil || recipeID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz reçete ID")
		}

		var body ScaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var r models.Recipe
		if err := database.DB.
			Preload("Ingredients.Material").
			First(&r, "id = ?", recipeID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		scaled, err := Scale(&r, body.InputWeight)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(scaled)
	}
}
