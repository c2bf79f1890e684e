package catalog

import (
	"fmt"

	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CheckpointRequest struct {
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	Stage        models.Stage `json:"stage"`
	Required     *bool        `json:"required"`
	DisplayOrder *int         `json:"display_order"`
	IsActive     *bool        `json:"is_active"`
}

// POST /api/admin/checkpoints
func CreateCheckpointHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CheckpointRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Code == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "code ve name zorunlu")
		}
		if !models.ValidStage(body.Stage) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz aşama: %s", body.Stage))
		}

		cp := models.QACheckpoint{
			Code:     body.Code,
			Name:     body.Name,
			Stage:    body.Stage,
			IsActive: true,
		}
		if body.Required != nil {
			cp.Required = *body.Required
		}
		if body.DisplayOrder != nil {
			cp.DisplayOrder = *body.DisplayOrder
		}

		if err := database.DB.Create(&cp).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kontrol noktası oluşturulamadı (kod kayıtlı olabilir)")
		}
		return c.Status(fiber.StatusCreated).JSON(cp)
	}
}

// GET /api/checkpoints?stage=mixing&active=true
func ListCheckpointsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.QACheckpoint{})
		if stage := c.Query("stage"); stage != "" {
			if !models.ValidStage(models.Stage(stage)) {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz aşama: %s", stage))
			}
			dbq = dbq.Where("stage = ?", stage)
		}
		if c.Query("active") == "true" {
			dbq = dbq.Where("is_active = ?", true)
		}

		var checkpoints []models.QACheckpoint
		if err := dbq.Order("stage ASC, display_order ASC").Find(&checkpoints).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kontrol noktaları listelenemedi")
		}
		return c.JSON(checkpoints)
	}
}

// PUT /api/admin/checkpoints/:id
// Not: Pasife alınan kontrol noktası ilerleme hesabından düşer ama partilerin
// geçmiş kontrol kayıtları silinmez (denetim için durur).
func UpdateCheckpointHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kontrol noktası ID")
		}

		var cp models.QACheckpoint
		if err := database.DB.First(&cp, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kontrol noktası bulunamadı")
		}

		var body CheckpointRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name != "" {
			cp.Name = body.Name
		}
		if body.Stage != "" {
			if !models.ValidStage(body.Stage) {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz aşama: %s", body.Stage))
			}
			cp.Stage = body.Stage
		}
		if body.Required != nil {
			cp.Required = *body.Required
		}
		if body.DisplayOrder != nil {
			cp.DisplayOrder = *body.DisplayOrder
		}
		if body.IsActive != nil {
			cp.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&cp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kontrol noktası güncellenemedi")
		}
		return c.JSON(cp)
	}
}
