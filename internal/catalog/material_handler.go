package catalog

import (
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MaterialRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	IsActive *bool  `json:"is_active"`
}

// POST /api/admin/materials
func CreateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Code == "" || body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "code, name ve unit zorunlu")
		}

		m := models.Material{Code: body.Code, Name: body.Name, Unit: body.Unit, IsActive: true}
		if err := database.DB.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme oluşturulamadı (kod kayıtlı olabilir)")
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// GET /api/materials
func ListMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var materials []models.Material
		if err := database.DB.Order("code ASC").Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler listelenemedi")
		}
		return c.JSON(materials)
	}
}

// PUT /api/admin/materials/:id
func UpdateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme ID")
		}

		var m models.Material
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		var body MaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name != "" {
			m.Name = body.Name
		}
		if body.Unit != "" {
			m.Unit = body.Unit
		}
		if body.IsActive != nil {
			m.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme güncellenemedi")
		}
		return c.JSON(m)
	}
}
