package lot

import (
	"fmt"
	"time"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateLotRequest struct {
	LotCode      string  `json:"lot_code"`
	MaterialID   uint    `json:"material_id"`
	SupplierID   uint    `json:"supplier_id"`
	ReceivedDate string  `json:"received_date"` // "2026-01-15"
	ExpiryDate   string  `json:"expiry_date"`
	Quantity     float64 `json:"quantity"`
}

type LotResponse struct {
	ID               uint             `json:"id"`
	LotCode          string           `json:"lot_code"`
	MaterialID       uint             `json:"material_id"`
	MaterialName     string           `json:"material_name"`
	SupplierID       uint             `json:"supplier_id"`
	SupplierName     string           `json:"supplier_name"`
	ReceivedDate     string           `json:"received_date"`
	ExpiryDate       string           `json:"expiry_date"`
	OriginalQuantity float64          `json:"original_quantity"`
	Balance          float64          `json:"balance"`
	Status           models.LotStatus `json:"status"`
	RecallReason     string           `json:"recall_reason,omitempty"`
}

func lotToResponse(l *models.MaterialLot) LotResponse {
	return LotResponse{
		ID:               l.ID,
		LotCode:          l.LotCode,
		MaterialID:       l.MaterialID,
		MaterialName:     l.Material.Name,
		SupplierID:       l.SupplierID,
		SupplierName:     l.Supplier.Name,
		ReceivedDate:     l.ReceivedDate.Format("2006-01-02"),
		ExpiryDate:       l.ExpiryDate.Format("2006-01-02"),
		OriginalQuantity: l.OriginalQuantity,
		Balance:          l.Balance,
		Status:           l.Status,
		RecallReason:     l.RecallReason,
	}
}

// POST /api/lots - mal kabul
func CreateLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body CreateLotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.LotCode == "" || body.MaterialID == 0 || body.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lot_code, material_id ve supplier_id zorunlu")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar pozitif olmalı")
		}

		received, err := time.Parse("2006-01-02", body.ReceivedDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Teslim tarihi formatı 'YYYY-MM-DD' olmalı")
		}
		expiry, err := time.Parse("2006-01-02", body.ExpiryDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Son kullanma tarihi formatı 'YYYY-MM-DD' olmalı")
		}
		if expiry.Before(received) {
			return fiber.NewError(fiber.StatusBadRequest, "Son kullanma tarihi teslim tarihinden önce olamaz")
		}

		var material models.Material
		if err := database.DB.First(&material, "id = ?", body.MaterialID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme bulunamadı")
		}
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", body.SupplierID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi bulunamadı")
		}

		l := models.MaterialLot{
			LotCode:          body.LotCode,
			MaterialID:       body.MaterialID,
			SupplierID:       body.SupplierID,
			ReceivedDate:     received,
			ExpiryDate:       expiry,
			OriginalQuantity: body.Quantity,
			Balance:          body.Quantity,
			Status:           models.LotStatusAvailable,
		}
		if err := database.DB.Create(&l).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Lot oluşturulamadı (lot kodu kayıtlı olabilir)")
		}
		l.Material = material
		l.Supplier = supplier

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "material_lot",
			EntityID:    l.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Mal kabul: %s (%s, %.2f %s)", l.LotCode, material.Name, l.OriginalQuantity, material.Unit),
			After:       l,
		})

		return c.Status(fiber.StatusCreated).JSON(lotToResponse(&l))
	}
}

// GET /api/lots?material_id=1&status=available
func ListLotsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Material").Preload("Supplier").Model(&models.MaterialLot{})

		if mid := c.QueryInt("material_id"); mid > 0 {
			dbq = dbq.Where("material_id = ?", mid)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var lots []models.MaterialLot
		if err := dbq.Order("expiry_date ASC, received_date ASC").Find(&lots).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Lotlar listelenemedi")
		}

		out := make([]LotResponse, 0, len(lots))
		for i := range lots {
			out = append(out, lotToResponse(&lots[i]))
		}
		return c.JSON(out)
	}
}

type RecallRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// POST /api/lots/:id/recall - sadece manager/admin
func RecallLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		lotID, err := c.ParamsInt("id")
		if err != nil || lotID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz lot ID")
		}

		var body RecallRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		result, err := RecallLot(database.DB, uint(lotID), body.Reason, body.Notes, actor)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "material_lot",
			EntityID:    uint(lotID),
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Lot geri çağrıldı: %s (%d parti etkilendi)", result.Lot.LotCode, len(result.AffectedBatches)),
			After:       result,
		})

		return c.JSON(fiber.Map{
			"lot":              lotToResponse(&result.Lot),
			"affected_batches": result.AffectedBatches,
		})
	}
}

// GET /api/lots/:id/trace - lotu tüketen partiler (izlenebilirlik)
func LotTraceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lotID, err := c.ParamsInt("id")
		if err != nil || lotID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz lot ID")
		}

		var l models.MaterialLot
		if err := database.DB.Preload("Material").Preload("Supplier").
			First(&l, "id = ?", lotID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lot bulunamadı")
		}

		type traceRow struct {
			BatchID       uint                 `json:"batch_id"`
			BatchCode     string               `json:"batch_code"`
			Quantity      float64              `json:"quantity"`
			BatchStatus   models.BatchStatus   `json:"batch_status"`
			ReleaseStatus models.ReleaseStatus `json:"release_status,omitempty"`
		}

		var rows []traceRow
		err = database.DB.Model(&models.LotAllocation{}).
			Select("lot_allocations.batch_id, batches.batch_code, SUM(lot_allocations.quantity) AS quantity, batches.status AS batch_status, batch_releases.status AS release_status").
			Joins("JOIN batches ON batches.id = lot_allocations.batch_id").
			Joins("LEFT JOIN batch_releases ON batch_releases.batch_id = lot_allocations.batch_id").
			Where("lot_allocations.lot_id = ?", lotID).
			Group("lot_allocations.batch_id, batches.batch_code, batches.status, batch_releases.status").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İzlenebilirlik sorgusu başarısız")
		}

		return c.JSON(fiber.Map{
			"lot":     lotToResponse(&l),
			"batches": rows,
		})
	}
}
