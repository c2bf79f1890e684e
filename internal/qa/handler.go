package qa

import (
	"fmt"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RecordCheckRequest struct {
	CheckpointID     uint               `json:"checkpoint_id"`
	Status           models.CheckStatus `json:"status"`
	Temperature      *float64           `json:"temperature"`
	Humidity         *float64           `json:"humidity"`
	PH               *float64           `json:"ph"`
	WaterActivity    *float64           `json:"water_activity"`
	Notes            string             `json:"notes"`
	CorrectiveAction string             `json:"corrective_action"`
}

type CheckResponse struct {
	ID               uint               `json:"id"`
	BatchID          uint               `json:"batch_id"`
	CheckpointID     uint               `json:"checkpoint_id"`
	CheckpointCode   string             `json:"checkpoint_code"`
	Status           models.CheckStatus `json:"status"`
	Temperature      *float64           `json:"temperature"`
	Humidity         *float64           `json:"humidity"`
	PH               *float64           `json:"ph"`
	WaterActivity    *float64           `json:"water_activity"`
	Notes            string             `json:"notes"`
	CorrectiveAction string             `json:"corrective_action"`
	CheckedBy        string             `json:"checked_by"`
	CheckedAt        string             `json:"checked_at"`
}

func checkToResponse(chk *models.BatchQACheck) CheckResponse {
	return CheckResponse{
		ID:               chk.ID,
		BatchID:          chk.BatchID,
		CheckpointID:     chk.CheckpointID,
		CheckpointCode:   chk.Checkpoint.Code,
		Status:           chk.Status,
		Temperature:      chk.Temperature,
		Humidity:         chk.Humidity,
		PH:               chk.PH,
		WaterActivity:    chk.WaterActivity,
		Notes:            chk.Notes,
		CorrectiveAction: chk.CorrectiveAction,
		CheckedBy:        chk.CheckedByName,
		CheckedAt:        chk.CheckedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/batches/:id/checks
func RecordCheckHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}

		var body RecordCheckRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.CheckpointID == 0 || body.Status == "" {
			return fiber.NewError(fiber.StatusBadRequest, "checkpoint_id ve status zorunlu")
		}

		check, err := RecordCheck(database.DB, RecordCheckInput{
			BatchID:      uint(batchID),
			CheckpointID: body.CheckpointID,
			Status:       body.Status,
			Measurements: Measurements{
				Temperature:   body.Temperature,
				Humidity:      body.Humidity,
				PH:            body.PH,
				WaterActivity: body.WaterActivity,
			},
			Notes:            body.Notes,
			CorrectiveAction: body.CorrectiveAction,
		}, actor)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "batch_qa_check",
			EntityID:    check.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Kontrol kaydı: parti %d, %s = %s", check.BatchID, check.Checkpoint.Code, check.Status),
			After:       check,
		})

		return c.Status(fiber.StatusCreated).JSON(checkToResponse(check))
	}
}

// GET /api/batches/:id/checks - partinin mevcut kontrol kayıtları
func ListChecksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}

		var checks []models.BatchQACheck
		if err := database.DB.Preload("Checkpoint").
			Where("batch_id = ?", batchID).
			Order("checked_at DESC").
			Find(&checks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kontrol kayıtları listelenemedi")
		}

		out := make([]CheckResponse, 0, len(checks))
		for i := range checks {
			out = append(out, checkToResponse(&checks[i]))
		}
		return c.JSON(out)
	}
}

// GET /api/batches/:id/progress
func GetProgressHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}

		progress, err := GetProgress(database.DB, uint(batchID))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(progress)
	}
}

// POST /api/batches/:id/complete
func CompleteBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}

		result, err := CompleteBatch(database.DB, uint(batchID), actor)
		if err != nil {
			return apperr.ToFiber(err)
		}

		if !result.Success {
			// Yapılandırılmış red: eksik kodlar kullanıcıya aynen gösterilir
			return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "batch",
			EntityID:    uint(batchID),
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Parti tamamlandı (ID: %d)", batchID),
			After:       result,
		})

		return c.JSON(result)
	}
}
