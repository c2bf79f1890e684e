package qa

import (
	"database/sql"
	"fmt"
	"time"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/compliance"
	"uretim-backend/internal/models"
	"uretim-backend/internal/release"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Parti başına durum makinesi: durumlar sabit aşama dizisidir ve geçişler
// yalnızca kontrol kaydı girilmesiyle yürür. "Mevcut aşama" hiçbir zaman
// saklanmaz, her seferinde ham kayıtlardan yeniden hesaplanır - saklanan
// durumla kayıtlar arasında sapma olamaz.

type RecordCheckInput struct {
	BatchID          uint
	CheckpointID     uint
	Status           models.CheckStatus
	Measurements     Measurements
	Notes            string
	CorrectiveAction string
}

type Measurements struct {
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	PH            *float64 `json:"ph"`
	WaterActivity *float64 `json:"water_activity"`
}

// RecordCheck: (batch_id, checkpoint_id) anahtarıyla atomik upsert.
// Hiçbir durum geçişi yasak değildir - operatör "passed" bir kontrolü
// "failed"a çekebilir (yeniden kontrol önceki geçişi geçersiz kılabilir).
// Motor tavsiye niteliklidir; doğruluk CheckedAt'in her zaman son
// değerlendirmeyi yansıtmasına dayanır.
func RecordCheck(db *gorm.DB, in RecordCheckInput, actor auth.Actor) (*models.BatchQACheck, error) {
	if in.BatchID == 0 || in.CheckpointID == 0 {
		return nil, apperr.Validation("batch_id ve checkpoint_id zorunlu")
	}
	if !models.ValidCheckStatus(in.Status) {
		return nil, apperr.Validation(fmt.Sprintf("Geçersiz kontrol durumu: %s", in.Status))
	}

	var batch models.Batch
	if err := db.First(&batch, "id = ?", in.BatchID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound(fmt.Sprintf("Parti bulunamadı (ID: %d)", in.BatchID))
		}
		return nil, apperr.Collaborator("Parti okunamadı", err)
	}

	var checkpoint models.QACheckpoint
	if err := db.First(&checkpoint, "id = ?", in.CheckpointID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound(fmt.Sprintf("Kontrol noktası bulunamadı (ID: %d)", in.CheckpointID))
		}
		return nil, apperr.Collaborator("Kontrol noktası okunamadı", err)
	}
	if !checkpoint.IsActive {
		return nil, apperr.Precondition(fmt.Sprintf("Kontrol noktası pasif: %s", checkpoint.Code))
	}

	check := models.BatchQACheck{
		BatchID:          in.BatchID,
		CheckpointID:     in.CheckpointID,
		Status:           in.Status,
		Temperature:      in.Measurements.Temperature,
		Humidity:         in.Measurements.Humidity,
		PH:               in.Measurements.PH,
		WaterActivity:    in.Measurements.WaterActivity,
		Notes:            in.Notes,
		CorrectiveAction: in.CorrectiveAction,
		CheckedByID:      actor.ID,
		CheckedByName:    actor.Name,
		CheckedAt:        time.Now(),
	}

	// Atomik upsert: aynı ikiliye eşzamanlı iki kayıt, geç CheckedAt kazanacak
	// şekilde collaborator tarafından serileştirilir. Motor kendi kilidini tutmaz.
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "batch_id"}, {Name: "checkpoint_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "temperature", "humidity", "ph", "water_activity",
			"notes", "corrective_action", "checked_by_id", "checked_by_name",
			"checked_at", "updated_at",
		}),
	}).Create(&check).Error
	if err != nil {
		return nil, apperr.Collaborator("Kontrol kaydı yazılamadı", err)
	}

	// Kalıcı hali döndür (upsert güncelleme yaptıysa ID orijinal satırındır)
	var saved models.BatchQACheck
	if err := db.Preload("Checkpoint").
		First(&saved, "batch_id = ? AND checkpoint_id = ?", in.BatchID, in.CheckpointID).Error; err != nil {
		return nil, apperr.Collaborator("Kontrol kaydı okunamadı", err)
	}
	return &saved, nil
}

// ProgressResponse: Partinin anlık QA ilerlemesi - tamamı türetilmiş değerdir.
type ProgressResponse struct {
	BatchID           uint                       `json:"batch_id"`
	BatchCode         string                     `json:"batch_code"`
	CurrentStage      models.Stage               `json:"current_stage"`
	OverallPercent    int                        `json:"overall_percent"`
	Stages            []compliance.StageProgress `json:"stages"`
	CurrentCheckpoint *CheckpointSummary         `json:"current_checkpoint"` // yoksa null
	CanComplete       bool                       `json:"can_complete"`
}

type CheckpointSummary struct {
	ID       uint         `json:"id"`
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Stage    models.Stage `json:"stage"`
	Required bool         `json:"required"`
}

// GetProgress: Aktif kontrol noktaları ve partinin kayıtlarından ilerlemeyi
// hesaplar. Sonradan pasife alınan kontrol noktaları toplamlardan düşer;
// geçmiş kayıtları durur ama hesaba girmez.
func GetProgress(db *gorm.DB, batchID uint) (*ProgressResponse, error) {
	var batch models.Batch
	if err := db.First(&batch, "id = ?", batchID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound(fmt.Sprintf("Parti bulunamadı (ID: %d)", batchID))
		}
		return nil, apperr.Collaborator("Parti okunamadı", err)
	}

	checkpoints, checkMap, err := loadCheckData(db, batchID)
	if err != nil {
		return nil, err
	}

	progresses := compliance.ComputeStageProgresses(checkpoints, checkMap)
	currentStage := compliance.CurrentStage(progresses)

	resp := &ProgressResponse{
		BatchID:        batch.ID,
		BatchCode:      batch.BatchCode,
		CurrentStage:   currentStage,
		OverallPercent: compliance.OverallPercent(progresses),
		Stages:         progresses,
		CanComplete:    compliance.CanComplete(progresses),
	}

	if cp := compliance.CurrentCheckpoint(currentStage, checkpoints, checkMap); cp != nil {
		resp.CurrentCheckpoint = &CheckpointSummary{
			ID:       cp.ID,
			Code:     cp.Code,
			Name:     cp.Name,
			Stage:    cp.Stage,
			Required: cp.Required,
		}
	}

	return resp, nil
}

// CompleteResult: Tamamlama denemesinin yapılandırılmış sonucu. Kapı
// tutmadığında Success=false ve eksik kontrol noktası kodları döner -
// sessiz no-op asla olmaz.
type CompleteResult struct {
	Success           bool                 `json:"success"`
	ReleaseStatus     models.ReleaseStatus `json:"release_status,omitempty"`
	FailedCheckpoints []string             `json:"failed_checkpoints,omitempty"`
	Message           string               `json:"message"`
}

// CompleteBatch: Kapı kontrolü + durum geçişi + serbest bırakma
// değerlendirmesi tek transaction'dır (repeatable read). Eşzamanlı bir
// RecordCheck, değerlendirme başladıktan sonra kapı hesabına sızamaz.
func CompleteBatch(db *gorm.DB, batchID uint, actor auth.Actor) (*CompleteResult, error) {
	var result *CompleteResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.First(&batch, "id = ?", batchID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound(fmt.Sprintf("Parti bulunamadı (ID: %d)", batchID))
			}
			return apperr.Collaborator("Parti okunamadı", err)
		}
		if batch.Status == models.BatchStatusCompleted {
			return apperr.Precondition("Parti zaten tamamlanmış")
		}

		checkpoints, checkMap, err := loadCheckData(tx, batchID)
		if err != nil {
			return err
		}

		progresses := compliance.ComputeStageProgresses(checkpoints, checkMap)
		if !compliance.CanComplete(progresses) {
			result = &CompleteResult{
				Success:           false,
				FailedCheckpoints: compliance.FailedRequiredCodes(checkpoints, checkMap),
				Message:           "Zorunlu kontrol noktaları tamamlanmadan parti kapatılamaz",
			}
			return nil
		}

		now := time.Now()
		batch.Status = models.BatchStatusCompleted
		batch.CompletedAt = &now
		if err := tx.Save(&batch).Error; err != nil {
			return apperr.Collaborator("Parti güncellenemedi", err)
		}

		// Serbest bırakma değerlendirmesi aynı mantıksal işlemin parçası
		rel, err := release.EnsureRelease(tx, batchID)
		if err != nil {
			return err
		}
		if _, err := release.RefreshGates(tx, rel); err != nil {
			return err
		}

		result = &CompleteResult{
			Success:       true,
			ReleaseStatus: rel.Status,
			Message:       fmt.Sprintf("Parti tamamlandı, serbest bırakma durumu: %s", rel.Status),
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadCheckData: Aktif kontrol noktaları + partinin kayıtları (checkpoint ID
// ile anahtarlı). Tüm ilerleme/kapı hesapları bu ikiliden beslenir.
func loadCheckData(db *gorm.DB, batchID uint) ([]models.QACheckpoint, map[uint]models.BatchQACheck, error) {
	var checkpoints []models.QACheckpoint
	if err := db.Where("is_active = ?", true).
		Order("display_order ASC").
		Find(&checkpoints).Error; err != nil {
		return nil, nil, apperr.Collaborator("Kontrol noktaları sorgulanamadı", err)
	}

	var checks []models.BatchQACheck
	if err := db.Where("batch_id = ?", batchID).Find(&checks).Error; err != nil {
		return nil, nil, apperr.Collaborator("Kontrol kayıtları sorgulanamadı", err)
	}

	checkMap := make(map[uint]models.BatchQACheck, len(checks))
	for _, chk := range checks {
		checkMap[chk.CheckpointID] = chk
	}
	return checkpoints, checkMap, nil
}
