package lot

import (
	"fmt"
	"time"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/models"
	"uretim-backend/internal/release"

	"gorm.io/gorm"
)

// AffectedBatch: Geri çağırmadan etkilenen bir parti ve yeni serbest bırakma durumu.
type AffectedBatch struct {
	BatchID       uint                 `json:"batch_id"`
	BatchCode     string               `json:"batch_code"`
	ReleaseStatus models.ReleaseStatus `json:"release_status,omitempty"`
}

type RecallResult struct {
	Lot             models.MaterialLot `json:"lot"`
	AffectedBatches []AffectedBatch    `json:"affected_batches"`
}

// RecallLot: Lotu kalıcı olarak geri çağırır ve tüketim grafiğini yürütür:
// lot -> tahsis kenarları -> partiler -> serbest bırakma kayıtları.
// "approved" durumdaki her tüketici partinin serbest bırakması "recalled"a
// çekilir (izinli tek geri geçiş). Henüz onaylanmamış partilerin durumu
// değişmez ama lot recalled kaldığı sürece onay kapısında bloklanırlar.
func RecallLot(db *gorm.DB, lotID uint, reason, notes string, actor auth.Actor) (*RecallResult, error) {
	if reason == "" {
		return nil, apperr.Validation("Geri çağırma gerekçesi zorunlu")
	}

	var result RecallResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var l models.MaterialLot
		if err := tx.First(&l, "id = ?", lotID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound(fmt.Sprintf("Lot bulunamadı (ID: %d)", lotID))
			}
			return apperr.Collaborator("Lot okunamadı", err)
		}
		if l.Status == models.LotStatusRecalled {
			return apperr.Precondition("Lot zaten geri çağrılmış; geri çağırma kalıcıdır")
		}

		now := time.Now()
		l.Status = models.LotStatusRecalled
		l.RecallReason = reason
		l.RecallNotes = notes
		l.RecalledAt = &now
		if err := tx.Save(&l).Error; err != nil {
			return apperr.Collaborator("Lot güncellenemedi", err)
		}

		// Bu lotu tüketen partiler (tahsis kenarlarından, tekilleştirilmiş)
		var batchIDs []uint
		if err := tx.Model(&models.LotAllocation{}).
			Where("lot_id = ?", lotID).
			Distinct("batch_id").
			Pluck("batch_id", &batchIDs).Error; err != nil {
			return apperr.Collaborator("Tahsis kenarları sorgulanamadı", err)
		}

		recall := models.LotRecall{
			LotID:          lotID,
			Reason:         reason,
			Notes:          notes,
			RecalledByID:   actor.ID,
			RecalledByName: actor.Name,
		}
		if err := tx.Create(&recall).Error; err != nil {
			return apperr.Collaborator("Geri çağırma kaydı oluşturulamadı", err)
		}

		affected := make([]AffectedBatch, 0, len(batchIDs))
		for _, batchID := range batchIDs {
			var b models.Batch
			if err := tx.First(&b, "id = ?", batchID).Error; err != nil {
				return apperr.Collaborator("Parti okunamadı", err)
			}

			var rel models.BatchRelease
			relErr := tx.First(&rel, "batch_id = ?", batchID).Error

			prev := models.ReleaseStatus("")
			next := models.ReleaseStatus("")
			if relErr == nil {
				prev = rel.Status
				next = rel.Status
				if rel.Status == models.ReleaseStatusApproved {
					// Gerekçe lottan miras alınır
					if err := release.CascadeRecall(tx, &rel, fmt.Sprintf("Lot %s geri çağrıldı: %s", l.LotCode, reason)); err != nil {
						return err
					}
					next = models.ReleaseStatusRecalled
				}
			} else if relErr != gorm.ErrRecordNotFound {
				return apperr.Collaborator("Serbest bırakma kaydı okunamadı", relErr)
			}

			if err := tx.Create(&models.LotRecallBatch{
				LotRecallID:    recall.ID,
				BatchID:        batchID,
				PreviousStatus: prev,
				NewStatus:      next,
			}).Error; err != nil {
				return apperr.Collaborator("Etkilenen parti kaydı oluşturulamadı", err)
			}

			affected = append(affected, AffectedBatch{
				BatchID:       batchID,
				BatchCode:     b.BatchCode,
				ReleaseStatus: next,
			})
		}

		result = RecallResult{Lot: l, AffectedBatches: affected}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
