package lot

import (
	"math"
	"sort"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/models"

	"gorm.io/gorm"
)

// LotDraw: Bir tahsiste tek bir lottan çekilen miktar.
type LotDraw struct {
	LotID    uint    `json:"lot_id"`
	LotCode  string  `json:"lot_code"`
	Quantity float64 `json:"quantity"`
}

// AllocationPlan: Bir malzeme talebinin tahsis sonucu. Shortfall > 0 bir hata
// değildir - eksik stok parti oluşturmayı engellemez, manuel çözülür.
type AllocationPlan struct {
	Draws     []LotDraw `json:"draws"`
	Allocated float64   `json:"allocated"`
	Shortfall float64   `json:"shortfall"`
}

// PlanAllocation: Saf FEFO planlaması - önce son kullanma tarihi en yakın lot,
// eşitlikte en erken teslim alınan (first-expired-first-out). Bozulma riskini
// en aza indiren temel tahsis politikası budur.
func PlanAllocation(demand float64, lots []models.MaterialLot) AllocationPlan {
	candidates := make([]models.MaterialLot, 0, len(lots))
	for _, l := range lots {
		if l.Status == models.LotStatusAvailable && l.Balance > 0 {
			candidates = append(candidates, l)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].ExpiryDate.Equal(candidates[j].ExpiryDate) {
			return candidates[i].ExpiryDate.Before(candidates[j].ExpiryDate)
		}
		return candidates[i].ReceivedDate.Before(candidates[j].ReceivedDate)
	})

	plan := AllocationPlan{Draws: make([]LotDraw, 0)}
	remaining := demand
	for _, l := range candidates {
		if remaining <= 0 {
			break
		}
		take := math.Min(remaining, l.Balance)
		plan.Draws = append(plan.Draws, LotDraw{LotID: l.ID, LotCode: l.LotCode, Quantity: take})
		plan.Allocated += take
		remaining -= take
	}
	plan.Shortfall = remaining
	return plan
}

// AllocateForIngredient: Bir parti malzemesinin talebini FEFO sırasıyla
// mevcut lotlardan karşılar. Bakiye düşümü storage sınırında koşullu
// UPDATE'tir (balance >= take şartıyla); yarış kaybedilirse bakiye yeniden
// okunup kalan kadarıyla denenir - "kalandan fazlasını asla tahsis etme".
// Her başarılı çekim değişmez bir LotAllocation kenarı yaratır.
func AllocateForIngredient(db *gorm.DB, ing *models.BatchIngredient, demand float64) (AllocationPlan, error) {
	plan := AllocationPlan{Draws: make([]LotDraw, 0)}
	if demand <= 0 {
		return plan, nil
	}

	var lots []models.MaterialLot
	if err := db.
		Where("material_id = ? AND status = ? AND balance > 0", ing.MaterialID, models.LotStatusAvailable).
		Order("expiry_date ASC, received_date ASC").
		Find(&lots).Error; err != nil {
		return plan, apperr.Collaborator("Lotlar sorgulanamadı", err)
	}

	remaining := demand
	for i := range lots {
		if remaining <= 0 {
			break
		}
		draw, err := drawFromLot(db, ing, lots[i].ID, remaining)
		if err != nil {
			return plan, err
		}
		if draw != nil {
			plan.Draws = append(plan.Draws, *draw)
			plan.Allocated += draw.Quantity
			remaining -= draw.Quantity
		}
	}
	plan.Shortfall = remaining
	return plan, nil
}

// drawFromLot: Tek lottan en fazla "want" kadar çeker. Koşullu decrement
// yarışı kaybederse bakiyeyi tazeleyip birkaç kez dener; lot bu arada
// tükenmiş veya geri çağrılmışsa nil döner (hata değil, sıradaki lot denenir).
func drawFromLot(db *gorm.DB, ing *models.BatchIngredient, lotID uint, want float64) (*LotDraw, error) {
	for attempt := 0; attempt < 3; attempt++ {
		var cur models.MaterialLot
		if err := db.First(&cur, "id = ?", lotID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, apperr.Collaborator("Lot okunamadı", err)
		}
		if cur.Status != models.LotStatusAvailable || cur.Balance <= 0 {
			return nil, nil
		}

		take := math.Min(want, cur.Balance)
		res := db.Model(&models.MaterialLot{}).
			Where("id = ? AND status = ? AND balance >= ?", lotID, models.LotStatusAvailable, take).
			Update("balance", gorm.Expr("balance - ?", take))
		if res.Error != nil {
			return nil, apperr.Collaborator("Lot bakiyesi düşülemedi", res.Error)
		}
		if res.RowsAffected == 0 {
			// Eşzamanlı bir tahsis önce davrandı; bakiyeyi tazele, tekrar dene
			continue
		}

		alloc := models.LotAllocation{
			BatchIngredientID: ing.ID,
			BatchID:           ing.BatchID,
			LotID:             lotID,
			Quantity:          take,
		}
		if err := db.Create(&alloc).Error; err != nil {
			return nil, apperr.Collaborator("Tahsis kenarı kaydedilemedi", err)
		}

		// Bakiye sıfırlandıysa lotu depleted işaretle (recall'a dokunma)
		db.Model(&models.MaterialLot{}).
			Where("id = ? AND balance = 0 AND status = ?", lotID, models.LotStatusAvailable).
			Update("status", models.LotStatusDepleted)

		return &LotDraw{LotID: lotID, LotCode: cur.LotCode, Quantity: take}, nil
	}
	// Üç denemede de yarış kaybedildi: lotu tükenmiş say, sıradakine geç
	return nil, nil
}
