package batch

import (
	"fmt"
	"time"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/compliance"
	"uretim-backend/internal/lot"
	"uretim-backend/internal/models"
	"uretim-backend/internal/recipe"

	"gorm.io/gorm"
)

// IngredientAllocation: Parti oluşturma çıktısında her malzemenin tahsis özeti.
type IngredientAllocation struct {
	BatchIngredientID uint               `json:"batch_ingredient_id"`
	MaterialID        uint               `json:"material_id"`
	MaterialName      string             `json:"material_name"`
	TargetAmount      float64            `json:"target_amount"`
	Unit              string             `json:"unit"`
	Plan              lot.AllocationPlan `json:"allocation"`
}

type CreateResult struct {
	Batch       models.Batch           `json:"batch"`
	Allocations []IngredientAllocation `json:"allocations"`
}

// Create: Parti oluşturma akışı - reçeteyi doğrula, ölçekle, malzeme
// hedeflerini partiye kopyala, her malzeme için FEFO tahsis dene.
// Tahsis eksiği parti oluşturmayı iptal ETMEZ: eksik stoklu parti açılır,
// eksik manuel çözülür.
func Create(db *gorm.DB, recipeID uint, inputWeight float64, batchCode string, actor auth.Actor) (*CreateResult, error) {
	var r models.Recipe
	if err := db.Preload("Ingredients.Material").Preload("Product").
		First(&r, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound(fmt.Sprintf("Reçete bulunamadı (ID: %d)", recipeID))
		}
		return nil, apperr.Collaborator("Reçete okunamadı", err)
	}
	if !r.IsActive {
		return nil, apperr.Precondition("Pasif reçeteden parti açılamaz")
	}

	scaled, err := recipe.Scale(&r, inputWeight)
	if err != nil {
		return nil, err
	}

	var result CreateResult
	err = db.Transaction(func(tx *gorm.DB) error {
		if batchCode == "" {
			batchCode = nextBatchCode(tx)
		}

		b := models.Batch{
			BatchCode:     batchCode,
			RecipeID:      r.ID,
			ProductID:     r.ProductID,
			InputWeight:   inputWeight,
			ScalingFactor: scaled.ScalingFactor,
			Status:        models.BatchStatusInProgress,
			CreatedByID:   actor.ID,
			CreatedByName: actor.Name,
		}
		if err := tx.Create(&b).Error; err != nil {
			return apperr.Collaborator("Parti oluşturulamadı (parti kodu kayıtlı olabilir)", err)
		}

		allocations := make([]IngredientAllocation, 0, len(scaled.Ingredients))
		for _, line := range scaled.Ingredients {
			ing := models.BatchIngredient{
				BatchID:          b.ID,
				MaterialID:       line.MaterialID,
				TargetAmount:     line.TargetAmount,
				Unit:             line.Unit,
				TolerancePercent: line.TolerancePercent,
				IsCritical:       line.IsCritical,
				IsCure:           line.IsCure,
				CureType:         line.CureType,
			}
			if err := tx.Create(&ing).Error; err != nil {
				return apperr.Collaborator("Parti malzemesi kaydedilemedi", err)
			}

			plan, err := lot.AllocateForIngredient(tx, &ing, line.TargetAmount)
			if err != nil {
				return err
			}

			allocations = append(allocations, IngredientAllocation{
				BatchIngredientID: ing.ID,
				MaterialID:        line.MaterialID,
				MaterialName:      line.MaterialName,
				TargetAmount:      line.TargetAmount,
				Unit:              line.Unit,
				Plan:              plan,
			})
		}

		result = CreateResult{Batch: b, Allocations: allocations}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// nextBatchCode: PRT-<yıl>-<sıra> formatında kod üretir.
func nextBatchCode(tx *gorm.DB) string {
	year := time.Now().Format("2006")
	var count int64
	tx.Model(&models.Batch{}).Where("batch_code LIKE ?", "PRT-"+year+"-%").Count(&count)
	return fmt.Sprintf("PRT-%s-%04d", year, count+1)
}

// RecordActual: Tartım kaydı - InTolerance o anda hedefe göre hesaplanır.
func RecordActual(db *gorm.DB, batchID, ingredientID uint, actual float64) (*models.BatchIngredient, error) {
	if actual < 0 {
		return nil, apperr.Validation("Tartım miktarı negatif olamaz")
	}

	var ing models.BatchIngredient
	if err := db.Preload("Material").
		First(&ing, "id = ? AND batch_id = ?", ingredientID, batchID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound(fmt.Sprintf("Parti malzemesi bulunamadı (ID: %d)", ingredientID))
		}
		return nil, apperr.Collaborator("Parti malzemesi okunamadı", err)
	}

	inTol := compliance.InTolerance(ing.TargetAmount, actual, ing.TolerancePercent)
	ing.ActualAmount = &actual
	ing.InTolerance = &inTol
	if err := db.Save(&ing).Error; err != nil {
		return nil, apperr.Collaborator("Tartım kaydedilemedi", err)
	}
	return &ing, nil
}
