package recipe

import (
	"fmt"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/models"
)

// ScaledIngredient: Ölçeklenmiş bir reçete satırı. Kür bayrağı ve tipi
// reçeteden aynen taşınır; tolerans ve birim değişmez.
type ScaledIngredient struct {
	MaterialID       uint    `json:"material_id"`
	MaterialName     string  `json:"material_name"`
	TargetAmount     float64 `json:"target_amount"`
	Unit             string  `json:"unit"`
	TolerancePercent float64 `json:"tolerance_percent"`
	IsCritical       bool    `json:"is_critical"`
	IsCure           bool    `json:"is_cure"`
	CureType         string  `json:"cure_type,omitempty"`
}

type ScaledRecipe struct {
	RecipeID      uint               `json:"recipe_id"`
	ScalingFactor float64            `json:"scaling_factor"`
	Ingredients   []ScaledIngredient `json:"ingredients"`
}

// Scale: Baz reçeteyi istenen giriş ağırlığına ölçekler.
// scaling_factor = inputWeight / BaseWeight; her satırda
// target_amount = quantity * scaling_factor. Saf sayısal dönüşümdür,
// yuvarlama yapılmaz (yuvarlama sadece sunum katmanının işidir).
func Scale(r *models.Recipe, inputWeight float64) (*ScaledRecipe, error) {
	if r.BaseWeight <= 0 {
		return nil, apperr.Validation(fmt.Sprintf("Reçete baz ağırlığı pozitif olmalı (reçete ID: %d)", r.ID))
	}
	if inputWeight <= 0 {
		return nil, apperr.Validation("Giriş ağırlığı pozitif olmalı")
	}

	factor := inputWeight / r.BaseWeight
	out := &ScaledRecipe{
		RecipeID:      r.ID,
		ScalingFactor: factor,
		Ingredients:   make([]ScaledIngredient, 0, len(r.Ingredients)),
	}
	for _, line := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, ScaledIngredient{
			MaterialID:       line.MaterialID,
			MaterialName:     line.Material.Name,
			TargetAmount:     line.Quantity * factor,
			Unit:             line.Unit,
			TolerancePercent: line.TolerancePercent,
			IsCritical:       line.IsCritical,
			IsCure:           line.IsCure,
			CureType:         line.CureType,
		})
	}
	return out, nil
}

// ValidateIngredients: Reçete yazım zamanı doğrulaması - en fazla bir kür
// satırı olabilir ve kür satırı kür tipini belirtmek zorundadır.
func ValidateIngredients(lines []models.RecipeIngredient) error {
	cureCount := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			return apperr.Validation("Malzeme miktarı pozitif olmalı")
		}
		if line.TolerancePercent < 0 {
			return apperr.Validation("Tolerans yüzdesi negatif olamaz")
		}
		if line.IsCure {
			cureCount++
			if line.CureType == "" {
				return apperr.Validation("Kür malzemesi için kür tipi belirtilmeli")
			}
		}
	}
	if cureCount > 1 {
		return apperr.Validation("Bir reçetede en fazla bir kür malzemesi olabilir")
	}
	return nil
}
