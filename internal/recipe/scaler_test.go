package recipe

import (
	"errors"
	"testing"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/models"
)

func baseRecipe() *models.Recipe {
	return &models.Recipe{
		ID:         7,
		BaseWeight: 10, // kg
		Ingredients: []models.RecipeIngredient{
			{MaterialID: 1, Quantity: 500, Unit: "g", TolerancePercent: 5, IsCritical: true},
			{MaterialID: 2, Quantity: 25, Unit: "g", TolerancePercent: 2, IsCure: true, CureType: "nitrit"},
		},
	}
}

func TestScaleBasic(t *testing.T) {
	// 10kg baz, 500g malzeme, 25kg girişe ölçekle: faktör 2.5, hedef 1250g
	scaled, err := Scale(baseRecipe(), 25)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if scaled.ScalingFactor != 2.5 {
		t.Fatalf("expected factor 2.5, got %v", scaled.ScalingFactor)
	}
	if got := scaled.Ingredients[0].TargetAmount; got != 1250 {
		t.Fatalf("expected 1250, got %v", got)
	}
	if scaled.Ingredients[0].Unit != "g" || scaled.Ingredients[0].TolerancePercent != 5 {
		t.Fatalf("unit/tolerance must be copied unchanged: %+v", scaled.Ingredients[0])
	}
}

func TestScaleIdentityRoundTrip(t *testing.T) {
	r := baseRecipe()
	scaled, err := Scale(r, r.BaseWeight)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if scaled.ScalingFactor != 1 {
		t.Fatalf("expected factor 1, got %v", scaled.ScalingFactor)
	}
	for i, line := range scaled.Ingredients {
		if line.TargetAmount != r.Ingredients[i].Quantity {
			t.Fatalf("identity scale must reproduce base quantities: %v != %v", line.TargetAmount, r.Ingredients[i].Quantity)
		}
	}
}

func TestScalePreservesCureFlags(t *testing.T) {
	scaled, err := Scale(baseRecipe(), 30)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	cure := scaled.Ingredients[1]
	if !cure.IsCure || cure.CureType != "nitrit" {
		t.Fatalf("cure flag/type must survive scaling: %+v", cure)
	}
}

func TestScaleInvalidInputs(t *testing.T) {
	r := baseRecipe()
	r.BaseWeight = 0
	if _, err := Scale(r, 25); !isValidation(err) {
		t.Fatalf("zero base weight must fail validation, got %v", err)
	}
	if _, err := Scale(baseRecipe(), 0); !isValidation(err) {
		t.Fatal("zero input weight must fail validation")
	}
	if _, err := Scale(baseRecipe(), -5); !isValidation(err) {
		t.Fatal("negative input weight must fail validation")
	}
}

func TestValidateIngredientsCureRules(t *testing.T) {
	two := []models.RecipeIngredient{
		{Quantity: 10, IsCure: true, CureType: "nitrit"},
		{Quantity: 10, IsCure: true, CureType: "nitrat"},
	}
	if err := ValidateIngredients(two); !isValidation(err) {
		t.Fatal("two cure lines must fail")
	}

	missingType := []models.RecipeIngredient{{Quantity: 10, IsCure: true}}
	if err := ValidateIngredients(missingType); !isValidation(err) {
		t.Fatal("cure line without cure type must fail")
	}

	ok := []models.RecipeIngredient{
		{Quantity: 10, IsCure: true, CureType: "nitrit"},
		{Quantity: 5, TolerancePercent: 3},
	}
	if err := ValidateIngredients(ok); err != nil {
		t.Fatalf("valid ingredients rejected: %v", err)
	}
}

func isValidation(err error) bool {
	var ae *apperr.Error
	return errors.As(err, &ae) && ae.Kind == apperr.KindValidationFailed
}
