package compliance

import (
	"testing"

	"uretim-backend/internal/models"
)

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }

func passedCheck(checkpointID uint) models.BatchQACheck {
	return models.BatchQACheck{CheckpointID: checkpointID, Status: models.CheckStatusPassed}
}

func checkpoint(id uint, code string, stage models.Stage, required bool, order int) models.QACheckpoint {
	return models.QACheckpoint{ID: id, Code: code, Stage: stage, Required: required, DisplayOrder: order, IsActive: true}
}

func TestToleranceCompliancePercentExcludesUnmeasured(t *testing.T) {
	ingredients := []models.BatchIngredient{
		{TargetAmount: 100, ActualAmount: fptr(101), InTolerance: bptr(true)},
		{TargetAmount: 100, ActualAmount: fptr(120), InTolerance: bptr(false)},
		{TargetAmount: 50}, // tartım girilmemiş, hesaba girmemeli
	}
	if got := ToleranceCompliancePercent(ingredients); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestToleranceCompliancePercentNoMeasurements(t *testing.T) {
	ingredients := []models.BatchIngredient{
		{TargetAmount: 100},
		{TargetAmount: 50},
	}
	if got := ToleranceCompliancePercent(ingredients); got != 0 {
		t.Fatalf("expected 0 when nothing measured, got %d", got)
	}
}

func TestInTolerance(t *testing.T) {
	cases := []struct {
		target, actual, tol float64
		want                bool
	}{
		{100, 105, 5, true},
		{100, 105.01, 5, false},
		{100, 95, 5, true},
		{100, 94.9, 5, false},
		{1250, 1250, 0, true},
		{0, 0, 5, true},
		{0, 1, 5, false},
	}
	for _, c := range cases {
		if got := InTolerance(c.target, c.actual, c.tol); got != c.want {
			t.Errorf("InTolerance(%v, %v, %v) = %v, want %v", c.target, c.actual, c.tol, got, c.want)
		}
	}
}

func TestStageProgressEmptyStageIsComplete(t *testing.T) {
	// Zorunlu kontrol noktası olmayan aşama %100 sayılır
	p := StageProgressFor(models.StageDrying, nil, nil)
	if p.TotalRequired != 0 || p.CompletedRequired != 0 || p.Percentage != 100 {
		t.Fatalf("empty stage: %+v", p)
	}
}

func TestStageProgressCountsOnlyRequired(t *testing.T) {
	cps := []models.QACheckpoint{
		checkpoint(1, "PREP-1", models.StagePreparation, true, 1),
		checkpoint(2, "PREP-2", models.StagePreparation, true, 2),
		checkpoint(3, "PREP-OPT", models.StagePreparation, false, 3),
		checkpoint(4, "MIX-1", models.StageMixing, true, 1),
	}
	checks := map[uint]models.BatchQACheck{
		1: passedCheck(1),
		3: passedCheck(3), // opsiyonel, sayılmamalı
		4: {CheckpointID: 4, Status: models.CheckStatusFailed},
	}
	p := StageProgressFor(models.StagePreparation, cps, checks)
	if p.TotalRequired != 2 || p.CompletedRequired != 1 || p.Percentage != 50 {
		t.Fatalf("preparation progress: %+v", p)
	}
	pm := StageProgressFor(models.StageMixing, cps, checks)
	if pm.CompletedRequired != 0 {
		t.Fatalf("failed check counted as completed: %+v", pm)
	}
}

func TestCurrentStageAndOverallPercent(t *testing.T) {
	// 3 aşama, her birinde 2 zorunlu; sadece 1. aşama bitmiş
	cps := []models.QACheckpoint{
		checkpoint(1, "PREP-1", models.StagePreparation, true, 1),
		checkpoint(2, "PREP-2", models.StagePreparation, true, 2),
		checkpoint(3, "MIX-1", models.StageMixing, true, 1),
		checkpoint(4, "MIX-2", models.StageMixing, true, 2),
		checkpoint(5, "MAR-1", models.StageMarination, true, 1),
		checkpoint(6, "MAR-2", models.StageMarination, true, 2),
	}
	checks := map[uint]models.BatchQACheck{
		1: passedCheck(1),
		2: passedCheck(2),
	}
	progresses := ComputeStageProgresses(cps, checks)
	if got := CurrentStage(progresses); got != models.StageMixing {
		t.Fatalf("expected mixing, got %s", got)
	}
	if got := OverallPercent(progresses); got != 33 {
		t.Fatalf("expected overall 33, got %d", got)
	}
	if CanComplete(progresses) {
		t.Fatal("CanComplete should be false with pending required checkpoints")
	}
}

func TestCurrentStageAllCompleteIsFinal(t *testing.T) {
	cps := []models.QACheckpoint{
		checkpoint(1, "PREP-1", models.StagePreparation, true, 1),
	}
	checks := map[uint]models.BatchQACheck{1: passedCheck(1)}
	progresses := ComputeStageProgresses(cps, checks)
	if got := CurrentStage(progresses); got != models.StageFinal {
		t.Fatalf("expected final, got %s", got)
	}
	if got := OverallPercent(progresses); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestOverallPercentNoRequiredCheckpoints(t *testing.T) {
	progresses := ComputeStageProgresses(nil, nil)
	if got := OverallPercent(progresses); got != 100 {
		t.Fatalf("expected 100 when nothing is required, got %d", got)
	}
	if !CanComplete(progresses) {
		t.Fatal("no required checkpoints means completable")
	}
}

func TestCurrentCheckpointRequiredFirstThenOptional(t *testing.T) {
	cps := []models.QACheckpoint{
		checkpoint(3, "MIX-OPT", models.StageMixing, false, 1), // sıraca önde ama opsiyonel
		checkpoint(1, "MIX-TEMP", models.StageMixing, true, 2),
		checkpoint(2, "MIX-PH", models.StageMixing, true, 3),
	}
	checks := map[uint]models.BatchQACheck{}

	// Önce zorunlu gelmeli (görüntüleme sırasına göre ilk zorunlu)
	cur := CurrentCheckpoint(models.StageMixing, cps, checks)
	if cur == nil || cur.Code != "MIX-TEMP" {
		t.Fatalf("expected MIX-TEMP, got %+v", cur)
	}

	// Zorunlular bitince opsiyonel
	checks[1] = passedCheck(1)
	checks[2] = passedCheck(2)
	cur = CurrentCheckpoint(models.StageMixing, cps, checks)
	if cur == nil || cur.Code != "MIX-OPT" {
		t.Fatalf("expected MIX-OPT, got %+v", cur)
	}

	// Hepsi bitince aşama temiz
	checks[3] = passedCheck(3)
	if cur = CurrentCheckpoint(models.StageMixing, cps, checks); cur != nil {
		t.Fatalf("expected stage clear, got %+v", cur)
	}
}

func TestCanCompleteFlipsOnLastRequiredPass(t *testing.T) {
	cps := []models.QACheckpoint{
		checkpoint(1, "PREP-1", models.StagePreparation, true, 1),
		checkpoint(2, "FIN-1", models.StageFinal, true, 1),
	}
	checks := map[uint]models.BatchQACheck{1: passedCheck(1)}
	if CanComplete(ComputeStageProgresses(cps, checks)) {
		t.Fatal("should not be completable yet")
	}
	checks[2] = passedCheck(2)
	if !CanComplete(ComputeStageProgresses(cps, checks)) {
		t.Fatal("last required pass must flip CanComplete to true")
	}
}

func TestAllRequiredPassedStricterThanCanComplete(t *testing.T) {
	cps := []models.QACheckpoint{
		checkpoint(1, "PREP-1", models.StagePreparation, true, 1),
		checkpoint(2, "MIX-1", models.StageMixing, true, 1),
	}
	checks := map[uint]models.BatchQACheck{
		1: passedCheck(1),
		2: {CheckpointID: 2, Status: models.CheckStatusConditional},
	}
	if AllRequiredPassed(cps, checks) {
		t.Fatal("conditional is not passed")
	}
	codes := FailedRequiredCodes(cps, checks)
	if len(codes) != 1 || codes[0] != "MIX-1" {
		t.Fatalf("expected [MIX-1], got %v", codes)
	}
}
