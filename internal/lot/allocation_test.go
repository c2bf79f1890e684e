package lot

import (
	"testing"
	"time"

	"uretim-backend/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func availableLot(id uint, code string, expiry, received string, balance float64) models.MaterialLot {
	return models.MaterialLot{
		ID:           id,
		LotCode:      code,
		ExpiryDate:   day(expiry),
		ReceivedDate: day(received),
		Balance:      balance,
		Status:       models.LotStatusAvailable,
	}
}

func TestPlanAllocationFEFO(t *testing.T) {
	// Lot A (SKT 2024-01-10, 100) ve lot B (SKT 2024-02-01, 100);
	// 150 talep önce A'dan 100, sonra B'den 50 çekmeli
	lots := []models.MaterialLot{
		availableLot(2, "B", "2024-02-01", "2024-01-02", 100),
		availableLot(1, "A", "2024-01-10", "2024-01-01", 100),
	}
	plan := PlanAllocation(150, lots)

	if len(plan.Draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(plan.Draws))
	}
	if plan.Draws[0].LotCode != "A" || plan.Draws[0].Quantity != 100 {
		t.Fatalf("first draw must empty lot A: %+v", plan.Draws[0])
	}
	if plan.Draws[1].LotCode != "B" || plan.Draws[1].Quantity != 50 {
		t.Fatalf("second draw must take 50 from B: %+v", plan.Draws[1])
	}
	if plan.Allocated != 150 || plan.Shortfall != 0 {
		t.Fatalf("allocated/shortfall: %+v", plan)
	}
}

func TestPlanAllocationExpiryTieBreaksOnReceived(t *testing.T) {
	lots := []models.MaterialLot{
		availableLot(1, "LATE", "2024-03-01", "2024-01-20", 50),
		availableLot(2, "EARLY", "2024-03-01", "2024-01-05", 50),
	}
	plan := PlanAllocation(60, lots)
	if plan.Draws[0].LotCode != "EARLY" {
		t.Fatalf("tie on expiry must prefer earliest received, got %s", plan.Draws[0].LotCode)
	}
}

func TestPlanAllocationShortfallIsNotAnError(t *testing.T) {
	lots := []models.MaterialLot{
		availableLot(1, "A", "2024-01-10", "2024-01-01", 40),
	}
	plan := PlanAllocation(100, lots)
	if plan.Allocated != 40 || plan.Shortfall != 60 {
		t.Fatalf("partial allocation must report shortfall: %+v", plan)
	}
}

func TestPlanAllocationSkipsUnavailableLots(t *testing.T) {
	recalled := availableLot(1, "R", "2024-01-01", "2024-01-01", 100)
	recalled.Status = models.LotStatusRecalled
	depleted := availableLot(2, "D", "2024-01-02", "2024-01-01", 0)
	depleted.Status = models.LotStatusDepleted
	ok := availableLot(3, "OK", "2024-05-01", "2024-01-01", 30)

	plan := PlanAllocation(50, []models.MaterialLot{recalled, depleted, ok})
	if len(plan.Draws) != 1 || plan.Draws[0].LotCode != "OK" {
		t.Fatalf("recalled/depleted lots must be skipped: %+v", plan.Draws)
	}
	if plan.Shortfall != 20 {
		t.Fatalf("expected shortfall 20, got %v", plan.Shortfall)
	}
}

func TestPlanAllocationNeverOverdraws(t *testing.T) {
	lots := []models.MaterialLot{
		availableLot(1, "A", "2024-01-10", "2024-01-01", 10),
		availableLot(2, "B", "2024-02-01", "2024-01-01", 10),
	}
	plan := PlanAllocation(5, lots)
	if plan.Allocated != 5 || len(plan.Draws) != 1 {
		t.Fatalf("must stop once demand satisfied: %+v", plan)
	}
	for _, d := range plan.Draws {
		if d.Quantity > 10 {
			t.Fatalf("draw exceeds lot balance: %+v", d)
		}
	}
}
