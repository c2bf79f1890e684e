package release

import (
	"fmt"
	"time"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/compliance"
	"uretim-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gates: Serbest bırakma kapılarının son değerlendirmesi.
type Gates struct {
	AllQAPassed     bool `json:"all_qa_passed"`
	AllTestsPassed  bool `json:"all_tests_passed"`
	AllDocsComplete bool `json:"all_docs_complete"`
	HasRecalledLot  bool `json:"has_recalled_lot"`
}

// Approvable: Üç kapı da açık VE tüketilen hiçbir lot geri çağrılmamış.
func (g Gates) Approvable() bool {
	return g.AllQAPassed && g.AllTestsPassed && g.AllDocsComplete && !g.HasRecalledLot
}

// CanTransition: Serbest bırakma durum geçiş tablosu.
// pending -> approved/rejected/hold; hold -> pending; approved -> recalled.
// approved -> recalled geçişini sadece lot geri çağırma kaskadı kullanır.
func CanTransition(from, to models.ReleaseStatus) bool {
	switch from {
	case models.ReleaseStatusPending:
		return to == models.ReleaseStatusApproved || to == models.ReleaseStatusRejected || to == models.ReleaseStatusHold
	case models.ReleaseStatusHold:
		return to == models.ReleaseStatusPending
	case models.ReleaseStatusApproved:
		return to == models.ReleaseStatusRecalled
	default:
		// rejected ve recalled terminaldir
		return false
	}
}

// DocsComplete: Her zorunlu belge tipi için en az bir onaylı belge var mı? (saf)
func DocsComplete(requirements []models.DocumentRequirement, docs []models.BatchDocument) bool {
	approved := make(map[string]bool)
	for _, d := range docs {
		if d.Status == models.DocumentStatusApproved {
			approved[d.DocType] = true
		}
	}
	for _, req := range requirements {
		if req.Required && !approved[req.DocType] {
			return false
		}
	}
	return true
}

// TestsPassed: Kayıtlı her test geçmiş mi? Hiç test yoksa parti bloklanmaz. (saf)
func TestsPassed(tests []models.ProductTest) bool {
	for _, t := range tests {
		if !t.Passed {
			return false
		}
	}
	return true
}

// EvaluateGates: Kapıları ham kayıtlardan değerlendirir. Sonuç hiçbir yerde
// "doğruluk kaynağı" olarak saklanmaz; BatchRelease üzerindeki kopya sadece
// son değerlendirmenin raporudur.
func EvaluateGates(db *gorm.DB, batchID uint) (Gates, error) {
	var g Gates

	var checkpoints []models.QACheckpoint
	if err := db.Where("is_active = ?", true).Find(&checkpoints).Error; err != nil {
		return g, apperr.Collaborator("Kontrol noktaları sorgulanamadı", err)
	}
	var checks []models.BatchQACheck
	if err := db.Where("batch_id = ?", batchID).Find(&checks).Error; err != nil {
		return g, apperr.Collaborator("Kontrol kayıtları sorgulanamadı", err)
	}
	checkMap := make(map[uint]models.BatchQACheck, len(checks))
	for _, chk := range checks {
		checkMap[chk.CheckpointID] = chk
	}
	g.AllQAPassed = compliance.AllRequiredPassed(checkpoints, checkMap)

	var tests []models.ProductTest
	if err := db.Where("batch_id = ?", batchID).Find(&tests).Error; err != nil {
		return g, apperr.Collaborator("Test kayıtları sorgulanamadı", err)
	}
	g.AllTestsPassed = TestsPassed(tests)

	var requirements []models.DocumentRequirement
	if err := db.Where("required = ?", true).Find(&requirements).Error; err != nil {
		return g, apperr.Collaborator("Belge gereksinimleri sorgulanamadı", err)
	}
	var docs []models.BatchDocument
	if err := db.Where("batch_id = ?", batchID).Find(&docs).Error; err != nil {
		return g, apperr.Collaborator("Belgeler sorgulanamadı", err)
	}
	g.AllDocsComplete = DocsComplete(requirements, docs)

	recalled, err := hasRecalledLot(db, batchID)
	if err != nil {
		return g, err
	}
	g.HasRecalledLot = recalled

	return g, nil
}

// hasRecalledLot: Partinin tükettiği lotlardan herhangi biri geri çağrılmış mı?
func hasRecalledLot(db *gorm.DB, batchID uint) (bool, error) {
	var count int64
	err := db.Model(&models.LotAllocation{}).
		Joins("JOIN material_lots ON material_lots.id = lot_allocations.lot_id").
		Where("lot_allocations.batch_id = ? AND material_lots.status = ?", batchID, models.LotStatusRecalled).
		Count(&count).Error
	if err != nil {
		return false, apperr.Collaborator("İzlenebilirlik sorgusu başarısız", err)
	}
	return count > 0, nil
}

// EnsureRelease: Partinin serbest bırakma kaydını getirir, yoksa pending
// olarak oluşturur (parti başına tek kayıt).
func EnsureRelease(db *gorm.DB, batchID uint) (*models.BatchRelease, error) {
	var rel models.BatchRelease
	err := db.First(&rel, "batch_id = ?", batchID).Error
	if err == nil {
		return &rel, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperr.Collaborator("Serbest bırakma kaydı okunamadı", err)
	}

	rel = models.BatchRelease{
		BatchID:       batchID,
		ReleaseNumber: fmt.Sprintf("REL-%s", uuid.NewString()[:8]),
		Status:        models.ReleaseStatusPending,
	}
	if err := db.Create(&rel).Error; err != nil {
		return nil, apperr.Collaborator("Serbest bırakma kaydı oluşturulamadı", err)
	}
	return &rel, nil
}

// RefreshGates: Kapıları yeniden değerlendirip kayda işler.
func RefreshGates(db *gorm.DB, rel *models.BatchRelease) (Gates, error) {
	gates, err := EvaluateGates(db, rel.BatchID)
	if err != nil {
		return gates, err
	}
	rel.AllQAPassed = gates.AllQAPassed
	rel.AllTestsPassed = gates.AllTestsPassed
	rel.AllDocsComplete = gates.AllDocsComplete
	if err := db.Save(rel).Error; err != nil {
		return gates, apperr.Collaborator("Serbest bırakma kaydı güncellenemedi", err)
	}
	return gates, nil
}

// Approve: pending -> approved. Üç kapı da açık ve tüketilen lotlar temiz olmalı.
func Approve(db *gorm.DB, batchID uint, actor auth.Actor) (*models.BatchRelease, error) {
	var out *models.BatchRelease
	err := db.Transaction(func(tx *gorm.DB) error {
		rel, err := EnsureRelease(tx, batchID)
		if err != nil {
			return err
		}
		if !CanTransition(rel.Status, models.ReleaseStatusApproved) {
			return apperr.Precondition(fmt.Sprintf("'%s' durumundan onaya geçilemez", rel.Status))
		}

		// Kapılar onay anında her zaman yeniden değerlendirilir
		gates, err := RefreshGates(tx, rel)
		if err != nil {
			return err
		}
		if !gates.Approvable() {
			return apperr.Precondition(gateFailureMessage(gates))
		}

		now := time.Now()
		rel.Status = models.ReleaseStatusApproved
		rel.ApprovedByID = &actor.ID
		rel.ApprovedByName = actor.Name
		rel.ApprovedAt = &now
		if err := tx.Save(rel).Error; err != nil {
			return apperr.Collaborator("Serbest bırakma kaydı güncellenemedi", err)
		}
		out = rel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func gateFailureMessage(g Gates) string {
	if g.HasRecalledLot {
		return "Partinin tükettiği en az bir lot geri çağrılmış; onay verilemez"
	}
	if !g.AllQAPassed {
		return "Tüm zorunlu kontrol noktaları geçilmeden onay verilemez"
	}
	if !g.AllTestsPassed {
		return "Başarısız test sonucu varken onay verilemez"
	}
	return "Zorunlu belgeler tamamlanmadan onay verilemez"
}

// Reject: pending -> rejected. Gerekçe zorunlu, geçiş terminaldir.
func Reject(db *gorm.DB, batchID uint, reason string, actor auth.Actor) (*models.BatchRelease, error) {
	if reason == "" {
		return nil, apperr.Validation("Red gerekçesi zorunlu")
	}
	return transition(db, batchID, models.ReleaseStatusRejected, reason, actor)
}

// Hold: pending -> hold. Gerekçe zorunlu, Resume ile geri döndürülebilir.
func Hold(db *gorm.DB, batchID uint, reason string, actor auth.Actor) (*models.BatchRelease, error) {
	if reason == "" {
		return nil, apperr.Validation("Bekletme gerekçesi zorunlu")
	}
	return transition(db, batchID, models.ReleaseStatusHold, reason, actor)
}

// Resume: hold -> pending.
func Resume(db *gorm.DB, batchID uint, actor auth.Actor) (*models.BatchRelease, error) {
	return transition(db, batchID, models.ReleaseStatusPending, "", actor)
}

func transition(db *gorm.DB, batchID uint, to models.ReleaseStatus, reason string, actor auth.Actor) (*models.BatchRelease, error) {
	var out *models.BatchRelease
	err := db.Transaction(func(tx *gorm.DB) error {
		rel, err := EnsureRelease(tx, batchID)
		if err != nil {
			return err
		}
		if !CanTransition(rel.Status, to) {
			return apperr.Precondition(fmt.Sprintf("'%s' durumundan '%s' durumuna geçilemez", rel.Status, to))
		}

		now := time.Now()
		rel.Status = to
		rel.Reason = reason
		rel.ReviewedByID = &actor.ID
		rel.ReviewedByName = actor.Name
		rel.ReviewedAt = &now
		if err := tx.Save(rel).Error; err != nil {
			return apperr.Collaborator("Serbest bırakma kaydı güncellenemedi", err)
		}
		out = rel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CascadeRecall: approved -> recalled. Sadece lot geri çağırma kaskadı
// çağırır; kullanıcı aksiyonuyla tetiklenmez.
func CascadeRecall(tx *gorm.DB, rel *models.BatchRelease, reason string) error {
	if !CanTransition(rel.Status, models.ReleaseStatusRecalled) {
		return apperr.Conflict(fmt.Sprintf("'%s' durumundan geri çağırmaya geçilemez", rel.Status))
	}
	rel.Status = models.ReleaseStatusRecalled
	rel.Reason = reason
	if err := tx.Save(rel).Error; err != nil {
		return apperr.Collaborator("Serbest bırakma kaydı güncellenemedi", err)
	}
	return nil
}
