package compliance

import (
	"math"
	"sort"

	"uretim-backend/internal/models"
)

// Bu paket saf hesap fonksiyonlarından oluşur: I/O yok, veritabanı yok.
// İlerleme her çağrıda ham kayıtlardan yeniden hesaplanır, hiçbir yerde
// saklanmaz - böylece kayıtlar sırasız düzenlense bile ilerleme tutarlı kalır.

// StageProgress: Bir aşamanın zorunlu kontrol noktası sayıları.
type StageProgress struct {
	Stage             models.Stage `json:"stage"`
	TotalRequired     int          `json:"total_required"`
	CompletedRequired int          `json:"completed_required"`
	Percentage        int          `json:"percentage"`
}

func roundPercent(num, den int) int {
	if den == 0 {
		return 100 // zorunlu kontrol noktası olmayan aşama boşlukla tamamdır
	}
	return int(math.Round(100 * float64(num) / float64(den)))
}

// ToleranceCompliancePercent: Tartımı girilmiş malzemeler içinde tolerans
// dahilinde olanların yüzdesi. Tartımı girilmemiş malzeme paydaya da paya da
// girmez; hiç tartım yoksa 0 döner.
func ToleranceCompliancePercent(ingredients []models.BatchIngredient) int {
	measured := 0
	inTolerance := 0
	for _, ing := range ingredients {
		if ing.ActualAmount == nil {
			continue
		}
		measured++
		if ing.InTolerance != nil && *ing.InTolerance {
			inTolerance++
		}
	}
	if measured == 0 {
		return 0
	}
	return int(math.Round(100 * float64(inTolerance) / float64(measured)))
}

// InTolerance: |actual - target| / target <= tolerance/100
func InTolerance(target, actual, tolerancePercent float64) bool {
	if target == 0 {
		return actual == 0
	}
	return math.Abs(actual-target)/target <= tolerancePercent/100
}

// StageProgressFor: Bir aşamanın zorunlu kontrol noktalarından kaçının
// "passed" kaydı olduğunu sayar. checks, checkpoint ID ile anahtarlıdır.
func StageProgressFor(stage models.Stage, checkpoints []models.QACheckpoint, checks map[uint]models.BatchQACheck) StageProgress {
	p := StageProgress{Stage: stage}
	for _, cp := range checkpoints {
		if cp.Stage != stage || !cp.Required {
			continue
		}
		p.TotalRequired++
		if chk, ok := checks[cp.ID]; ok && chk.Status == models.CheckStatusPassed {
			p.CompletedRequired++
		}
	}
	p.Percentage = roundPercent(p.CompletedRequired, p.TotalRequired)
	return p
}

// ComputeStageProgresses: Sabit aşama sırasıyla tüm aşamaların ilerlemesi.
func ComputeStageProgresses(checkpoints []models.QACheckpoint, checks map[uint]models.BatchQACheck) []StageProgress {
	out := make([]StageProgress, 0, len(models.StageOrder))
	for _, stage := range models.StageOrder {
		out = append(out, StageProgressFor(stage, checkpoints, checks))
	}
	return out
}

// CurrentStage: Sabit sırada, zorunluları henüz bitmemiş ilk aşama.
// Hepsi bitmişse parti "final" aşamasındadır.
func CurrentStage(progresses []StageProgress) models.Stage {
	for _, p := range progresses {
		if p.CompletedRequired < p.TotalRequired {
			return p.Stage
		}
	}
	return models.StageFinal
}

// CurrentCheckpoint: Mevcut aşama içinde görüntüleme sırasına göre,
// önce "passed" olmayan ilk zorunlu kontrol noktası; zorunlular bittiyse
// "passed" olmayan ilk opsiyonel; o da yoksa nil (aşama temiz).
func CurrentCheckpoint(stage models.Stage, checkpoints []models.QACheckpoint, checks map[uint]models.BatchQACheck) *models.QACheckpoint {
	inStage := make([]*models.QACheckpoint, 0)
	for i := range checkpoints {
		if checkpoints[i].Stage == stage {
			inStage = append(inStage, &checkpoints[i])
		}
	}
	sort.SliceStable(inStage, func(i, j int) bool {
		return inStage[i].DisplayOrder < inStage[j].DisplayOrder
	})

	var firstOptional *models.QACheckpoint
	for _, cp := range inStage {
		chk, ok := checks[cp.ID]
		passed := ok && chk.Status == models.CheckStatusPassed
		if passed {
			continue
		}
		if cp.Required {
			return cp
		}
		if firstOptional == nil {
			firstOptional = cp
		}
	}
	return firstOptional
}

// CanComplete: Her aşamanın zorunlu sayıları tamamlanmışsa true. Partinin
// tamamlanabilmesinin tek kapısıdır; opsiyonel kontroller, belgeler ve lab
// sonuçları serbest bırakma kapılarıdır, tamamlama kapısı değil.
func CanComplete(progresses []StageProgress) bool {
	for _, p := range progresses {
		if p.CompletedRequired < p.TotalRequired {
			return false
		}
	}
	return true
}

// OverallPercent: round(100 * toplam tamamlanan zorunlu / toplam zorunlu);
// hiç zorunlu yoksa 100.
func OverallPercent(progresses []StageProgress) int {
	total, done := 0, 0
	for _, p := range progresses {
		total += p.TotalRequired
		done += p.CompletedRequired
	}
	return roundPercent(done, total)
}

// AllRequiredPassed: Tüm aşamalardaki her zorunlu kontrol noktasının "passed"
// kaydı var mı? CanComplete'ten daha katıdır: aşama toplamlarına değil tek tek
// kontrol noktalarına bakar (required bayrağı sonradan değişen noktaları yakalar).
func AllRequiredPassed(checkpoints []models.QACheckpoint, checks map[uint]models.BatchQACheck) bool {
	for _, cp := range checkpoints {
		if !cp.Required {
			continue
		}
		chk, ok := checks[cp.ID]
		if !ok || chk.Status != models.CheckStatusPassed {
			return false
		}
	}
	return true
}

// FailedRequiredCodes: "passed" olmayan zorunlu kontrol noktalarının kodları
// (bloklu tamamlama cevabında kullanıcıya gösterilir).
func FailedRequiredCodes(checkpoints []models.QACheckpoint, checks map[uint]models.BatchQACheck) []string {
	codes := make([]string, 0)
	for _, cp := range checkpoints {
		if !cp.Required {
			continue
		}
		chk, ok := checks[cp.ID]
		if !ok || chk.Status != models.CheckStatusPassed {
			codes = append(codes, cp.Code)
		}
	}
	return codes
}
