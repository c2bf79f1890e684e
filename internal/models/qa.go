package models

import "time"

// Stage: Üretimin sabit sıralı aşamaları. Sıra StageOrder ile belirlenir,
// veritabanında ayrı bir tablo yoktur.
type Stage string

const (
	StagePreparation Stage = "preparation" // hazırlık (et seçimi, kıyım)
	StageMixing      Stage = "mixing"      // karıştırma (baharat, kür)
	StageMarination  Stage = "marination"  // dinlendirme / fermentasyon
	StageDrying      Stage = "drying"      // kurutma
	StagePackaging   Stage = "packaging"   // paketleme
	StageFinal       Stage = "final"       // son kontrol
)

// StageOrder: Aşamaların sabit sırası. İlerleme hesabı her zaman bu sırayla yürür.
var StageOrder = []Stage{
	StagePreparation,
	StageMixing,
	StageMarination,
	StageDrying,
	StagePackaging,
	StageFinal,
}

func ValidStage(s Stage) bool {
	for _, st := range StageOrder {
		if st == s {
			return true
		}
	}
	return false
}

// QACheckpoint: Kontrol noktası şablonu. Operatör tarafından tanımlanır,
// motor tarafından sadece okunur. Pasife alınan kontrol noktası ilerleme
// hesabından düşer ama geçmiş kayıtlar silinmez.
type QACheckpoint struct {
	ID           uint   `gorm:"primaryKey"`
	Code         string `gorm:"size:50;uniqueIndex;not null"` // örn: MIX-TEMP
	Name         string `gorm:"size:150;not null"`
	Stage        Stage  `gorm:"size:20;index;not null"`
	Required     bool   `gorm:"default:false"`
	DisplayOrder int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CheckStatus string

const (
	CheckStatusPending     CheckStatus = "pending"
	CheckStatusPassed      CheckStatus = "passed"
	CheckStatusFailed      CheckStatus = "failed"
	CheckStatusSkipped     CheckStatus = "skipped"
	CheckStatusConditional CheckStatus = "conditional"
)

func ValidCheckStatus(s CheckStatus) bool {
	switch s {
	case CheckStatusPending, CheckStatusPassed, CheckStatusFailed, CheckStatusSkipped, CheckStatusConditional:
		return true
	}
	return false
}

// BatchQACheck: Bir kontrol noktasının bir parti için değerlendirme kaydı.
// (batch_id, checkpoint_id) ikilisi tekildir; aynı ikili için yeni kayıt
// upsert'tür, yeni satır değil. Kayıt yoksa kontrol "pending" sayılır.
type BatchQACheck struct {
	ID           uint         `gorm:"primaryKey"`
	BatchID      uint         `gorm:"not null;uniqueIndex:idx_batch_checkpoint"`
	CheckpointID uint         `gorm:"not null;uniqueIndex:idx_batch_checkpoint"`
	Checkpoint   QACheckpoint `gorm:"foreignKey:CheckpointID"`
	Status       CheckStatus  `gorm:"size:20;not null"`

	// Opsiyonel ölçümler
	Temperature   *float64 // °C
	Humidity      *float64 // %RH
	PH            *float64
	WaterActivity *float64 // aw

	Notes            string `gorm:"size:500"`
	CorrectiveAction string `gorm:"size:500"`

	CheckedByID   uint      `gorm:"not null"`
	CheckedByName string    `gorm:"size:100"` // denormalize
	CheckedAt     time.Time `gorm:"not null"` // her değerlendirmede yenilenir
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
