package models

import "time"

type BatchStatus string

const (
	BatchStatusInProgress BatchStatus = "in_progress"
	BatchStatusCompleted  BatchStatus = "completed"
)

// Batch: Bir üretim partisi. Reçete ölçekleme parti oluşturulurken bir kez
// yapılır ve malzeme hedefleri BatchIngredient satırlarına kopyalanır.
// ScalingFactor = InputWeight / Recipe.BaseWeight (her zaman pozitif).
type Batch struct {
	ID            uint        `gorm:"primaryKey"`
	BatchCode     string      `gorm:"size:50;uniqueIndex;not null"` // örn: PRT-2026-0042
	RecipeID      uint        `gorm:"index;not null"`
	Recipe        Recipe      `gorm:"foreignKey:RecipeID"`
	ProductID     uint        `gorm:"index;not null"`
	Product       Product     `gorm:"foreignKey:ProductID"`
	InputWeight   float64     `gorm:"not null"` // parti giriş ağırlığı (kg)
	ScalingFactor float64     `gorm:"not null"`
	Status        BatchStatus `gorm:"size:20;not null;default:in_progress"`
	CreatedByID   uint        `gorm:"index"`
	CreatedByName string      `gorm:"size:100"` // denormalize (audit kolaylığı)
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Ingredients []BatchIngredient `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
	Checks      []BatchQACheck    `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
	Release     *BatchRelease     `gorm:"foreignKey:BatchID"`
}

// BatchIngredient: Parti oluşturma anında reçeteden alınan ölçekli kopya.
// TargetAmount = RecipeIngredient.Quantity * ScalingFactor.
// ActualAmount tartım girilince dolar; InTolerance o anda hesaplanır
// (|actual-target|/target <= TolerancePercent/100). Tartım girilmeden tanımsızdır.
type BatchIngredient struct {
	ID               uint     `gorm:"primaryKey"`
	BatchID          uint     `gorm:"index;not null"`
	MaterialID       uint     `gorm:"index;not null"`
	Material         Material `gorm:"foreignKey:MaterialID"`
	TargetAmount     float64  `gorm:"not null"`
	Unit             string   `gorm:"size:20;not null"`
	TolerancePercent float64  `gorm:"not null"`
	IsCritical       bool     `gorm:"default:false"`
	IsCure           bool     `gorm:"default:false"`
	CureType         string   `gorm:"size:30"`
	ActualAmount     *float64
	InTolerance      *bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
