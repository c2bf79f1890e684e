package models

import "time"

type LotStatus string

const (
	LotStatusAvailable LotStatus = "available"
	LotStatusDepleted  LotStatus = "depleted"
	LotStatusRecalled  LotStatus = "recalled" // terminal: geri alınamaz
)

// MaterialLot: Tedarikçiden gelen bir hammadde lotu. Balance tahsisle azalır;
// sıfıra inince depleted olur. Recalled durumu terminaldir.
type MaterialLot struct {
	ID               uint      `gorm:"primaryKey"`
	LotCode          string    `gorm:"size:50;uniqueIndex;not null"` // tedarikçi lot no
	MaterialID       uint      `gorm:"index;not null"`
	Material         Material  `gorm:"foreignKey:MaterialID"`
	SupplierID       uint      `gorm:"index;not null"`
	Supplier         Supplier  `gorm:"foreignKey:SupplierID"`
	ReceivedDate     time.Time `gorm:"index;not null"`
	ExpiryDate       time.Time `gorm:"index;not null"`
	OriginalQuantity float64   `gorm:"not null"`
	Balance          float64   `gorm:"not null"` // kalan miktar, asla negatif olmaz
	Status           LotStatus `gorm:"size:20;not null;default:available"`
	RecallReason     string    `gorm:"size:255"`
	RecallNotes      string    `gorm:"size:500"`
	RecalledAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LotAllocation: Tüketim kenarı - bir parti malzemesinin hangi lottan ne kadar
// çektiğini bağlar. Oluşturulduktan sonra değişmez; yeniden tahsis eski kenarı
// güncellemez, yeni kenar ekler. Geri çağırma kaskadı bu kenarları yürür.
type LotAllocation struct {
	ID                uint        `gorm:"primaryKey"`
	BatchIngredientID uint        `gorm:"index;not null"`
	BatchID           uint        `gorm:"index;not null"` // kaskad sorgusu için denormalize
	LotID             uint        `gorm:"index;not null"`
	Lot               MaterialLot `gorm:"foreignKey:LotID"`
	Quantity          float64     `gorm:"not null"`
	CreatedAt         time.Time
}

// LotRecall: Bir lot geri çağırma olayının denetim kaydı ve etkilenen partiler.
type LotRecall struct {
	ID             uint   `gorm:"primaryKey"`
	LotID          uint   `gorm:"uniqueIndex;not null"`
	Reason         string `gorm:"size:255;not null"`
	Notes          string `gorm:"size:500"`
	RecalledByID   uint   `gorm:"not null"`
	RecalledByName string `gorm:"size:100"`
	CreatedAt      time.Time

	AffectedBatches []LotRecallBatch `gorm:"foreignKey:LotRecallID;constraint:OnDelete:CASCADE"`
}

// LotRecallBatch: Geri çağırmadan etkilenen her parti için bir satır.
type LotRecallBatch struct {
	ID             uint          `gorm:"primaryKey"`
	LotRecallID    uint          `gorm:"index;not null"`
	BatchID        uint          `gorm:"index;not null"`
	PreviousStatus ReleaseStatus `gorm:"size:20"` // geri çağırma anındaki serbest bırakma durumu
	NewStatus      ReleaseStatus `gorm:"size:20"`
	CreatedAt      time.Time
}
