package models

import "time"

type ReleaseStatus string

const (
	ReleaseStatusPending  ReleaseStatus = "pending"
	ReleaseStatusApproved ReleaseStatus = "approved"
	ReleaseStatusRejected ReleaseStatus = "rejected"
	ReleaseStatusHold     ReleaseStatus = "hold"
	ReleaseStatusRecalled ReleaseStatus = "recalled"
)

func ValidReleaseStatus(s ReleaseStatus) bool {
	switch s {
	case ReleaseStatusPending, ReleaseStatusApproved, ReleaseStatusRejected, ReleaseStatusHold, ReleaseStatusRecalled:
		return true
	}
	return false
}

// BatchRelease: Parti başına en fazla bir serbest bırakma kaydı.
// İzinli geçişler: pending -> approved/rejected/hold, hold -> pending,
// approved -> recalled (sadece lot geri çağırma kaskadı tetikler).
type BatchRelease struct {
	ID            uint          `gorm:"primaryKey"`
	BatchID       uint          `gorm:"uniqueIndex;not null"`
	ReleaseNumber string        `gorm:"size:50;uniqueIndex;not null"`
	Status        ReleaseStatus `gorm:"size:20;not null;default:pending"`

	// Kapılar - son değerlendirme sonucu (onay öncesi her zaman tazelenir)
	AllQAPassed     bool `gorm:"default:false"`
	AllTestsPassed  bool `gorm:"default:false"`
	AllDocsComplete bool `gorm:"default:false"`

	ReviewedByID   *uint
	ReviewedByName string `gorm:"size:100"`
	ReviewedAt     *time.Time
	ApprovedByID   *uint
	ApprovedByName string `gorm:"size:100"`
	ApprovedAt     *time.Time

	Reason    string `gorm:"size:500"` // red / bekletme / geri çağırma gerekçesi
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentRequirement: Serbest bırakma için zorunlu belge tipleri (konfigürasyon).
type DocumentRequirement struct {
	ID        uint   `gorm:"primaryKey"`
	DocType   string `gorm:"size:50;uniqueIndex;not null"` // örn: haccp_form, lab_report
	Name      string `gorm:"size:150;not null"`
	Required  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// BatchDocument: Partiye bağlı belge kaydı. Dosyanın kendisi harici belge
// deposundadır; burada sadece kapı hesabı için gereken meta tutulur.
type BatchDocument struct {
	ID             uint           `gorm:"primaryKey"`
	BatchID        uint           `gorm:"index;not null"`
	DocType        string         `gorm:"size:50;index;not null"`
	Status         DocumentStatus `gorm:"size:20;not null;default:pending"`
	FileName       string         `gorm:"size:255"`
	UploadedByID   uint
	UploadedByName string `gorm:"size:100"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductTest: Parti için laboratuvar test sonucu. Hiç test kaydı olmayan
// parti test kapısında bloklanmaz.
type ProductTest struct {
	ID           uint   `gorm:"primaryKey"`
	BatchID      uint   `gorm:"index;not null"`
	TestType     string `gorm:"size:50;not null"` // örn: mikrobiyoloji, nitrit
	ResultValue  string `gorm:"size:100"`
	Passed       bool   `gorm:"not null"`
	TestedByID   uint
	TestedByName string    `gorm:"size:100"`
	TestedAt     time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
