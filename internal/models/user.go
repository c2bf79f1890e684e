package models

import "time"

type UserRole string

const (
	RoleUser    UserRole = "user"    // operatör: kontrol ve tartım kaydı girer
	RoleManager UserRole = "manager" // kalite sorumlusu: serbest bırakma kararı verir
	RoleAdmin   UserRole = "admin"   // tanım yönetimi (reçete, kontrol noktası, malzeme)
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
