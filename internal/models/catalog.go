package models

import "time"

// Material: Üretimde kullanılan hammadde tanımı (et, baharat, kür tuzu vs.)
type Material struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:50;uniqueIndex;not null"` // stok kodu (örn: HM0012)
	Name      string `gorm:"size:150;not null"`
	Unit      string `gorm:"size:20;not null"` // kg, g, lt, adet
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Supplier: Hammadde tedarikçisi
type Supplier struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null"`
	ContactName string `gorm:"size:100"`
	Phone       string `gorm:"size:30"`
	Email       string `gorm:"size:100"`
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product: Satışa çıkan ürün tanımı (örn: Kangal Sucuk 500g)
type Product struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:50;uniqueIndex;not null"`
	Name      string `gorm:"size:150;not null"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
