package models

import "time"

// Recipe: Versiyonlu üretim reçetesi. Bir parti referans aldıktan sonra
// değiştirilmez; parti oluşturma anında ölçeklenmiş miktarlar partiye kopyalanır.
type Recipe struct {
	ID          uint    `gorm:"primaryKey"`
	ProductID   uint    `gorm:"index;not null"`
	Product     Product `gorm:"foreignKey:ProductID"`
	Name        string  `gorm:"size:150;not null"`
	Version     int     `gorm:"not null;default:1"`
	BaseWeight  float64 `gorm:"not null"` // referans giriş ağırlığı (kg)
	TargetYield float64 // hedef verim (%) - fire payı hesabı için
	IsActive    bool    `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RecipeIngredient: Reçetedeki her malzeme satırı. Miktarlar BaseWeight'e göredir.
// Bir reçetede en fazla bir satır kür (IsCure) olabilir ve kür satırı CureType belirtmek zorundadır.
type RecipeIngredient struct {
	ID               uint     `gorm:"primaryKey"`
	RecipeID         uint     `gorm:"index;not null"`
	MaterialID       uint     `gorm:"index;not null"`
	Material         Material `gorm:"foreignKey:MaterialID"`
	Quantity         float64  `gorm:"not null"` // BaseWeight için gereken miktar
	Unit             string   `gorm:"size:20;not null"`
	TolerancePercent float64  `gorm:"not null"` // izin verilen sapma (%)
	IsCritical       bool     `gorm:"default:false"` // kritik malzeme (gıda güvenliği)
	IsCure           bool     `gorm:"default:false"` // kür tuzu satırı mı?
	CureType         string   `gorm:"size:30"`       // nitrit, nitrat vs. (IsCure ise zorunlu)
	SortOrder        int      `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
