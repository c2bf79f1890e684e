package database

import (
	"log"

	"uretim-backend/internal/config"
	"uretim-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		// Tanımlar
		&models.Material{},
		&models.Supplier{},
		&models.Product{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.QACheckpoint{},
		&models.DocumentRequirement{},
		// Parti ve izlenebilirlik
		&models.Batch{},
		&models.BatchIngredient{},
		&models.BatchQACheck{},
		&models.MaterialLot{},
		&models.LotAllocation{},
		&models.LotRecall{},
		&models.LotRecallBatch{},
		// Serbest bırakma
		&models.BatchRelease{},
		&models.BatchDocument{},
		&models.ProductTest{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Lot bakiyesi hiçbir yoldan negatife inmemeli; koşullu decrement'e ek
	// olarak veritabanı seviyesinde de garantile (AutoMigrate check constraint eklemez)
	var constraintExists bool
	DB.Raw(`
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.table_constraints
			WHERE table_name = 'material_lots'
			AND constraint_name = 'chk_material_lots_balance_nonnegative'
		)
	`).Scan(&constraintExists)

	if !constraintExists {
		log.Println("material_lots için balance >= 0 constraint ekleniyor...")
		if chkErr := DB.Exec(`
			ALTER TABLE material_lots
			ADD CONSTRAINT chk_material_lots_balance_nonnegative
			CHECK (balance >= 0)
		`).Error; chkErr != nil {
			log.Printf("Check constraint eklenirken hata: %v", chkErr)
		} else {
			log.Println("Check constraint başarıyla eklendi")
		}
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
