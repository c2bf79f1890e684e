package lot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// Tedarikçi irsaliye Excel'inden toplu mal kabul.
// Beklenen kolonlar: Malzeme Kodu | Lot No | Miktar | Teslim Tarihi | SKT

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// POST /api/lots/import-excel?supplier_id=3 (multipart: file)
func ImportLotsExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		supplierID := c.QueryInt("supplier_id")
		if supplierID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id zorunlu")
		}
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", supplierID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi bulunamadı")
		}

		// Dosya yükleme
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık mı? ("MALZEME", "MATERIAL", "LOT" geçiyorsa başlıktır)
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "MALZEME") || strings.Contains(firstCell, "MATERIAL") || strings.Contains(firstCell, "LOT") {
				startIndex = 1
				log.Printf("İlk satır başlık satırı olarak algılandı, atlanıyor")
			}
		}

		result := ImportResult{Errors: make([]string, 0)}

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) < 5 {
				if len(row) > 0 {
					result.Skipped++
				}
				continue
			}

			materialCode := strings.TrimSpace(row[0])
			lotCode := strings.TrimSpace(row[1])
			quantityStr := strings.TrimSpace(row[2])
			receivedStr := strings.TrimSpace(row[3])
			expiryStr := strings.TrimSpace(row[4])

			if materialCode == "" || lotCode == "" {
				result.Skipped++
				continue
			}

			quantity, err := parseQuantity(quantityStr)
			if err != nil || quantity <= 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("Satır %d: geçersiz miktar '%s'", i+1, quantityStr))
				continue
			}

			received, err := time.Parse("2006-01-02", receivedStr)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Satır %d: geçersiz teslim tarihi '%s'", i+1, receivedStr))
				continue
			}
			expiry, err := time.Parse("2006-01-02", expiryStr)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Satır %d: geçersiz SKT '%s'", i+1, expiryStr))
				continue
			}

			var material models.Material
			if err := database.DB.First(&material, "code = ?", materialCode).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Satır %d: malzeme kodu bulunamadı '%s'", i+1, materialCode))
				continue
			}

			l := models.MaterialLot{
				LotCode:          lotCode,
				MaterialID:       material.ID,
				SupplierID:       uint(supplierID),
				ReceivedDate:     received,
				ExpiryDate:       expiry,
				OriginalQuantity: quantity,
				Balance:          quantity,
				Status:           models.LotStatusAvailable,
			}
			if err := database.DB.Create(&l).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Satır %d: lot kaydedilemedi '%s' (lot kodu kayıtlı olabilir)", i+1, lotCode))
				continue
			}
			result.Imported++
		}

		log.Printf("Excel mal kabul tamamlandı: %d kayıt, %d atlandı, %d hata", result.Imported, result.Skipped, len(result.Errors))

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "material_lot",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Excel toplu mal kabul: %d lot (%s)", result.Imported, supplier.Name),
			After:       result,
		})

		return c.JSON(result)
	}
}

// parseQuantity: "1.234,56" gibi Türkçe formatlı sayıları da kabul et
func parseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}
