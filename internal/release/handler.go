package release

import (
	"fmt"
	"time"

	"uretim-backend/internal/apperr"
	"uretim-backend/internal/audit"
	"uretim-backend/internal/auth"
	"uretim-backend/internal/database"
	"uretim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReleaseResponse struct {
	ID              uint                 `json:"id"`
	BatchID         uint                 `json:"batch_id"`
	ReleaseNumber   string               `json:"release_number"`
	Status          models.ReleaseStatus `json:"status"`
	AllQAPassed     bool                 `json:"all_qa_passed"`
	AllTestsPassed  bool                 `json:"all_tests_passed"`
	AllDocsComplete bool                 `json:"all_docs_complete"`
	Reason          string               `json:"reason,omitempty"`
	ApprovedBy      string               `json:"approved_by,omitempty"`
	ReviewedBy      string               `json:"reviewed_by,omitempty"`
}

func releaseToResponse(rel *models.BatchRelease) ReleaseResponse {
	return ReleaseResponse{
		ID:              rel.ID,
		BatchID:         rel.BatchID,
		ReleaseNumber:   rel.ReleaseNumber,
		Status:          rel.Status,
		AllQAPassed:     rel.AllQAPassed,
		AllTestsPassed:  rel.AllTestsPassed,
		AllDocsComplete: rel.AllDocsComplete,
		Reason:          rel.Reason,
		ApprovedBy:      rel.ApprovedByName,
		ReviewedBy:      rel.ReviewedByName,
	}
}

func batchExists(batchID int) error {
	var b models.Batch
	if err := database.DB.First(&b, "id = ?", batchID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Parti bulunamadı (ID: %d)", batchID))
	}
	return nil
}

// GET /api/batches/:id/release - kapılar tazelenmiş haliyle döner
func GetReleaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}
		if err := batchExists(batchID); err != nil {
			return err
		}

		rel, err := EnsureRelease(database.DB, uint(batchID))
		if err != nil {
			return apperr.ToFiber(err)
		}
		gates, err := RefreshGates(database.DB, rel)
		if err != nil {
			return apperr.ToFiber(err)
		}

		resp := releaseToResponse(rel)
		return c.JSON(fiber.Map{
			"release":          resp,
			"has_recalled_lot": gates.HasRecalledLot,
			"approvable":       gates.Approvable() && rel.Status == models.ReleaseStatusPending,
		})
	}
}

type decisionRequest struct {
	Reason string `json:"reason"`
}

func decisionHandler(action string, fn func(batchID uint, reason string, actor auth.Actor) (*models.BatchRelease, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}
		if err := batchExists(batchID); err != nil {
			return err
		}

		var body decisionRequest
		_ = c.BodyParser(&body) // gövdesiz istekler de geçerli (approve/resume)

		rel, err := fn(uint(batchID), body.Reason, actor)
		if err != nil {
			return apperr.ToFiber(err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "batch_release",
			EntityID:    rel.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Serbest bırakma %s: parti %d -> %s", action, batchID, rel.Status),
			After:       rel,
		})

		return c.JSON(releaseToResponse(rel))
	}
}

// POST /api/batches/:id/release/approve - manager/admin
func ApproveHandler() fiber.Handler {
	return decisionHandler("onay", func(batchID uint, _ string, actor auth.Actor) (*models.BatchRelease, error) {
		return Approve(database.DB, batchID, actor)
	})
}

// POST /api/batches/:id/release/reject - manager/admin, gerekçe zorunlu
func RejectHandler() fiber.Handler {
	return decisionHandler("red", func(batchID uint, reason string, actor auth.Actor) (*models.BatchRelease, error) {
		return Reject(database.DB, batchID, reason, actor)
	})
}

// POST /api/batches/:id/release/hold - manager/admin, gerekçe zorunlu
func HoldHandler() fiber.Handler {
	return decisionHandler("bekletme", func(batchID uint, reason string, actor auth.Actor) (*models.BatchRelease, error) {
		return Hold(database.DB, batchID, reason, actor)
	})
}

// POST /api/batches/:id/release/resume - manager/admin: hold -> pending
func ResumeHandler() fiber.Handler {
	return decisionHandler("devam", func(batchID uint, _ string, actor auth.Actor) (*models.BatchRelease, error) {
		return Resume(database.DB, batchID, actor)
	})
}

// -------------------------
// Belgeler ve testler (kapı verisi)
// -------------------------

type CreateDocumentRequest struct {
	DocType  string                `json:"doc_type"`
	Status   models.DocumentStatus `json:"status"`
	FileName string                `json:"file_name"`
}

// POST /api/batches/:id/documents
func CreateDocumentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}
		if err := batchExists(batchID); err != nil {
			return err
		}

		var body CreateDocumentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.DocType == "" {
			return fiber.NewError(fiber.StatusBadRequest, "doc_type zorunlu")
		}
		if body.Status == "" {
			body.Status = models.DocumentStatusPending
		}
		if body.Status != models.DocumentStatusPending && body.Status != models.DocumentStatusApproved && body.Status != models.DocumentStatusRejected {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz belge durumu")
		}

		doc := models.BatchDocument{
			BatchID:        uint(batchID),
			DocType:        body.DocType,
			Status:         body.Status,
			FileName:       body.FileName,
			UploadedByID:   actor.ID,
			UploadedByName: actor.Name,
		}
		if err := database.DB.Create(&doc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Belge kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

type CreateTestRequest struct {
	TestType    string `json:"test_type"`
	ResultValue string `json:"result_value"`
	Passed      *bool  `json:"passed"`
}

// POST /api/batches/:id/tests - laboratuvar sonucu kaydı
func CreateTestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		batchID, err := c.ParamsInt("id")
		if err != nil || batchID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parti ID")
		}
		if err := batchExists(batchID); err != nil {
			return err
		}

		var body CreateTestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.TestType == "" || body.Passed == nil {
			return fiber.NewError(fiber.StatusBadRequest, "test_type ve passed zorunlu")
		}

		test := models.ProductTest{
			BatchID:      uint(batchID),
			TestType:     body.TestType,
			ResultValue:  body.ResultValue,
			Passed:       *body.Passed,
			TestedByID:   actor.ID,
			TestedByName: actor.Name,
			TestedAt:     time.Now(),
		}
		if err := database.DB.Create(&test).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Test sonucu kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(test)
	}
}

type DocRequirementRequest struct {
	DocType  string `json:"doc_type"`
	Name     string `json:"name"`
	Required *bool  `json:"required"`
}

// POST /api/admin/document-requirements
func CreateDocRequirementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DocRequirementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.DocType == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "doc_type ve name zorunlu")
		}

		req := models.DocumentRequirement{
			DocType:  body.DocType,
			Name:     body.Name,
			Required: true,
		}
		if body.Required != nil {
			req.Required = *body.Required
		}
		if err := database.DB.Create(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Belge gereksinimi oluşturulamadı (doc_type kayıtlı olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// GET /api/document-requirements
func ListDocRequirementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reqs []models.DocumentRequirement
		if err := database.DB.Order("doc_type ASC").Find(&reqs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Belge gereksinimleri listelenemedi")
		}
		return c.JSON(reqs)
	}
}
