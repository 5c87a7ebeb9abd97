package inventory

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"inventory-import/core/importer"
	"inventory-import/core/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for inventory imports.
type Handler struct {
	service *Service
	logger  *zap.Logger
	maxSize int
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, logger: service.logger, maxSize: service.maxBytes()}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/inventory")

	imports := group.Group("/imports")
	imports.Post("/", h.HandleUpload)
	imports.Post("/object", h.HandleImportObject)
	imports.Get("/", h.HandleListJobs)
	imports.Get("/:id", h.HandleGetJob)
	imports.Get("/:id/errors", h.HandleGetErrors)
	imports.Post("/:id/pause", h.HandlePause)
	imports.Post("/:id/resume", h.HandleResume)
	imports.Post("/:id/cancel", h.HandleCancel)
	imports.Delete("/:id", h.HandleDiscard)

	group.Get("/items/:sku", h.HandleGetItem)
	group.Get("/integrity", h.HandleIntegrity)
}

// HandleIntegrity checks the items table and the storage bucket.
// @Summary Check Integrity
// @Description Verifies that the items table has every imported column and that the report bucket exists.
// @Tags inventory
// @Produce json
// @Success 200 {object} IntegrityReport "Healthy"
// @Failure 503 {object} IntegrityReport "Unhealthy"
// @Router /inventory/integrity [get]
func (h *Handler) HandleIntegrity(c *fiber.Ctx) error {
	report := h.service.CheckIntegrity(c.UserContext())
	if !report.Healthy() {
		logger.WithRayID(h.logger, c).Warn("Integrity check failed",
			zap.String("database", report.Database.Status),
			zap.String("storage", report.Storage.Status),
		)
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleUpload starts an import from an uploaded CSV.
// @Summary Start Import
// @Description Start an import from CSV text in the body or a multipart 'file' field.
// @Tags imports
// @Accept text/csv,multipart/form-data
// @Produce json
// @Param mode query string true "create, update_by_sku or upsert"
// @Success 202 {object} JobView "Started job"
// @Failure 400 {object} map[string]any "Invalid request or file"
// @Router /inventory/imports [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	text, err := readUpload(c)
	if err != nil {
		return h.fail(c, l, err)
	}
	req := UploadRequest{Mode: c.Query("mode"), Size: len(text)}
	if err := req.Validate(h.maxSize); err != nil {
		return h.fail(c, l, err)
	}

	mode, _ := importer.ParseMode(req.Mode)
	view, err := h.service.StartImport(text, mode)
	if err != nil {
		return h.fail(c, l, err)
	}
	l.Info("Import started", zap.String("job_id", view.ID), zap.String("mode", string(mode)))
	return c.Status(fiber.StatusAccepted).JSON(view)
}

// readUpload returns the CSV text of an upload. Multipart requests must carry it in the
// 'file' part; any other request body is the CSV itself.
func readUpload(c *fiber.Ctx) (string, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return string(c.Body()), nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return "", validation.Errors{"file": errors.New("multipart upload requires a 'file' part")}
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HandleImportObject starts an import from a CSV object in the bucket.
// @Summary Import Object
// @Description Start an import from a CSV object stored in the configured bucket.
// @Tags imports
// @Accept json
// @Produce json
// @Param request body ObjectImportRequest true "Object and mode"
// @Success 202 {object} JobView "Started job"
// @Failure 400 {object} map[string]any "Invalid request or file"
// @Failure 404 {object} map[string]string "Object not found"
// @Router /inventory/imports/object [post]
func (h *Handler) HandleImportObject(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req ObjectImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, l, err)
	}

	mode, _ := importer.ParseMode(req.Mode)
	view, err := h.service.StartImportFromObject(c.UserContext(), req.Object, mode)
	if err != nil {
		return h.fail(c, l, err)
	}
	l.Info("Import started", zap.String("job_id", view.ID), zap.String("object", req.Object))
	return c.Status(fiber.StatusAccepted).JSON(view)
}

// HandleListJobs lists import jobs.
// @Summary List Imports
// @Tags imports
// @Produce json
// @Success 200 {array} JobView "Jobs"
// @Router /inventory/imports [get]
func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	return c.JSON(h.service.Jobs())
}

// HandleGetJob returns progress and an error preview for one job.
// @Summary Get Import
// @Tags imports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobView "Job"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /inventory/imports/{id} [get]
func (h *Handler) HandleGetJob(c *fiber.Ctx) error {
	view, err := h.service.Job(c.Params("id"))
	if err != nil {
		return h.fail(c, logger.WithRayID(h.logger, c), err)
	}
	return c.JSON(view)
}

// HandleGetErrors returns the row errors of a job.
// @Summary Get Import Errors
// @Tags imports
// @Produce json
// @Param id path string true "Job ID"
// @Param limit query int false "Maximum number of errors"
// @Success 200 {array} importer.RowError "Row errors"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /inventory/imports/{id}/errors [get]
func (h *Handler) HandleGetErrors(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a non-negative integer"})
	}
	errs, err := h.service.Errors(c.Params("id"), limit)
	if err != nil {
		return h.fail(c, logger.WithRayID(h.logger, c), err)
	}
	return c.JSON(errs)
}

// HandlePause pauses a processing job.
// @Summary Pause Import
// @Tags imports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobView "Job"
// @Failure 409 {object} map[string]string "Job is not processing"
// @Router /inventory/imports/{id}/pause [post]
func (h *Handler) HandlePause(c *fiber.Ctx) error {
	return h.control(c, h.service.Pause)
}

// HandleResume resumes a paused job.
// @Summary Resume Import
// @Tags imports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobView "Job"
// @Failure 409 {object} map[string]string "Job is not paused"
// @Router /inventory/imports/{id}/resume [post]
func (h *Handler) HandleResume(c *fiber.Ctx) error {
	return h.control(c, h.service.Resume)
}

// HandleCancel cancels a running job.
// @Summary Cancel Import
// @Tags imports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobView "Job"
// @Failure 409 {object} map[string]string "Job already finished"
// @Router /inventory/imports/{id}/cancel [post]
func (h *Handler) HandleCancel(c *fiber.Ctx) error {
	return h.control(c, h.service.Cancel)
}

func (h *Handler) control(c *fiber.Ctx, op func(string) (JobView, error)) error {
	l := logger.WithRayID(h.logger, c)
	id := c.Params("id")

	view, err := op(id)
	if err != nil {
		return h.fail(c, l, err)
	}
	l.Info("Import control", zap.String("job_id", id), zap.String("status", string(view.Snapshot.Status)))
	return c.JSON(view)
}

// HandleDiscard removes a finished job.
// @Summary Discard Import
// @Tags imports
// @Param id path string true "Job ID"
// @Success 204 "Discarded"
// @Failure 409 {object} map[string]string "Job still running"
// @Router /inventory/imports/{id} [delete]
func (h *Handler) HandleDiscard(c *fiber.Ctx) error {
	if err := h.service.Discard(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, logger.WithRayID(h.logger, c), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetItem returns the items stored under a SKU.
// @Summary Get Item
// @Tags items
// @Produce json
// @Param sku path string true "SKU"
// @Success 200 {array} models.Item "Items"
// @Failure 404 {object} map[string]string "Unknown SKU"
// @Router /inventory/items/{sku} [get]
func (h *Handler) HandleGetItem(c *fiber.Ctx) error {
	items, err := h.service.Item(c.UserContext(), c.Params("sku"))
	if err != nil {
		return h.fail(c, logger.WithRayID(h.logger, c), err)
	}
	return c.JSON(items)
}

// fail writes err with the status it maps to.
func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": vErrs,
		})
	}

	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error("Import request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrJobNotFound), errors.Is(err, ErrItemNotFound), isNoSuchKey(err):
		return fiber.StatusNotFound
	case errors.Is(err, importer.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, importer.ErrMalformedInput),
		errors.Is(err, importer.ErrInvalidMode),
		errors.Is(err, importer.ErrNoRecords):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrStorageDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && resp.Code == "NoSuchKey"
}
