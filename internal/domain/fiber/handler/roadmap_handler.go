package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fadilmartias/skillwise/internal/dto"
	"github.com/fadilmartias/skillwise/internal/export"
	"github.com/fadilmartias/skillwise/internal/logger"
	"github.com/fadilmartias/skillwise/internal/middleware"
	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/fadilmartias/skillwise/internal/repository"
	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/fadilmartias/skillwise/internal/service"
	"github.com/fadilmartias/skillwise/internal/usecase"
	"github.com/fadilmartias/skillwise/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxResumeSize = 5 * 1024 * 1024

// RoadmapService is the use case surface the handler drives.
type RoadmapService interface {
	Roles() []string
	CreateSession(ctx context.Context, path string, req dto.CreateSessionRequest) (*model.RoadmapSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error)
	ListSessions(ctx context.Context, q dto.PageQuery) ([]model.RoadmapSession, int64, error)
	GenerateRoadmap(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error)
	View(ctx context.Context, id uuid.UUID, selected []string) (*dto.RoadmapDTO, error)
	ToggleProgress(ctx context.Context, id uuid.UUID, req dto.ProgressRequest) (*dto.ProgressDTO, error)
	BeginEdit(ctx context.Context, id uuid.UUID, line int) (*model.RoadmapSession, error)
	SaveEdit(ctx context.Context, id uuid.UUID, line int, title string) (*model.RoadmapSession, error)
	RegenerateSection(ctx context.Context, id uuid.UUID, line int) (*model.RoadmapSession, error)
	CancelEdit(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error)
	Ask(ctx context.Context, id uuid.UUID, question string) (*dto.AnswerDTO, error)
	Feedback(ctx context.Context, id uuid.UUID, req dto.FeedbackRequest) (*model.Feedback, error)
	Export(ctx context.Context, id uuid.UUID, format export.Format) ([]byte, error)
}

type RoadmapHandler struct {
	uc        RoadmapService
	validate  *validator.Validate
	uploadDir string
}

func NewRoadmapHandler(uc RoadmapService, uploadDir string) *RoadmapHandler {
	return &RoadmapHandler{uc: uc, validate: dto.NewValidator(), uploadDir: uploadDir}
}

func (h *RoadmapHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/roles", h.Roles)

	sessions := app.Group("/sessions")
	sessions.Post("/", middleware.RateLimiter(5, time.Minute), h.CreateSession)
	sessions.Get("/", h.ListSessions)
	sessions.Get("/:id", h.GetSession)
	sessions.Post("/:id/roadmap", middleware.RateLimiter(3, time.Minute), h.GenerateRoadmap)
	sessions.Get("/:id/roadmap", h.Roadmap)
	sessions.Put("/:id/progress", h.ToggleProgress)
	sessions.Post("/:id/sections/:line/edit", h.BeginEdit)
	sessions.Put("/:id/sections/:line", h.SaveEdit)
	sessions.Post("/:id/sections/:line/regenerate", middleware.RateLimiter(10, time.Minute), h.RegenerateSection)
	sessions.Delete("/:id/edit", h.CancelEdit)
	sessions.Post("/:id/questions", middleware.RateLimiter(10, time.Minute), h.Ask)
	sessions.Post("/:id/feedback", h.Feedback)
	sessions.Get("/:id/export/:format", h.Export)
}

func (h *RoadmapHandler) Roles(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get roles",
		Data:    h.uc.Roles(),
	})
}

func (h *RoadmapHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
	}
	if err := h.check(req); err != nil {
		return h.fail(c, err)
	}

	path, err := h.saveResume(c)
	if err != nil {
		return h.fail(c, err)
	}
	defer os.Remove(path)

	s, err := h.uc.CreateSession(c.UserContext(), path, req)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Resume uploaded and parsed",
		Data:    dto.NewSessionDTO(s),
	})
}

// saveResume stores the uploaded PDF in a temp file and returns its path.
func (h *RoadmapHandler) saveResume(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("resume")
	if err != nil {
		return "", fmt.Errorf("%w: resume file is required", usecase.ErrInvalidInput)
	}
	if file.Size > maxResumeSize {
		return "", fmt.Errorf("%w: resume file size is too large (max 5MB)", usecase.ErrInvalidInput)
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return "", fmt.Errorf("%w: unsupported resume file type, upload a PDF", usecase.ErrInvalidInput)
	}

	tmp, err := os.CreateTemp(h.uploadDir, "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()

	if err := c.SaveFile(file, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("cannot save resume file: %w", err)
	}
	return path, nil
}

func (h *RoadmapHandler) ListSessions(c *fiber.Ctx) error {
	var q dto.PageQuery
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
	}
	if err := h.check(q); err != nil {
		return h.fail(c, err)
	}
	q.Normalize()

	sessions, total, err := h.uc.ListSessions(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}
	data := make([]dto.SessionDTO, 0, len(sessions))
	for i := range sessions {
		data = append(data, dto.NewSessionDTO(&sessions[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get sessions",
		Data:       data,
		Pagination: util.NewPagination(q.Page, q.PageSize, total),
	})
}

func (h *RoadmapHandler) GetSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.uc.GetSession(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get session",
		Data:    dto.NewSessionDTO(s),
	})
}

func (h *RoadmapHandler) GenerateRoadmap(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.uc.GenerateRoadmap(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Roadmap generated",
		Data:    fiber.Map{"session": dto.NewSessionDTO(s), "roadmap": s.Roadmap},
	})
}

func (h *RoadmapHandler) Roadmap(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	v, err := h.uc.View(c.UserContext(), id, roadmap.ParseTagQuery(c.Query("tags")))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get roadmap",
		Data:    v,
	})
}

func (h *RoadmapHandler) ToggleProgress(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dto.ProgressRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	p, err := h.uc.ToggleProgress(c.UserContext(), id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Progress saved",
		Data:    p,
	})
}

func (h *RoadmapHandler) BeginEdit(c *fiber.Ctx) error {
	id, line, err := sessionLine(c)
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.uc.BeginEdit(c.UserContext(), id, line)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Editing section",
		Data:    dto.NewSessionDTO(s),
	})
}

func (h *RoadmapHandler) SaveEdit(c *fiber.Ctx) error {
	id, line, err := sessionLine(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dto.SaveSectionRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	s, err := h.uc.SaveEdit(c.UserContext(), id, line, req.Title)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Section updated",
		Data:    fiber.Map{"session": dto.NewSessionDTO(s), "roadmap": s.Roadmap},
	})
}

func (h *RoadmapHandler) RegenerateSection(c *fiber.Ctx) error {
	id, line, err := sessionLine(c)
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.uc.RegenerateSection(c.UserContext(), id, line)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Section regenerated",
		Data:    fiber.Map{"session": dto.NewSessionDTO(s), "roadmap": s.Roadmap},
	})
}

func (h *RoadmapHandler) CancelEdit(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.uc.CancelEdit(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Editing cancelled",
		Data:    dto.NewSessionDTO(s),
	})
}

func (h *RoadmapHandler) Ask(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dto.QuestionRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	a, err := h.uc.Ask(c.UserContext(), id, req.Question)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success answer question",
		Data:    a,
	})
}

func (h *RoadmapHandler) Feedback(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dto.FeedbackRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	f, err := h.uc.Feedback(c.UserContext(), id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Thank you for your feedback",
		Data:    f,
	})
}

func (h *RoadmapHandler) Export(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	format, err := export.ParseFormat(c.Params("format"))
	if err != nil {
		return h.fail(c, err)
	}
	data, err := h.uc.Export(c.UserContext(), id, format)
	if err != nil {
		return h.fail(c, err)
	}

	c.Attachment(format.FileName())
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(data)
}

func (h *RoadmapHandler) parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return h.check(out)
}

// check validates a request DTO and reports every failing field.
func (h *RoadmapHandler) check(req any) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, ve := range validationErrors {
		fields[ve.Field()] = ve.Tag()
	}
	return util.NewFormError("validation error", fields)
}

func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid session id", usecase.ErrInvalidInput)
	}
	return id, nil
}

func sessionLine(c *fiber.Ctx) (uuid.UUID, int, error) {
	id, err := sessionID(c)
	if err != nil {
		return uuid.Nil, 0, err
	}
	line, err := strconv.Atoi(c.Params("line"))
	if err != nil || line < 0 {
		return uuid.Nil, 0, fmt.Errorf("%w: invalid line index", usecase.ErrInvalidInput)
	}
	return id, line, nil
}

// fail writes err as the error envelope with the status its kind maps to.
func (h *RoadmapHandler) fail(c *fiber.Ctx, err error) error {
	var formErr *util.FormError
	if errors.As(err, &formErr) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: formErr.Message,
			Details: formErr.Errors,
		})
	}

	code := statusFor(err)
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "Internal Server Error"
		logger.WithContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	} else {
		logger.WithContext(c.UserContext()).Warn("request rejected", "path", c.Path(), "status", code, "error", err)
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message}, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidPrompt),
		errors.Is(err, usecase.ErrUnknownItem),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, roadmap.ErrNotAHeading),
		errors.Is(err, roadmap.ErrEmptyTitle):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, roadmap.ErrNotEditing),
		errors.Is(err, usecase.ErrEditConflict),
		errors.Is(err, usecase.ErrNoRoadmap):
		return fiber.StatusConflict
	case errors.Is(err, util.ErrDocumentNotFound),
		errors.Is(err, util.ErrInvalidDocument),
		errors.Is(err, util.ErrOCRUnavailable),
		errors.Is(err, util.ErrNoText),
		errors.Is(err, usecase.ErrResumeTooShort):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrGenerationFailed),
		errors.Is(err, roadmap.ErrEmptyRewrite):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}
