package http

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/oficialia-api/internal/application/correspondence"
	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/pkg/logger"
)

// Campos multipart donde llegan los PDFs.
const (
	fieldDocument   = "documento"
	fieldAttachment = "attachment"
)

// CorrespondenceService operaciones de oficialía que expone la API.
// Lo implementa *correspondence.CorrespondenceUseCase.
type CorrespondenceService interface {
	positionChecker
	Create(ctx context.Context, userID int64, in dto.CreateCorrespondenceRequest, doc *correspondence.Attachment) (*dto.CorrespondenceResponse, error)
	ChangeStatus(ctx context.Context, userID int64, in dto.ChangeStatusRequest, attachment *correspondence.Attachment) (*dto.TransitionResponse, error)
	Edit(ctx context.Context, userID int64, in dto.EditCorrespondenceRequest, doc *correspondence.Attachment) (*dto.CorrespondenceResponse, error)
	List(ctx context.Context, userID int64, q dto.ListCorrespondenceQuery) (*dto.CorrespondenceListResponse, error)
	Get(ctx context.Context, userID, id int64) (*dto.CorrespondenceResponse, error)
	OpenDocument(ctx context.Context, userID int64, fileRoute string) (io.ReadCloser, error)
	Receipt(ctx context.Context, userID, id int64) ([]byte, string, error)
	ListAreas(ctx context.Context) ([]dto.AreaResponse, error)
}

var _ CorrespondenceService = (*correspondence.CorrespondenceUseCase)(nil)

// CorrespondenceHandler maneja las peticiones HTTP de correspondencia (protegido).
type CorrespondenceHandler struct {
	svc CorrespondenceService
	log *logger.Logger
}

// NewCorrespondenceHandler construye el handler.
func NewCorrespondenceHandler(svc CorrespondenceService, log *logger.Logger) *CorrespondenceHandler {
	return &CorrespondenceHandler{svc: svc, log: log}
}

// Create registra una correspondencia con su PDF.
// POST /api/correspondencia (multipart: campos + "documento")
func (h *CorrespondenceHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "token inválido"))
	}
	var in dto.CreateCorrespondenceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	doc, closeDoc, err := formAttachment(c, fieldDocument)
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer closeDoc()

	out, err := h.svc.Create(c.UserContext(), userID, in, doc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("correspondencia registrada", out))
}

// ChangeStatus cambia el estado de una correspondencia; el PDF de respuesta es opcional.
// PUT /api/correspondencia/estado (JSON o multipart con "attachment")
func (h *CorrespondenceHandler) ChangeStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "token inválido"))
	}
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	attachment, closeAttachment, err := formAttachment(c, fieldAttachment)
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer closeAttachment()

	out, err := h.svc.ChangeStatus(c.UserContext(), userID, in, attachment)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK("estado actualizado", out))
}

// Edit modifica una correspondencia en estado recibida (solo su creador).
// PUT /api/correspondencia/editar
func (h *CorrespondenceHandler) Edit(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "token inválido"))
	}
	var in dto.EditCorrespondenceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	doc, closeDoc, err := formAttachment(c, fieldDocument)
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer closeDoc()

	out, err := h.svc.Edit(c.UserContext(), userID, in, doc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK("correspondencia actualizada", out))
}

// List bandeja del usuario con filtros opcionales.
// GET /api/correspondencia?fecha_desde=&fecha_hasta=&prioridad=&forma_entrega=&usuario=&estado=&limit=&offset=
func (h *CorrespondenceHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "token inválido"))
	}
	q := dto.ListCorrespondenceQuery{
		DateFrom: c.Query("fecha_desde"),
		DateTo:   c.Query("fecha_hasta"),
		Status:   c.Query("estado"),
	}
	var err error
	if q.PriorityID, err = queryInt64(c, "prioridad"); err != nil {
		return writeError(c, h.log, err)
	}
	if q.DeliveryMethodID, err = queryInt64(c, "forma_entrega"); err != nil {
		return writeError(c, h.log, err)
	}
	if q.CreatedBy, err = queryInt64(c, "usuario"); err != nil {
		return writeError(c, h.log, err)
	}
	if err := c.QueryParser(&q.Page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("VALIDATION", "limit/offset inválidos"))
	}

	out, err := h.svc.List(c.UserContext(), userID, q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK("correspondencia", out))
}

// Get detalle con historial completo.
// GET /api/correspondencia/:id
func (h *CorrespondenceHandler) Get(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "token inválido"))
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.svc.Get(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK("correspondencia", out))
}

// Document envía el PDF <folio>.pdf si la correspondencia es visible para el usuario.
// GET /api/correspondencia/documento/:fileRoute
func (h *CorrespondenceHandler) Document(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "token inválido"))
	}
	fileRoute := c.Params("fileRoute")
	rc, err := h.svc.OpenDocument(c.UserContext(), userID, fileRoute)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", fileRoute))
	// fasthttp cierra el stream al terminar la respuesta.
	return c.SendStream(rc)
}

// Receipt genera el acuse de recibo en PDF.
// GET /api/correspondencia/:id/acuse
func (h *CorrespondenceHandler) Receipt(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "token inválido"))
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	pdf, name, err := h.svc.Receipt(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// formAttachment devuelve el archivo del campo indicado si la petición es multipart y lo trae.
// La función devuelta cierra el archivo; siempre es seguro invocarla.
func formAttachment(c *fiber.Ctx, field string) (*correspondence.Attachment, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, fmt.Errorf("%w: formulario multipart inválido", domain.ErrInvalidInput)
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, noop, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("abrir archivo %q: %w", fh.Filename, err)
	}
	return &correspondence.Attachment{Name: fh.Filename, Content: f}, func() { closeFile(f) }, nil
}

func closeFile(f multipart.File) { _ = f.Close() }

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", domain.ErrInvalidInput, c.Params("id"))
	}
	return id, nil
}

// queryInt64 lee un filtro numérico opcional; vacío = 0 (sin filtro).
func queryInt64(c *fiber.Ctx, key string) (int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, key, raw)
	}
	return n, nil
}
