package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sewellco/hts-manager/internal/application/dto"
	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/internal/application/usecase"
	"github.com/sewellco/hts-manager/internal/domain"
)

// ClassificationHandler maneja los endpoints de clasificación HTS asistida por IA.
type ClassificationHandler struct {
	uc *usecase.ClassifyUseCase
}

// NewClassificationHandler construye el handler.
func NewClassificationHandler(uc *usecase.ClassifyUseCase) *ClassificationHandler {
	return &ClassificationHandler{uc: uc}
}

// Classify godoc
// @Summary      Clasificar un producto con IA
// @Description  Ejecuta la clasificación sincrónica del producto. Sin regenerate,
//               un producto ya clasificado es un no-op (409); con regenerate=true
//               se fuerza una nueva clasificación salvo override manual.
// @Tags         classification
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID del producto"
// @Param        regenerate  query  bool    false  "Forzar reclasificación"
// @Success      200  {object}  dto.ClassifyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/classify [post]
func (h *ClassificationHandler) Classify(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	regenerate := c.QueryBool("regenerate", false)

	out, err := h.uc.Classify(c.Context(), id, regenerate)
	if err != nil {
		return classifyErrorResponse(c, err)
	}
	return c.JSON(out)
}

// BulkClassify godoc
// @Summary      Encolar clasificación masiva
// @Description  Agenda la clasificación de los productos indicados con un retraso
//               aleatorio por producto para respetar el rate limit del proveedor.
//               Devuelve de inmediato el conteo encolado.
// @Tags         classification
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkClassifyRequest  true  "IDs de productos"
// @Success      202   {object}  dto.BulkClassifyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/classify/bulk [post]
func (h *ClassificationHandler) BulkClassify(c *fiber.Ctx) error {
	var in dto.BulkClassifyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.ProductIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_ids no puede estar vacío"})
	}
	out := h.uc.QueueBulk(in.ProductIDs)
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// Status godoc
// @Summary      Resumen de clasificación del catálogo
// @Tags         classification
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ClassifyStatusResponse
// @Router       /api/classify/status [get]
func (h *ClassificationHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// classifyErrorResponse traduce los errores del orquestador y del clasificador
// a códigos HTTP. Los fallos del proveedor LLM son todos 502/504: el cliente no
// puede hacer nada distinto según el subtipo, pero el código interno sí se expone
// para diagnóstico.
func classifyErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrNoAPIKey):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "AI_UNAVAILABLE", Message: "el servicio de clasificación IA no está configurado"})
	case errors.Is(err, domain.ErrAlreadyClassified):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CLASSIFIED", Message: "el producto ya tiene código HTS; usa regenerate=true para forzar"})
	case errors.Is(err, domain.ErrManualOverride):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "MANUAL_OVERRIDE", Message: "el producto tiene un código manual; solo un humano puede reemplazarlo"})
	case errors.Is(err, domain.ErrClassifyInFlight):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IN_FLIGHT", Message: "ya hay una clasificación en curso para este producto"})
	}

	if ce, ok := ports.AsClassifyError(err); ok {
		switch ce.Kind {
		case ports.ErrKindNetwork:
			return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "AI_NETWORK", Message: "no se pudo contactar al servicio de IA; intenta de nuevo"})
		case ports.ErrKindAPIStatus:
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AI_STATUS", Message: "el servicio de IA respondió con error"})
		case ports.ErrKindEmptyResponse:
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AI_EMPTY", Message: "el servicio de IA devolvió una respuesta vacía"})
		case ports.ErrKindUnparseable:
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AI_UNPARSEABLE", Message: "la respuesta del modelo no contiene un JSON válido"})
		case ports.ErrKindInvalidFormat:
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AI_INVALID_FORMAT", Message: "la respuesta del modelo no cumple el contrato (código o confianza inválidos)"})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
