package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sewellco/hts-manager/internal/application/dto"
	"github.com/sewellco/hts-manager/internal/infrastructure/shipstation"
)

// ExportHandler genera el XML de aduana estilo ShipStation para un pedido.
type ExportHandler struct {
	builder *shipstation.ExportBuilder
}

// NewExportHandler construye el handler.
func NewExportHandler(builder *shipstation.ExportBuilder) *ExportHandler {
	return &ExportHandler{builder: builder}
}

// Export godoc
// @Summary      Exportar pedido con datos de aduana (formato ShipStation)
// @Description  Enriquece los ítems del pedido con el código HTS (10 dígitos sin
//               puntos) y el país de origen persistidos por producto. Los ítems
//               con datos incompletos se omiten del bloque de aduana; el export
//               nunca falla por un producto.
// @Tags         export
// @Security     Bearer
// @Accept       json
// @Produce      xml
// @Param        body  body  dto.ExportOrderRequest  true  "Pedido a exportar"
// @Success      200   {string}  string  "XML del pedido"
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/export/shipstation [post]
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	var in dto.ExportOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.OrderID == "" || len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "order_id e items son requeridos"})
	}
	xml, err := h.builder.BuildOrderXML(c.Context(), in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.SendString(xml)
}
