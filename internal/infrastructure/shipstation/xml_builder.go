// Package shipstation enriquece el XML de pedidos del formato "custom store"
// de ShipStation con los campos de aduana persistidos por producto.
//
// Frontera de no-fallo: generar etiquetas de envío es más importante que tener
// datos de aduana completos. Cualquier problema por ítem (producto inexistente,
// código inválido, error de lectura) degrada a omitir los campos de aduana de
// ese ítem, nunca a fallar el export.
package shipstation

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/sewellco/hts-manager/internal/application/dto"
	"github.com/sewellco/hts-manager/internal/domain/entity"
	"github.com/sewellco/hts-manager/internal/domain/hts"
	"github.com/sewellco/hts-manager/internal/domain/repository"
	"github.com/sewellco/hts-manager/pkg/logger"
)

const (
	// maxCustomsDescriptionChars largo máximo de la descripción en el formulario de aduana.
	maxCustomsDescriptionChars = 200
	// maxCodeSummaryChars largo máximo del campo custom 2 (resumen SKU:código).
	maxCodeSummaryChars = 250
	// maxCodeSummaryItems máximo de pares SKU:código en el campo custom 2.
	maxCodeSummaryItems = 10
	// maxOriginCountries máximo de países distintos en el campo custom 3.
	maxOriginCountries = 5
)

// ExportBuilder arma el XML de aduana de un pedido a partir del catálogo.
type ExportBuilder struct {
	repo repository.ProductRepository
	log  *logger.Logger
}

// NewExportBuilder construye el adaptador de export.
func NewExportBuilder(repo repository.ProductRepository, log *logger.Logger) *ExportBuilder {
	return &ExportBuilder{repo: repo, log: log}
}

// customsLine datos de aduana resueltos para un ítem del pedido.
type customsLine struct {
	description string
	quantity    int
	unitValue   float64
	code        string // 10 dígitos sin puntos; "" = omitir HarmonizedCode
	country     string
	sku         string
	dottedCode  string // formato con puntos para el resumen del campo custom 2
}

// BuildOrderXML genera el fragmento <Order> con CustomsItems y los campos
// custom 2 (resumen SKU:código) y 3 (países de origen). Nunca devuelve error
// por datos de un ítem; solo por fallas de serialización.
func (b *ExportBuilder) BuildOrderXML(ctx context.Context, req dto.ExportOrderRequest) (string, error) {
	lines := make([]customsLine, 0, len(req.Items))
	for _, item := range req.Items {
		line, ok := b.resolveLine(ctx, req.OrderID, item)
		if !ok {
			continue
		}
		lines = append(lines, line)
	}

	doc := etree.NewDocument()
	order := doc.CreateElement("Order")
	order.CreateElement("OrderID").CreateCData(req.OrderID)

	customs := order.CreateElement("CustomsItems")
	for _, line := range lines {
		ci := customs.CreateElement("CustomsItem")
		ci.CreateElement("Description").CreateCData(line.description)
		ci.CreateElement("Quantity").SetText(fmt.Sprintf("%d", line.quantity))
		ci.CreateElement("Value").SetText(fmt.Sprintf("%.2f", line.unitValue))
		if line.code != "" {
			ci.CreateElement("HarmonizedCode").CreateCData(line.code)
		}
		ci.CreateElement("CountryOfOrigin").CreateCData(line.country)
	}

	if summary := codeSummary(lines); summary != "" {
		order.CreateElement("CustomField2").CreateCData(summary)
	}
	if countries := originCountries(lines); countries != "" {
		order.CreateElement("CustomField3").CreateCData(countries)
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializar XML de aduana: %w", err)
	}
	return out, nil
}

// resolveLine carga el producto y arma la línea de aduana. ok=false omite el
// ítem del bloque de aduana sin afectar al resto del pedido.
func (b *ExportBuilder) resolveLine(ctx context.Context, orderID string, item dto.ExportOrderItem) (customsLine, bool) {
	product, err := b.repo.GetByID(ctx, item.ProductID)
	if err != nil {
		b.log.Warn().Err(err).Str("order_id", orderID).Str("product_id", item.ProductID).
			Msg("export aduanero: no se pudo leer el producto, ítem omitido")
		return customsLine{}, false
	}
	if product == nil {
		b.log.Warn().Str("order_id", orderID).Str("product_id", item.ProductID).
			Msg("export aduanero: producto inexistente, ítem omitido")
		return customsLine{}, false
	}

	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	cls := product.Classification

	// El centinela "sin resolver" y los códigos malformados nunca salen en el
	// formulario; StripDots ya devuelve "" para formato inválido.
	code := ""
	dotted := ""
	if cls.HTSCode != "" && cls.HTSCode != entity.SentinelHTSCode {
		code = hts.StripDots(cls.HTSCode)
		if code != "" {
			dotted = cls.HTSCode
		}
	}

	return customsLine{
		description: customsDescription(product),
		quantity:    quantity,
		unitValue:   item.UnitValue,
		code:        code,
		country:     hts.NormalizeCountry(cls.CountryOfOrigin),
		sku:         product.SKU,
		dottedCode:  dotted,
	}, true
}

// customsDescription prefiere la descripción corta del producto y cae al
// nombre; recorta a 200 caracteres con sufijo "..." por el límite del formulario.
func customsDescription(p *entity.Product) string {
	desc := strings.TrimSpace(p.ShortDescription)
	if desc == "" {
		desc = strings.TrimSpace(p.Name)
	}
	runes := []rune(desc)
	if len(runes) <= maxCustomsDescriptionChars {
		return desc
	}
	return string(runes[:maxCustomsDescriptionChars-3]) + "..."
}

// codeSummary arma el campo custom 2: pares SKU:código separados por "; ",
// con tope de 10 ítems y 250 caracteres (el campo de ShipStation los trunca).
func codeSummary(lines []customsLine) string {
	var parts []string
	for _, line := range lines {
		if line.dottedCode == "" {
			continue
		}
		if len(parts) >= maxCodeSummaryItems {
			break
		}
		parts = append(parts, line.sku+":"+line.dottedCode)
	}
	summary := strings.Join(parts, "; ")
	for len(parts) > 1 && len(summary) > maxCodeSummaryChars {
		parts = parts[:len(parts)-1]
		summary = strings.Join(parts, "; ")
	}
	if len(summary) > maxCodeSummaryChars {
		summary = summary[:maxCodeSummaryChars]
	}
	return summary
}

// originCountries arma el campo custom 3: países distintos en orden de
// aparición, máximo 5, separados por coma.
func originCountries(lines []customsLine) string {
	seen := make(map[string]struct{}, maxOriginCountries)
	var countries []string
	for _, line := range lines {
		if _, ok := seen[line.country]; ok {
			continue
		}
		if len(countries) >= maxOriginCountries {
			break
		}
		seen[line.country] = struct{}{}
		countries = append(countries, line.country)
	}
	return strings.Join(countries, ",")
}
