package hts

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/sewellco/hts-manager/internal/domain/entity"
)

// MaxDescriptionChars tope de la descripción interpolada en el prompt.
const MaxDescriptionChars = 1000

// promptPreamble contrato de rol y de formato de salida del modelo.
// La regla 4 es el desempate conservador: ante la duda, el código con mayor
// tasa arancelaria.
const promptPreamble = `You are an expert in Harmonized Tariff Schedule (HTS) classification for US imports.
Analyze this product and provide the most accurate 10-digit HTS code.

PRODUCT INFORMATION:
`

const promptRules = `
IMPORTANT RULES:
1. Provide the full 10-digit HTS code (format: ####.##.####)
2. Consider the product's primary function and material composition
3. Use the most specific classification available
4. If uncertain between codes, choose the one with higher duty rate (conservative approach)

Respond in this exact JSON format:
{
    "hts_code": "####.##.####",
    "confidence": 0.0 to 1.0,
    "reasoning": "Brief explanation"
}`

// BuildPrompt construye el prompt de clasificación a partir del snapshot.
// Función pura y determinista: mismo snapshot, mismo prompt. Todo el texto del
// producto se sanea antes de interpolarse — el contenido del catálogo jamás
// puede alterar las instrucciones (prompt injection), solo describir el producto.
func BuildPrompt(s entity.Snapshot) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	fmt.Fprintf(&b, "Name: %s\n", Sanitize(s.Name))
	fmt.Fprintf(&b, "SKU: %s\n", Sanitize(s.SKU))
	fmt.Fprintf(&b, "Description: %s\n", truncateRunes(Sanitize(s.Description), MaxDescriptionChars))

	cats := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		if clean := Sanitize(c); clean != "" {
			cats = append(cats, clean)
		}
	}
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(cats, ", "))

	b.WriteString(promptRules)
	return b.String()
}

// Sanitize convierte texto arbitrario del catálogo en texto plano seguro:
// elimina etiquetas HTML/markup, suprime caracteres de control, colapsa
// espacios y normaliza a Unicode NFC. Nunca falla; entrada vacía → "".
func Sanitize(text string) string {
	text = stripTags(text)
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true // descarta espacios iniciales
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t' || unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsControl(r):
			// caracteres de control se descartan por completo
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// stripTags elimina todo lo que parezca una etiqueta <...> sin interpretar el
// HTML. Un '<' sin cierre se descarta hasta el final: preferimos perder un
// fragmento de descripción a dejar pasar markup hacia el prompt.
func stripTags(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	inTag := false
	for _, r := range text {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
				// las etiquetas separan palabras: "<p>a</p><p>b</p>" -> "a b"
				b.WriteByte(' ')
			}
		case r == '<':
			inTag = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateRunes corta por runas para no partir caracteres multibyte.
func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
