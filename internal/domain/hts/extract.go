package hts

import "strings"

// ExtractJSON localiza el primer objeto JSON sintácticamente balanceado dentro
// de texto libre del modelo (que puede venir envuelto en comentarios o bloques
// markdown). Devuelve "" si no hay ninguno.
//
// Se usa un escaneo por profundidad de llaves consciente de strings y escapes.
// La alternativa obvia — una regex tipo `\{.*\}` — es una debilidad conocida:
// con greedy captura desde la primera '{' hasta la ÚLTIMA '}' (mezclando
// fragmentos), y con non-greedy se corta en la primera '}' aunque el campo
// reasoning contenga objetos anidados o llaves literales.
func ExtractJSON(text string) string {
	// Quitar fences markdown (```json ... ```) antes de escanear; el contenido
	// del fence suele ser el objeto completo.
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.IndexByte(after, '\n'); nl != -1 {
			after = after[nl+1:]
		}
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		if obj := scanBalanced(after); obj != "" {
			return obj
		}
	}
	return scanBalanced(text)
}

// scanBalanced devuelve el primer objeto {...} balanceado, respetando strings
// JSON ("..." con escapes \") para no contar llaves dentro de literales.
func scanBalanced(text string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // '}' suelto antes de cualquier objeto
			}
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return "" // sin objeto balanceado (p.ej. respuesta truncada por max_tokens)
}
