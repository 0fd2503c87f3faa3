package ports

import "time"

// ClassifyScheduler define el puerto hacia el mecanismo de ejecución diferida.
// Semántica: como máximo UNA clasificación pendiente por producto — programar
// de nuevo reemplaza (cancela y re-agenda) la pendiente, nunca la duplica.
type ClassifyScheduler interface {
	// Schedule agenda la clasificación del producto tras el retraso indicado,
	// reemplazando cualquier pendiente anterior para el mismo producto.
	Schedule(productID string, delay time.Duration)

	// Cancel descarta la clasificación pendiente del producto, si existe.
	// Se invoca cuando un humano escribe un código manual.
	Cancel(productID string)

	// Pending indica si hay una clasificación agendada sin ejecutar.
	Pending(productID string) bool
}
