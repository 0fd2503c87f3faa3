package ports

// LowConfidenceAlert datos de la notificación al operador cuando una
// clasificación automática queda por debajo del umbral de confianza.
type LowConfidenceAlert struct {
	ProductID         string
	ProductName       string
	SKU               string
	HTSCode           string
	ConfidencePercent int
	Reasoning         string
	ReviewLink        string
}

// Notifier define el puerto hacia el canal de notificación del operador
// (correo en producción). El fallo de entrega nunca es fatal: el orquestador
// lo registra y continúa.
type Notifier interface {
	NotifyLowConfidence(alert LowConfidenceAlert) error
}
