package dto

// ClassifyResponse resultado de una clasificación sincrónica de un producto.
type ClassifyResponse struct {
	ProductID  string  `json:"product_id"`
	HTSCode    string  `json:"hts_code"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
	LowConfidence bool `json:"low_confidence"`
}

// BulkClassifyRequest cola de clasificación para varios productos.
type BulkClassifyRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1"`
}

// BulkClassifyResponse solo reporta cuántos quedaron en cola; el resultado de
// cada producto se observa después vía su propio estado.
type BulkClassifyResponse struct {
	Queued int `json:"queued"`
}

// ClassifyStatusResponse resumen por estado para el operador.
type ClassifyStatusResponse struct {
	Total         int64   `json:"total"`
	Classified    int64   `json:"classified"`
	LowConfidence int64   `json:"low_confidence"`
	Manual        int64   `json:"manual"`
	Unclassified  int64   `json:"unclassified"`
	Threshold     float64 `json:"threshold"`
}

// ExportOrderRequest entrada del export aduanero estilo ShipStation: el pedido
// lo arma la plataforma de comercio; aquí solo se enriquecen los ítems con los
// campos de aduana persistidos por producto.
type ExportOrderRequest struct {
	OrderID string            `json:"order_id" validate:"required"`
	Items   []ExportOrderItem `json:"items" validate:"required,min=1"`
}

// ExportOrderItem línea del pedido a exportar.
type ExportOrderItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity"`
	UnitValue float64 `json:"unit_value"`
}
