package entity

import "time"

// LedgerEntry es una línea persistida del histórico de todas las kolis (reporte).
type LedgerEntry struct {
	RecordID     *int64
	ContainerID  string
	Quantity     int
	SKU          string // "model" en el reporte
	Barcode      string
	CreationDate time.Time
}

// Product es el resultado de buscar un producto por barkod.
// Quantity llega sin interpretar: el agregador decide si es un entero válido.
type Product struct {
	SKU      string
	Quantity string
	ItemID   *int64
}
