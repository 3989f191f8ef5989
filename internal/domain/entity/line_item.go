package entity

import "time"

// LineItem representa el estado de un SKU dentro de una koli.
// Las identidades opcionales son punteros: nil significa "aún no asignada por el servicio".
type LineItem struct {
	SKU          string
	Quantity     int
	ItemID       *int64    // identidad del producto en el servicio de inventario
	RecordID     *int64    // identidad de la fila persistida; nil = nueva
	CreatedBy    *int64    // operador que creó la fila
	CreationDate time.Time
	Barcode      string // barkod tal como lo lista el servicio (flujo de borrado)
}

// Persisted indica si la línea ya tiene identidad de persistencia.
func (l LineItem) Persisted() bool {
	return l.RecordID != nil
}

// UpsertRecord es una fila del payload de guardado enviado al servicio de inventario.
// SKU no viaja al servicio; se conserva para identificar la fila localmente.
type UpsertRecord struct {
	SKU          string
	RecordID     *int64
	ContainerID  string
	Quantity     int
	ItemID       *int64
	CreatedBy    *int64
	CreationDate time.Time
}

// Int64Ptr devuelve un puntero a v.
func Int64Ptr(v int64) *int64 { return &v }
