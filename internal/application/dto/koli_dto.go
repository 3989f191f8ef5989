package dto

import "time"

// OpenSessionRequest abre una sesión de escaneo.
type OpenSessionRequest struct {
	Workflow string `json:"workflow"` // create | append
}

// ContainerRequest número de koli a validar.
type ContainerRequest struct {
	ContainerID string `json:"container_id"`
}

// ScanRequest lectura de barkod.
type ScanRequest struct {
	Barcode string `json:"barcode"`
}

// LineItemDTO línea del manifiesto de una koli.
type LineItemDTO struct {
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	ItemID       *int64    `json:"item_id"`
	RecordID     *int64    `json:"record_id"`
	CreatedBy    *int64    `json:"created_by"`
	CreationDate time.Time `json:"creation_date"`
	Barcode      string    `json:"barcode,omitempty"`
}

// SessionResponse foto de una sesión de escaneo.
type SessionResponse struct {
	ID           string        `json:"id"`
	Workflow     string        `json:"workflow"`
	ContainerID  string        `json:"container_id"`
	State        string        `json:"state"`
	Lines        []LineItemDTO `json:"lines"`
	Total        int           `json:"total"`
	JustAdded    bool          `json:"just_added"`
	BaselineSize int           `json:"baseline_size"`
	Notice       *NoticeDTO    `json:"notice,omitempty"`
}

// DeletionResponse contenido en caché de una koli del flujo de borrado.
type DeletionResponse struct {
	ContainerID string        `json:"container_id"`
	Lines       []LineItemDTO `json:"lines"`
	Total       int           `json:"total"`
	Notice      *NoticeDTO    `json:"notice,omitempty"`
}

// ReportEntryDTO fila del reporte de kolis.
type ReportEntryDTO struct {
	ID           *int64    `json:"id"`
	ContainerID  string    `json:"container_id"`
	Quantity     int       `json:"quantity"`
	Model        string    `json:"model"`
	Barcode      string    `json:"barcode"`
	CreationDate time.Time `json:"creation_date"`
}

// ReportResponse vista filtrada del histórico.
type ReportResponse struct {
	LedgerSize int              `json:"ledger_size"`
	FetchedAt  time.Time        `json:"fetched_at"`
	Start      *time.Time       `json:"start,omitempty"`
	End        *time.Time       `json:"end,omitempty"`
	Count      int              `json:"count"`
	Entries    []ReportEntryDTO `json:"entries"`
	Notice     *NoticeDTO       `json:"notice,omitempty"`
}
