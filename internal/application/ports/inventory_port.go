package ports

import (
	"context"

	"github.com/jhoicas/koli-api/internal/domain/entity"
)

// SuccessCode es el responseCode con el que el servicio de inventario indica éxito.
const SuccessCode = 0

// ContainerCheck respuesta de CheckContainer. La polaridad de Exists la interpreta cada flujo.
type ContainerCheck struct {
	Exists  bool
	Message string
}

// ContentsResult respuesta de ListContainerContents.
type ContentsResult struct {
	Code    int
	Message string
	Lines   []entity.LineItem
}

// OK indica si el servicio respondió con el código de éxito.
func (r ContentsResult) OK() bool { return r.Code == SuccessCode }

// ProductLookup respuesta de FindProductByBarcode; Product es nil si no se encontró.
type ProductLookup struct {
	Product *entity.Product
	Message string
}

// MutationResult respuesta de las operaciones que modifican el contenido de una koli.
type MutationResult struct {
	Code    int
	Message string
}

// OK indica si el servicio respondió con el código de éxito.
func (r MutationResult) OK() bool { return r.Code == SuccessCode }

// LedgerResult respuesta de ListAllContents.
type LedgerResult struct {
	Code    int
	Message string
	Entries []entity.LedgerEntry
}

// OK indica si el servicio respondió con el código de éxito.
func (r LedgerResult) OK() bool { return r.Code == SuccessCode }

// InventoryService define el puerto de salida hacia el servicio de inventario,
// dueño de todo el estado persistente de las kolis.
// Los errores devueltos son siempre de transporte (red, timeout o respuesta ilegible);
// un rechazo del servicio llega como Code distinto de SuccessCode.
type InventoryService interface {
	CheckContainer(ctx context.Context, containerID string) (*ContainerCheck, error)
	ListContainerContents(ctx context.Context, containerID string) (*ContentsResult, error)
	FindProductByBarcode(ctx context.Context, barcode string) (*ProductLookup, error)
	// UpsertContainerContents guarda el conjunto reconciliado del flujo de agregado.
	UpsertContainerContents(ctx context.Context, records []entity.UpsertRecord) (*MutationResult, error)
	// RegisterContainerContents registra el contenido de una koli nueva (todas altas).
	RegisterContainerContents(ctx context.Context, records []entity.UpsertRecord) (*MutationResult, error)
	DeleteContainerItem(ctx context.Context, containerID, barcode string) (*MutationResult, error)
	ListAllContents(ctx context.Context) (*LedgerResult, error)
}
