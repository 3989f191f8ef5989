package inventorysvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/koli-api/internal/application/ports"
	"github.com/jhoicas/koli-api/internal/domain/entity"
	"github.com/jhoicas/koli-api/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa InventoryService.
var _ ports.InventoryService = (*Client)(nil)

const maxBodyBytes = 4 << 20

// ErrBadResponse la respuesta del servicio no se pudo interpretar.
var ErrBadResponse = errors.New("inventorysvc: respuesta ilegible")

// Config parámetros del adaptador.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Location zona en que se leen las fechas sin zona que devuelve el servicio.
	Location *time.Location
}

// Client adaptador HTTP del servicio de inventario.
type Client struct {
	base       string
	loc        *time.Location
	httpClient *http.Client
	log        *logger.Logger
}

// New construye el adaptador. Si el timeout no es positivo se usan 15 s.
func New(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		loc:        loc,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Component("inventorysvc"),
	}
}

// CheckContainer consulta KoliKontrol. El servicio responde entityData=true cuando el
// número de koli está libre, por lo que Exists es la negación.
func (c *Client) CheckContainer(ctx context.Context, containerID string) (*ports.ContainerCheck, error) {
	env, err := c.call(ctx, http.MethodPost, "/KoliKontrol", url.Values{"koliNo": {containerID}}, nil)
	if err != nil {
		return nil, err
	}
	if !env.hasEntity() {
		return nil, fmt.Errorf("%w: KoliKontrol sin entityData", ErrBadResponse)
	}
	var available bool
	if err := json.Unmarshal(env.EntityData, &available); err != nil {
		return nil, fmt.Errorf("%w: KoliKontrol: %v", ErrBadResponse, err)
	}
	return &ports.ContainerCheck{Exists: !available, Message: env.ResponseMessage}, nil
}

// ListContainerContents consulta ListByBoxNumber.
func (c *Client) ListContainerContents(ctx context.Context, containerID string) (*ports.ContentsResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/ListByBoxNumber", url.Values{"koliNo": {containerID}}, nil)
	if err != nil {
		return nil, err
	}
	out := &ports.ContentsResult{Code: env.ResponseCode, Message: env.ResponseMessage}
	var rows []contentRow
	if err := decodeList(env, &rows); err != nil {
		return nil, fmt.Errorf("ListByBoxNumber: %w", err)
	}
	out.Lines = make([]entity.LineItem, 0, len(rows))
	for _, r := range rows {
		out.Lines = append(out.Lines, entity.LineItem{
			SKU:          r.SKU,
			Quantity:     int(r.Adet),
			ItemID:       r.ItemID.ptr(),
			RecordID:     r.ID.ptr(),
			CreatedBy:    r.CreatedBy.ptr(),
			CreationDate: r.creation().parse(c.loc),
			Barcode:      r.Barkod,
		})
	}
	return out, nil
}

// FindProductByBarcode consulta UrunBul. Sin entityData el producto no existe.
func (c *Client) FindProductByBarcode(ctx context.Context, barcode string) (*ports.ProductLookup, error) {
	env, err := c.call(ctx, http.MethodPost, "/UrunBul", url.Values{"barkod": {barcode}}, nil)
	if err != nil {
		return nil, err
	}
	out := &ports.ProductLookup{Message: env.ResponseMessage}
	if !env.hasEntity() {
		return out, nil
	}
	var row productRow
	if err := json.Unmarshal(env.EntityData, &row); err != nil {
		return nil, fmt.Errorf("%w: UrunBul: %v", ErrBadResponse, err)
	}
	itemID := row.ItemID.ptr()
	if itemID == nil {
		itemID = row.InventoryItemID.ptr()
	}
	out.Product = &entity.Product{SKU: row.SKU, Quantity: rawQuantity(row.Adet), ItemID: itemID}
	return out, nil
}

// UpsertContainerContents envía el conjunto reconciliado a UpdateBox.
func (c *Client) UpsertContainerContents(ctx context.Context, records []entity.UpsertRecord) (*ports.MutationResult, error) {
	rows := make([]upsertRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, upsertRow{
			ID:           wireID(r.RecordID),
			KoliNo:       r.ContainerID,
			Adet:         r.Quantity,
			ItemID:       wireID(r.ItemID),
			CreatedBy:    wireID(r.CreatedBy),
			CreationDate: formatWireTime(r.CreationDate),
		})
	}
	return c.mutate(ctx, http.MethodPost, "/UpdateBox", nil, rows)
}

// RegisterContainerContents envía el contenido de una koli nueva a KoliIcerikKayit.
func (c *Client) RegisterContainerContents(ctx context.Context, records []entity.UpsertRecord) (*ports.MutationResult, error) {
	rows := make([]registerRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, registerRow{
			ID:           0,
			KoliNo:       r.ContainerID,
			Adet:         r.Quantity,
			ItemID:       wireID(r.ItemID),
			CreatedBy:    wireID(r.CreatedBy),
			CreationDate: formatWireTime(r.CreationDate),
		})
	}
	return c.mutate(ctx, http.MethodPost, "/KoliIcerikKayit", nil, rows)
}

// DeleteContainerItem borra una línea con DeleteBox.
func (c *Client) DeleteContainerItem(ctx context.Context, containerID, barcode string) (*ports.MutationResult, error) {
	return c.mutate(ctx, http.MethodDelete, "/DeleteBox", url.Values{"koliNo": {containerID}, "barkod": {barcode}}, nil)
}

// ListAllContents consulta ListAllBox.
func (c *Client) ListAllContents(ctx context.Context) (*ports.LedgerResult, error) {
	env, err := c.call(ctx, http.MethodGet, "/ListAllBox", nil, nil)
	if err != nil {
		return nil, err
	}
	out := &ports.LedgerResult{Code: env.ResponseCode, Message: env.ResponseMessage}
	var rows []ledgerRow
	if err := decodeList(env, &rows); err != nil {
		return nil, fmt.Errorf("ListAllBox: %w", err)
	}
	out.Entries = make([]entity.LedgerEntry, 0, len(rows))
	for _, r := range rows {
		out.Entries = append(out.Entries, entity.LedgerEntry{
			RecordID:     r.ID.ptr(),
			ContainerID:  r.KoliNo,
			Quantity:     int(r.Adet),
			SKU:          r.SKU,
			Barcode:      r.Barkod,
			CreationDate: r.CreationDate.parse(c.loc),
		})
	}
	return out, nil
}

func (c *Client) mutate(ctx context.Context, method, path string, q url.Values, body any) (*ports.MutationResult, error) {
	env, err := c.call(ctx, method, path, q, body)
	if err != nil {
		return nil, err
	}
	return &ports.MutationResult{Code: env.ResponseCode, Message: env.ResponseMessage}, nil
}

// call ejecuta la petición y decodifica el sobre. Un status HTTP distinto de 2xx o un
// cuerpo ilegible es un error; un responseCode de rechazo no lo es.
func (c *Client) call(ctx context.Context, method, path string, q url.Values, body any) (*envelope, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("inventorysvc: serializar %s: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("inventorysvc: crear request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("inventorysvc: %s timeout o cancelación: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("inventorysvc: %s llamada HTTP fallida: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("inventorysvc: leer respuesta %s: %w", path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("llamada al servicio de inventario")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("inventorysvc: %s HTTP %d", path, resp.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, path, err)
	}
	return &env, nil
}

func decodeList[T any](env *envelope, out *[]T) error {
	if len(env.EntityDataList) == 0 || bytes.Equal(env.EntityDataList, []byte("null")) {
		*out = nil
		return nil
	}
	if err := json.Unmarshal(env.EntityDataList, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}
