package inventorysvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// envelope es la respuesta común de todos los endpoints del servicio.
type envelope struct {
	ResponseCode    int             `json:"responseCode"`
	ResponseMessage string          `json:"responseMessage"`
	EntityData      json.RawMessage `json:"entityData"`
	EntityDataList  json.RawMessage `json:"entityDataList"`
}

func (e envelope) hasEntity() bool {
	return len(e.EntityData) > 0 && !bytes.Equal(e.EntityData, []byte("null"))
}

// flexInt acepta un número o un string numérico ("adet" llega de las dos formas).
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cantidad no numérica %q", s)
	}
	*f = flexInt(int(fl))
	return nil
}

// optID es una identidad opcional: null, 0 o ausente equivalen a "sin asignar".
type optID struct {
	v   int64
	set bool
}

func (o *optID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*o = optID{}
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("identidad no numérica %q", s)
	}
	*o = optID{v: n, set: n != 0}
	return nil
}

func (o optID) ptr() *int64 {
	if !o.set {
		return nil
	}
	v := o.v
	return &v
}

// wireID el servicio representa "sin identidad" como 0.
func wireID(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// wireTime es una fecha tal como la devuelve el servicio, con o sin zona.
type wireTime string

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parse interpreta la fecha; las fechas sin zona se leen en loc. Una fecha vacía o ilegible es el tiempo cero.
func (w wireTime) parse(loc *time.Location) time.Time {
	s := strings.TrimSpace(string(w))
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// formatWireTime fecha ISO-8601 en UTC con milisegundos.
func formatWireTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ── Filas del protocolo ──────────────────────────────────────────────────────

type contentRow struct {
	ID            optID    `json:"id"`
	SKU           string   `json:"sku"`
	Adet          flexInt  `json:"adet"`
	ItemID        optID    `json:"iteM_ID"`
	CreatedBy     optID    `json:"createD_BY"`
	CreationDate  wireTime `json:"creation_DATE"`
	CreationDate2 wireTime `json:"creatioN_DATE"`
	Barkod        string   `json:"barkod"`
}

func (r contentRow) creation() wireTime {
	if r.CreationDate != "" {
		return r.CreationDate
	}
	return r.CreationDate2
}

type productRow struct {
	SKU             string          `json:"sku"`
	Adet            json.RawMessage `json:"adet"`
	ItemID          optID           `json:"iteM_ID"`
	InventoryItemID optID           `json:"inventorY_ITEM_ID"`
}

type ledgerRow struct {
	ID           optID    `json:"id"`
	KoliNo       string   `json:"kolI_NO"`
	Adet         flexInt  `json:"adet"`
	SKU          string   `json:"sku"`
	Barkod       string   `json:"barkod"`
	CreationDate wireTime `json:"creatioN_DATE"`
}

// upsertRow fila de UpdateBox (flujo de agregado).
type upsertRow struct {
	ID           int64  `json:"id"`
	KoliNo       string `json:"kolI_NO"`
	Adet         int    `json:"adet"`
	ItemID       int64  `json:"iteM_ID"`
	CreatedBy    int64  `json:"createD_BY"`
	CreationDate string `json:"creatioN_DATE"`
}

// registerRow fila de KoliIcerikKayit (alta de koli nueva).
type registerRow struct {
	ID           int64  `json:"id"`
	KoliNo       string `json:"koli_NO"`
	Adet         int    `json:"adet"`
	ItemID       int64  `json:"item_ID"`
	CreatedBy    int64  `json:"created_BY"`
	CreationDate string `json:"creation_DATE"`
}

// rawQuantity devuelve "adet" sin interpretar, como texto.
func rawQuantity(b json.RawMessage) string {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		return str
	}
	return s
}
