package koli

import "github.com/jhoicas/koli-api/internal/domain/entity"

// Baseline es la foto del contenido de la koli en el servidor al momento de validar.
// Es inmutable durante la vida de la sesión.
type Baseline struct {
	bySKU map[string]entity.LineItem
}

// NewBaseline indexa las líneas por SKU. Ante SKUs repetidos se queda la primera identidad.
func NewBaseline(lines []entity.LineItem) Baseline {
	b := Baseline{bySKU: make(map[string]entity.LineItem, len(lines))}
	for _, l := range lines {
		if _, ok := b.bySKU[l.SKU]; !ok {
			b.bySKU[l.SKU] = l
		}
	}
	return b
}

// Lookup devuelve la línea base de un SKU.
func (b Baseline) Lookup(sku string) (entity.LineItem, bool) {
	l, ok := b.bySKU[sku]
	return l, ok
}

// Len es el número de SKUs en la línea base.
func (b Baseline) Len() int { return len(b.bySKU) }

// Reconcile arma el payload de guardado del flujo de agregado: una fila por SKU del
// manifiesto actual, con la cantidad actual e identidad (RecordID, CreatedBy,
// CreationDate) tomada de la línea base cuando el SKU ya existía.
// Los SKUs de la línea base que no están en el manifiesto no se emiten.
func Reconcile(containerID string, current []entity.LineItem, base Baseline) []entity.UpsertRecord {
	out := make([]entity.UpsertRecord, 0, len(current))
	for _, cur := range current {
		rec := entity.UpsertRecord{
			SKU:          cur.SKU,
			RecordID:     cur.RecordID,
			ContainerID:  containerID,
			Quantity:     cur.Quantity,
			ItemID:       cur.ItemID,
			CreatedBy:    cur.CreatedBy,
			CreationDate: cur.CreationDate,
		}
		if prev, ok := base.Lookup(cur.SKU); ok {
			rec.RecordID = prev.RecordID
			rec.CreatedBy = prev.CreatedBy
			rec.CreationDate = prev.CreationDate
			if rec.ItemID == nil {
				rec.ItemID = prev.ItemID
			}
		}
		out = append(out, rec)
	}
	return out
}

// FreshRecords arma el payload del flujo de creación: todas las filas son altas nuevas.
func FreshRecords(containerID string, current []entity.LineItem) []entity.UpsertRecord {
	out := make([]entity.UpsertRecord, 0, len(current))
	for _, cur := range current {
		out = append(out, entity.UpsertRecord{
			SKU:          cur.SKU,
			ContainerID:  containerID,
			Quantity:     cur.Quantity,
			ItemID:       cur.ItemID,
			CreatedBy:    cur.CreatedBy,
			CreationDate: cur.CreationDate,
		})
	}
	return out
}
