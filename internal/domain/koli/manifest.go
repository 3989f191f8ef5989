// Package koli contiene el motor de reconciliación de contenidos de koli:
// agregación de lecturas, máquina de estados de validación, diff contra la
// línea base y filtro del histórico. No depende de infraestructura.
package koli

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/koli-api/internal/domain"
	"github.com/jhoicas/koli-api/internal/domain/entity"
)

// Manifest es el contenido acumulado de una koli: SKU → línea, más el total.
// Total se mantiene de forma incremental junto con el mapa en cada Merge.
type Manifest struct {
	items map[string]*entity.LineItem
	order []string
	total int
}

// NewManifest crea un manifiesto vacío.
func NewManifest() *Manifest {
	return &Manifest{items: make(map[string]*entity.LineItem)}
}

// ParseDelta interpreta la cantidad devuelta por la búsqueda de producto.
func ParseDelta(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.Errorf(domain.ErrValidation, "cantidad de producto inválida: %q", raw)
	}
	if n < 1 {
		return 0, domain.Errorf(domain.ErrValidation, "cantidad de producto debe ser positiva: %d", n)
	}
	return n, nil
}

// Merge suma delta al SKU indicado. Si el SKU ya existe solo cambia su cantidad;
// si no, agrega una línea nueva sin RecordID, con createdBy y fecha de creación now.
// Devuelve una copia de la línea resultante.
func (m *Manifest) Merge(sku string, delta int, itemID, createdBy *int64, now time.Time) entity.LineItem {
	if li, ok := m.items[sku]; ok {
		li.Quantity += delta
		m.total += delta
		return *li
	}
	li := &entity.LineItem{
		SKU:          sku,
		Quantity:     delta,
		ItemID:       itemID,
		CreatedBy:    createdBy,
		CreationDate: now,
	}
	m.items[sku] = li
	m.order = append(m.order, sku)
	m.total += delta
	return *li
}

// Prime carga las líneas de la línea base antes de empezar a escanear.
// Un SKU repetido en la lista acumula su cantidad y conserva la identidad de la primera aparición.
func (m *Manifest) Prime(lines []entity.LineItem) {
	for _, l := range lines {
		if li, ok := m.items[l.SKU]; ok {
			li.Quantity += l.Quantity
			m.total += l.Quantity
			continue
		}
		cp := l
		m.items[l.SKU] = &cp
		m.order = append(m.order, l.SKU)
		m.total += l.Quantity
	}
}

// Get devuelve la línea de un SKU.
func (m *Manifest) Get(sku string) (entity.LineItem, bool) {
	li, ok := m.items[sku]
	if !ok {
		return entity.LineItem{}, false
	}
	return *li, true
}

// Items devuelve copias de las líneas en orden de primera aparición.
func (m *Manifest) Items() []entity.LineItem {
	out := make([]entity.LineItem, 0, len(m.order))
	for _, sku := range m.order {
		out = append(out, *m.items[sku])
	}
	return out
}

// Total es la suma de cantidades de todas las líneas.
func (m *Manifest) Total() int { return m.total }

// Len es el número de SKUs distintos.
func (m *Manifest) Len() int { return len(m.items) }

// Reset vacía el manifiesto.
func (m *Manifest) Reset() {
	m.items = make(map[string]*entity.LineItem)
	m.order = nil
	m.total = 0
}
