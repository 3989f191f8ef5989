package koli_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	"github.com/jhoicas/koli-api/internal/domain"
	"github.com/jhoicas/koli-api/internal/domain/entity"
	"github.com/jhoicas/koli-api/pkg/logger"
)

// TestMain verifica que los pasos concurrentes no dejen goroutines colgadas.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, 4, 2, 14, 0, 0, 0, time.UTC)

func newSessions(f *fakeInventory, opts ...appkoli.SessionOption) *appkoli.SessionUseCase {
	opts = append([]appkoli.SessionOption{appkoli.WithClock(func() time.Time { return fixedNow })}, opts...)
	return appkoli.NewSessionUseCase(f, logger.Nop(), opts...)
}

func openSession(t *testing.T, uc *appkoli.SessionUseCase, workflow string) string {
	t.Helper()
	v, err := uc.Open(workflow, entity.Int64Ptr(12))
	require.NoError(t, err)
	return v.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

// La misma respuesta "existe" rechaza el alta y acepta el agregado.
func TestValidate_MismaRespuestaPolaridadOpuesta(t *testing.T) {
	f := newFakeInventory()
	f.existing["K-1"] = true
	uc := newSessions(f)

	createID := openSession(t, uc, "create")
	_, err := uc.ValidateContainer(context.Background(), createID, "K-1")
	assert.True(t, errors.Is(err, domain.ErrConflict))
	v, _ := uc.Get(createID)
	assert.Equal(t, "rejected", v.State)

	appendID := openSession(t, uc, "append")
	res, err := uc.ValidateContainer(context.Background(), appendID, "K-1")
	require.NoError(t, err)
	assert.Equal(t, "validated", res.Session.State)
}

func TestValidate_NumeroVacioSinLlamada(t *testing.T) {
	f := newFakeInventory()
	uc := newSessions(f)
	id := openSession(t, uc, "create")

	_, err := uc.ValidateContainer(context.Background(), id, "  ")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Zero(t, f.count("check"))
	v, _ := uc.Get(id)
	assert.Equal(t, "idle", v.State)
}

func TestValidate_AgregadoCargaLineaBase(t *testing.T) {
	f := newFakeInventory()
	f.existing["K-2"] = true
	f.contents["K-2"] = []entity.LineItem{
		{SKU: "A", Quantity: 5, RecordID: entity.Int64Ptr(41)},
		{SKU: "B", Quantity: 2, RecordID: entity.Int64Ptr(42)},
	}
	uc := newSessions(f)
	id := openSession(t, uc, "append")

	res, err := uc.ValidateContainer(context.Background(), id, "K-2")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Session.Total)
	assert.Len(t, res.Session.Lines, 2)
	assert.Equal(t, 2, res.Session.BaselineSize)
	assert.Equal(t, domain.SeveritySuccess, res.Notice.Severity)
}

func TestValidate_AgregadoInexistenteReiniciaSesion(t *testing.T) {
	f := newFakeInventory()
	f.existing["K-3"] = true
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "2"}
	uc := newSessions(f)
	id := openSession(t, uc, "append")

	_, err := uc.ValidateContainer(context.Background(), id, "K-3")
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), id, "111")
	require.NoError(t, err)

	_, err = uc.ValidateContainer(context.Background(), id, "K-404")
	assert.True(t, errors.Is(err, domain.ErrConflict))
	v, _ := uc.Get(id)
	assert.Empty(t, v.Lines)
	assert.Zero(t, v.Total)
	assert.Zero(t, v.BaselineSize)
	assert.False(t, v.JustAdded)
}

func TestValidate_FalloDeTransporteEsRecuperable(t *testing.T) {
	f := newFakeInventory()
	f.checkErr = errNetwork
	uc := newSessions(f)
	id := openSession(t, uc, "create")

	_, err := uc.ValidateContainer(context.Background(), id, "K-5")
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Equal(t, domain.SeverityError, domain.SeverityOf(err))
	v, _ := uc.Get(id)
	assert.Equal(t, "idle", v.State)

	f.checkErr = nil
	_, err = uc.ValidateContainer(context.Background(), id, "K-5")
	require.NoError(t, err)
}

func TestValidate_FalloDeTransporteEnAgregadoVaciaLaSesion(t *testing.T) {
	f := newFakeInventory()
	f.existing["K-3"] = true
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "2"}
	uc := newSessions(f)
	id := openSession(t, uc, "append")

	_, err := uc.ValidateContainer(context.Background(), id, "K-3")
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), id, "111")
	require.NoError(t, err)

	f.checkErr = errNetwork
	_, err = uc.ValidateContainer(context.Background(), id, "K-3")
	assert.True(t, errors.Is(err, domain.ErrTransport))
	v, err := uc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "idle", v.State)
	assert.Empty(t, v.Lines)
	assert.Zero(t, v.Total)
	assert.Zero(t, v.BaselineSize)
	assert.False(t, v.JustAdded)
}

func TestValidate_LineaBaseRechazadaReinicia(t *testing.T) {
	f := newFakeInventory()
	f.existing["K-6"] = true
	f.listCode = 1
	uc := newSessions(f)
	id := openSession(t, uc, "append")

	_, err := uc.ValidateContainer(context.Background(), id, "K-6")
	assert.True(t, errors.Is(err, domain.ErrServer))
	assert.Equal(t, domain.SeverityWarning, domain.SeverityOf(err))
	assert.Equal(t, "no se pudo cargar el contenido de la koli", domain.MessageOf(err))
	v, _ := uc.Get(id)
	assert.Equal(t, "rejected", v.State)
	assert.Empty(t, v.Lines)
	assert.Zero(t, v.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escaneo
// ──────────────────────────────────────────────────────────────────────────────

func TestScan_RequiereKoliValidada(t *testing.T) {
	f := newFakeInventory()
	uc := newSessions(f)
	id := openSession(t, uc, "create")

	_, err := uc.Scan(context.Background(), id, "111")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Zero(t, f.count("lookup"))
}

func TestScan_FusionaYMantieneTotal(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "3", ItemID: entity.Int64Ptr(9)}
	f.products["222"] = &entity.Product{SKU: "B", Quantity: "1"}
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, err := uc.ValidateContainer(context.Background(), id, "K-NEW")
	require.NoError(t, err)

	for _, bc := range []string{"111", "222", "111"} {
		res, err := uc.Scan(context.Background(), id, bc)
		require.NoError(t, err)
		sum := 0
		for _, l := range res.Session.Lines {
			sum += l.Quantity
		}
		assert.Equal(t, sum, res.Session.Total)
		assert.True(t, res.Session.JustAdded)
	}
	v, _ := uc.Get(id)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, 6, v.Lines[0].Quantity)
	assert.Equal(t, int64(12), *v.Lines[0].CreatedBy, "createdBy por defecto es el operador de la sesión")
	assert.Equal(t, fixedNow, v.Lines[0].CreationDate)
	assert.Equal(t, 7, v.Total)
}

func TestScan_ProductoNoEncontradoNoMuta(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "3"}
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, _ = uc.ValidateContainer(context.Background(), id, "K-NEW")
	_, err := uc.Scan(context.Background(), id, "111")
	require.NoError(t, err)

	_, err = uc.Scan(context.Background(), id, "999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "Ürün bulunamadı.", domain.MessageOf(err))

	v, _ := uc.Get(id)
	assert.Equal(t, 3, v.Total, "un fallo no deshace fusiones anteriores")
}

func TestScan_CantidadNoNumericaEsValidacion(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "abc"}
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, _ = uc.ValidateContainer(context.Background(), id, "K-NEW")

	_, err := uc.Scan(context.Background(), id, "111")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	v, _ := uc.Get(id)
	assert.Empty(t, v.Lines)
}

func TestScan_BarkodVacioToleradoSoloEnAgregadoTrasAgregar(t *testing.T) {
	f := newFakeInventory()
	f.existing["K-1"] = true
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "1"}
	uc := newSessions(f)

	appendID := openSession(t, uc, "append")
	_, err := uc.ValidateContainer(context.Background(), appendID, "K-1")
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), appendID, "")
	assert.True(t, errors.Is(err, domain.ErrValidation), "sin agregado previo el barkod vacío es error")

	_, err = uc.Scan(context.Background(), appendID, "111")
	require.NoError(t, err)
	lookups := f.count("lookup")
	res, err := uc.Scan(context.Background(), appendID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Session.Total)
	assert.Equal(t, lookups, f.count("lookup"), "el Enter vacío no sale a red")

	createID := openSession(t, uc, "create")
	_, err = uc.ValidateContainer(context.Background(), createID, "K-NEW")
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), createID, "111")
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), createID, " ")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestScan_ConcurrenteNoPierdeActualizaciones(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "1"}
	f.onLookup = func() { time.Sleep(time.Millisecond) }
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, err := uc.ValidateContainer(context.Background(), id, "K-NEW")
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Scan(context.Background(), id, "111")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, _ := uc.Get(id)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, n, v.Lines[0].Quantity)
	assert.Equal(t, n, v.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardado
// ──────────────────────────────────────────────────────────────────────────────

func TestSave_AgregadoReconciliaYReinicia(t *testing.T) {
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	f := newFakeInventory()
	f.existing["K-7"] = true
	f.contents["K-7"] = []entity.LineItem{{SKU: "A", Quantity: 5, RecordID: entity.Int64Ptr(41), CreatedBy: entity.Int64Ptr(2), CreationDate: base}}
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "3"}
	f.products["222"] = &entity.Product{SKU: "B", Quantity: "3"}
	f.saveMessage = "Güncellendi."
	journal := &fakeJournal{}
	uc := newSessions(f, appkoli.WithJournal(journal))
	id := openSession(t, uc, "append")

	_, err := uc.ValidateContainer(context.Background(), id, "K-7")
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), id, "111")
	require.NoError(t, err)
	_, err = uc.Scan(context.Background(), id, "222")
	require.NoError(t, err)

	res, err := uc.Save(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Güncellendi.", res.Notice.Message)
	assert.Equal(t, "idle", res.Session.State)
	assert.Empty(t, res.Session.Lines)
	assert.Zero(t, res.Session.BaselineSize)

	require.Len(t, f.upserted, 1)
	assert.Zero(t, f.count("register"))
	records := f.upserted[0]
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].SKU)
	assert.Equal(t, 8, records[0].Quantity)
	assert.Equal(t, int64(41), *records[0].RecordID)
	assert.Equal(t, base, records[0].CreationDate)
	assert.Equal(t, "B", records[1].SKU)
	assert.Equal(t, 3, records[1].Quantity)
	assert.Nil(t, records[1].RecordID)

	require.Len(t, journal.subs, 1)
	assert.Equal(t, "K-7", journal.subs[0].ContainerID)
	assert.Equal(t, "append", journal.subs[0].Workflow)
}

func TestSave_AltaTodoNuevo(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "2"}
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, _ = uc.ValidateContainer(context.Background(), id, "K-NEW")
	_, err := uc.Scan(context.Background(), id, "111")
	require.NoError(t, err)

	_, err = uc.Save(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, f.inserted, 1)
	assert.Zero(t, f.count("upsert"))
	assert.Nil(t, f.inserted[0][0].RecordID)
	assert.Equal(t, "K-NEW", f.inserted[0][0].ContainerID)
}

func TestSave_SinLineasEsAdvertencia(t *testing.T) {
	f := newFakeInventory()
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, _ = uc.ValidateContainer(context.Background(), id, "K-NEW")

	_, err := uc.Save(context.Background(), id)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, domain.SeverityWarning, domain.SeverityOf(err))
}

func TestSave_RechazoDelServidorConservaSesion(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "2"}
	f.saveCode = 3
	f.saveMessage = "Kayıt hatası"
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, _ = uc.ValidateContainer(context.Background(), id, "K-NEW")
	_, _ = uc.Scan(context.Background(), id, "111")

	_, err := uc.Save(context.Background(), id)
	assert.True(t, errors.Is(err, domain.ErrServer))
	assert.Equal(t, "Kayıt hatası", domain.MessageOf(err))
	v, _ := uc.Get(id)
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, "validated", v.State)
}

func TestSave_FalloDeTransporteConservaSesion(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "2"}
	f.saveErr = context.DeadlineExceeded
	journal := &fakeJournal{}
	uc := newSessions(f, appkoli.WithJournal(journal))
	id := openSession(t, uc, "create")
	_, _ = uc.ValidateContainer(context.Background(), id, "K-NEW")
	_, _ = uc.Scan(context.Background(), id, "111")

	_, err := uc.Save(context.Background(), id)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	v, _ := uc.Get(id)
	assert.Equal(t, 2, v.Total)
	require.Len(t, journal.subs, 1)
	assert.True(t, journal.subs[0].Transport)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestClear_OlvidaKoliYLineas(t *testing.T) {
	f := newFakeInventory()
	f.products["111"] = &entity.Product{SKU: "A", Quantity: "2"}
	uc := newSessions(f)
	id := openSession(t, uc, "create")
	_, _ = uc.ValidateContainer(context.Background(), id, "K-NEW")
	_, _ = uc.Scan(context.Background(), id, "111")

	res, err := uc.Clear(id)
	require.NoError(t, err)
	assert.Empty(t, res.Session.ContainerID)
	assert.Zero(t, res.Session.Total)
	assert.Equal(t, "idle", res.Session.State)
}

func TestOpen_FlujoInvalido(t *testing.T) {
	uc := newSessions(newFakeInventory())
	_, err := uc.Open("delete", nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = uc.Open("nope", nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCloseYEvictIdle(t *testing.T) {
	now := fixedNow
	uc := appkoli.NewSessionUseCase(newFakeInventory(), logger.Nop(),
		appkoli.WithClock(func() time.Time { return now }))
	a, _ := uc.Open("create", nil)
	b, _ := uc.Open("append", nil)

	require.NoError(t, uc.Close(a.ID))
	assert.True(t, errors.Is(uc.Close(a.ID), domain.ErrNotFound))

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, uc.EvictIdle(time.Hour))
	_, err := uc.Get(b.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
