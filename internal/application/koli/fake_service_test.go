package koli_test

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/koli-api/internal/application/ports"
	"github.com/jhoicas/koli-api/internal/domain/entity"
)

var errNetwork = errors.New("dial tcp: connection refused")

// fakeInventory simula el servicio de inventario en memoria y cuenta las llamadas.
type fakeInventory struct {
	mu sync.Mutex

	existing map[string]bool
	contents map[string][]entity.LineItem
	products map[string]*entity.Product
	ledger   []entity.LedgerEntry

	checkErr    error
	listErr     error
	listCode    int
	lookupErr   error
	saveErr     error
	saveCode    int
	saveMessage string
	deleteErr   error
	deleteCode  int
	ledgerErr   error

	calls     map[string]int
	upserted  [][]entity.UpsertRecord
	inserted  [][]entity.UpsertRecord
	deletions []string
	// onLookup se ejecuta dentro de FindProductByBarcode (tests de concurrencia).
	onLookup func()
	// ledgerGate, si no es nil, retiene ListAllContents hasta que se cierre.
	ledgerGate chan struct{}
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		existing: make(map[string]bool),
		contents: make(map[string][]entity.LineItem),
		products: make(map[string]*entity.Product),
		calls:    make(map[string]int),
	}
}

func (f *fakeInventory) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeInventory) CheckContainer(_ context.Context, id string) (*ports.ContainerCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["check"]++
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return &ports.ContainerCheck{Exists: f.existing[id]}, nil
}

func (f *fakeInventory) ListContainerContents(_ context.Context, id string) (*ports.ContentsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	lines := append([]entity.LineItem(nil), f.contents[id]...)
	return &ports.ContentsResult{Code: f.listCode, Lines: lines}, nil
}

func (f *fakeInventory) FindProductByBarcode(_ context.Context, barcode string) (*ports.ProductLookup, error) {
	f.mu.Lock()
	f.calls["lookup"]++
	hook := f.onLookup
	err := f.lookupErr
	p := f.products[barcode]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &ports.ProductLookup{Message: "Ürün bulunamadı."}, nil
	}
	cp := *p
	return &ports.ProductLookup{Product: &cp}, nil
}

func (f *fakeInventory) UpsertContainerContents(_ context.Context, records []entity.UpsertRecord) (*ports.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["upsert"]++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.upserted = append(f.upserted, records)
	return &ports.MutationResult{Code: f.saveCode, Message: f.saveMessage}, nil
}

func (f *fakeInventory) RegisterContainerContents(_ context.Context, records []entity.UpsertRecord) (*ports.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["register"]++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.inserted = append(f.inserted, records)
	return &ports.MutationResult{Code: f.saveCode, Message: f.saveMessage}, nil
}

func (f *fakeInventory) DeleteContainerItem(_ context.Context, id, barcode string) (*ports.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if f.deleteCode != ports.SuccessCode {
		return &ports.MutationResult{Code: f.deleteCode, Message: "Silme başarısız."}, nil
	}
	f.deletions = append(f.deletions, id+"/"+barcode)
	kept := f.contents[id][:0:0]
	for _, l := range f.contents[id] {
		if l.Barcode != barcode {
			kept = append(kept, l)
		}
	}
	f.contents[id] = kept
	return &ports.MutationResult{Code: ports.SuccessCode, Message: "Ürün başarıyla silindi."}, nil
}

func (f *fakeInventory) ListAllContents(_ context.Context) (*ports.LedgerResult, error) {
	f.mu.Lock()
	gate := f.ledgerGate
	f.calls["ledger"]++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ledgerErr != nil {
		return nil, f.ledgerErr
	}
	return &ports.LedgerResult{Code: ports.SuccessCode, Entries: append([]entity.LedgerEntry(nil), f.ledger...)}, nil
}

// fakeJournal guarda los envíos registrados.
type fakeJournal struct {
	mu   sync.Mutex
	subs []ports.Submission
}

func (j *fakeJournal) Record(_ context.Context, s ports.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.subs = append(j.subs, s)
	return nil
}
