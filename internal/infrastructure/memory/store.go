package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store backend en memoria. Las transacciones de escritura se serializan y trabajan sobre
// una copia que solo reemplaza al estado confirmado si fn no falla.
type Store struct {
	mu   sync.RWMutex
	data *state
}

type state struct {
	products  map[string]*entity.Product
	stock     map[string]*entity.StockRecord
	kardex    []*entity.KardexEntry // orden de inserción; los movimientos nunca se modifican
	byTx      map[string]*entity.KardexEntry
	byNumber  map[string]*entity.KardexEntry
	ingresos  map[int64]*entity.Ingreso
	sequences map[string]int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: &state{
		products:  map[string]*entity.Product{},
		stock:     map[string]*entity.StockRecord{},
		byTx:      map[string]*entity.KardexEntry{},
		byNumber:  map[string]*entity.KardexEntry{},
		ingresos:  map[int64]*entity.Ingreso{},
		sequences: map[string]int64{},
	}}
}

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.data.products[p.ID] = &cp
}

// Run ejecuta fn con repositorios sobre una copia del estado y la confirma si no hay error.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(work.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// ReadOnly ejecuta fn sobre una instantánea del estado confirmado.
func (s *Store) ReadOnly(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snap := s.data.clone()
	s.mu.RUnlock()
	return fn(snap.repos())
}

func (st *state) repos() inventory.Repos {
	return inventory.Repos{
		Stock:     &stockRepo{st: st},
		Kardex:    &kardexRepo{st: st},
		Ingresos:  &ingresoRepo{st: st},
		Sequences: &sequenceRepo{st: st},
		Products:  &productRepo{st: st},
	}
}

func (st *state) clone() *state {
	c := &state{
		products:  make(map[string]*entity.Product, len(st.products)),
		stock:     make(map[string]*entity.StockRecord, len(st.stock)),
		kardex:    make([]*entity.KardexEntry, len(st.kardex), len(st.kardex)+1),
		byTx:      make(map[string]*entity.KardexEntry, len(st.byTx)),
		byNumber:  make(map[string]*entity.KardexEntry, len(st.byNumber)),
		ingresos:  make(map[int64]*entity.Ingreso, len(st.ingresos)),
		sequences: make(map[string]int64, len(st.sequences)),
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.stock {
		c.stock[k] = v
	}
	copy(c.kardex, st.kardex)
	for k, v := range st.byTx {
		c.byTx[k] = v
	}
	for k, v := range st.byNumber {
		c.byNumber[k] = v
	}
	for k, v := range st.ingresos {
		c.ingresos[k] = v
	}
	for k, v := range st.sequences {
		c.sequences[k] = v
	}
	return c
}
