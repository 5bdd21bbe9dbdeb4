// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y con STORAGE_DRIVER=memory; las transacciones trabajan sobre
// una copia del estado que solo se publica al confirmar.
package memory

import (
	"context"
	"sync"

	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	products  map[string]*entity.Product
	customers map[string]*entity.Customer
	orders    map[string]*entity.Order
	documents map[string]*entity.SalesDocument
	folios    map[string]int64
	payments  []*entity.Payment
	movements []*entity.StockMovement
}

func newState() *state {
	return &state{
		products:  make(map[string]*entity.Product),
		customers: make(map[string]*entity.Customer),
		orders:    make(map[string]*entity.Order),
		documents: make(map[string]*entity.SalesDocument),
		folios:    make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.customers {
		cp := *v
		c.customers[k] = &cp
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range s.documents {
		c.documents[k] = copyDocument(v)
	}
	for k, v := range s.folios {
		c.folios[k] = v
	}
	c.payments = append(c.payments, s.payments...)
	c.movements = append(c.movements, s.movements...)
	return c
}

// Store base de datos en memoria. Las transacciones se serializan con un mutex,
// equivalente a bloquear todas las filas que tocan.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; la copia reemplaza al estado solo si fn retorna nil.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(reposFor(&view{st: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repos repositorios fuera de transacción (cada llamada toma el lock).
// No usarlos dentro de un Run: el lock no es reentrante.
func (s *Store) Repos() ports.Repos {
	return reposFor(&view{store: s})
}

// view acceso al estado: dentro de una tx (st fijo) o fuera (store con lock por llamada).
type view struct {
	st    *state
	store *Store
}

func (v *view) read(fn func(st *state) error) error {
	if v.store == nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

// write fuera de tx aplica el cambio sobre una copia para que un error no deje estado a medias.
func (v *view) write(fn func(st *state) error) error {
	if v.store == nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	work := v.store.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	v.store.st = work
	return nil
}

func reposFor(v *view) ports.Repos {
	return ports.Repos{
		Products:  &ProductRepo{v: v},
		Customers: &CustomerRepo{v: v},
		Orders:    &OrderRepo{v: v},
		Documents: &DocumentRepo{v: v},
		Folios:    &FolioRepo{v: v},
		Payments:  &PaymentRepo{v: v},
		Movements: &MovementRepo{v: v},
	}
}

// Reports repositorio de reportes sobre el mismo estado.
func (s *Store) Reports() *ReportRepo {
	return &ReportRepo{v: &view{store: s}}
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = make([]*entity.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lc := *l
		cp.Lines = append(cp.Lines, &lc)
	}
	return &cp
}

func copyDocument(d *entity.SalesDocument) *entity.SalesDocument {
	cp := *d
	if d.DueDate != nil {
		due := *d.DueDate
		cp.DueDate = &due
	}
	cp.Lines = make([]*entity.DocumentLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lc := *l
		cp.Lines = append(cp.Lines, &lc)
	}
	return &cp
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
