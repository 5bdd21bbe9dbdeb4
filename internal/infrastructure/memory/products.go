package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria.
type ProductRepo struct{ v *view }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	if p.Stock < 0 {
		return fmt.Errorf("%w: products_stock_check", domain.ErrInvalidInput)
	}
	return r.v.write(func(st *state) error {
		for _, ex := range st.products {
			if ex.Code == p.Code {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.Code == code {
				out = copyProduct(p)
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: las transacciones en memoria ya son exclusivas.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza el producto; stock < 0 se rechaza igual que el CHECK de la tabla.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	if p.Stock < 0 {
		return fmt.Errorf("%w: products_stock_check", domain.ErrInvalidInput)
	}
	return r.v.write(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, ex := range st.products {
			if ex.ID != p.ID && ex.Code == p.Code {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, productID string, stock int64) error {
	return r.v.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if stock < 0 {
			return domain.ErrInsufficientStock
		}
		p.Stock = stock
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read(func(st *state) error {
		search := strings.ToLower(f.Search)
		for _, p := range st.products {
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
				continue
			}
			if f.LowStockOnly && !p.LowStock() {
				continue
			}
			if f.ActiveOnly && !p.Active {
				continue
			}
			out = append(out, copyProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Code < out[j].Code
		}
		return out[i].Name < out[j].Name
	})
	return page(out, f.Limit, f.Offset), err
}
