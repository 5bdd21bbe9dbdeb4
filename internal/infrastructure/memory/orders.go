package memory

import (
	"context"
	"sort"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos en memoria.
type OrderRepo struct{ v *view }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.read(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) UpdateStatus(_ context.Context, o *entity.Order) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = o.Status
		cur.UpdatedAt = o.UpdatedAt
		return nil
	})
}

func (r *OrderRepo) SaveLine(_ context.Context, line *entity.OrderLine) error {
	return r.v.write(func(st *state) error {
		o, ok := st.orders[line.OrderID]
		if !ok {
			return domain.ErrNotFound
		}
		lc := *line
		for i, l := range o.Lines {
			if l.ID == line.ID {
				o.Lines[i] = &lc
				return nil
			}
			if l.ProductID == line.ProductID {
				return domain.ErrDuplicate
			}
		}
		o.Lines = append(o.Lines, &lc)
		return nil
	})
}

func (r *OrderRepo) DeleteLine(_ context.Context, lineID string) error {
	return r.v.write(func(st *state) error {
		for _, o := range st.orders {
			for i, l := range o.Lines {
				if l.ID == lineID {
					o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
					return nil
				}
			}
		}
		return domain.ErrNotFound
	})
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			if f.SellerID != "" && o.SellerID != f.SellerID {
				continue
			}
			if f.CustomerID != "" && o.CustomerID != f.CustomerID {
				continue
			}
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			out = append(out, copyOrder(o))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), err
}
