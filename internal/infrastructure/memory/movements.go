package memory

import (
	"context"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo auditoría de stock en memoria.
type MovementRepo struct{ v *view }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.write(func(st *state) error {
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

// ListByProduct más recientes primero.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; m.ProductID == productID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return page(out, limit, offset), err
}
