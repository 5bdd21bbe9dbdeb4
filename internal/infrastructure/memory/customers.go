package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo clientes en memoria.
type CustomerRepo struct{ v *view }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.v.write(func(st *state) error {
		for _, ex := range st.customers {
			if ex.TaxID == c.TaxID {
				return domain.ErrDuplicate
			}
		}
		cp := *c
		st.customers[c.ID] = &cp
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *CustomerRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read(func(st *state) error {
		for _, c := range st.customers {
			if c.TaxID == taxID {
				cp := *c
				out = &cp
			}
		}
		return nil
	})
	return out, err
}

func (r *CustomerRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.v.read(func(st *state) error {
		search = strings.ToLower(search)
		for _, c := range st.customers {
			if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(strings.ToLower(c.TaxID), search) {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), err
}
