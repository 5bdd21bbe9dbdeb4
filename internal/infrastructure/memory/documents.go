package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
	"github.com/ticashop/backoffice-api/internal/domain/sales"
)

var (
	_ repository.DocumentRepository = (*DocumentRepo)(nil)
	_ repository.FolioRepository    = (*FolioRepo)(nil)
	_ repository.PaymentRepository  = (*PaymentRepo)(nil)
)

// DocumentRepo documentos de venta en memoria.
type DocumentRepo struct{ v *view }

func (r *DocumentRepo) Create(_ context.Context, d *entity.SalesDocument) error {
	return r.v.write(func(st *state) error {
		for _, ex := range st.documents {
			if ex.Type == d.Type && ex.Folio == d.Folio {
				return domain.ErrDuplicateFolio
			}
			if d.OrderID != "" && ex.OrderID == d.OrderID {
				return domain.ErrDocumentAlreadyIssued
			}
		}
		st.documents[d.ID] = copyDocument(d)
		return nil
	})
}

func (r *DocumentRepo) GetByID(_ context.Context, id string) (*entity.SalesDocument, error) {
	var out *entity.SalesDocument
	err := r.v.read(func(st *state) error {
		if d, ok := st.documents[id]; ok {
			out = copyDocument(d)
		}
		return nil
	})
	return out, err
}

func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesDocument, error) {
	return r.GetByID(ctx, id)
}

func (r *DocumentRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.SalesDocument, error) {
	return r.GetByOrderID(ctx, orderID)
}

func (r *DocumentRepo) GetByOrderID(_ context.Context, orderID string) (*entity.SalesDocument, error) {
	var out *entity.SalesDocument
	err := r.v.read(func(st *state) error {
		for _, d := range st.documents {
			if d.OrderID == orderID {
				out = copyDocument(d)
			}
		}
		return nil
	})
	return out, err
}

func (r *DocumentRepo) UpdateTotals(_ context.Context, d *entity.SalesDocument) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.documents[d.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Net, cur.Tax, cur.Total = d.Net, d.Tax, d.Total
		cur.UpdatedAt = d.UpdatedAt
		return nil
	})
}

func (r *DocumentRepo) UpdateState(_ context.Context, d *entity.SalesDocument) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.documents[d.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.State = d.State
		cur.UpdatedAt = d.UpdatedAt
		return nil
	})
}

func (r *DocumentRepo) SaveLine(_ context.Context, line *entity.DocumentLine) error {
	return r.v.write(func(st *state) error {
		d, ok := st.documents[line.DocumentID]
		if !ok {
			return domain.ErrNotFound
		}
		lc := *line
		for i, l := range d.Lines {
			if l.ID == line.ID {
				d.Lines[i] = &lc
				return nil
			}
		}
		d.Lines = append(d.Lines, &lc)
		return nil
	})
}

func (r *DocumentRepo) DeleteLine(_ context.Context, lineID string) error {
	return r.v.write(func(st *state) error {
		for _, d := range st.documents {
			for i, l := range d.Lines {
				if l.ID == lineID {
					d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
					return nil
				}
			}
		}
		return domain.ErrNotFound
	})
}

func (r *DocumentRepo) List(_ context.Context, f repository.DocumentFilter) ([]*entity.SalesDocument, error) {
	var out []*entity.SalesDocument
	err := r.v.read(func(st *state) error {
		for _, d := range st.documents {
			if f.Type != "" && d.Type != f.Type {
				continue
			}
			if f.State != "" && d.State != f.State {
				continue
			}
			if f.CustomerID != "" && d.CustomerID != f.CustomerID {
				continue
			}
			out = append(out, copyDocument(d))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt.Equal(out[j].IssuedAt) {
			if out[i].Type == out[j].Type {
				return out[i].Folio > out[j].Folio
			}
			return out[i].Type < out[j].Type
		}
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *DocumentRepo) MarkOverdue(_ context.Context, today time.Time) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		for _, d := range st.documents {
			if d.State != entity.DocumentStateIssued || d.DueDate == nil {
				continue
			}
			if sales.DayBefore(*d.DueDate, today) {
				d.State = entity.DocumentStateOverdue
				d.UpdatedAt = today
				n++
			}
		}
		return nil
	})
	return n, err
}

// FolioRepo contadores de folio por tipo.
type FolioRepo struct{ v *view }

func (r *FolioRepo) Next(_ context.Context, docType string, seed int64) (int64, error) {
	var next int64
	err := r.v.write(func(st *state) error {
		var max *int64
		for _, d := range st.documents {
			if d.Type == docType && (max == nil || d.Folio > *max) {
				f := d.Folio
				max = &f
			}
		}
		if last, ok := st.folios[docType]; ok && (max == nil || last > *max) {
			max = &last
		}
		next = sales.NextFolio(max, seed)
		st.folios[docType] = next
		return nil
	})
	return next, err
}

// PaymentRepo ledger de pagos en memoria.
type PaymentRepo struct{ v *view }

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.documents[p.DocumentID]; !ok {
			return domain.ErrNotFound
		}
		cp := *p
		st.payments = append(st.payments, &cp)
		return nil
	})
}

func (r *PaymentRepo) ListByDocument(_ context.Context, documentID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	err := r.v.read(func(st *state) error {
		for _, p := range st.payments {
			if p.DocumentID == documentID {
				cp := *p
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}
