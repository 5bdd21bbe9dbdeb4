package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo reportes sobre el estado en memoria.
type ReportRepo struct{ v *view }

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func documentOf(st *state, orderID string) *entity.SalesDocument {
	for _, d := range st.documents {
		if d.OrderID == orderID {
			return d
		}
	}
	return nil
}

func (r *ReportRepo) SalesRows(_ context.Context, from, to time.Time) ([]repository.SalesRow, error) {
	var rows []repository.SalesRow
	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			if o.Status != entity.OrderStatusSent || !inRange(o.CreatedAt, from, to) {
				continue
			}
			row := repository.SalesRow{
				OrderID:    o.ID,
				SellerName: o.SellerName,
				Date:       o.CreatedAt,
				Status:     o.Status,
				Total:      decimal.Zero,
			}
			if c, ok := st.customers[o.CustomerID]; ok {
				row.CustomerName, row.CustomerTaxID = c.Name, c.TaxID
			}
			if d := documentOf(st, o.ID); d != nil {
				row.DocumentState, row.Total = d.State, d.Total
			}
			rows = append(rows, row)
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date.Equal(rows[j].Date) {
			return rows[i].OrderID > rows[j].OrderID
		}
		return rows[i].Date.After(rows[j].Date)
	})
	return rows, err
}

func (r *ReportRepo) SalesMargin(_ context.Context, from, to time.Time) (repository.MarginResult, error) {
	res := repository.MarginResult{Revenue: decimal.Zero, COGS: decimal.Zero}
	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			if o.Status != entity.OrderStatusSent || !inRange(o.CreatedAt, from, to) {
				continue
			}
			d := documentOf(st, o.ID)
			if d == nil || d.Cancelled() {
				continue
			}
			for _, l := range d.Lines {
				res.Revenue = res.Revenue.Add(l.Subtotal)
				res.COGS = res.COGS.Add(l.UnitCost.Mul(decimal.NewFromInt(l.Quantity)))
			}
		}
		return nil
	})
	return res, err
}
