// Package ordering maneja el pedido como carrito: cada cambio de línea reserva o devuelve stock
// del catálogo y se refleja en el documento del pedido, todo en una misma transacción.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ticashop/backoffice-api/internal/application/billing"
	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/inventory"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
	"github.com/ticashop/backoffice-api/internal/domain/sales"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

// UseCase casos de uso de pedidos.
type UseCase struct {
	tx      ports.TxRunner
	repos   ports.Repos
	issuer  *billing.Issuer
	metrics ports.SalesMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewUseCase(tx ports.TxRunner, repos ports.Repos, issuer *billing.Issuer, metrics ports.SalesMetrics, log *logger.Logger) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		tx:      tx,
		repos:   repos,
		issuer:  issuer,
		metrics: metrics,
		log:     log.Component("ordering"),
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// CreateOrder crea un pedido en Borrador; el actor queda como vendedor.
func (uc *UseCase) CreateOrder(ctx context.Context, sellerID, sellerName string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if strings.TrimSpace(in.CustomerID) == "" || sellerID == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.repos.Customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.CustomerID)
	}
	now := uc.now()
	order := &entity.Order{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		SellerID:   sellerID,
		SellerName: sellerName,
		Status:     entity.OrderStatusDraft,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repos.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return uc.toResponse(order, nil), nil
}

// AddLine agrega qty unidades del producto: valida solo la cantidad adicional contra el stock,
// suma a la línea existente o crea una al precio vigente y descuenta el stock.
func (uc *UseCase) AddLine(ctx context.Context, actorID, orderID string, in dto.AddLineRequest) (*dto.OrderResponse, error) {
	if in.Quantity < 1 || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.editLine(ctx, "add_line", actorID, orderID, in.ProductID, func(current int64) (int64, error) {
		return current + in.Quantity, nil
	})
}

// UpdateLine fija la cantidad de la línea; 0 la elimina.
func (uc *UseCase) UpdateLine(ctx context.Context, actorID, orderID, productID string, in dto.UpdateLineRequest) (*dto.OrderResponse, error) {
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.editLine(ctx, "update_line", actorID, orderID, productID, func(current int64) (int64, error) {
		if current == 0 {
			return 0, fmt.Errorf("%w: el pedido no tiene el producto %s", domain.ErrNotFound, productID)
		}
		return in.Quantity, nil
	})
}

// RemoveLine elimina la línea y devuelve su cantidad al stock. Línea inexistente -> ErrNotFound sin cambios.
func (uc *UseCase) RemoveLine(ctx context.Context, actorID, orderID, productID string) (*dto.OrderResponse, error) {
	return uc.editLine(ctx, "remove_line", actorID, orderID, productID, func(current int64) (int64, error) {
		if current == 0 {
			return 0, fmt.Errorf("%w: el pedido no tiene el producto %s", domain.ErrNotFound, productID)
		}
		return 0, nil
	})
}

// editLine aplica target(cantidad actual) como nueva cantidad de la línea del producto.
// Reserva o devuelve la diferencia, sincroniza el documento y recalcula totales.
func (uc *UseCase) editLine(ctx context.Context, op, actorID, orderID, productID string, target func(current int64) (int64, error)) (*dto.OrderResponse, error) {
	var (
		order *entity.Order
		doc   *entity.SalesDocument
	)
	now := uc.now()
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		var err error
		order, doc, err = lockOrder(ctx, repos, orderID)
		if err != nil {
			return err
		}
		if err := billing.EnsureLinesEditable(order, doc); err != nil {
			return err
		}

		line := order.Line(productID)
		var current int64
		if line != nil {
			current = line.Quantity
		}
		qty, err := target(current)
		if err != nil {
			return err
		}

		product, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
		if line == nil && !product.Active {
			return fmt.Errorf("%w: el producto %s está inactivo", domain.ErrInvalidInput, product.Code)
		}

		delta := qty - current
		if delta == 0 {
			return nil
		}
		if err := adjustStock(ctx, repos, product, order.ID, delta, actorID, now); err != nil {
			return err
		}

		switch {
		case qty == 0:
			if err := repos.Orders.DeleteLine(ctx, line.ID); err != nil {
				return err
			}
			order.Lines = withoutLine(order.Lines, line.ID)
			line = nil
		case line == nil:
			line = &entity.OrderLine{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  qty,
				UnitPrice: product.Price,
			}
			line.Recalc()
			if err := repos.Orders.SaveLine(ctx, line); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		default:
			line.Quantity = qty
			line.Recalc()
			if err := repos.Orders.SaveLine(ctx, line); err != nil {
				return err
			}
		}

		if err := uc.issuer.SyncLine(ctx, repos, doc, productID, line, product); err != nil {
			return err
		}
		if _, err := uc.issuer.ApplyTotals(ctx, repos, order, doc, now); err != nil {
			return err
		}
		order.UpdatedAt = now
		return repos.Orders.UpdateStatus(ctx, order)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.StockRejected(op)
		}
		return nil, err
	}
	uc.log.Debug().Str("order_id", orderID).Str("product_id", productID).Str("op", op).Msg("línea actualizada")
	return uc.toResponse(order, doc), nil
}

// adjustStock delta > 0 reserva, delta < 0 devuelve; deja registro en la auditoría de stock.
func adjustStock(ctx context.Context, repos ports.Repos, product *entity.Product, orderID string, delta int64, actorID string, now time.Time) error {
	movType := entity.MovementTypeReserve
	if delta > 0 {
		if err := inventory.Reserve(product, delta); err != nil {
			return err
		}
	} else {
		inventory.Release(product, -delta)
		movType = entity.MovementTypeRelease
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, product.Stock); err != nil {
		return err
	}
	return repos.Movements.Create(ctx, &entity.StockMovement{
		ID:         uuid.New().String(),
		ProductID:  product.ID,
		OrderID:    orderID,
		Type:       movType,
		Quantity:   -delta,
		StockAfter: product.Stock,
		CreatedAt:  now,
		CreatedBy:  actorID,
	})
}

// Confirm valida de nuevo el stock de cada línea (sin volver a descontarlo), emite el documento
// si el pedido aún no lo tiene y pasa el pedido a Procesando.
func (uc *UseCase) Confirm(ctx context.Context, actorID, orderID string, in dto.ConfirmOrderRequest) (*dto.ConfirmOrderResponse, error) {
	params, err := billing.ParseIssueRequest(in.Document)
	if err != nil {
		return nil, err
	}

	var (
		order  *entity.Order
		doc    *entity.SalesDocument
		issued bool
	)
	err = uc.issuer.WithFolioRetry(ctx, params.Type, func() error {
		return uc.tx.Run(ctx, func(repos ports.Repos) error {
			var err error
			issued = false
			order, doc, err = lockOrder(ctx, repos, orderID)
			if err != nil {
				return err
			}
			if !order.Editable() {
				return fmt.Errorf("%w: pedido en estado %s", domain.ErrConflict, order.Status)
			}
			if len(order.Lines) == 0 {
				return domain.ErrEmptyOrder
			}
			if doc != nil && doc.Cancelled() {
				return domain.ErrDocumentCancelled
			}

			// bloqueo en orden de id para no cruzarse con otra confirmación
			ids := make([]string, 0, len(order.Lines))
			for _, l := range order.Lines {
				ids = append(ids, l.ProductID)
			}
			sort.Strings(ids)
			products := make(map[string]*entity.Product, len(ids))
			for _, id := range ids {
				p, err := repos.Products.GetForUpdate(ctx, id)
				if err != nil {
					return err
				}
				if p != nil {
					products[p.ID] = p
				}
			}
			if err := inventory.VerifyReservations(order.Lines, products); err != nil {
				return err
			}

			now := uc.now()
			if doc == nil {
				doc, err = uc.issuer.IssueInTx(ctx, repos, order, actorID, params, now)
				if err != nil {
					return err
				}
				issued = true
			}
			order.Status = entity.OrderStatusProcessing
			order.UpdatedAt = now
			return repos.Orders.UpdateStatus(ctx, order)
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.StockRejected("confirm")
		}
		return nil, err
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("document_id", doc.ID).
		Bool("document_issued", issued).
		Msg("pedido confirmado")
	return &dto.ConfirmOrderResponse{
		Order:    *uc.toResponse(order, doc),
		Document: *billing.ToDocumentResponse(doc, true),
	}, nil
}

// MarkSent Procesando -> Enviado.
func (uc *UseCase) MarkSent(ctx context.Context, actorID, orderID string) (*dto.OrderResponse, error) {
	var (
		order *entity.Order
		doc   *entity.SalesDocument
	)
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		var err error
		order, doc, err = lockOrder(ctx, repos, orderID)
		if err != nil {
			return err
		}
		if order.Status != entity.OrderStatusProcessing {
			return fmt.Errorf("%w: solo un pedido en %s puede enviarse (estado actual %s)",
				domain.ErrConflict, entity.OrderStatusProcessing, order.Status)
		}
		order.Status = entity.OrderStatusSent
		order.UpdatedAt = uc.now()
		return repos.Orders.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("actor", actorID).Msg("pedido enviado")
	return uc.toResponse(order, doc), nil
}

// Get obtiene el pedido con líneas, totales y documento asociado.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	order, err := uc.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	doc, err := uc.repos.Documents.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := uc.toResponse(order, doc)
	for i := range out.Lines {
		p, pErr := uc.repos.Products.GetByID(ctx, out.Lines[i].ProductID)
		if pErr != nil {
			uc.log.Recoverable("product_lookup", pErr).
				Str("order_id", orderID).
				Str("product_id", out.Lines[i].ProductID).
				Msg("línea sin nombre de producto")
			continue
		}
		if p != nil {
			out.Lines[i].ProductName = p.Name
		}
	}
	return out, nil
}

// List lista pedidos filtrando por vendedor, cliente o estado.
func (uc *UseCase) List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error) {
	f.DefaultPage()
	list, err := uc.repos.Orders.List(ctx, repository.OrderFilter{
		SellerID:   f.SellerID,
		CustomerID: f.CustomerID,
		Status:     f.Status,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *uc.toResponse(o, nil))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

func lockOrder(ctx context.Context, repos ports.Repos, orderID string) (*entity.Order, *entity.SalesDocument, error) {
	order, err := repos.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, orderID)
	}
	doc, err := repos.Documents.GetByOrderIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, doc, nil
}

func withoutLine(lines []*entity.OrderLine, id string) []*entity.OrderLine {
	out := lines[:0]
	for _, l := range lines {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

func (uc *UseCase) toResponse(o *entity.Order, doc *entity.SalesDocument) *dto.OrderResponse {
	totals := sales.ComputeTotals(o.Net(), uc.issuer.Settings().TaxRate)
	out := &dto.OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		SellerID:   o.SellerID,
		SellerName: o.SellerName,
		Status:     o.Status,
		Notes:      o.Notes,
		Lines:      make([]dto.OrderLineResponse, 0, len(o.Lines)),
		Net:        totals.Net,
		Tax:        totals.Tax,
		Total:      totals.Total,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if doc != nil {
		out.DocumentID = doc.ID
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return out
}
