package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

// ProductUseCase catálogo de productos. Los cambios de stock administrativos quedan auditados
// como movimientos ADJUSTMENT.
type ProductUseCase struct {
	tx    ports.TxRunner
	repos ports.Repos
	log   *logger.Logger
	now   func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx ports.TxRunner, repos ports.Repos, log *logger.Logger) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{tx: tx, repos: repos, log: log.Component("catalog"), now: time.Now}
}

// Create crea un nuevo producto. El código es único.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: código y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if err := validateAmounts(in.Price, in.Cost); err != nil {
		return nil, err
	}
	if in.Stock < 0 || in.MinStock < 0 {
		return nil, fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Cost:        in.Cost,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		existing, err := repos.Products.GetByCode(ctx, product.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if product.Stock == 0 {
			return nil
		}
		return repos.Movements.Create(ctx, adjustment(product, product.Stock, actorID, now))
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update edición administrativa. Un cambio de stock registra un ajuste con la diferencia.
func (uc *ProductUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		var err error
		product, err = uc.applyUpdate(ctx, repos, actorID, id, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func (uc *ProductUseCase) applyUpdate(ctx context.Context, repos ports.Repos, actorID, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	product, err := repos.Products.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	price, cost := product.Price, product.Cost
	if in.Price != nil {
		price = *in.Price
	}
	if in.Cost != nil {
		cost = *in.Cost
	}
	if err := validateAmounts(price, cost); err != nil {
		return nil, err
	}
	product.Price, product.Cost = price, cost
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, fmt.Errorf("%w: stock mínimo negativo", domain.ErrInvalidInput)
		}
		product.MinStock = *in.MinStock
	}
	if in.Active != nil {
		product.Active = *in.Active
	}

	now := uc.now()
	var delta int64
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
		}
		delta = *in.Stock - product.Stock
		product.Stock = *in.Stock
	}
	product.UpdatedAt = now
	if err := repos.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	if delta != 0 {
		if err := repos.Movements.Create(ctx, adjustment(product, delta, actorID, now)); err != nil {
			return nil, err
		}
	}
	return product, nil
}

// List lista el catálogo con búsqueda por nombre y filtro de stock bajo.
func (uc *ProductUseCase) List(ctx context.Context, search string, lowStockOnly bool, limit, offset int) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repos.Products.List(ctx, repository.ProductFilter{
		Search:       strings.TrimSpace(search),
		LowStockOnly: lowStockOnly,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// LowStock productos activos con stock en o bajo el mínimo.
func (uc *ProductUseCase) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repos.Products.List(ctx, repository.ProductFilter{LowStockOnly: true, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Movements auditoría de stock del producto, más recientes primero.
func (uc *ProductUseCase) Movements(ctx context.Context, productID string, limit, offset int) ([]dto.StockMovementResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repos.Movements.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:         m.ID,
			Type:       m.Type,
			OrderID:    m.OrderID,
			Quantity:   m.Quantity,
			StockAfter: m.StockAfter,
			CreatedAt:  m.CreatedAt,
			CreatedBy:  m.CreatedBy,
		})
	}
	return out, nil
}

// ApplyPriceUpdates actualización masiva de costo y precio por código.
// Cada fila es su propia transacción; una fila inválida se informa y no detiene el resto.
func (uc *ProductUseCase) ApplyPriceUpdates(ctx context.Context, actorID string, rows []dto.PriceUpdateRow) (*dto.PriceUpdateResult, error) {
	res := &dto.PriceUpdateResult{}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := uc.tx.Run(ctx, func(repos ports.Repos) error {
			p, err := repos.Products.GetByCode(ctx, strings.TrimSpace(row.Code))
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: código %q", domain.ErrNotFound, row.Code)
			}
			cost, price := row.Cost, row.Price
			_, err = uc.applyUpdate(ctx, repos, actorID, p.ID, dto.UpdateProductRequest{Cost: &cost, Price: &price})
			return err
		})
		if err != nil {
			uc.log.Recoverable("import_row", err).Int("row", row.Row).Str("code", row.Code).Msg("fila omitida")
			res.Errors = append(res.Errors, dto.PriceUpdateErr{Row: row.Row, Code: row.Code, Message: err.Error()})
			continue
		}
		res.Updated++
	}
	uc.log.Info().Int("updated", res.Updated).Int("errors", len(res.Errors)).Msg("actualización masiva de precios")
	return res, nil
}

func validateAmounts(price, cost decimal.Decimal) error {
	if price.IsNegative() || cost.IsNegative() {
		return fmt.Errorf("%w: precio y costo no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

func adjustment(p *entity.Product, delta int64, actorID string, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:         uuid.New().String(),
		ProductID:  p.ID,
		Type:       entity.MovementTypeAdjustment,
		Quantity:   delta,
		StockAfter: p.Stock,
		CreatedAt:  now,
		CreatedBy:  actorID,
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.LowStock(),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
