package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/modawear/modawear-backend/pkg/config"
	"github.com/modawear/modawear-backend/pkg/db/models"
	"github.com/modawear/modawear-backend/pkg/enums"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ShippingPolicy computes the shipping fee as a pure function of the
// order subtotal.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	Rate          decimal.Decimal
}

// NewShippingPolicy builds the policy from checkout configuration.
func NewShippingPolicy(cfg config.CheckoutConfig) ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: cfg.FreeShippingThreshold,
		Rate:          cfg.ShippingRate,
	}
}

// FeeFor returns zero at or above the free threshold, subtotal*rate below it.
func (p ShippingPolicy) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return subtotal.Mul(p.Rate)
}

// LineItemInput carries the snapshot data for one ordered entry.
type LineItemInput struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Service exposes order materialization and lifecycle operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, items []LineItemInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) error
	ListOrders(ctx context.Context, scope Scope) ([]OrderView, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	policy ShippingPolicy
}

// NewService builds an orders service backed by the provided stack.
func NewService(repo Repository, tx txRunner, policy ShippingPolicy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if policy.Rate.IsNegative() || policy.FreeThreshold.IsNegative() {
		return nil, fmt.Errorf("shipping policy must be non-negative")
	}
	return &service{repo: repo, tx: tx, policy: policy}, nil
}

// Create snapshots the provided line items into an immutable order. The order
// row is the durable record of a checkout attempt, so callers persist it
// before asking the payment provider for a session.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, items []LineItemInput) (*models.Order, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line item")
	}

	subtotal := decimal.Zero
	lineItems := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if strings.TrimSpace(item.Size) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: lineTotal,
		})
	}

	shipping := s.policy.FeeFor(subtotal)
	order := &models.Order{
		OwnerID:       ownerID,
		ShippingPrice: shipping,
		OrderTotal:    subtotal.Add(shipping),
		Status:        enums.OrderStatusProcessing,
		LineItems:     lineItems,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// UpdateStatus overwrites the order's status with any valid value. Status
// transitions are not checked, so an operator can move an order backwards.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	rows, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.Get(ctx, id)
}

// Cancel deletes the order. Owners may cancel their own orders; admins may
// cancel any order.
func (s *service) Cancel(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var (
		rows int64
		err  error
	)
	if isAdmin {
		rows, err = s.repo.Delete(ctx, id)
	} else {
		if requesterID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
		}
		rows, err = s.repo.DeleteByIDAndOwner(ctx, id, requesterID)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}
