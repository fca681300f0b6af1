package checkout

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modawear/modawear-backend/internal/orders"
	"github.com/modawear/modawear-backend/pkg/config"
	"github.com/modawear/modawear-backend/pkg/db/models"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
)

type cartLoader interface {
	GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
}

type orderCreator interface {
	Create(ctx context.Context, ownerID uuid.UUID, items []orders.LineItemInput) (*models.Order, error)
}

// Result is returned to the storefront so it can redirect to the hosted
// payment page.
type Result struct {
	SessionID string    `json:"session_id"`
	OrderID   uuid.UUID `json:"order_id"`
}

// Service executes checkout orchestration.
type Service interface {
	Checkout(ctx context.Context, ownerID uuid.UUID) (*Result, error)
}

type service struct {
	carts    cartLoader
	orders   orderCreator
	payments PaymentClient
	cfg      config.CheckoutConfig
}

// NewService builds the checkout service.
func NewService(carts cartLoader, orderSvc orderCreator, payments PaymentClient, cfg config.CheckoutConfig) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("checkout redirect urls required")
	}
	return &service{carts: carts, orders: orderSvc, payments: payments, cfg: cfg}, nil
}

// Checkout materializes the owner's cart into an order and opens a payment
// session. The order is persisted before the provider is called, so a
// provider callback can always resolve to an order; an abandoned payment
// leaves a Processing order for an operator to act on. The cart is left
// intact until the storefront confirms payment.
func (s *service) Checkout(ctx context.Context, ownerID uuid.UUID) (*Result, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	ownedCart, err := s.carts.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(ownedCart.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no products in cart")
	}

	inputs := make([]orders.LineItemInput, 0, len(ownedCart.LineItems))
	for _, item := range ownedCart.LineItems {
		inputs = append(inputs, orders.LineItemInput{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := s.orders.Create(ctx, ownerID, inputs)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.payments.CreateCheckoutSession(ctx, SessionRequest{
		LineItems:  buildSessionLineItems(ownedCart.LineItems, order.ShippingPrice),
		SuccessURL: appendQuery(s.cfg.SuccessURL, "userId", ownerID.String()),
		CancelURL:  appendQuery(s.cfg.CancelURL, "orderId", order.ID.String()),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment session")
	}

	return &Result{SessionID: sessionID, OrderID: order.ID}, nil
}

// buildSessionLineItems converts cart entries to provider line items and
// appends the shipping fee as its own entry when charged.
func buildSessionLineItems(items []models.CartLineItem, shipping decimal.Decimal) []SessionLineItem {
	result := make([]SessionLineItem, 0, len(items)+1)
	for _, item := range items {
		result = append(result, SessionLineItem{
			Name:            item.Title,
			Image:           item.Image,
			UnitAmountCents: toCents(item.UnitPrice),
			Quantity:        int64(item.Quantity),
		})
	}
	if shipping.IsPositive() {
		result = append(result, SessionLineItem{
			Name:            "Shipping Fee",
			UnitAmountCents: toCents(shipping),
			Quantity:        1,
		})
	}
	return result
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func appendQuery(rawURL, key, value string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	query.Set(key, value)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
