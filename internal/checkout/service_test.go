package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modawear/modawear-backend/internal/orders"
	"github.com/modawear/modawear-backend/pkg/config"
	"github.com/modawear/modawear-backend/pkg/db/models"
	"github.com/modawear/modawear-backend/pkg/enums"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
)

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingRate:          decimal.RequireFromString("0.15"),
		SuccessURL:            "https://shop.example.com/checkout/success",
		CancelURL:             "https://shop.example.com/checkout/cancel",
	}
}

func TestCheckoutCreatesOrderBeforePaymentSession(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	carts := &stubCartLoader{cart: cartWithItems(owner)}
	orderSvc := &stubOrderCreator{}
	payments := &stubPaymentClient{sessionID: "cs_test_123"}
	payments.onCall = func() {
		if orderSvc.created == nil {
			t.Error("payment session requested before the order was persisted")
		}
	}

	svc, err := NewService(carts, orderSvc, payments, testCheckoutConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Checkout(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SessionID != "cs_test_123" {
		t.Fatalf("unexpected session id %q", result.SessionID)
	}
	if orderSvc.created == nil {
		t.Fatal("expected order to be created")
	}
	if result.OrderID != orderSvc.created.ID {
		t.Fatal("result must reference the persisted order")
	}
	if !payments.called {
		t.Fatal("expected a payment session request")
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	carts := &stubCartLoader{cart: &models.Cart{ID: uuid.New(), OwnerID: owner}}
	orderSvc := &stubOrderCreator{}
	payments := &stubPaymentClient{}

	svc, _ := NewService(carts, orderSvc, payments, testCheckoutConfig())

	_, err := svc.Checkout(context.Background(), owner)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
	if orderSvc.created != nil {
		t.Fatal("no order may be created for an empty cart")
	}
}

func TestCheckoutKeepsOrderWhenPaymentFails(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	carts := &stubCartLoader{cart: cartWithItems(owner)}
	orderSvc := &stubOrderCreator{}
	payments := &stubPaymentClient{err: errors.New("stripe down")}

	svc, _ := NewService(carts, orderSvc, payments, testCheckoutConfig())

	_, err := svc.Checkout(context.Background(), owner)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if orderSvc.created == nil {
		t.Fatal("order must survive a failed payment session")
	}
}

func TestCheckoutAddsShippingFeeLine(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	cart := &models.Cart{
		ID:      uuid.New(),
		OwnerID: owner,
		LineItems: []models.CartLineItem{
			{ProductID: uuid.New(), Size: "M", Title: "Canvas Tote", UnitPrice: decimal.NewFromInt(40), Quantity: 1},
		},
	}
	carts := &stubCartLoader{cart: cart}
	orderSvc := &stubOrderCreator{}
	payments := &stubPaymentClient{sessionID: "cs_test_456"}

	svc, _ := NewService(carts, orderSvc, payments, testCheckoutConfig())

	if _, err := svc.Checkout(context.Background(), owner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := payments.lastRequest.LineItems
	if len(items) != 2 {
		t.Fatalf("expected product plus shipping line, got %d items", len(items))
	}
	last := items[len(items)-1]
	if last.Name != "Shipping Fee" || last.UnitAmountCents != 600 {
		t.Fatalf("unexpected shipping line %+v", last)
	}
}

func TestCheckoutRedirectURLsCarryIdentifiers(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	carts := &stubCartLoader{cart: cartWithItems(owner)}
	orderSvc := &stubOrderCreator{}
	payments := &stubPaymentClient{sessionID: "cs_test_789"}

	svc, _ := NewService(carts, orderSvc, payments, testCheckoutConfig())

	result, err := svc.Checkout(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSuccess := "https://shop.example.com/checkout/success?userId=" + owner.String()
	if payments.lastRequest.SuccessURL != wantSuccess {
		t.Fatalf("unexpected success url %q", payments.lastRequest.SuccessURL)
	}
	wantCancel := "https://shop.example.com/checkout/cancel?orderId=" + result.OrderID.String()
	if payments.lastRequest.CancelURL != wantCancel {
		t.Fatalf("unexpected cancel url %q", payments.lastRequest.CancelURL)
	}
}

func cartWithItems(owner uuid.UUID) *models.Cart {
	return &models.Cart{
		ID:           uuid.New(),
		OwnerID:      owner,
		CartQuantity: 2,
		TotalPrice:   decimal.NewFromInt(120),
		LineItems: []models.CartLineItem{
			{ProductID: uuid.New(), Size: "M", Title: "Linen Shirt", Image: "shirt.png", UnitPrice: decimal.NewFromInt(50), Quantity: 2},
			{ProductID: uuid.New(), Size: "L", Title: "Chinos", UnitPrice: decimal.NewFromInt(20), Quantity: 1},
		},
	}
}

type stubCartLoader struct {
	cart *models.Cart
}

func (s *stubCartLoader) GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	return s.cart, nil
}

type stubOrderCreator struct {
	created *models.Order
}

func (s *stubOrderCreator) Create(ctx context.Context, ownerID uuid.UUID, items []orders.LineItemInput) (*models.Order, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	shipping := decimal.Zero
	if subtotal.LessThan(decimal.NewFromInt(100)) {
		shipping = subtotal.Mul(decimal.RequireFromString("0.15"))
	}
	s.created = &models.Order{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		ShippingPrice: shipping,
		OrderTotal:    subtotal.Add(shipping),
		Status:        enums.OrderStatusProcessing,
	}
	return s.created, nil
}

type stubPaymentClient struct {
	sessionID   string
	err         error
	lastRequest SessionRequest
	called      bool
	onCall      func()
}

func (s *stubPaymentClient) CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error) {
	s.lastRequest = req
	s.called = true
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.sessionID, nil
}
