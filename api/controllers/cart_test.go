package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modawear/modawear-backend/api/middleware"
	cartsvc "github.com/modawear/modawear-backend/internal/cart"
	"github.com/modawear/modawear-backend/pkg/db/models"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
)

type stubCartService struct {
	cart    *models.Cart
	err     error
	lastAdd cartsvc.AddLineItemInput
}

func (s *stubCartService) GetOrCreate(context.Context, uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddLineItem(_ context.Context, _ uuid.UUID, input cartsvc.AddLineItemInput) (*models.Cart, error) {
	s.lastAdd = input
	return s.cart, s.err
}

func (s *stubCartService) AdjustQuantity(context.Context, uuid.UUID, uuid.UUID, string, cartsvc.Direction) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveLineItem(context.Context, uuid.UUID, uuid.UUID, string) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(context.Context, uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) ListCarts(context.Context) ([]models.Cart, error) {
	if s.cart == nil {
		return nil, s.err
	}
	return []models.Cart{*s.cart}, s.err
}

func (s *stubCartService) DeleteCart(context.Context, uuid.UUID) error {
	return s.err
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rc := chi.NewRouteContext()
	for key, value := range params {
		rc.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func asUser(req *http.Request, userID uuid.UUID, isAdmin bool) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithIsAdmin(ctx, isAdmin)
	return req.WithContext(ctx)
}

func TestGetCartSelfAccess(t *testing.T) {
	ownerID := uuid.New()
	cart := &models.Cart{ID: uuid.New(), OwnerID: ownerID}
	handler := GetCart(&stubCartService{cart: cart}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/carts/"+ownerID.String(), nil)
	req = asUser(req, ownerID, false)
	req = withURLParams(req, map[string]string{"userId": ownerID.String()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data models.Cart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != cart.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestGetCartForbiddenForOtherUser(t *testing.T) {
	ownerID := uuid.New()
	handler := GetCart(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/carts/"+ownerID.String(), nil)
	req = asUser(req, uuid.New(), false)
	req = withURLParams(req, map[string]string{"userId": ownerID.String()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestGetCartAdminBypassesOwnership(t *testing.T) {
	ownerID := uuid.New()
	handler := GetCart(&stubCartService{cart: &models.Cart{OwnerID: ownerID}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/carts/"+ownerID.String(), nil)
	req = asUser(req, uuid.New(), true)
	req = withURLParams(req, map[string]string{"userId": ownerID.String()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAddCartItemParsesPayload(t *testing.T) {
	ownerID := uuid.New()
	productID := uuid.New()
	svc := &stubCartService{cart: &models.Cart{OwnerID: ownerID}}
	handler := AddCartItem(svc, nil)

	body := `{"product_id":"` + productID.String() + `","size":"M","title":"Linen Shirt","unit_price":"49.99","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+ownerID.String()+"/items", strings.NewReader(body))
	req = asUser(req, ownerID, false)
	req = withURLParams(req, map[string]string{"userId": ownerID.String()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastAdd.ProductID != productID {
		t.Fatalf("unexpected product id %s", svc.lastAdd.ProductID)
	}
	if !svc.lastAdd.UnitPrice.Equal(decimal.RequireFromString("49.99")) {
		t.Fatalf("unexpected unit price %s", svc.lastAdd.UnitPrice)
	}
	if svc.lastAdd.Quantity != 2 {
		t.Fatalf("unexpected quantity %d", svc.lastAdd.Quantity)
	}
}

func TestAddCartItemRejectsBadPrice(t *testing.T) {
	ownerID := uuid.New()
	handler := AddCartItem(&stubCartService{}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","size":"M","title":"Linen Shirt","unit_price":"lots","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+ownerID.String()+"/items", strings.NewReader(body))
	req = asUser(req, ownerID, false)
	req = withURLParams(req, map[string]string{"userId": ownerID.String()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdjustCartItemRejectsUnknownDirection(t *testing.T) {
	ownerID := uuid.New()
	handler := AdjustCartItem(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/items?type=sideways&size=M", nil)
	req = asUser(req, ownerID, false)
	req = withURLParams(req, map[string]string{"userId": ownerID.String(), "productId": uuid.NewString()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRemoveCartItemMissingReturnsNotFound(t *testing.T) {
	ownerID := uuid.New()
	handler := RemoveCartItem(&stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/items?size=M", nil)
	req = asUser(req, ownerID, false)
	req = withURLParams(req, map[string]string{"userId": ownerID.String(), "productId": uuid.NewString()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
