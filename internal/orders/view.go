package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modawear/modawear-backend/pkg/db/models"
	"github.com/modawear/modawear-backend/pkg/enums"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
)

// Scope selects which orders the listing covers. A nil OwnerID means every
// order (admin view); otherwise only the owner's orders are returned.
type Scope struct {
	OwnerID *uuid.UUID
}

// ScopeAll returns the administrative listing scope.
func ScopeAll() Scope {
	return Scope{}
}

// ScopeOwner restricts the listing to one owner.
func ScopeOwner(ownerID uuid.UUID) Scope {
	return Scope{OwnerID: &ownerID}
}

// LineItemView joins a snapshotted line item with live catalog display
// fields. Title and image come from the current product record, so they can
// drift from what was purchased; a deleted product leaves them nil.
type LineItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Title     *string         `json:"title,omitempty"`
	Image     *string         `json:"image,omitempty"`
}

// OrderView is the denormalized row returned by the order listing. Username
// and email are populated only for the admin scope, and only when the owning
// user still exists.
type OrderView struct {
	ID            uuid.UUID         `json:"id"`
	OwnerID       uuid.UUID         `json:"owner_id"`
	Username      *string           `json:"username,omitempty"`
	Email         *string           `json:"email,omitempty"`
	ShippingPrice decimal.Decimal   `json:"shipping_price"`
	OrderTotal    decimal.Decimal   `json:"order_total"`
	Status        enums.OrderStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	LineItems     []LineItemView    `json:"line_items"`
}

// ListOrders returns orders in the requested scope, newest first, with
// display fields joined live against the product and user catalogs. It never
// mutates the underlying records.
func (s *service) ListOrders(ctx context.Context, scope Scope) ([]OrderView, error) {
	var (
		orders []models.Order
		err    error
	)
	if scope.OwnerID != nil {
		if *scope.OwnerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
		}
		orders, err = s.repo.ListByOwner(ctx, *scope.OwnerID)
	} else {
		orders, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	products, err := s.repo.ProductsByID(ctx, collectProductIDs(orders))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	var users map[uuid.UUID]models.User
	if scope.OwnerID == nil {
		users, err = s.repo.UsersByID(ctx, collectOwnerIDs(orders))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load users")
		}
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		view := OrderView{
			ID:            order.ID,
			OwnerID:       order.OwnerID,
			ShippingPrice: order.ShippingPrice,
			OrderTotal:    order.OrderTotal,
			Status:        order.Status,
			CreatedAt:     order.CreatedAt,
			LineItems:     make([]LineItemView, 0, len(order.LineItems)),
		}

		if users != nil {
			if user, ok := users[order.OwnerID]; ok {
				username := user.Username
				email := user.Email
				view.Username = &username
				view.Email = &email
			}
		}

		for _, item := range order.LineItems {
			entry := LineItemView{
				ProductID: item.ProductID,
				Size:      item.Size,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				LineTotal: item.LineTotal,
			}
			if product, ok := products[item.ProductID]; ok {
				title := product.Title
				image := product.Image
				entry.Title = &title
				entry.Image = &image
			}
			view.LineItems = append(view.LineItems, entry)
		}

		views = append(views, view)
	}
	return views, nil
}

func collectProductIDs(orders []models.Order) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, order := range orders {
		for _, item := range order.LineItems {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

func collectOwnerIDs(orders []models.Order) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, order := range orders {
		if _, ok := seen[order.OwnerID]; ok {
			continue
		}
		seen[order.OwnerID] = struct{}{}
		ids = append(ids, order.OwnerID)
	}
	return ids
}
