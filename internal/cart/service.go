package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/modawear/modawear-backend/pkg/db"
	"github.com/modawear/modawear-backend/pkg/db/models"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
)

// Direction selects which way AdjustQuantity moves a line item.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// ParseDirection validates the direction supplied by the caller.
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case DirectionIncrease:
		return DirectionIncrease, nil
	case DirectionDecrease:
		return DirectionDecrease, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "direction must be increase or decrease")
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart mutation and lookup operations.
type Service interface {
	GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	AddLineItem(ctx context.Context, ownerID uuid.UUID, input AddLineItemInput) (*models.Cart, error)
	AdjustQuantity(ctx context.Context, ownerID, productID uuid.UUID, size string, direction Direction) (*models.Cart, error)
	RemoveLineItem(ctx context.Context, ownerID, productID uuid.UUID, size string) (*models.Cart, error)
	Clear(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]models.Cart, error)
	DeleteCart(ctx context.Context, ownerID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// AddLineItemInput captures the payload required to add or merge a line item.
type AddLineItemInput struct {
	ProductID uuid.UUID
	Size      string
	Title     string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// GetOrCreate returns the owner's cart, creating an empty one on first access.
func (s *service) GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	cart, err := s.repo.FindByOwner(ctx, ownerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{
		OwnerID:    ownerID,
		TotalPrice: decimal.Zero,
	})
	if err != nil {
		// lost the create race; the other request's cart is ours now
		if db.IsUniqueViolation(err) {
			cart, findErr := s.repo.FindByOwner(ctx, ownerID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load cart")
			}
			return cart, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

// AddLineItem merges into an existing (product, size) entry or appends a new
// one. Merging never changes CartQuantity; appending increments it. The total
// moves incrementally here since this path is exact.
func (s *service) AddLineItem(ctx context.Context, ownerID uuid.UUID, input AddLineItemInput) (*models.Cart, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.Size) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwnerForUpdate(ctx, ownerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			cart, err = txRepo.Create(ctx, &models.Cart{
				OwnerID:    ownerID,
				TotalPrice: decimal.Zero,
			})
			if err != nil {
				return err
			}
		}

		qty := decimal.NewFromInt(int64(input.Quantity))
		if existing := findLineItem(cart.LineItems, input.ProductID, input.Size); existing != nil {
			existing.Quantity += input.Quantity
			cart.TotalPrice = cart.TotalPrice.Add(existing.UnitPrice.Mul(qty))
			if err := txRepo.SaveLineItem(ctx, existing); err != nil {
				return err
			}
		} else {
			item := models.CartLineItem{
				CartID:    cart.ID,
				ProductID: input.ProductID,
				Size:      input.Size,
				Title:     input.Title,
				Image:     input.Image,
				UnitPrice: input.UnitPrice,
				Quantity:  input.Quantity,
			}
			if err := txRepo.SaveLineItem(ctx, &item); err != nil {
				return err
			}
			cart.LineItems = append(cart.LineItems, item)
			cart.CartQuantity++
			cart.TotalPrice = cart.TotalPrice.Add(input.UnitPrice.Mul(qty))
		}

		result, err = txRepo.Save(ctx, cart)
		return err
	})
	if err != nil {
		return nil, asDomainError(err, "persist cart")
	}
	return result, nil
}

// AdjustQuantity moves a line item's quantity up or down by one. Decrease
// floors at 1; removal is the only path to zero. The total is rebuilt by full
// summation afterwards.
func (s *service) AdjustQuantity(ctx context.Context, ownerID, productID uuid.UUID, size string, direction Direction) (*models.Cart, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if direction != DirectionIncrease && direction != DirectionDecrease {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be increase or decrease")
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwnerForUpdate(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return err
		}

		item := findLineItem(cart.LineItems, productID, size)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}

		switch direction {
		case DirectionIncrease:
			item.Quantity++
		case DirectionDecrease:
			if item.Quantity > 1 {
				item.Quantity--
			}
		}

		cart.TotalPrice = sumLineItems(cart.LineItems)
		if err := txRepo.SaveLineItem(ctx, item); err != nil {
			return err
		}
		result, err = txRepo.Save(ctx, cart)
		return err
	})
	if err != nil {
		return nil, asDomainError(err, "persist cart")
	}
	return result, nil
}

// RemoveLineItem deletes the (product, size) entry and rebuilds both
// aggregates. A missing entry is reported, not ignored.
func (s *service) RemoveLineItem(ctx context.Context, ownerID, productID uuid.UUID, size string) (*models.Cart, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwnerForUpdate(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return err
		}

		item := findLineItem(cart.LineItems, productID, size)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		if err := txRepo.DeleteLineItem(ctx, item.ID); err != nil {
			return err
		}

		remaining := make([]models.CartLineItem, 0, len(cart.LineItems)-1)
		for _, candidate := range cart.LineItems {
			if candidate.ID != item.ID {
				remaining = append(remaining, candidate)
			}
		}
		cart.LineItems = remaining
		cart.CartQuantity = len(remaining)
		cart.TotalPrice = sumLineItems(remaining)

		result, err = txRepo.Save(ctx, cart)
		return err
	})
	if err != nil {
		return nil, asDomainError(err, "persist cart")
	}
	return result, nil
}

// Clear empties the cart without deleting it.
func (s *service) Clear(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwnerForUpdate(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return err
		}

		if err := txRepo.DeleteLineItems(ctx, cart.ID); err != nil {
			return err
		}
		cart.LineItems = nil
		cart.CartQuantity = 0
		cart.TotalPrice = decimal.Zero

		result, err = txRepo.Save(ctx, cart)
		return err
	})
	if err != nil {
		return nil, asDomainError(err, "persist cart")
	}
	return result, nil
}

// ListCarts returns every cart with its line items, newest first.
func (s *service) ListCarts(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list carts")
	}
	return carts, nil
}

// DeleteCart removes the owner's cart entirely.
func (s *service) DeleteCart(ctx context.Context, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	rows, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return nil
}

func findLineItem(items []models.CartLineItem, productID uuid.UUID, size string) *models.CartLineItem {
	for i := range items {
		if items[i].ProductID == productID && items[i].Size == size {
			return &items[i]
		}
	}
	return nil
}

func sumLineItems(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// asDomainError passes typed errors through and wraps raw persistence
// failures as dependency errors.
func asDomainError(err error, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
