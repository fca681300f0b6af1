package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modawear/modawear-backend/pkg/db/models"
)

// Repository defines the persistence surface required by the cart service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	FindByOwnerForUpdate(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	SaveLineItem(ctx context.Context, item *models.CartLineItem) error
	DeleteLineItem(ctx context.Context, itemID uuid.UUID) error
	DeleteLineItems(ctx context.Context, cartID uuid.UUID) error
	List(ctx context.Context) ([]models.Cart, error)
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
