package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modawear/modawear-backend/pkg/db/models"
	"github.com/modawear/modawear-backend/pkg/enums"
)

// Repository defines persistence operations for order records plus the
// reference lookups used by the aggregation view.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
	ProductsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	UsersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}
