package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modawear/modawear-backend/pkg/db/models"
	"github.com/modawear/modawear-backend/pkg/enums"
)

// ListFilter narrows the catalog listing.
type ListFilter struct {
	Categories []string
	Sizes      []string
	TitleQuery string
	Sort       enums.ProductSort
	Limit      int
}

// Repository defines the persistence surface required by the product service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
