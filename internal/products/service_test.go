package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/modawear/modawear-backend/pkg/db/models"
	"github.com/modawear/modawear-backend/pkg/enums"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
)

func TestCreateValidatesInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), UpsertProductInput{Price: decimal.NewFromInt(10)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}

	_, err = svc.Create(context.Background(), UpsertProductInput{
		Title: "Linen Shirt",
		Price: decimal.NewFromInt(-5),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
}

func TestCreateDefaultsInStock(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	product, err := svc.Create(context.Background(), UpsertProductInput{
		Title:      "Linen Shirt",
		Categories: []string{"shirts"},
		Sizes:      []string{"S", "M"},
		Price:      decimal.RequireFromString("39.99"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !product.InStock {
		t.Fatal("expected in_stock to default true")
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), uuid.New(), UpsertProductInput{
		Title: "Renamed",
		Price: decimal.NewFromInt(10),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteMissingProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestListRejectsUnknownSort(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	_, err := svc.List(context.Background(), ListFilter{Sort: enums.ProductSort("fancy")})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func newTestService() (Service, *stubProductRepo) {
	repo := &stubProductRepo{products: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(repo)
	if err != nil {
		panic(err)
	}
	return svc, repo
}

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New()
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductRepo) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	var result []models.Product
	for _, product := range s.products {
		result = append(result, *product)
	}
	return result, nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := s.products[id]; !ok {
		return 0, nil
	}
	delete(s.products, id)
	return 1, nil
}
