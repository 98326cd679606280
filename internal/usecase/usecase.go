package usecase

import (
	"context"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
)

type TaxonomyUC interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error)
	UpdateCategory(ctx context.Context, req *UpdateCategoryReq) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	AddNode(ctx context.Context, req *AddNodeReq) (*domain.Category, error)
	UpdateNode(ctx context.Context, req *UpdateNodeReq) (*domain.Category, error)
	DeleteNode(ctx context.Context, req *DeleteNodeReq) (*domain.Category, error)

	AddSubcategory(ctx context.Context, req *AddSubcategoryReq) (*domain.Category, error)
	UpdateSubcategory(ctx context.Context, req *UpdateSubcategoryReq) (*domain.Category, error)
	DeleteSubcategory(ctx context.Context, req *DeleteSubcategoryReq) (*domain.Category, error)

	AddSecondary(ctx context.Context, req *AddSecondaryReq) (*domain.Category, error)
	UpdateSecondary(ctx context.Context, req *UpdateSecondaryReq) (*domain.Category, error)
	DeleteSecondary(ctx context.Context, req *DeleteSecondaryReq) (*domain.Category, error)
}
