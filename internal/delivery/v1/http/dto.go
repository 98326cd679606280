package http

import (
	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/document"
)

const userIDHeader = "X-User-ID"

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

type AddNodeRequest struct {
	Name      string  `json:"name"`
	LegacyRef *string `json:"legacyRef"`
}

type AddLegacyRequest struct {
	Name string `json:"name"`
}

type RenameRequest struct {
	Name *string `json:"name"`
}

// CategoryResponse совпадает с хранимой формой документа категории.
type CategoryResponse = document.Category

func toCategoryResponse(c *domain.Category) *CategoryResponse {
	return document.FromDomain(c)
}

func toCategoryListResponse(categories []*domain.Category) []*CategoryResponse {
	res := make([]*CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, toCategoryResponse(c))
	}
	return res
}
