package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/domain/tree"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUC запоминает последний запрос и возвращает заданный результат.
type stubUC struct {
	category *domain.Category
	list     []*domain.Category
	err      error

	lastReq any
	lastID  string
}

func (s *stubUC) ListCategories(context.Context) ([]*domain.Category, error) {
	return s.list, s.err
}

func (s *stubUC) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.lastID = id
	return s.category, s.err
}

func (s *stubUC) CreateCategory(_ context.Context, req *usecase.CreateCategoryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) UpdateCategory(_ context.Context, req *usecase.UpdateCategoryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) DeleteCategory(_ context.Context, id string) error {
	s.lastID = id
	return s.err
}

func (s *stubUC) AddNode(_ context.Context, req *usecase.AddNodeReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) UpdateNode(_ context.Context, req *usecase.UpdateNodeReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) DeleteNode(_ context.Context, req *usecase.DeleteNodeReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) AddSubcategory(_ context.Context, req *usecase.AddSubcategoryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) UpdateSubcategory(_ context.Context, req *usecase.UpdateSubcategoryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) DeleteSubcategory(_ context.Context, req *usecase.DeleteSubcategoryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) AddSecondary(_ context.Context, req *usecase.AddSecondaryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) UpdateSecondary(_ context.Context, req *usecase.UpdateSecondaryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func (s *stubUC) DeleteSecondary(_ context.Context, req *usecase.DeleteSecondaryReq) (*domain.Category, error) {
	s.lastReq = req
	return s.category, s.err
}

func newTestRouter(uc usecase.TaxonomyUC) http.Handler {
	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNop()).Init(uc)
	return mux
}

func sampleCategory() *domain.Category {
	c := domain.NewCategory("cat-1", "Electronics", "electronics", "", "", "user-1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Version = 2
	c.Nodes = []*tree.Node{{ID: "n1", Name: "Phones", Slug: "phones", Children: []*tree.Node{}}}
	return c
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var res ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"name required", e.Wrap("op", e.ErrNameRequired), http.StatusBadRequest, e.ErrNameRequired.Error()},
		{"not found", e.Wrap("op", e.ErrCategoryNotFound), http.StatusNotFound, e.ErrCategoryNotFound.Error()},
		{"bare not found", e.Wrap("locate", e.ErrNotFound), http.StatusNotFound, e.ErrNotFound.Error()},
		{"slug taken", e.Wrap("op", e.ErrSlugTaken), http.StatusConflict, e.ErrSlugTaken.Error()},
		{"version conflict", e.ErrVersionConflict, http.StatusConflict, e.ErrVersionConflict.Error()},
		{"depth", e.Wrap("op", e.ErrDepthExceeded), http.StatusUnprocessableEntity, e.ErrDepthExceeded.Error()},
		{"internal", errors.New("db is down"), http.StatusInternalServerError, e.ErrInternalServerError.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := ToHTTPResponse(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestCreateCategory_PassesOwnerAndBody(t *testing.T) {
	uc := &stubUC{category: sampleCategory()}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPost, "/api/v1/categories",
		`{"name":"Electronics","icon":"bolt","color":"#fff"}`, map[string]string{userIDHeader: "user-1"})

	require.Equal(t, http.StatusCreated, rec.Code)

	req, ok := uc.lastReq.(*usecase.CreateCategoryReq)
	require.True(t, ok)
	assert.Equal(t, "Electronics", req.Name)
	assert.Equal(t, "bolt", req.Icon)
	assert.Equal(t, "user-1", req.OwnerID)

	var res CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "cat-1", res.ID)
	assert.Equal(t, int64(2), res.Version)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "phones", res.Nodes[0].Slug)
}

func TestCreateCategory_InvalidJSON(t *testing.T) {
	uc := &stubUC{}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPost, "/api/v1/categories", `{"name":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrInvalidJSON.Error(), decodeError(t, rec).Message)
	assert.Nil(t, uc.lastReq)
}

func TestUpdateCategory_PartialFields(t *testing.T) {
	uc := &stubUC{category: sampleCategory()}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPatch, "/api/v1/categories/cat-1", `{"color":"red"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	req := uc.lastReq.(*usecase.UpdateCategoryReq)
	assert.Equal(t, "cat-1", req.CategoryID)
	assert.Nil(t, req.Name)
	require.NotNil(t, req.Color)
	assert.Equal(t, "red", *req.Color)
}

func TestDeleteCategory(t *testing.T) {
	uc := &stubUC{}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodDelete, "/api/v1/categories/cat-1", "", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "cat-1", uc.lastID)
}

func TestGetCategory_NotFound(t *testing.T) {
	uc := &stubUC{err: e.Wrap("TaxonomyUseCase.GetCategory", e.ErrCategoryNotFound)}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodGet, "/api/v1/categories/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing", uc.lastID)
	res := decodeError(t, rec)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, e.ErrCategoryNotFound.Error(), res.Message)
}

func TestListCategories_EmptyArray(t *testing.T) {
	uc := &stubUC{list: nil}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodGet, "/api/v1/categories", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAddNode_Paths(t *testing.T) {
	tests := []struct {
		name   string
		target string
		path   []string
	}{
		{"root", "/api/v1/categories/cat-1/nodes", []string{}},
		{"one parent", "/api/v1/categories/cat-1/nodes/n1", []string{"n1"}},
		{"deep", "/api/v1/categories/cat-1/nodes/n1/n2/n3", []string{"n1", "n2", "n3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUC{category: sampleCategory()}
			h := newTestRouter(uc)

			rec := do(t, h, http.MethodPost, tt.target, `{"name":"Smartphones","legacyRef":"sub-1"}`, nil)

			require.Equal(t, http.StatusCreated, rec.Code)
			req := uc.lastReq.(*usecase.AddNodeReq)
			assert.Equal(t, "cat-1", req.CategoryID)
			assert.Equal(t, tt.path, req.ParentPath)
			assert.Equal(t, "Smartphones", req.Name)
			require.NotNil(t, req.LegacyRef)
			assert.Equal(t, "sub-1", *req.LegacyRef)
		})
	}
}

func TestAddNode_DepthExceeded(t *testing.T) {
	uc := &stubUC{err: e.Wrap("TaxonomyUseCase.AddNode", e.ErrDepthExceeded)}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPost, "/api/v1/categories/cat-1/nodes/a/b/c/d", `{"name":"X"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateNode_EmptyBodyIsNoOp(t *testing.T) {
	uc := &stubUC{category: sampleCategory()}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPatch, "/api/v1/categories/cat-1/nodes/n1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	req := uc.lastReq.(*usecase.UpdateNodeReq)
	assert.Equal(t, []string{"n1"}, req.FullPath)
	assert.Nil(t, req.Name)
}

func TestDeleteNode(t *testing.T) {
	uc := &stubUC{category: sampleCategory()}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodDelete, "/api/v1/categories/cat-1/nodes/n1/n2", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	req := uc.lastReq.(*usecase.DeleteNodeReq)
	assert.Equal(t, []string{"n1", "n2"}, req.FullPath)
}

func TestLegacyRoutes(t *testing.T) {
	uc := &stubUC{category: sampleCategory()}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPost, "/api/v1/categories/cat-1/subcategories", `{"name":"Phones"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	addSub := uc.lastReq.(*usecase.AddSubcategoryReq)
	assert.Equal(t, "Phones", addSub.Name)

	rec = do(t, h, http.MethodPost, "/api/v1/categories/cat-1/subcategories/s1/secondary", `{"name":"Android"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	addSec := uc.lastReq.(*usecase.AddSecondaryReq)
	assert.Equal(t, "s1", addSec.SubcategoryID)

	rec = do(t, h, http.MethodPatch, "/api/v1/categories/cat-1/subcategories/s1/secondary/x1", `{"name":"iOS"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	updSec := uc.lastReq.(*usecase.UpdateSecondaryReq)
	assert.Equal(t, "x1", updSec.SecondaryID)
	require.NotNil(t, updSec.Name)
	assert.Equal(t, "iOS", *updSec.Name)

	rec = do(t, h, http.MethodDelete, "/api/v1/categories/cat-1/subcategories/s1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	delSub := uc.lastReq.(*usecase.DeleteSubcategoryReq)
	assert.Equal(t, "s1", delSub.SubcategoryID)
}

func TestLegacyRoutes_Conflict(t *testing.T) {
	uc := &stubUC{err: e.Wrap("TaxonomyUseCase.AddSubcategory", e.ErrSlugTaken)}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPost, "/api/v1/categories/cat-1/subcategories", `{"name":"Phones"}`, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, e.ErrSlugTaken.Error(), decodeError(t, rec).Message)
}
