package http

import (
	"net/http"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// TaxonomyHandler обслуживает REST API таксономии.
type TaxonomyHandler struct {
	taxonomyUsecase usecase.TaxonomyUC
	logger          logger.Logger
}

func NewTaxonomyHandler(taxonomyUsecase usecase.TaxonomyUC, logger logger.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyUsecase: taxonomyUsecase, logger: logger}
}

// listCategories
//
//	@Summary		Список категорий
//	@Description	Возвращает все категории, начиная с самых новых
//	@Tags			categories
//	@Produce		json
//	@Success		200	{array}		CategoryResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/categories [get]
func (h *TaxonomyHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomyUsecase.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryListResponse(categories))
}

// getCategory
//
//	@Summary	Категория по id
//	@Tags		categories
//	@Produce	json
//	@Param		categoryID	path		string	true	"ID категории"
//	@Success	200			{object}	CategoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID} [get]
func (h *TaxonomyHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.taxonomyUsecase.GetCategory(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(category))
}

// createCategory
//
//	@Summary		Создание категории
//	@Description	Создаёт пустую категорию. Владелец берётся из заголовка X-User-ID
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string					true	"ID владельца"
//	@Param			body		body		CreateCategoryRequest	true	"Категория"
//	@Success		201			{object}	CategoryResponse
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		409			{object}	ErrorResponse	"Категория уже существует"
//	@Router			/categories [post]
func (h *TaxonomyHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.CreateCategory(r.Context(),
		usecase.NewCreateCategoryReq(req.Name, req.Icon, req.Color, r.Header.Get(userIDHeader)))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryResponse(category))
}

// updateCategory
//
//	@Summary	Изменение категории
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		categoryID	path		string					true	"ID категории"
//	@Param		body		body		UpdateCategoryRequest	true	"Изменяемые поля"
//	@Success	200			{object}	CategoryResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/categories/{categoryID} [patch]
func (h *TaxonomyHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.UpdateCategory(r.Context(),
		usecase.NewUpdateCategoryReq(chi.URLParam(r, "categoryID"), req.Name, req.Icon, req.Color))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(category))
}

// deleteCategory
//
//	@Summary	Удаление категории
//	@Tags		categories
//	@Param		categoryID	path	string	true	"ID категории"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/categories/{categoryID} [delete]
func (h *TaxonomyHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.taxonomyUsecase.DeleteCategory(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fail логирует ошибку с уровнем по её HTTP-статусу и отправляет ответ.
func (h *TaxonomyHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		h.logger.Errorf(err, "%s %s", r.Method, r.URL.Path)
	} else {
		h.logger.Warnf("%d %s %s: %v", code, r.Method, r.URL.Path, err)
	}

	WriteError(w, err)
}

func (h *TaxonomyHandler) respond(w http.ResponseWriter, r *http.Request, status int, category *domain.Category, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, status, toCategoryResponse(category))
}
