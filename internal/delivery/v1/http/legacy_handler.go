package http

import (
	"net/http"

	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// addSubcategory
//
//	@Summary	Добавление подкатегории
//	@Tags		subcategories
//	@Accept		json
//	@Produce	json
//	@Param		categoryID	path		string				true	"ID категории"
//	@Param		body		body		AddLegacyRequest	true	"Подкатегория"
//	@Success	201			{object}	CategoryResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/subcategories [post]
func (h *TaxonomyHandler) addSubcategory(w http.ResponseWriter, r *http.Request) {
	var req AddLegacyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.AddSubcategory(r.Context(),
		usecase.NewAddSubcategoryReq(chi.URLParam(r, "categoryID"), req.Name))
	h.respond(w, r, http.StatusCreated, category, err)
}

// updateSubcategory
//
//	@Summary	Переименование подкатегории
//	@Tags		subcategories
//	@Accept		json
//	@Produce	json
//	@Param		categoryID	path		string			true	"ID категории"
//	@Param		subID		path		string			true	"ID подкатегории"
//	@Param		body		body		RenameRequest	true	"Новое имя"
//	@Success	200			{object}	CategoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/subcategories/{subID} [patch]
func (h *TaxonomyHandler) updateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.UpdateSubcategory(r.Context(),
		usecase.NewUpdateSubcategoryReq(chi.URLParam(r, "categoryID"), chi.URLParam(r, "subID"), req.Name))
	h.respond(w, r, http.StatusOK, category, err)
}

// deleteSubcategory
//
//	@Summary	Удаление подкатегории
//	@Tags		subcategories
//	@Produce	json
//	@Param		categoryID	path		string	true	"ID категории"
//	@Param		subID		path		string	true	"ID подкатегории"
//	@Success	200			{object}	CategoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/subcategories/{subID} [delete]
func (h *TaxonomyHandler) deleteSubcategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.taxonomyUsecase.DeleteSubcategory(r.Context(),
		usecase.NewDeleteSubcategoryReq(chi.URLParam(r, "categoryID"), chi.URLParam(r, "subID")))
	h.respond(w, r, http.StatusOK, category, err)
}

// addSecondary
//
//	@Summary	Добавление вторичной подкатегории
//	@Tags		subcategories
//	@Accept		json
//	@Produce	json
//	@Param		categoryID	path		string				true	"ID категории"
//	@Param		subID		path		string				true	"ID подкатегории"
//	@Param		body		body		AddLegacyRequest	true	"Вторичная подкатегория"
//	@Success	201			{object}	CategoryResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/subcategories/{subID}/secondary [post]
func (h *TaxonomyHandler) addSecondary(w http.ResponseWriter, r *http.Request) {
	var req AddLegacyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.AddSecondary(r.Context(),
		usecase.NewAddSecondaryReq(chi.URLParam(r, "categoryID"), chi.URLParam(r, "subID"), req.Name))
	h.respond(w, r, http.StatusCreated, category, err)
}

// updateSecondary
//
//	@Summary	Переименование вторичной подкатегории
//	@Tags		subcategories
//	@Accept		json
//	@Produce	json
//	@Param		categoryID	path		string			true	"ID категории"
//	@Param		subID		path		string			true	"ID подкатегории"
//	@Param		secID		path		string			true	"ID вторичной подкатегории"
//	@Param		body		body		RenameRequest	true	"Новое имя"
//	@Success	200			{object}	CategoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/subcategories/{subID}/secondary/{secID} [patch]
func (h *TaxonomyHandler) updateSecondary(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.UpdateSecondary(r.Context(), usecase.NewUpdateSecondaryReq(
		chi.URLParam(r, "categoryID"), chi.URLParam(r, "subID"), chi.URLParam(r, "secID"), req.Name))
	h.respond(w, r, http.StatusOK, category, err)
}

// deleteSecondary
//
//	@Summary	Удаление вторичной подкатегории
//	@Tags		subcategories
//	@Produce	json
//	@Param		categoryID	path		string	true	"ID категории"
//	@Param		subID		path		string	true	"ID подкатегории"
//	@Param		secID		path		string	true	"ID вторичной подкатегории"
//	@Success	200			{object}	CategoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/subcategories/{subID}/secondary/{secID} [delete]
func (h *TaxonomyHandler) deleteSecondary(w http.ResponseWriter, r *http.Request) {
	category, err := h.taxonomyUsecase.DeleteSecondary(r.Context(), usecase.NewDeleteSecondaryReq(
		chi.URLParam(r, "categoryID"), chi.URLParam(r, "subID"), chi.URLParam(r, "secID")))
	h.respond(w, r, http.StatusOK, category, err)
}
