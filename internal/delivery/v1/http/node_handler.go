package http

import (
	"net/http"

	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// addNode
//
//	@Summary		Добавление узла
//	@Description	Путь после /nodes/ задаёт id предков; пустой путь добавляет узел верхнего уровня
//	@Tags			nodes
//	@Accept			json
//	@Produce		json
//	@Param			categoryID	path		string			true	"ID категории"
//	@Param			path		path		string			false	"ID предков через /"
//	@Param			body		body		AddNodeRequest	true	"Узел"
//	@Success		201			{object}	CategoryResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse	"Превышена глубина"
//	@Router			/categories/{categoryID}/nodes/{path} [post]
func (h *TaxonomyHandler) addNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.AddNode(r.Context(),
		usecase.NewAddNodeReq(chi.URLParam(r, "categoryID"), pathIDs(r), req.Name, req.LegacyRef))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryResponse(category))
}

// updateNode
//
//	@Summary	Переименование узла
//	@Tags		nodes
//	@Accept		json
//	@Produce	json
//	@Param		categoryID	path		string			true	"ID категории"
//	@Param		path		path		string			true	"Полный путь до узла через /"
//	@Param		body		body		RenameRequest	true	"Новое имя"
//	@Success	200			{object}	CategoryResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/nodes/{path} [patch]
func (h *TaxonomyHandler) updateNode(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.taxonomyUsecase.UpdateNode(r.Context(),
		usecase.NewUpdateNodeReq(chi.URLParam(r, "categoryID"), pathIDs(r), req.Name))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(category))
}

// deleteNode
//
//	@Summary	Удаление узла вместе с поддеревом
//	@Tags		nodes
//	@Produce	json
//	@Param		categoryID	path		string	true	"ID категории"
//	@Param		path		path		string	true	"Полный путь до узла через /"
//	@Success	200			{object}	CategoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/categories/{categoryID}/nodes/{path} [delete]
func (h *TaxonomyHandler) deleteNode(w http.ResponseWriter, r *http.Request) {
	category, err := h.taxonomyUsecase.DeleteNode(r.Context(),
		usecase.NewDeleteNodeReq(chi.URLParam(r, "categoryID"), pathIDs(r)))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(category))
}
