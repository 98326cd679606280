package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/go-chi/chi/v5"
)

const maxBodySize = 1 << 20

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// specificErrors проверяются раньше базовых видов, чтобы клиент получил точное сообщение.
var specificErrors = []error{
	e.ErrInvalidJSON,
	e.ErrNameRequired,
	e.ErrEmptySlug,
	e.ErrOwnerRequired,
	e.ErrPathRequired,
	e.ErrIDRequired,
	e.ErrCategoryNotFound,
	e.ErrCategoryExists,
	e.ErrSlugTaken,
	e.ErrLegacyRefTaken,
	e.ErrVersionConflict,
}

func ToHTTPResponse(err error) (int, string) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		return code, e.ErrInternalServerError.Error()
	}

	for _, target := range specificErrors {
		if errors.Is(err, target) {
			return code, target.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrDepthExceeded):
		return code, e.ErrDepthExceeded.Error()
	case errors.Is(err, e.ErrNotFound):
		return code, e.ErrNotFound.Error()
	case errors.Is(err, e.ErrConflict):
		return code, e.ErrConflict.Error()
	default:
		return code, e.ErrStatusBadRequest.Error()
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, e.ErrValidation), errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, e.ErrDepthExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Пустое тело допустимо и оставляет dst без изменений.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return e.Wrap(err.Error(), e.ErrInvalidJSON)
	}

	return nil
}

// pathIDs разбирает хвост маршрута "/nodes/*" в последовательность идентификаторов.
func pathIDs(r *http.Request) []string {
	raw := chi.URLParam(r, "*")

	ids := make([]string, 0)
	for _, part := range strings.Split(raw, "/") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}

	return ids
}
