package e

import (
	"errors"
	"fmt"
)

var (
	// Базовые виды ошибок таксономии. Конкретные ошибки оборачивают один из них.
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrDepthExceeded = errors.New("depth exceeded")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrUnknownStorageDriver = fmt.Errorf("unknown storage driver")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")
	ErrInvalidJSON      = fmt.Errorf("%w: invalid json body", ErrValidation)
	ErrNameRequired     = fmt.Errorf("%w: name is required", ErrValidation)
	ErrEmptySlug        = fmt.Errorf("%w: name must contain at least one latin letter or digit", ErrValidation)
	ErrOwnerRequired    = fmt.Errorf("%w: owner is required", ErrValidation)
	ErrPathRequired     = fmt.Errorf("%w: path is required", ErrValidation)
	ErrIDRequired       = fmt.Errorf("%w: id is required", ErrValidation)

	// 404 Not Found
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)

	// 409 Conflict
	ErrCategoryExists  = fmt.Errorf("%w: category with the same name or slug already exists", ErrConflict)
	ErrSlugTaken       = fmt.Errorf("%w: sibling with the same slug already exists", ErrConflict)
	ErrLegacyRefTaken  = fmt.Errorf("%w: sibling with the same legacy ref already exists", ErrConflict)
	ErrVersionConflict = fmt.Errorf("%w: category was modified concurrently", ErrConflict)

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
