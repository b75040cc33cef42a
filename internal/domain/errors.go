package domain

import "errors"

// Sentinels shared by every domain package. Wrap them with fmt.Errorf("...: %w")
// and match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientCatalog = errors.New("insufficient catalog")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("already exists")
)
