package ierr

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInternalServer = errors.New("internal server error")

	ErrInvalidDuration = errors.New("invalid duration format")
	ErrInvalidProduct  = errors.New("invalid product id")
	ErrKeyNotFound     = errors.New("key not found")
	ErrProductNotFound = errors.New("product not found")
	ErrHwidMismatch    = errors.New("hwid mismatch")
	ErrKeyExpired      = errors.New("key expired")

	ErrStorageCorrupt = errors.New("persisted store is corrupt")

	ErrInvalidToken = errors.New("invalid or expired token")
)
