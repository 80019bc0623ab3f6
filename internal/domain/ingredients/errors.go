package ingredients

import "errors"

var (
	// ErrInvalidInput indicates an empty or malformed payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownVariant indicates a variant with no configured table or model.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrServiceUnavailable indicates the ingredient store could not be reached.
	ErrServiceUnavailable = errors.New("ingredient store unavailable")
)
