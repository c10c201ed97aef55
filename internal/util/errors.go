package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a composer, work, or recording does not exist
	ErrNotFound = errors.New("not found")

	// ErrNoAsset indicates an entity has no asset attached
	ErrNoAsset = errors.New("no asset")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupported indicates a file format or operation is not supported
	ErrUnsupported = errors.New("unsupported")

	// ErrPermission indicates a permission error
	ErrPermission = errors.New("permission denied")
)
