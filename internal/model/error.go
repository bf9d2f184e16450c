package model

// Standard error codes for API responses
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUpload           = "UPLOAD_ERROR"
	ErrCodeWrite            = "WRITE_ERROR"
	ErrCodeCategoryExists   = "CATEGORY_EXISTS"
	ErrCodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError carries a stable error code alongside a human-readable message.
// An optional wrapped cause is preserved for logging but never exposed to
// API clients.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError creates a domain error wrapping an underlying cause.
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain errors
var (
	ErrEmptyCategoryName = NewDomainError(ErrCodeValidation, "Category name must not be empty")
	ErrEmptyProductName  = NewDomainError(ErrCodeValidation, "Product name must not be empty")
	ErrInvalidPrice      = NewDomainError(ErrCodeValidation, "Price must be a non-negative number")
	ErrCategoryExists    = NewDomainError(ErrCodeCategoryExists, "A category with this name already exists")
	ErrCategoryNotFound  = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
)
