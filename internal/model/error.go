package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInvalidState  = "INVALID_STATE"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeUnauthorised  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInvalidJSON   = "INVALID_JSON"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// DomainError carries a machine-readable code alongside a human-readable
// message so handlers can map business failures to HTTP statuses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NotFound returns a NOT_FOUND domain error. Ownership mismatches are also
// reported through this code so existence of foreign records never leaks.
func NotFound(message string) *DomainError {
	return NewDomainError(ErrCodeNotFound, message)
}

// Validation returns a VALIDATION_ERROR domain error.
func Validation(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// InvalidState returns an INVALID_STATE domain error for operations that are
// illegal in the aggregate's current state.
func InvalidState(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidState, message)
}

// Conflict returns a CONFLICT domain error.
func Conflict(message string) *DomainError {
	return NewDomainError(ErrCodeConflict, message)
}

// Common domain errors
var (
	ErrProductNotFound     = NotFound("Product not found")
	ErrProductUnavailable  = InvalidState("Product is not available")
	ErrInvalidQuantity     = Validation("Quantity must be greater than zero")
	ErrCartNotFound        = NotFound("Cart not found")
	ErrCartItemNotFound    = NotFound("Item not found in cart")
	ErrCartEmpty           = InvalidState("Cart is empty")
	ErrOrderNotFound       = NotFound("Order not found")
	ErrOrderNotPending     = InvalidState("Order can only be deleted while pending")
	ErrOrderAlreadyPaid    = InvalidState("Order has already been paid")
	ErrAddressNotFound     = NotFound("Address not found")
	ErrInvalidRating       = Validation("Rating must be between 1 and 5")
	ErrReviewExists        = Conflict("Review already exists for this product and order")
	ErrProductNotInOrder   = Validation("Product is not part of this order")
	ErrOrderNotDelivered   = NotFound("Order not found or not delivered")
	ErrInvalidTransition   = InvalidState("Illegal status transition")
	ErrInvalidSignature    = NewDomainError(ErrCodeUnauthorised, "Webhook signature verification failed")
	ErrUploadsDisabled     = InvalidState("Image uploads are not enabled")
)
