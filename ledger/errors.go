package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors let callers (and the HTTP error handler) map business
// failures to response codes without string matching.
var (
	// Not-found class.
	ErrSaleNotFound    = errors.New("sale not found")
	ErrProductNotFound = errors.New("product not found")

	// Conflict class.
	ErrAlreadyPaid             = errors.New("sale is already paid in full")
	ErrNotQuotation            = errors.New("only a quotation can be converted")
	ErrNotCredit               = errors.New("only a credit sale accepts payments")
	ErrPaymentExceedsRemaining = errors.New("payment exceeds remaining amount")

	// Validation class.
	ErrNoItems                 = errors.New("sale requires at least one item")
	ErrInvalidQuantity         = errors.New("item quantity must be positive")
	ErrInvalidPrice            = errors.New("item price cannot be negative")
	ErrInvalidDiscount         = errors.New("discount cannot be negative")
	ErrDiscountExceedsSubtotal = errors.New("discount cannot exceed subtotal")
	ErrInvalidPaidAmount       = errors.New("paid amount cannot be negative")
	ErrInvalidPayment          = errors.New("payment amount must be positive")
	ErrInvalidStatus           = errors.New("invalid sale status")
)

// ValidationError wraps a validation sentinel with human-readable details.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, format string, args ...any) error {
	return &ValidationError{Err: err, Details: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err belongs to the validation class.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err belongs to the not-found class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound) || errors.Is(err, ErrProductNotFound)
}

// IsConflict reports whether err belongs to the conflict class.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrNotQuotation) ||
		errors.Is(err, ErrNotCredit) ||
		errors.Is(err, ErrPaymentExceedsRemaining)
}
