// Package errs holds the storefront's user-facing error taxonomy.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for the presentation layer.
type Code int

const (
	Unknown Code = iota
	InvalidQuantity
	InvalidPrice
	EmptyPrompt
	GenerationFailed
	GenerationInProgress
	DesignRequired
	EmptyCart
	IncompleteAddress
	InvalidStep
	CheckoutInProgress
	PaymentFailed
	OrderPlacementFailed
	GatewayTimeout
	Abandoned
	NotFound
)

func (c Code) String() string {
	switch c {
	case InvalidQuantity:
		return "INVALID_QUANTITY"
	case InvalidPrice:
		return "INVALID_PRICE"
	case EmptyPrompt:
		return "EMPTY_PROMPT"
	case GenerationFailed:
		return "GENERATION_FAILED"
	case GenerationInProgress:
		return "GENERATION_IN_PROGRESS"
	case DesignRequired:
		return "DESIGN_REQUIRED"
	case EmptyCart:
		return "EMPTY_CART"
	case IncompleteAddress:
		return "INCOMPLETE_ADDRESS"
	case InvalidStep:
		return "INVALID_STEP"
	case CheckoutInProgress:
		return "CHECKOUT_IN_PROGRESS"
	case PaymentFailed:
		return "PAYMENT_FAILED"
	case OrderPlacementFailed:
		return "ORDER_PLACEMENT_FAILED"
	case GatewayTimeout:
		return "GATEWAY_TIMEOUT"
	case Abandoned:
		return "ABANDONED"
	case NotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// HTTPStatus maps a code to the status the controllers answer with.
func (c Code) HTTPStatus() int {
	switch c {
	case InvalidQuantity, InvalidPrice, EmptyPrompt, DesignRequired, EmptyCart:
		return http.StatusBadRequest
	case IncompleteAddress:
		return http.StatusUnprocessableEntity
	case GenerationInProgress, CheckoutInProgress, InvalidStep, Abandoned:
		return http.StatusConflict
	case PaymentFailed:
		return http.StatusPaymentRequired
	case GenerationFailed, OrderPlacementFailed:
		return http.StatusBadGateway
	case GatewayTimeout:
		return http.StatusGatewayTimeout
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a message that is safe to show a customer.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, errs.New(errs.EmptyPrompt, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or Unknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// MessageOf returns the customer-facing message for err. Unclassified errors
// never leak their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "An unexpected error occurred"
}
