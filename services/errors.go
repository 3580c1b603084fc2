package services

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalid
	KindUnauthenticated
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalid:
		return "INVALID"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// Error is a caller-visible failure. Code is a stable machine tag, Message
// is surfaced verbatim.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so that a wrapped copy still equals its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrUserNotFound    = newError(KindNotFound, "USER_NOT_FOUND", "User not found!")
	ErrWalletNotFound  = newError(KindNotFound, "WALLET_NOT_FOUND", "User wallet not found!")
	ErrOrderNotFound   = newError(KindNotFound, "ORDER_NOT_FOUND", "Order not found!")
	ErrProductNotFound = newError(KindNotFound, "PRODUCT_NOT_FOUND", "Product not found!")
	ErrPromoNotFound   = newError(KindNotFound, "PROMO_NOT_FOUND", "Promo code not found!")
	ErrCartItemMissing = newError(KindNotFound, "CART_ITEM_NOT_FOUND", "Product not found in the cart!")

	ErrMissingAddress     = newError(KindInvalid, "ADDRESS_REQUIRED", "Address is required to place an order!")
	ErrMissingPhone       = newError(KindInvalid, "PHONE_REQUIRED", "Phone number is required to place an order!")
	ErrEmptyCart          = newError(KindInvalid, "CART_EMPTY", "Cart is empty!")
	ErrProductInactive    = newError(KindInvalid, "PRODUCT_INACTIVE", "This product is no longer available.")
	ErrInsufficientStock  = newError(KindInvalid, "INSUFFICIENT_STOCK", "Not enough stock available for this product.")
	ErrInvalidQuantity    = newError(KindInvalid, "INVALID_QUANTITY", "Quantity must be greater than zero.")
	ErrInvalidAmount      = newError(KindInvalid, "INVALID_AMOUNT", "Amount must be greater than zero.")
	ErrInsufficientFunds  = newError(KindInvalid, "INSUFFICIENT_FUNDS", "Insufficient wallet balance!")
	ErrPromoInactive      = newError(KindInvalid, "PROMO_INACTIVE", "Promo code is not active!")
	ErrPromoExpired       = newError(KindInvalid, "PROMO_EXPIRED", "Promo code has expired!")
	ErrPromoMinimumNotMet = newError(KindInvalid, "PROMO_MINIMUM_NOT_MET", "Total amount does not meet the minimum order amount for this promo code!")
	ErrPromoInvalid       = newError(KindInvalid, "PROMO_INVALID", "Invalid promo code.")
	ErrPromoExists        = newError(KindInvalid, "PROMO_EXISTS", "Promo code already exists.")
	ErrAlreadyCancelled   = newError(KindInvalid, "ALREADY_CANCELLED", "This order has already been cancelled!")
	ErrNotCancellable     = newError(KindInvalid, "NOT_CANCELLABLE", "Only placed orders can be cancelled.")

	ErrUnauthenticated = newError(KindUnauthenticated, "UNAUTHENTICATED", "Authentication required.")
	ErrUnauthorized    = newError(KindUnauthorized, "UNAUTHORIZED", "You are not authorized to access this order!")
	ErrForbidden       = newError(KindUnauthorized, "FORBIDDEN", "Admin access required.")

	ErrConflict = newError(KindConflict, "CONFLICT", "Concurrent update detected, please retry.")
	ErrInternal = newError(KindInternal, "INTERNAL", "Internal server error.")
)

// Invalidf builds an Invalid error that still matches base with errors.Is.
func Invalidf(base *Error, format string, args ...any) error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a persistence failure.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal && appErr.Kind != KindConflict {
		return err
	}
	return &Error{Kind: KindInternal, Code: ErrInternal.Code, Message: ErrInternal.Message, Err: err}
}

// KindOf returns the taxonomy bucket of err. Unknown errors are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err, or INTERNAL.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}

// MessageOf returns the caller-visible message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}
