package store

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// Kind classifies an action failure.
type Kind int

const (
	// KindValidation is a client-side rejection; no request was sent.
	KindValidation Kind = iota + 1
	// KindAuthentication is a 401, including rejected login credentials.
	KindAuthentication
	// KindRequest covers network failures and non-401/404 error responses.
	KindRequest
	// KindNotFound is a 404.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindRequest:
		return "request"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ActionError is the failure of a store or service action.
type ActionError struct {
	Op      string
	Kind    Kind
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ActionError) Unwrap() error { return e.Err }

// IsKind reports whether err is an *ActionError of kind k.
func IsKind(err error, k Kind) bool {
	var ae *ActionError
	return errors.As(err, &ae) && ae.Kind == k
}

var validationErrors = []error{
	common.ErrorInvalidQuantity,
	common.ErrorInvalidEmail,
	common.ErrorEmptyPassword,
	common.ErrorMissingIdentity,
	common.ErrorNotAuthenticated,
	common.ErrorAdminOnly,
	common.ErrorEmptyCart,
	common.ErrorInvalidOrderStatus,
	common.ErrorInvalidRating,
	common.ErrorMissingName,
	common.ErrorNegativePrice,
	common.ErrorInvalidID,
	common.ErrorNotFound,
}

// Classify turns err into an *ActionError for op. It returns nil for nil and
// passes existing *ActionError values through.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae
	}
	return &ActionError{Op: op, Kind: kindOf(err), Message: messageOf(err), Err: err}
}

func kindOf(err error) Kind {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return KindValidation
		}
	}
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return KindAuthentication
	case errors.Is(err, client.ErrNotFound):
		return KindNotFound
	default:
		return KindRequest
	}
}

func messageOf(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.Is(err, client.ErrUnavailable):
		return client.ErrUnavailable.Error()
	default:
		return err.Error()
	}
}

func invalid(op string, err error) error {
	return &ActionError{Op: op, Kind: KindValidation, Message: err.Error(), Err: err}
}
