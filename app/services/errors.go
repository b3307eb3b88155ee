package services

import (
	"errors"

	"github.com/bloomkart/bloomkart/pkg/database"
)

// Sentinel errors returned by the service layer. Messages are client-facing;
// controllers map each sentinel to its HTTP status and pass the message
// through unchanged.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrInvalidRole        = errors.New("role must be user or admin")
	ErrNameTaken          = errors.New("category name already exists")
	ErrUnknownProduct     = errors.New("unknown product in order")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrImageCount         = errors.New("products need between 1 and 5 images")
	ErrForbidden          = errors.New("access denied")
)

// asNotFound converts a repository miss into ErrNotFound and passes every
// other error through.
func asNotFound(err error) error {
	if database.IsNoDocuments(err) {
		return ErrNotFound
	}
	return err
}
