package service

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/repository"
)

var (
	ErrInternal        = errors.New("internal server error")
	ErrUnauthenticated = errors.New("please log in to continue")
	ErrForbidden       = errors.New("you are not allowed to modify this post")
	ErrNotFound        = errors.New("the requested record no longer exists")
	ErrConnectivity    = errors.New("could not reach the record store, make sure it is running")
	ErrValidation      = errors.New("the record store rejected the input")
)

// ValidationError is a rejected write. Field is empty when the store did not
// name the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Checked in order; the first field the store names wins. key is the name
// the store uses, field the request body name reported back to clients.
var fieldMessages = []struct {
	key     string
	field   string
	message string
}{
	{"email", "email", "This email address is already in use."},
	{"username", "username", "This username is already taken."},
	{"password", "password", "The password is invalid."},
	{"passwordConfirm", fieldPasswordConfirm, msgPasswordMismatch},
	{"title", "title", "The title must be at least 2 characters long."},
	{"post", "post", "This post no longer exists."},
}

const (
	fieldPasswordConfirm = "password_confirm"
	msgPasswordMismatch  = "The passwords do not match."
)

// classifyStoreErr maps a record store failure onto the service error
// taxonomy. generic is the validation message used when no known field is
// named; empty means ErrValidation's own message.
func classifyStoreErr(err error, generic string) error {
	var storeErr *repository.StoreError
	if !errors.As(err, &storeErr) {
		return ErrInternal
	}

	switch storeErr.Status {
	case repository.StatusUnreachable:
		return ErrConnectivity
	case http.StatusBadRequest:
		for _, fm := range fieldMessages {
			if storeErr.HasField(fm.key) {
				return &ValidationError{Field: fm.field, Message: fm.message}
			}
		}
		if generic == "" {
			generic = ErrValidation.Error()
		}
		return &ValidationError{Message: generic}
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrInternal
	}
}
