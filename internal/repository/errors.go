package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusUnreachable is the StoreError status of a request that never got a response.
const StatusUnreachable = 0

// StoreError is a failed record store call, shaped after an HTTP response.
type StoreError struct {
	Status  int
	Message string
	// Fields maps an offending field name to the store's error code for it.
	Fields map[string]string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error (status %d): %s: %s", e.Status, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("store error (status %d): %s", e.Status, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) HasField(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func NewNotFound(message string) *StoreError {
	return &StoreError{Status: http.StatusNotFound, Message: message}
}

func NewUnreachable(err error) *StoreError {
	return &StoreError{Status: StatusUnreachable, Message: "store unreachable", Err: err}
}

func StatusOf(err error) (int, bool) {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Status, true
	}
	return 0, false
}

func IsNotFound(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusNotFound
}
