// Package errors provides sentinel errors for product catalog operations.
package errors

import "errors"

// ErrTransport marks failures where the request/response cycle did not complete,
// including responses whose body could not be parsed.
var ErrTransport = errors.New("transport error")

// ErrMissingData is returned when a success envelope carries no product data.
var ErrMissingData = errors.New("response has no data")

var ErrProductNotFound = errors.New("product not found")
