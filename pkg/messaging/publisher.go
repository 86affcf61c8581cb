// Package messaging defines the event publishing abstraction used by the change bridge.
package messaging

import (
	"context"
)

// ProductsChangedSubject is the default subject for catalog change events.
const ProductsChangedSubject = "catalog.products.changed"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
