package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
)

// ProductsChangedEvent reports a write to the local product collection.
type ProductsChangedEvent struct {
	Op         string    `json:"op"`
	Count      int       `json:"count"`
	ProductIDs []string  `json:"product_ids"`
	OccurredAt time.Time `json:"occurred_at"`

	// subject overrides ProductsChangedSubject when set.
	subject string
}

// WithSubject returns a copy of the event published on subject instead of the default.
func (e ProductsChangedEvent) WithSubject(subject string) ProductsChangedEvent {
	e.subject = subject
	return e
}

func (e ProductsChangedEvent) Subject() string {
	if e.subject != "" {
		return e.subject
	}
	return messaging.ProductsChangedSubject
}

func (e ProductsChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
