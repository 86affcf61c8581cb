// Package model defines the product record exchanged with the products API.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// KeyMongoID is the key the products API uses for identifiers.
	KeyMongoID = "_id"
	// KeyID is accepted as an alternative identifier key.
	KeyID = "id"
)

// Product is a catalog entry. Only the identifier is interpreted by the store;
// fields other than id, name, image and price are kept in Extra and sent back unchanged.
type Product struct {
	ID    string          `validate:"-"`
	Name  string          `validate:"required"`
	Image string          `validate:"required"`
	Price decimal.Decimal `validate:"required"`
	Extra map[string]json.RawMessage

	// idKey remembers which key carried the identifier so it is written back the same way.
	idKey string
}

// Patch is a partial update payload: field name to new value.
type Patch map[string]any

// UnmarshalJSON reads a product object, taking the identifier from "_id" or "id".
func (p *Product) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var out Product
	for _, key := range []string{KeyMongoID, KeyID} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &out.ID); err != nil {
			return fmt.Errorf("product %s: %w", key, err)
		}
		out.idKey = key
		delete(fields, key)
		break
	}
	// Typed fields are best-effort: a value of another type stays in Extra untouched.
	if raw, ok := fields["name"]; ok && json.Unmarshal(raw, &out.Name) == nil {
		delete(fields, "name")
	}
	if raw, ok := fields["image"]; ok && json.Unmarshal(raw, &out.Image) == nil {
		delete(fields, "image")
	}
	if raw, ok := fields["price"]; ok && out.Price.UnmarshalJSON(raw) == nil {
		delete(fields, "price")
	}
	if len(fields) > 0 {
		out.Extra = fields
	}
	*p = out
	return nil
}

// MarshalJSON writes the product with price as a JSON number. The identifier is omitted when empty.
// A zero typed field yields to a raw value of the same key in Extra.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.ID != "" {
		out[p.IDKey()] = p.ID
	}
	setUnlessRaw(out, p.Extra, "name", p.Name, p.Name == "")
	setUnlessRaw(out, p.Extra, "image", p.Image, p.Image == "")
	setUnlessRaw(out, p.Extra, "price", json.Number(p.Price.String()), p.Price.IsZero())
	return json.Marshal(out)
}

func setUnlessRaw(out map[string]any, extra map[string]json.RawMessage, key string, value any, zero bool) {
	if _, raw := extra[key]; raw && zero {
		return
	}
	out[key] = value
}

// IDKey returns the key the identifier was read from, "_id" when unknown.
func (p Product) IDKey() string {
	if p.idKey == "" {
		return KeyMongoID
	}
	return p.idKey
}

// IDs returns the identifiers of products in order.
func IDs(products []Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
