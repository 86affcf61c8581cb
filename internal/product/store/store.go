// Package store holds the local product collection and keeps it in sync with the products API.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront/internal/product/api"
	"github.com/abgdnv/storefront/internal/product/model"
	"github.com/go-playground/validator/v10"
)

type (
	Product = model.Product
	Patch   = model.Patch
)

// Remote is the products API as seen by the store.
type Remote interface {
	List(ctx context.Context) (*api.Reply, error)
	Create(ctx context.Context, p model.Product) (*api.Reply, error)
	Update(ctx context.Context, id string, payload any) (*api.Reply, error)
	Delete(ctx context.Context, id string) (*api.Reply, error)
}

// Op names the operation that wrote the collection.
type Op string

const (
	OpSet    Op = "set"
	OpFetch  Op = "fetch"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change is delivered to listeners after every write.
type Change struct {
	Op       Op
	Products []Product
}

// Listener observes writes. It runs on the writing goroutine after the write is
// visible and must not block. Concurrent writes may deliver their changes out of
// order, so Change.Products can be older than Products().
type Listener func(Change)

type subscription struct {
	fn Listener
}

// Store is the product collection. Operations are safe for concurrent use; writes
// are applied in the order their responses complete.
type Store struct {
	remote   Remote
	validate *validator.Validate
	logger   *slog.Logger

	mu       sync.RWMutex
	products []Product

	lmu       sync.Mutex
	listeners []*subscription
}

// New creates an empty Store backed by remote.
func New(remote Remote, logger *slog.Logger) *Store {
	return &Store{
		remote:   remote,
		validate: newValidator(),
		logger:   logger.With("component", "store"),
		products: []Product{},
	}
}

// Products returns the current collection. The slice must not be modified; the store
// never writes to a slice it has handed out.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// SetProducts replaces the collection with products as given.
func (s *Store) SetProducts(products []Product) {
	s.apply(OpSet, func([]Product) []Product { return products })
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once has no further effect.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	sub := &subscription{fn: l}
	s.lmu.Lock()
	s.listeners = append(s.listeners, sub)
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			defer s.lmu.Unlock()
			for i, v := range s.listeners {
				if v == sub {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

// apply computes the next collection from the current one under the write lock,
// then notifies listeners with the result.
func (s *Store) apply(op Op, next func(current []Product) []Product) {
	s.mu.Lock()
	s.products = next(s.products)
	snapshot := s.products
	s.mu.Unlock()

	s.lmu.Lock()
	listeners := make([]*subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.lmu.Unlock()

	change := Change{Op: op, Products: snapshot}
	for _, l := range listeners {
		l.fn(change)
	}
}

func replaceByID(products []Product, id string, updated Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		if p.ID == id {
			out[i] = updated
			continue
		}
		out[i] = p
	}
	return out
}

func removeByID(products []Product, id string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func appendProduct(products []Product, p Product) []Product {
	out := make([]Product, len(products), len(products)+1)
	copy(out, products)
	return append(out, p)
}
