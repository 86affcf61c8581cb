package apitest

import (
	"maps"
	"sync"
	"time"

	producterrors "github.com/abgdnv/storefront/internal/product/errors"
	"github.com/google/uuid"
)

// Document is a stored product as the API serves it.
type Document = map[string]any

// documents keeps products in insertion order, keyed by "_id".
type documents struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Document
	now   func() time.Time
}

func newDocuments() *documents {
	return &documents{
		byID: make(map[string]Document),
		now:  time.Now,
	}
}

// FindAll returns copies of all documents in insertion order.
func (s *documents) FindAll() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Document, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, maps.Clone(s.byID[id]))
	}
	return list
}

// Create stores fields under a fresh id and returns the stored document.
func (s *documents) Create(fields Document) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := maps.Clone(fields)
	if doc == nil {
		doc = Document{}
	}
	id, _ := doc["_id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.byID[id]; !exists {
		s.order = append(s.order, id)
	}
	ts := s.now().UTC().Format(time.RFC3339Nano)
	doc["_id"] = id
	doc["createdAt"] = ts
	doc["updatedAt"] = ts
	s.byID[id] = doc
	return maps.Clone(doc)
}

// Update merges fields into the document. The id cannot be changed.
func (s *documents) Update(id string, fields Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return nil, producterrors.ErrProductNotFound
	}
	for k, v := range fields {
		if k == "_id" || k == "createdAt" {
			continue
		}
		doc[k] = v
	}
	doc["updatedAt"] = s.now().UTC().Format(time.RFC3339Nano)
	return maps.Clone(doc), nil
}

// DeleteByID removes the document with the given id.
func (s *documents) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return producterrors.ErrProductNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
