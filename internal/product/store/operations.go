package store

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
)

// FetchProducts replaces the collection with the server's list.
func (s *Store) FetchProducts(ctx context.Context) Result {
	s.logger.DebugContext(ctx, "Fetching products")
	reply, err := s.remote.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching products", "error", err)
		return failure(MsgNetworkError)
	}
	if !reply.OK {
		s.logger.WarnContext(ctx, "Products API rejected fetch", "status", reply.StatusCode, "message", reply.Message)
		return failure(orDefault(reply.Message, MsgFetchFailed))
	}
	products, err := reply.Products()
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching products", "error", err)
		return failure(MsgNetworkError)
	}

	s.apply(OpFetch, func([]Product) []Product { return products })
	s.logger.DebugContext(ctx, "Fetched products", "count", len(products))
	return Result{Success: true}
}

// CreateProduct validates p locally, posts it and appends the product the server returns.
// Name, image and a non-zero price are required.
func (s *Store) CreateProduct(ctx context.Context, p Product) Result {
	s.logger.DebugContext(ctx, "Creating product", "name", p.Name)
	if err := s.validate.StructCtx(ctx, p); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make(map[string]string, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			s.logger.WarnContext(ctx, "Product validation failed", "errors", fields)
		} else {
			s.logger.ErrorContext(ctx, "Error validating product", "error", err)
		}
		return failure(MsgFillAllFields)
	}

	reply, err := s.remote.Create(ctx, p)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating product", "error", err)
		return failure(MsgNetworkError)
	}
	if !reply.OK {
		s.logger.WarnContext(ctx, "Products API rejected create", "status", reply.StatusCode, "message", reply.Message)
		return failure(orDefault(reply.Message, MsgCreateFailed))
	}
	created, err := reply.Product()
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating product", "error", err)
		return failure(MsgNetworkError)
	}

	s.apply(OpCreate, func(current []Product) []Product { return appendProduct(current, created) })
	s.logger.InfoContext(ctx, "Product created", "ID", created.ID)
	return Result{Success: true, Message: MsgCreated, Data: created}
}

// UpdateProduct sends payload (a Product or a Patch) for id and, when the server
// reports success, replaces the entry with that id in place.
func (s *Store) UpdateProduct(ctx context.Context, id string, payload any) Result {
	s.logger.DebugContext(ctx, "Updating product", "ID", id)
	reply, err := s.remote.Update(ctx, id, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating product", "ID", id, "error", err)
		return failure(MsgNetworkError)
	}
	if !reply.Succeeded() {
		s.logger.WarnContext(ctx, "Products API rejected update", "ID", id, "status", reply.StatusCode, "message", reply.Message)
		return failure(reply.Message)
	}
	updated, err := reply.Product()
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating product", "ID", id, "error", err)
		return failure(MsgNetworkError)
	}

	s.apply(OpUpdate, func(current []Product) []Product { return replaceByID(current, id, updated) })
	s.logger.InfoContext(ctx, "Product updated", "ID", id)
	return Result{Success: true, Message: reply.Message, Data: updated}
}

// DeleteProduct deletes id on the server and, when it reports success, drops the
// entry locally. Deleting an id that is not in the collection leaves it unchanged.
func (s *Store) DeleteProduct(ctx context.Context, id string) Result {
	s.logger.DebugContext(ctx, "Deleting product", "ID", id)
	reply, err := s.remote.Delete(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting product", "ID", id, "error", err)
		return failure(MsgNetworkError)
	}
	if !reply.Succeeded() {
		s.logger.WarnContext(ctx, "Products API rejected delete", "ID", id, "status", reply.StatusCode, "message", reply.Message)
		return failure(reply.Message)
	}

	s.apply(OpDelete, func(current []Product) []Product { return removeByID(current, id) })
	s.logger.InfoContext(ctx, "Product deleted", "ID", id)
	return Result{Success: true, Message: reply.Message}
}
