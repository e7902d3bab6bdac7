package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/crudbase/go-crud-backend/internal/repo"
	"github.com/crudbase/go-crud-backend/internal/schema"
)

// Hooks are optional per-entity validation callbacks invoked before the
// corresponding write. A nil hook is skipped. A hook returning an error
// aborts the operation; plain errors are promoted to ValidationError so
// handlers answer with 422.
type Hooks[T schema.Entity] struct {
	BeforeCreate      func(ctx context.Context, fields map[string]any) error
	BeforeUpdate      func(ctx context.Context, id uint, fields map[string]any, current *T) error
	BeforeDelete      func(ctx context.Context, id uint, current *T) error
	BeforeForceDelete func(ctx context.Context, id uint, current *T) error
}

// Result is the payload-plus-message pair every non-paginated operation
// returns. Data is nil for delete-shaped operations.
type Result struct {
	Data    any
	Message string
}

// PageResult is one listing page with its human-readable message.
type PageResult[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
	Pages   int
	Message string
}

// Service wires a repository to validation hooks for one entity type. All
// storage errors pass through classified; the only translation done here is
// repo.ErrNotFound into ErrItemNotFound.
type Service[T schema.Entity] struct {
	Repo  *repo.Repository[T]
	Hooks Hooks[T]

	modelName string
}

// NewService builds a Service around r with no hooks installed.
func NewService[T schema.Entity](r *repo.Repository[T]) *Service[T] {
	return &Service[T]{Repo: r, modelName: r.Definition().ModelName}
}

// ModelName returns the entity name used in messages and metadata.
func (s *Service[T]) ModelName() string { return s.modelName }

// asValidation promotes plain hook errors to ValidationError; typed errors
// pass through so hooks can return conflicts or storage failures directly.
func asValidation(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var re *repo.Error
	if errors.As(err, &ve) || errors.As(err, &re) {
		return err
	}
	return &ValidationError{Message: err.Error()}
}

// GetByID fetches one item.
func (s *Service[T]) GetByID(ctx context.Context, id uint, includeDeleted bool, filters map[string]any) (*Result, error) {
	item, err := s.Repo.Get(ctx, id, includeDeleted, filters)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &Result{Data: item, Message: fmt.Sprintf("%s retrieved successfully", s.modelName)}, nil
}

// GetMany fetches an offset/limit slice of items.
func (s *Service[T]) GetMany(ctx context.Context, skip, limit int, includeDeleted bool, filters map[string]any) (*Result, error) {
	items, err := s.Repo.GetMany(ctx, skip, limit, includeDeleted, filters)
	if err != nil {
		return nil, err
	}
	return &Result{Data: items, Message: fmt.Sprintf("Retrieved %d items successfully", len(items))}, nil
}

// List fetches one page of items with the pagination envelope.
func (s *Service[T]) List(ctx context.Context, page, perPage int, includeDeleted bool, filters map[string]any) (*PageResult[T], error) {
	pg, err := s.Repo.List(ctx, page, perPage, includeDeleted, filters)
	if err != nil {
		return nil, err
	}
	return &PageResult[T]{
		Items:   pg.Items,
		Total:   pg.Total,
		Page:    pg.Page,
		PerPage: pg.PerPage,
		Pages:   pg.Pages,
		Message: "Items retrieved successfully",
	}, nil
}

// Search pages through items matching the query on the repository's
// configured search columns.
func (s *Service[T]) Search(ctx context.Context, query string, page, perPage int, includeDeleted bool) (*PageResult[T], error) {
	pg, err := s.Repo.Search(ctx, query, page, perPage, includeDeleted)
	if err != nil {
		return nil, err
	}
	return &PageResult[T]{
		Items:   pg.Items,
		Total:   pg.Total,
		Page:    pg.Page,
		PerPage: pg.PerPage,
		Pages:   pg.Pages,
		Message: fmt.Sprintf("Found %d items matching %q", pg.Total, query),
	}, nil
}

// Create validates the field map through the BeforeCreate hook and persists
// a new item.
func (s *Service[T]) Create(ctx context.Context, fields map[string]any) (*Result, error) {
	if s.Hooks.BeforeCreate != nil {
		if err := s.Hooks.BeforeCreate(ctx, fields); err != nil {
			return nil, asValidation(err)
		}
	}
	item, err := s.Repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	return &Result{Data: item, Message: fmt.Sprintf("%s created successfully", s.modelName)}, nil
}

// CreateMany validates and persists a batch atomically.
func (s *Service[T]) CreateMany(ctx context.Context, batch []map[string]any) (*Result, error) {
	if s.Hooks.BeforeCreate != nil {
		for _, fields := range batch {
			if err := s.Hooks.BeforeCreate(ctx, fields); err != nil {
				return nil, asValidation(err)
			}
		}
	}
	items, err := s.Repo.CreateMany(ctx, batch)
	if err != nil {
		return nil, err
	}
	return &Result{Data: items, Message: fmt.Sprintf("Successfully created %d items", len(items))}, nil
}

// Update applies a partial update after confirming the item is visible and
// running the BeforeUpdate hook against its current state.
func (s *Service[T]) Update(ctx context.Context, id uint, fields map[string]any) (*Result, error) {
	current, err := s.Repo.Get(ctx, id, false, nil)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if s.Hooks.BeforeUpdate != nil {
		if err := s.Hooks.BeforeUpdate(ctx, id, fields, current); err != nil {
			return nil, asValidation(err)
		}
	}
	item, err := s.Repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &Result{Data: item, Message: fmt.Sprintf("%s updated successfully", s.modelName)}, nil
}

// SoftDelete hides an item. The pre-check uses the default visibility, so a
// second soft delete of the same id reports not found.
func (s *Service[T]) SoftDelete(ctx context.Context, id uint) (*Result, error) {
	current, err := s.Repo.Get(ctx, id, false, nil)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if s.Hooks.BeforeDelete != nil {
		if err := s.Hooks.BeforeDelete(ctx, id, current); err != nil {
			return nil, asValidation(err)
		}
	}
	ok, err := s.Repo.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}
	return &Result{Message: fmt.Sprintf("%s soft deleted successfully", s.modelName)}, nil
}

// Restore brings a soft-deleted item back. Restoring a visible item is a
// no-op that still succeeds.
func (s *Service[T]) Restore(ctx context.Context, id uint) (*Result, error) {
	ok, err := s.Repo.Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}
	return &Result{Message: fmt.Sprintf("%s restored successfully", s.modelName)}, nil
}

// ForceDelete removes an item permanently regardless of its soft-delete
// state.
func (s *Service[T]) ForceDelete(ctx context.Context, id uint) (*Result, error) {
	current, err := s.Repo.Get(ctx, id, true, nil)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if s.Hooks.BeforeForceDelete != nil {
		if err := s.Hooks.BeforeForceDelete(ctx, id, current); err != nil {
			return nil, asValidation(err)
		}
	}
	ok, err := s.Repo.ForceDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}
	return &Result{Message: fmt.Sprintf("%s permanently deleted", s.modelName)}, nil
}

// Exists reports item visibility without fetching the row.
func (s *Service[T]) Exists(ctx context.Context, id uint, includeDeleted bool) (*Result, error) {
	ok, err := s.Repo.Exists(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("%s does not exist", s.modelName)
	if ok {
		msg = fmt.Sprintf("%s exists", s.modelName)
	}
	return &Result{Data: map[string]any{"exists": ok}, Message: msg}, nil
}

// Count returns the number of items matching the filters.
func (s *Service[T]) Count(ctx context.Context, includeDeleted bool, filters map[string]any) (*Result, error) {
	total, err := s.Repo.Count(ctx, includeDeleted, filters)
	if err != nil {
		return nil, err
	}
	return &Result{Data: map[string]any{"count": total}, Message: fmt.Sprintf("Found %d items", total)}, nil
}
