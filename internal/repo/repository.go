// Package repo implements the persistence layer as a single generic
// repository over GORM. One Repository[T] instance serves every entity type:
// it derives the entity's column set once at construction through the schema
// package and uses it to validate filters and partial-update payloads before
// they reach the database.
//
// Conventions:
//   - Lookups that match nothing return gorm.ErrRecordNotFound (aliased as
//     ErrNotFound) or a false boolean, never a synthesized error.
//   - Every write runs inside a transaction and rolls back on failure.
//   - Driver errors are classified through the Error type in errors.go.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crudbase/go-crud-backend/internal/schema"
)

const (
	// DefaultPage is substituted for non-positive page numbers.
	DefaultPage = 1
	// DefaultPerPage is substituted for out-of-range page sizes.
	DefaultPerPage = 10
	// MaxPerPage caps the page size a caller can request.
	MaxPerPage = 100
)

// Page is one page of a listing along with its pagination envelope.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
	Pages   int
}

// Repository provides CRUD, soft-delete, and search operations for one
// entity type. The zero value is not usable; construct with New.
type Repository[T schema.Entity] struct {
	db            *gorm.DB
	def           schema.Definition
	softDeletable bool
	searchFields  []string
}

// Option customizes a Repository at construction time.
type Option[T schema.Entity] func(*Repository[T])

// WithSearchFields declares the text columns scanned by Search. Columns the
// entity does not declare are ignored.
func WithSearchFields[T schema.Entity](columns ...string) Option[T] {
	return func(r *Repository[T]) {
		for _, col := range columns {
			if r.def.HasColumn(col) {
				r.searchFields = append(r.searchFields, col)
			}
		}
	}
}

// New builds a Repository for T bound to db. The entity's definition is
// introspected once here; per-request metadata endpoints introspect freshly
// on their own.
func New[T schema.Entity](db *gorm.DB, opts ...Option[T]) *Repository[T] {
	var zero T
	_, soft := any(&zero).(schema.SoftDeletable)
	r := &Repository[T]{
		db:            db,
		def:           schema.DefinitionOf(zero),
		softDeletable: soft,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Definition exposes the construction-time model definition.
func (r *Repository[T]) Definition() schema.Definition { return r.def }

func (r *Repository[T]) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// scoped applies the soft-delete filter (unless includeDeleted) and every
// filter whose key names a declared column. Unknown keys are dropped.
func (r *Repository[T]) scoped(tx *gorm.DB, includeDeleted bool, filters map[string]any) *gorm.DB {
	if r.softDeletable && !includeDeleted {
		tx = tx.Where("is_deleted = ?", false)
	}
	for key, value := range filters {
		if r.def.HasColumn(key) {
			tx = tx.Where(fmt.Sprintf("%s = ?", key), value)
		}
	}
	return tx
}

// clampPage normalizes pagination inputs: page defaults to 1, perPage to 10
// when outside [1, MaxPerPage].
func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return page, perPage
}

// Get fetches one record by primary key. Returns ErrNotFound when the id
// does not exist or is hidden by the soft-delete filter.
func (r *Repository[T]) Get(ctx context.Context, id uint, includeDeleted bool, filters map[string]any) (*T, error) {
	var obj T
	tx := r.scoped(r.conn(ctx), includeDeleted, filters)
	if err := tx.Where("id = ?", id).First(&obj).Error; err != nil {
		return nil, wrap("get", err)
	}
	return &obj, nil
}

// GetOne fetches the first record matching the filters.
func (r *Repository[T]) GetOne(ctx context.Context, includeDeleted bool, filters map[string]any) (*T, error) {
	var obj T
	tx := r.scoped(r.conn(ctx), includeDeleted, filters)
	if err := tx.First(&obj).Error; err != nil {
		return nil, wrap("get_one", err)
	}
	return &obj, nil
}

// GetMany fetches up to limit records starting at skip, ordered by primary
// key for a stable traversal.
func (r *Repository[T]) GetMany(ctx context.Context, skip, limit int, includeDeleted bool, filters map[string]any) ([]T, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > MaxPerPage {
		limit = MaxPerPage
	}
	var items []T
	tx := r.scoped(r.conn(ctx), includeDeleted, filters)
	if err := tx.Order("id").Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		return nil, wrap("get_many", err)
	}
	return items, nil
}

// List returns one page of records with the full pagination envelope. The
// page count is the ceiling of total/perPage.
func (r *Repository[T]) List(ctx context.Context, page, perPage int, includeDeleted bool, filters map[string]any) (*Page[T], error) {
	page, perPage = clampPage(page, perPage)

	var total int64
	if err := r.scoped(r.conn(ctx).Model(new(T)), includeDeleted, filters).Count(&total).Error; err != nil {
		return nil, wrap("list", err)
	}

	var items []T
	tx := r.scoped(r.conn(ctx), includeDeleted, filters)
	if err := tx.Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
		return nil, wrap("list", err)
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Page[T]{Items: items, Total: total, Page: page, PerPage: perPage, Pages: pages}, nil
}

// Search pages through records whose configured search columns contain the
// query substring (case-insensitive under SQLite LIKE). Requires search
// fields to have been declared via WithSearchFields.
func (r *Repository[T]) Search(ctx context.Context, query string, page, perPage int, includeDeleted bool) (*Page[T], error) {
	if len(r.searchFields) == 0 {
		return nil, configErr("search", "no search fields configured for entity")
	}
	page, perPage = clampPage(page, perPage)

	clauses := make([]string, 0, len(r.searchFields))
	args := make([]any, 0, len(r.searchFields))
	for _, col := range r.searchFields {
		clauses = append(clauses, fmt.Sprintf("%s LIKE ?", col))
		args = append(args, "%"+query+"%")
	}
	match := strings.Join(clauses, " OR ")

	var total int64
	tx := r.scoped(r.conn(ctx).Model(new(T)), includeDeleted, nil).Where(match, args...)
	if err := tx.Count(&total).Error; err != nil {
		return nil, wrap("search", err)
	}

	var items []T
	tx = r.scoped(r.conn(ctx), includeDeleted, nil).Where(match, args...)
	if err := tx.Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
		return nil, wrap("search", err)
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Page[T]{Items: items, Total: total, Page: page, PerPage: perPage, Pages: pages}, nil
}

// Count returns the number of records matching the filters.
func (r *Repository[T]) Count(ctx context.Context, includeDeleted bool, filters map[string]any) (int64, error) {
	var total int64
	if err := r.scoped(r.conn(ctx).Model(new(T)), includeDeleted, filters).Count(&total).Error; err != nil {
		return 0, wrap("count", err)
	}
	return total, nil
}

// Exists reports whether a record with the given id is visible.
func (r *Repository[T]) Exists(ctx context.Context, id uint, includeDeleted bool) (bool, error) {
	var total int64
	tx := r.scoped(r.conn(ctx).Model(new(T)), includeDeleted, nil)
	if err := tx.Where("id = ?", id).Count(&total).Error; err != nil {
		return false, wrap("exists", err)
	}
	return total > 0, nil
}

// fromMap decodes a field map into a new entity. The primary key and any
// key that does not name a declared column are dropped first, so callers
// cannot smuggle in an id or junk attributes.
func (r *Repository[T]) fromMap(op string, fields map[string]any) (*T, error) {
	clean := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == "id" || !r.def.HasColumn(key) {
			continue
		}
		clean[key] = value
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, validationErr(op, err.Error())
	}
	var obj T
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, validationErr(op, err.Error())
	}
	return &obj, nil
}

// Insert persists an already-built entity.
func (r *Repository[T]) Insert(ctx context.Context, obj *T) error {
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(obj).Error
	})
	return wrap("create", err)
}

// Create builds an entity from a field map and persists it. The returned
// value carries the generated id and creation timestamp.
func (r *Repository[T]) Create(ctx context.Context, fields map[string]any) (*T, error) {
	obj, err := r.fromMap("create", fields)
	if err != nil {
		return nil, err
	}
	if err := r.Insert(ctx, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// CreateMany persists a batch of field maps in one transaction. Either every
// record is inserted or none are.
func (r *Repository[T]) CreateMany(ctx context.Context, batch []map[string]any) ([]T, error) {
	objs := make([]T, 0, len(batch))
	for _, fields := range batch {
		obj, err := r.fromMap("create_many", fields)
		if err != nil {
			return nil, err
		}
		objs = append(objs, *obj)
	}
	if len(objs) == 0 {
		return objs, nil
	}
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&objs).Error
	})
	if err != nil {
		return nil, wrap("create_many", err)
	}
	return objs, nil
}

// Update applies a partial update to the record with the given id. Only keys
// naming declared columns are applied; the primary key is never writable. An
// update that resolves to zero columns is rejected before touching storage.
// The soft-delete filter is not applied here so callers can update records
// they explicitly resolved, visible or not.
func (r *Repository[T]) Update(ctx context.Context, id uint, fields map[string]any) (*T, error) {
	values := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == "id" || !r.def.HasColumn(key) {
			continue
		}
		values[key] = value
	}
	if len(values) == 0 {
		return nil, validationErr("update", "no data provided for update")
	}
	if r.def.HasColumn("updated_at") {
		values["updated_at"] = time.Now().UTC()
	}

	var obj T
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&obj).Error; err != nil {
			return err
		}
		if err := tx.Model(&obj).Updates(values).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&obj).Error
	})
	if err != nil {
		return nil, wrap("update", err)
	}
	return &obj, nil
}

// SoftDelete marks the record as deleted. Returns false when the id does not
// exist. Fails with a config error when T declares no soft-delete flag.
// Already-deleted records are re-marked without complaint.
func (r *Repository[T]) SoftDelete(ctx context.Context, id uint) (bool, error) {
	return r.setDeleted(ctx, "soft_delete", id, true)
}

// Restore clears the soft-delete flag. Restoring a record that was never
// deleted succeeds and leaves it visible.
func (r *Repository[T]) Restore(ctx context.Context, id uint) (bool, error) {
	return r.setDeleted(ctx, "restore", id, false)
}

func (r *Repository[T]) setDeleted(ctx context.Context, op string, id uint, deleted bool) (bool, error) {
	if !r.softDeletable {
		return false, configErr(op, "entity does not declare a soft-delete flag")
	}
	found := false
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var obj T
		if err := tx.Where("id = ?", id).First(&obj).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true
		return tx.Model(&obj).Update("is_deleted", deleted).Error
	})
	if err != nil {
		return false, wrap(op, err)
	}
	return found, nil
}

// ForceDelete removes the row permanently, soft-deleted or not. Returns
// false when the id does not exist.
func (r *Repository[T]) ForceDelete(ctx context.Context, id uint) (bool, error) {
	var affected int64
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(new(T))
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, wrap("force_delete", err)
	}
	return affected > 0, nil
}

// ForceDeleteMany removes every row whose id is in ids. Missing ids are
// skipped silently.
func (r *Repository[T]) ForceDeleteMany(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var affected int64
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ?", ids).Delete(new(T))
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, wrap("force_delete_many", err)
	}
	return affected, nil
}
