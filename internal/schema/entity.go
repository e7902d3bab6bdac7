// Package schema implements the field-introspection engine that turns a
// declared entity struct into a normalized model definition: per-field
// semantic types, optionality, collection-ness, inferred relationships,
// validation constraints, and the derived frontend artifacts (form layout,
// validation-rule map, create/update schema skeletons).
//
// The package is the single source of truth about an entity's declared
// attributes. The repository layer uses it as its column probe, and the HTTP
// layer serves its output verbatim on the /model/* introspection endpoints.
package schema

// Entity is the minimal contract a persisted type must satisfy to be managed
// by the generic repository and service layers. The identifier is an
// auto-assigned integer primary key.
type Entity interface {
	GetID() uint
}

// SoftDeletable is implemented by entities that carry an is_deleted flag.
// Repositories require it for SoftDelete/Restore and apply the flag as a
// uniform filter on reads; entities without it are hard-delete only.
type SoftDeletable interface {
	IsSoftDeleted() bool
	SetSoftDeleted(deleted bool)
}

// Tabler mirrors GORM's optional table-name override. Entities that do not
// implement it get lowercase(name)+"s".
type Tabler interface {
	TableName() string
}
