// Package schema – descriptor types.
//
// These structs are the wire shapes served by the /model/* introspection
// endpoints and consumed by dynamic admin frontends. They are derived, never
// authored: a Definition is built fresh from live struct metadata on every
// request and discarded after use.
package schema

// FieldType is the semantic type of a declared attribute after unwrapping
// optional and collection modifiers. Unrecognized declared types fall back
// to TypeString.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeBoolean  FieldType = "boolean"
	TypeDatetime FieldType = "datetime"
	TypeText     FieldType = "text"
	TypeJSON     FieldType = "json"
	TypeEmail    FieldType = "email"
	TypeURL      FieldType = "url"
	TypeUUID     FieldType = "uuid"
)

// RelationshipKind classifies an inferred relationship.
type RelationshipKind string

const (
	RelForeignKey RelationshipKind = "foreign_key"
	RelOneToMany  RelationshipKind = "one_to_many"
	RelManyToOne  RelationshipKind = "many_to_one"
	RelManyToMany RelationshipKind = "many_to_many"
)

// Relationship describes an inferred association between two entities.
// It is never declared directly; see ParseField for the inference rules.
type Relationship struct {
	Kind         RelationshipKind `json:"type"`
	RelatedModel string           `json:"related_model"`
	RelatedField string           `json:"related_field,omitempty"`
	Description  string           `json:"description"`
}

// Validation carries the constraints extracted opportunistically from field
// metadata. Absent metadata yields the zero value, never an error.
type Validation struct {
	Required  bool     `json:"required"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Field is the normalized descriptor for one declared attribute.
// Invariant: IsRelationship implies Relationship != nil.
type Field struct {
	Name           string        `json:"name"`
	Type           FieldType     `json:"type"`
	DeclaredType   string        `json:"declared_type"`
	IsRequired     bool          `json:"is_required"`
	IsOptional     bool          `json:"is_optional"`
	IsRelationship bool          `json:"is_relationship"`
	IsList         bool          `json:"is_list"`
	DefaultValue   *string       `json:"default_value,omitempty"`
	Validation     *Validation   `json:"validation,omitempty"`
	Relationship   *Relationship `json:"relationship,omitempty"`
	Description    string        `json:"description,omitempty"`
}

// Definition aggregates the field descriptors of one entity together with the
// flat list of every relationship inferred from them.
type Definition struct {
	ModelName     string         `json:"model_name"`
	TableName     string         `json:"table_name"`
	Fields        []Field        `json:"fields"`
	Relationships []Relationship `json:"relationships"`
}

// FieldMeta is the lightweight metadata handed to ParseField alongside the
// declared type: default value, length/numeric bounds, and an optional
// format or storage-type hint. It is extracted from struct tags by
// DefinitionOf but can be supplied directly in tests.
type FieldMeta struct {
	Default   *string
	MinLength *int
	MaxLength *int
	MinValue  *float64
	MaxValue  *float64
	Pattern   string

	// Format refines the semantic type for plain string attributes
	// (one of "email", "url", "uuid"); empty means no refinement.
	Format string

	// SQLType is the declared storage type (e.g. "text"); it promotes a
	// string attribute to TypeText.
	SQLType string
}
