// Package schema – field introspection.
//
// This file implements ParseField, the pure function at the heart of the
// introspection engine. Given an attribute name, its declared Go type
// (as a string, e.g. "int64", "*string", "[]Tag", "time.Time") and optional
// metadata, it produces a normalized Field descriptor.
//
// The algorithm runs in fixed precedence order:
//
//  1. Unwrap modifiers: a leading "*" marks the field optional, a leading
//     "[]" marks it a collection; both recurse into the inner type.
//  2. Relationship detection, first match wins:
//     a. name ends in "_id" and the base type is an integer -> foreign_key
//     (related model = name without the suffix, capitalized);
//     b. collections of an uppercase model-like type -> one_to_many;
//     c. a bare uppercase model-like type -> many_to_one.
//  3. Base semantic type via a name lookup table; type names containing
//     "uuid", "email" or "url" map to the matching semantic type, and
//     anything unrecognized falls back to "string".
//  4. A field is required iff it is not optional and declares no default.
//  5. Validation constraints are copied from metadata when present.
//
// ParseField never fails: every legal declaration yields a descriptor.
//
// Usage:
//
//	f := schema.ParseField("author_id", "uint", schema.FieldMeta{})
//	// f.Relationship.Kind == schema.RelForeignKey
//	// f.Relationship.RelatedModel == "Author"
package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// scalarTypes maps unqualified Go type names to semantic field types.
// Entries here are never treated as related models even though some
// (Time, UUID, RawMessage) start with an uppercase letter.
var scalarTypes = map[string]FieldType{
	"string":     TypeString,
	"int":        TypeInteger,
	"int8":       TypeInteger,
	"int16":      TypeInteger,
	"int32":      TypeInteger,
	"int64":      TypeInteger,
	"uint":       TypeInteger,
	"uint8":      TypeInteger,
	"uint16":     TypeInteger,
	"uint32":     TypeInteger,
	"uint64":     TypeInteger,
	"float32":    TypeFloat,
	"float64":    TypeFloat,
	"bool":       TypeBoolean,
	"Time":       TypeDatetime,
	"Duration":   TypeInteger,
	"UUID":       TypeUUID,
	"RawMessage": TypeJSON,
	"byte":       TypeJSON, // []byte unwraps to this
}

// fieldDescriptions provides canned descriptions for well-known attribute
// names; anything else gets a humanized form of its own name.
var fieldDescriptions = map[string]string{
	"id":          "Unique identifier",
	"created_at":  "Creation timestamp",
	"updated_at":  "Last update timestamp",
	"is_deleted":  "Soft delete flag",
	"name":        "Item name",
	"title":       "Item title",
	"description": "Item description",
	"email":       "Email address",
	"password":    "User password",
}

// ParseField builds the normalized descriptor for a single declared
// attribute. It is a pure function of its inputs; see the file comment for
// the precedence rules.
func ParseField(name, declared string, meta FieldMeta) Field {
	base, optional, list := unwrap(declared)
	baseName := unqualify(base)

	rel := detectRelationship(name, baseName, list)

	f := Field{
		Name:           name,
		Type:           baseType(baseName, meta),
		DeclaredType:   strings.TrimSpace(declared),
		IsOptional:     optional,
		IsList:         list,
		IsRelationship: rel != nil,
		Relationship:   rel,
		DefaultValue:   meta.Default,
		Description:    describe(name),
	}
	f.IsRequired = !optional && meta.Default == nil

	f.Validation = &Validation{
		Required:  f.IsRequired,
		MinLength: meta.MinLength,
		MaxLength: meta.MaxLength,
		MinValue:  meta.MinValue,
		MaxValue:  meta.MaxValue,
		Pattern:   meta.Pattern,
	}
	return f
}

// unwrap strips optional ("*") and collection ("[]") modifiers from a
// declared type string and reports which were present. "[]byte" is a blob,
// not a collection.
func unwrap(declared string) (base string, optional, list bool) {
	base = strings.TrimSpace(declared)
	for {
		switch {
		case strings.HasPrefix(base, "*"):
			optional = true
			base = base[1:]
		case strings.HasPrefix(base, "[]") && base != "[]byte":
			list = true
			base = base[2:]
		default:
			return base, optional, list
		}
	}
}

// unqualify removes the package qualifier from a type name
// ("time.Time" -> "Time"). Map types are left untouched.
func unqualify(base string) string {
	if strings.HasPrefix(base, "map[") {
		return base
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}

// detectRelationship applies the inference heuristics in precedence order.
// A name that both ends in "_id" with an integer type and would otherwise
// look like a model reference is a foreign key: rule (a) wins.
func detectRelationship(name, baseName string, list bool) *Relationship {
	if strings.HasSuffix(name, "_id") && isIntegerType(baseName) {
		related := capitalize(strings.TrimSuffix(name, "_id"))
		return &Relationship{
			Kind:         RelForeignKey,
			RelatedModel: related,
			RelatedField: "id",
			Description:  "Foreign key to " + related,
		}
	}
	if !isModelName(baseName) {
		return nil
	}
	if list {
		return &Relationship{
			Kind:         RelOneToMany,
			RelatedModel: baseName,
			Description:  "One-to-many relationship with " + baseName,
		}
	}
	return &Relationship{
		Kind:         RelManyToOne,
		RelatedModel: baseName,
		Description:  "Relationship to " + baseName,
	}
}

// baseType maps the unwrapped type name to a semantic field type.
// Metadata hints win over the name table: a "text" storage type promotes
// string columns to text, and a format hint refines string columns to
// email/url/uuid (the way validate:"email" tags declare intent).
func baseType(baseName string, meta FieldMeta) FieldType {
	t, known := scalarTypes[baseName]
	if !known {
		switch lower := strings.ToLower(baseName); {
		case strings.HasPrefix(baseName, "map["):
			t = TypeJSON
		case strings.Contains(lower, "uuid"):
			t = TypeUUID
		case strings.Contains(lower, "email"):
			t = TypeEmail
		case strings.Contains(lower, "url"):
			t = TypeURL
		case strings.Contains(lower, "datetime"), strings.Contains(lower, "time"):
			t = TypeDatetime
		default:
			t = TypeString
		}
	}
	if t == TypeString {
		switch meta.Format {
		case "email":
			return TypeEmail
		case "url":
			return TypeURL
		case "uuid":
			return TypeUUID
		}
		if strings.EqualFold(meta.SQLType, "text") {
			return TypeText
		}
	}
	return t
}

// isIntegerType reports whether the unqualified type name is one of the Go
// integer kinds. Used by the foreign-key rule.
func isIntegerType(baseName string) bool {
	return scalarTypes[baseName] == TypeInteger
}

// isModelName reports whether a type name looks like an entity reference:
// exported (uppercase first letter), not a known scalar, and not one of the
// semantic string types recognized by substring (UUID, EmailStr, HttpURL and
// friends map to a field type, never to a related model).
func isModelName(baseName string) bool {
	if baseName == "" {
		return false
	}
	c := baseName[0]
	if c < 'A' || c > 'Z' {
		return false
	}
	if _, scalar := scalarTypes[baseName]; scalar {
		return false
	}
	lower := strings.ToLower(baseName)
	for _, semantic := range []string{"uuid", "email", "url", "datetime", "time"} {
		if strings.Contains(lower, semantic) {
			return false
		}
	}
	return true
}

// describe returns the canned description for well-known names, otherwise a
// humanized form of the attribute name ("author_id" -> "Author Id").
func describe(name string) string {
	if d, ok := fieldDescriptions[name]; ok {
		return d
	}
	return Humanize(name)
}

// Humanize converts a snake_case attribute name into a Title-Cased label.
// cases.Caser carries internal transform state, so a fresh one is built per
// call rather than shared across goroutines.
func Humanize(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// capitalize uppercases only the first letter, mirroring how foreign-key
// names derive their related model ("author" -> "Author").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
