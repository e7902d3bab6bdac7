// Package schema – model definition builder.
//
// DefinitionOf walks the declared attributes of an entity struct and applies
// ParseField to each, accumulating every inferred relationship into a flat
// list. The walk happens on every call: definitions are derived purely from
// static type metadata, built on demand, and discarded after use.
package schema

import (
	"reflect"
	"strconv"
	"strings"

	gormschema "gorm.io/gorm/schema"
)

// naming matches the column naming GORM applies to the same structs, so the
// introspected attribute names line up with the storage columns.
var naming = gormschema.NamingStrategy{}

// DefinitionOf builds the full model definition for an entity value or
// pointer. Unexported fields are skipped; embedded structs are flattened the
// way GORM flattens them.
func DefinitionOf(entity any) Definition {
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	def := Definition{
		ModelName:     t.Name(),
		TableName:     tableNameOf(entity, t.Name()),
		Relationships: []Relationship{},
	}
	collectFields(t, &def)
	return def
}

// tableNameOf honors an explicit TableName method and otherwise falls back
// to the lowercase-plural convention.
func tableNameOf(entity any, modelName string) string {
	if tb, ok := entity.(Tabler); ok {
		return tb.TableName()
	}
	return strings.ToLower(modelName) + "s"
}

func collectFields(t reflect.Type, def *Definition) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			// Unexported: implementation detail, not a declared attribute.
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			collectFields(sf.Type, def)
			continue
		}
		if strings.HasPrefix(sf.Tag.Get("gorm"), "-") {
			continue
		}

		name := columnName(sf)
		meta := metaFromTags(sf)
		f := ParseField(name, sf.Type.String(), meta)

		def.Fields = append(def.Fields, f)
		if f.IsRelationship && f.Relationship != nil {
			def.Relationships = append(def.Relationships, *f.Relationship)
		}
	}
}

// columnName resolves the attribute name the way GORM would: an explicit
// column override wins, otherwise the snake_case of the field name.
func columnName(sf reflect.StructField) string {
	for _, part := range strings.Split(sf.Tag.Get("gorm"), ";") {
		if v, ok := strings.CutPrefix(part, "column:"); ok {
			return v
		}
	}
	return naming.ColumnName("", sf.Name)
}

// metaFromTags extracts field metadata from the gorm and validate struct
// tags. Missing tags yield an empty FieldMeta, never an error.
func metaFromTags(sf reflect.StructField) FieldMeta {
	var meta FieldMeta

	for _, part := range strings.Split(sf.Tag.Get("gorm"), ";") {
		if v, ok := strings.CutPrefix(part, "size:"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				meta.MaxLength = &n
			}
		}
		if v, ok := strings.CutPrefix(part, "default:"); ok {
			d := strings.Trim(v, "'")
			meta.Default = &d
		}
		if v, ok := strings.CutPrefix(part, "type:"); ok {
			meta.SQLType = v
		}
	}

	stringKind := underlyingKind(sf.Type) == reflect.String
	for _, tok := range strings.Split(sf.Tag.Get("validate"), ",") {
		key, val, _ := strings.Cut(tok, "=")
		switch key {
		case "email":
			meta.Format = "email"
		case "url", "http_url":
			meta.Format = "url"
		case "uuid", "uuid4":
			meta.Format = "uuid"
		case "gte", "ge":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				meta.MinValue = &f
			}
		case "lte", "le":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				meta.MaxValue = &f
			}
		case "min":
			if stringKind {
				if n, err := strconv.Atoi(val); err == nil {
					meta.MinLength = &n
				}
			} else if f, err := strconv.ParseFloat(val, 64); err == nil {
				meta.MinValue = &f
			}
		case "max":
			if stringKind {
				if n, err := strconv.Atoi(val); err == nil {
					meta.MaxLength = &n
				}
			} else if f, err := strconv.ParseFloat(val, 64); err == nil {
				meta.MaxValue = &f
			}
		}
	}
	return meta
}

// underlyingKind unwraps pointers and slices to the element kind, so bound
// tags on *string and []string are treated as length constraints.
func underlyingKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return t.Kind()
}

// HasColumn reports whether the definition declares an attribute with the
// given name. The repository uses it as its has-attribute probe when
// validating caller-supplied filters and partial updates.
func (d Definition) HasColumn(name string) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
