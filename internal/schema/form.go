// Package schema – derived frontend artifacts.
//
// A Definition feeds two client-facing derivations: a dynamic form
// configuration (layout entries plus a sparse validation-rule map) and
// create/update schema skeletons. The ambient attributes (id, created_at,
// updated_at, is_deleted) never appear in any of them.
package schema

import "strings"

// ambientFields are the attributes every managed entity carries; they are
// excluded from forms, rules, and generated schemas.
var ambientFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"is_deleted": true,
}

// FormField is one entry of the generated form layout. Type holds the
// semantic field type, or "select"/"multiselect" for relationship fields
// bound to a listing endpoint of the related entity.
type FormField struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Options     string   `json:"options,omitempty"`
}

// FormConfig is the full dynamic-form descriptor for one entity.
type FormConfig struct {
	ModelName       string                    `json:"model_name"`
	Fields          []Field                   `json:"fields"`
	Layout          []FormField               `json:"layout"`
	ValidationRules map[string]map[string]any `json:"validation_rules"`
}

// SchemaField is one entry of a generated create/update schema skeleton.
type SchemaField struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Default  *string   `json:"default,omitempty"`
}

// Schemas carries the generated create and update schema skeletons; update
// schemas mark every field optional.
type Schemas struct {
	CreateSchema map[string]SchemaField `json:"create_schema"`
	UpdateSchema map[string]SchemaField `json:"update_schema"`
	ModelName    string                 `json:"model_name"`
}

// FormConfigOf derives the dynamic form configuration from a definition.
// basePath is the API mount point used to build relationship option
// endpoints (e.g. "/api/v1" -> "/api/v1/authors").
func FormConfigOf(def Definition, basePath string) FormConfig {
	cfg := FormConfig{
		ModelName:       def.ModelName,
		Fields:          def.Fields,
		Layout:          []FormField{},
		ValidationRules: ValidationRulesOf(def.Fields),
	}

	for _, f := range def.Fields {
		if ambientFields[f.Name] {
			continue
		}

		ff := FormField{
			Name:        f.Name,
			Type:        string(f.Type),
			Label:       Humanize(f.Name),
			Required:    f.IsRequired,
			Placeholder: "Enter " + strings.ReplaceAll(f.Name, "_", " "),
		}
		if v := f.Validation; v != nil {
			ff.MinLength = v.MinLength
			ff.MaxLength = v.MaxLength
			ff.Min = v.MinValue
			ff.Max = v.MaxValue
		}
		if f.IsRelationship && f.Relationship != nil {
			options := basePath + "/" + strings.ToLower(f.Relationship.RelatedModel) + "s"
			switch f.Relationship.Kind {
			case RelForeignKey:
				ff.Type = "select"
				ff.Options = options
			case RelOneToMany:
				ff.Type = "multiselect"
				ff.Options = options
			}
		}
		cfg.Layout = append(cfg.Layout, ff)
	}
	return cfg
}

// ValidationRulesOf builds the sparse per-field rule map: only non-default
// constraints appear, and fields without any constraint are omitted
// entirely.
func ValidationRulesOf(fields []Field) map[string]map[string]any {
	rules := make(map[string]map[string]any)

	for _, f := range fields {
		if ambientFields[f.Name] {
			continue
		}

		r := map[string]any{}
		if f.IsRequired {
			r["required"] = true
		}
		if v := f.Validation; v != nil {
			if v.MinLength != nil {
				r["minLength"] = *v.MinLength
			}
			if v.MaxLength != nil {
				r["maxLength"] = *v.MaxLength
			}
			if v.MinValue != nil {
				r["min"] = *v.MinValue
			}
			if v.MaxValue != nil {
				r["max"] = *v.MaxValue
			}
			if v.Pattern != "" {
				r["pattern"] = v.Pattern
			}
		}
		if len(r) > 0 {
			rules[f.Name] = r
		}
	}
	return rules
}

// SchemasOf derives create/update schema skeletons from a definition.
// Ambient attributes are excluded; the update schema relaxes every field to
// optional.
func SchemasOf(def Definition) Schemas {
	s := Schemas{
		CreateSchema: make(map[string]SchemaField),
		UpdateSchema: make(map[string]SchemaField),
		ModelName:    def.ModelName,
	}

	for _, f := range def.Fields {
		if ambientFields[f.Name] {
			continue
		}
		sf := SchemaField{
			Type:     f.Type,
			Required: f.IsRequired,
			Default:  f.DefaultValue,
		}
		s.CreateSchema[f.Name] = sf

		sf.Required = false
		s.UpdateSchema[f.Name] = sf
	}
	return s
}
