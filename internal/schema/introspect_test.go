package schema

import (
	"sync"
	"testing"
)

func TestParseField_ForeignKeyFromIDSuffix(t *testing.T) {
	f := ParseField("author_id", "uint", FieldMeta{})

	if f.Type != TypeInteger {
		t.Fatalf("Type = %q, want integer", f.Type)
	}
	if !f.IsRelationship || f.Relationship == nil {
		t.Fatalf("expected relationship, got %+v", f)
	}
	if f.Relationship.Kind != RelForeignKey {
		t.Fatalf("Kind = %q, want foreign_key", f.Relationship.Kind)
	}
	if f.Relationship.RelatedModel != "Author" {
		t.Fatalf("RelatedModel = %q, want Author", f.Relationship.RelatedModel)
	}
	if f.Relationship.RelatedField != "id" {
		t.Fatalf("RelatedField = %q, want id", f.Relationship.RelatedField)
	}
	if !f.IsRequired {
		t.Fatalf("foreign key without default must be required")
	}
}

func TestParseField_IDSuffixWinsOverModelLookalike(t *testing.T) {
	// An integer _id column is always a foreign key, never a model reference.
	f := ParseField("category_id", "int64", FieldMeta{})
	if f.Relationship == nil || f.Relationship.Kind != RelForeignKey {
		t.Fatalf("expected foreign_key, got %+v", f.Relationship)
	}
	if f.Relationship.RelatedModel != "Category" {
		t.Fatalf("RelatedModel = %q, want Category", f.Relationship.RelatedModel)
	}
}

func TestParseField_IDSuffixNonInteger_NoRelationship(t *testing.T) {
	f := ParseField("session_id", "string", FieldMeta{})
	if f.IsRelationship || f.Relationship != nil {
		t.Fatalf("string _id column must not infer a relationship: %+v", f.Relationship)
	}
	if f.Type != TypeString {
		t.Fatalf("Type = %q, want string", f.Type)
	}
}

func TestParseField_ListOfModel_OneToMany(t *testing.T) {
	f := ParseField("tags", "[]Tag", FieldMeta{})

	if !f.IsList {
		t.Fatalf("expected IsList")
	}
	if f.Relationship == nil || f.Relationship.Kind != RelOneToMany {
		t.Fatalf("expected one_to_many, got %+v", f.Relationship)
	}
	if f.Relationship.RelatedModel != "Tag" {
		t.Fatalf("RelatedModel = %q, want Tag", f.Relationship.RelatedModel)
	}
}

func TestParseField_BareModel_ManyToOne(t *testing.T) {
	f := ParseField("author", "domain.Author", FieldMeta{})
	if f.Relationship == nil || f.Relationship.Kind != RelManyToOne {
		t.Fatalf("expected many_to_one, got %+v", f.Relationship)
	}
	if f.Relationship.RelatedModel != "Author" {
		t.Fatalf("RelatedModel = %q, want Author", f.Relationship.RelatedModel)
	}
}

func TestParseField_ListOfPrimitive_NoRelationship(t *testing.T) {
	f := ParseField("labels", "[]string", FieldMeta{})
	if !f.IsList {
		t.Fatalf("expected IsList")
	}
	if f.IsRelationship {
		t.Fatalf("collection of primitives must not be a relationship")
	}
	if f.Type != TypeString {
		t.Fatalf("Type = %q, want string", f.Type)
	}
}

func TestParseField_ByteSliceIsBlobNotList(t *testing.T) {
	f := ParseField("payload", "[]byte", FieldMeta{})
	if f.IsList {
		t.Fatalf("[]byte must not be a collection")
	}
	if f.Type != TypeJSON {
		t.Fatalf("Type = %q, want json", f.Type)
	}
}

func TestParseField_OptionalPointer(t *testing.T) {
	f := ParseField("bio", "*string", FieldMeta{})
	if !f.IsOptional {
		t.Fatalf("pointer type must be optional")
	}
	if f.IsRequired {
		t.Fatalf("optional field must not be required")
	}
	if f.Type != TypeString {
		t.Fatalf("Type = %q, want string", f.Type)
	}
}

func TestParseField_RequiredUnlessDefault(t *testing.T) {
	if f := ParseField("views", "int", FieldMeta{}); !f.IsRequired {
		t.Fatalf("plain int without default must be required")
	}

	def := "0"
	f := ParseField("views", "int", FieldMeta{Default: &def})
	if f.IsRequired {
		t.Fatalf("field with default must not be required")
	}
	if f.DefaultValue == nil || *f.DefaultValue != "0" {
		t.Fatalf("DefaultValue = %v, want 0", f.DefaultValue)
	}
}

func TestParseField_TimeAndDuration(t *testing.T) {
	if f := ParseField("published_at", "*time.Time", FieldMeta{}); f.Type != TypeDatetime || !f.IsOptional {
		t.Fatalf("got %+v, want optional datetime", f)
	}
	if f := ParseField("timeout", "time.Duration", FieldMeta{}); f.Type != TypeInteger {
		t.Fatalf("Duration Type = %q, want integer", f.Type)
	}
}

func TestParseField_SubstringTypeMapping(t *testing.T) {
	cases := []struct {
		declared string
		want     FieldType
	}{
		{"uuid.UUID", TypeUUID},
		{"EmailStr", TypeEmail},
		{"HttpURL", TypeURL},
		{"map[string]any", TypeJSON},
		{"json.RawMessage", TypeJSON},
		{"SomethingExotic", TypeString},
	}
	for _, tc := range cases {
		// The name avoids the _id rule so only the type drives inference.
		if got := ParseField("value", tc.declared, FieldMeta{}).Type; got != tc.want {
			t.Errorf("ParseField(%q).Type = %q, want %q", tc.declared, got, tc.want)
		}
	}
}

func TestParseField_FormatAndSQLTypeHints(t *testing.T) {
	if f := ParseField("email", "string", FieldMeta{Format: "email"}); f.Type != TypeEmail {
		t.Fatalf("Type = %q, want email", f.Type)
	}
	if f := ParseField("website", "*string", FieldMeta{Format: "url"}); f.Type != TypeURL {
		t.Fatalf("Type = %q, want url", f.Type)
	}
	if f := ParseField("content", "string", FieldMeta{SQLType: "text"}); f.Type != TypeText {
		t.Fatalf("Type = %q, want text", f.Type)
	}
	// Hints never demote non-string types.
	if f := ParseField("views", "int", FieldMeta{SQLType: "text"}); f.Type != TypeInteger {
		t.Fatalf("Type = %q, want integer", f.Type)
	}
}

func TestParseField_ValidationCarriesBounds(t *testing.T) {
	minLen, maxLen := 1, 200
	f := ParseField("title", "string", FieldMeta{MinLength: &minLen, MaxLength: &maxLen})
	v := f.Validation
	if v == nil || v.MinLength == nil || *v.MinLength != 1 || v.MaxLength == nil || *v.MaxLength != 200 {
		t.Fatalf("bounds not carried: %+v", v)
	}
	if !v.Required {
		t.Fatalf("validation required flag must mirror the field")
	}
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"published_at": "Published At",
		"name":         "Name",
		"author_id":    "Author Id",
	}
	for in, want := range cases {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

// Humanize runs on every metadata request, so concurrent callers must not
// share caser state. Run with -race to verify.
func TestHumanize_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Humanize("published_at"); got != "Published At" {
					t.Errorf("Humanize = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
