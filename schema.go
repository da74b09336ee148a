package citydesk

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// SchemaFor generates a JSON Schema object for the struct type T.
//
// Property names come from json tags. The following tags refine a property:
//
//	desc:"..."        property description
//	required:"true"   adds the property to the required list
//	enum:"a,b,c"      restricts a string property to the listed values
func SchemaFor[T any]() (json.RawMessage, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}
	return SchemaFrom[T]().Build(), nil
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	s, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaBuilder constructs a JSON Schema object from a Go struct and lets
// callers adjust it fluently before building.
type SchemaBuilder struct {
	properties map[string]*property
	order      []string
	required   []string
}

type property struct {
	Type        string
	Description string
	Enum        []string
	Items       *property
	Nested      *SchemaBuilder
}

// SchemaFrom creates a SchemaBuilder by reflecting on the given struct type.
// Non-struct types produce an empty object schema.
func SchemaFrom[T any]() *SchemaBuilder {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return &SchemaBuilder{properties: map[string]*property{}}
	}
	return fromStruct(t)
}

func fromStruct(t reflect.Type) *SchemaBuilder {
	sb := &SchemaBuilder{properties: map[string]*property{}}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}

		p := propertyOf(f.Type)
		p.Description = f.Tag.Get("desc")
		if enum := f.Tag.Get("enum"); enum != "" {
			p.Enum = strings.Split(enum, ",")
		}
		sb.properties[name] = p
		sb.order = append(sb.order, name)
		if f.Tag.Get("required") == "true" {
			sb.required = append(sb.required, name)
		}
	}
	return sb
}

func propertyOf(t reflect.Type) *property {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return &property{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &property{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &property{Type: "number"}
	case reflect.Bool:
		return &property{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &property{Type: "array", Items: propertyOf(t.Elem())}
	case reflect.Struct:
		return &property{Type: "object", Nested: fromStruct(t)}
	case reflect.Map:
		return &property{Type: "object"}
	default:
		return &property{Type: "string"}
	}
}

// Desc sets the description for a field.
func (s *SchemaBuilder) Desc(field, description string) *SchemaBuilder {
	if p, ok := s.properties[field]; ok {
		p.Description = description
	}
	return s
}

// Required marks the specified fields as required. Unknown fields and
// duplicates are ignored.
func (s *SchemaBuilder) Required(fields ...string) *SchemaBuilder {
	for _, field := range fields {
		if _, ok := s.properties[field]; !ok {
			continue
		}
		dup := false
		for _, r := range s.required {
			if r == field {
				dup = true
				break
			}
		}
		if !dup {
			s.required = append(s.required, field)
		}
	}
	return s
}

// Enum sets the allowed values for a string field.
func (s *SchemaBuilder) Enum(field string, values ...string) *SchemaBuilder {
	if p, ok := s.properties[field]; ok {
		p.Enum = values
	}
	return s
}

// Build generates the JSON Schema.
func (s *SchemaBuilder) Build() json.RawMessage {
	data, err := json.Marshal(s.toMap())
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

func (s *SchemaBuilder) toMap() map[string]any {
	props := make(map[string]any, len(s.order))
	for _, name := range s.order {
		props[name] = s.properties[name].toMap()
	}
	m := map[string]any{"type": "object", "properties": props}
	if len(s.required) > 0 {
		m["required"] = s.required
	}
	return m
}

func (p *property) toMap() map[string]any {
	if p.Nested != nil {
		m := p.Nested.toMap()
		if p.Description != "" {
			m["description"] = p.Description
		}
		return m
	}
	m := map[string]any{"type": p.Type}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		m["enum"] = p.Enum
	}
	if p.Items != nil {
		m["items"] = p.Items.toMap()
	}
	return m
}
