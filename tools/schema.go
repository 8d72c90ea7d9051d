// Copyright (c) Microsoft. All rights reserved.

package tools

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// GenerateSchema builds the JSON Schema for a tool's argument struct.
//
// Property names follow the `json` tag. The `jsonschema` tag adds metadata
// as comma-separated options: `description=...`, `required`, and
// `enum=a|b|c`.
func GenerateSchema[T any]() json.RawMessage {
	b, err := json.Marshal(schemaFor(reflect.TypeFor[T]()))
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return b
}

// schemaFor maps a Go type onto a schema node.
func schemaFor(t reflect.Type) *jsonschema.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return structSchema(t)
	case reflect.Slice, reflect.Array:
		return &jsonschema.Schema{Type: "array", Items: schemaFor(t.Elem())}
	case reflect.Map:
		obj := &jsonschema.Schema{Type: "object"}
		if t.Key().Kind() == reflect.String {
			obj.AdditionalProperties = schemaFor(t.Elem())
		}
		return obj
	case reflect.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case reflect.Float32, reflect.Float64:
		return &jsonschema.Schema{Type: "number"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonschema.Schema{Type: "integer"}
	default:
		// Strings, and anything without a JSON Schema equivalent.
		return &jsonschema.Schema{Type: "string"}
	}
}

func structSchema(t reflect.Type) *jsonschema.Schema {
	obj := &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, ok := propertyName(field)
		if !ok {
			continue
		}

		prop := schemaFor(field.Type)
		if applyFieldTag(prop, field.Tag.Get("jsonschema")) {
			obj.Required = append(obj.Required, name)
		}
		obj.Properties[name] = prop
	}
	return obj
}

// propertyName resolves a struct field to its JSON property name. ok is
// false for fields the JSON encoder would skip.
func propertyName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if tag == "-" {
		return "", false
	}
	if tag == "" {
		return field.Name, true
	}
	return tag, true
}

// applyFieldTag decorates prop from a `jsonschema` tag and reports whether
// the field is required.
func applyFieldTag(prop *jsonschema.Schema, tag string) (required bool) {
	for _, opt := range strings.Split(tag, ",") {
		key, val, _ := strings.Cut(opt, "=")
		switch strings.TrimSpace(key) {
		case "description":
			prop.Description = strings.TrimSpace(val)
		case "required":
			required = true
		case "enum":
			for _, v := range strings.Split(val, "|") {
				prop.Enum = append(prop.Enum, strings.TrimSpace(v))
			}
		}
	}
	return required
}
