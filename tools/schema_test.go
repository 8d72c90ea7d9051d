// Copyright (c) Microsoft. All rights reserved.

package tools_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/contoso/pizzabot/tools"
)

type contactArgs struct {
	Phone string `json:"phone" jsonschema:"description=Phone number for the driver"`
}

type deliveryArgs struct {
	Address  string         `json:"address" jsonschema:"description=Street address for delivery,required"`
	Slot     string         `json:"slot"     jsonschema:"enum=asap|lunch|dinner"`
	Toppings []string       `json:"toppings"`
	Extras   map[string]int `json:"extras"`
	Contact  *contactArgs   `json:"contact"`
	Tip      float64        `json:"tip"`
	Takeaway bool           `json:"takeaway"`
	Loyalty  int            `json:"-"`
	note     string
}

func decodeSchema(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	return parsed
}

func property(t *testing.T, schema map[string]any, name string) map[string]any {
	t.Helper()
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties object: %v", schema)
	}
	prop, ok := props[name].(map[string]any)
	if !ok {
		t.Fatalf("property %q missing: %v", name, props)
	}
	return prop
}

func TestGenerateSchema_PropertyTypes(t *testing.T) {
	schema := decodeSchema(t, tools.GenerateSchema[deliveryArgs]())

	tests := []struct {
		property string
		wantType string
	}{
		{"address", "string"},
		{"slot", "string"},
		{"toppings", "array"},
		{"extras", "object"},
		{"contact", "object"},
		{"tip", "number"},
		{"takeaway", "boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			if got := property(t, schema, tt.property)["type"]; got != tt.wantType {
				t.Errorf("type = %v, want %v", got, tt.wantType)
			}
		})
	}
}

func TestGenerateSchema_FieldTags(t *testing.T) {
	schema := decodeSchema(t, tools.GenerateSchema[deliveryArgs]())

	if desc := property(t, schema, "address")["description"]; desc != "Street address for delivery" {
		t.Errorf("address description = %v", desc)
	}

	enum, ok := property(t, schema, "slot")["enum"].([]any)
	if !ok {
		t.Fatal("slot enum missing")
	}
	if want := []any{"asap", "lunch", "dinner"}; !reflect.DeepEqual(enum, want) {
		t.Errorf("slot enum = %v, want %v", enum, want)
	}

	required, _ := schema["required"].([]any)
	if len(required) != 1 || required[0] != "address" {
		t.Errorf("required = %v, want [address]", required)
	}
}

func TestGenerateSchema_SkipsHiddenFields(t *testing.T) {
	schema := decodeSchema(t, tools.GenerateSchema[deliveryArgs]())

	props := schema["properties"].(map[string]any)
	for _, name := range []string{"Loyalty", "-", "note"} {
		if _, found := props[name]; found {
			t.Errorf("property %q should not be generated", name)
		}
	}
}

func TestGenerateSchema_NestedTypes(t *testing.T) {
	schema := decodeSchema(t, tools.GenerateSchema[deliveryArgs]())

	items, ok := property(t, schema, "toppings")["items"].(map[string]any)
	if !ok || items["type"] != "string" {
		t.Errorf("toppings items = %v", items)
	}

	extras, ok := property(t, schema, "extras")["additionalProperties"].(map[string]any)
	if !ok || extras["type"] != "integer" {
		t.Errorf("extras additionalProperties = %v", extras)
	}

	// Pointers to structs produce the struct's schema.
	phone := property(t, property(t, schema, "contact"), "phone")
	if phone["type"] != "string" || phone["description"] != "Phone number for the driver" {
		t.Errorf("contact.phone = %v", phone)
	}
}
