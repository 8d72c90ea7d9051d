// Copyright (c) Microsoft. All rights reserved.

package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/contoso/pizzabot/tools"
)

func TestNewTool_BasicInvocation(t *testing.T) {
	tool := tools.NewTool("menu", "Returns the menu", json.RawMessage(`{"type":"object"}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return "margherita, pepperoni", nil
		},
	)

	if tool.Name() != "menu" {
		t.Errorf("Name = %q", tool.Name())
	}
	if tool.Description() != "Returns the menu" {
		t.Errorf("Description = %q", tool.Description())
	}

	result, err := tool.Invoke(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != "margherita, pepperoni" {
		t.Errorf("result = %v", result)
	}
}

func TestNewTypedTool(t *testing.T) {
	type args struct {
		Topping string `json:"topping" jsonschema:"description=Pizza topping,required"`
	}

	tool := tools.NewTypedTool("add_topping", "Adds a topping",
		func(ctx context.Context, a args) (any, error) {
			return "added " + a.Topping, nil
		},
	)

	// Check schema was generated
	params := tool.Parameters()
	var schema map[string]any
	if err := json.Unmarshal(params, &schema); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	if schema["type"] != "object" {
		t.Errorf("schema type = %v", schema["type"])
	}

	result, err := tool.Invoke(context.Background(), json.RawMessage(`{"topping":"basil"}`))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != "added basil" {
		t.Errorf("result = %v", result)
	}
}

func TestNewTypedTool_InvalidArgs(t *testing.T) {
	type args struct {
		Count int `json:"count"`
	}

	tool := tools.NewTypedTool("count", "Counts things",
		func(ctx context.Context, a args) (any, error) {
			return a.Count, nil
		},
	)

	_, err := tool.Invoke(context.Background(), json.RawMessage(`{"count":"not-a-number"}`))
	if err == nil {
		t.Fatal("expected error for invalid arguments")
	}

	var toolErr *tools.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error type = %T, want *ToolError", err)
	}
	if toolErr.ToolName != "count" {
		t.Errorf("ToolName = %q", toolErr.ToolName)
	}
	if !errors.Is(err, tools.ErrToolExecution) {
		t.Error("error should wrap ErrToolExecution")
	}
}

func TestNewTypedTool_EmptyArgs(t *testing.T) {
	type args struct {
		Note string `json:"note"`
	}

	tool := tools.NewTypedTool("noop", "Does nothing",
		func(ctx context.Context, a args) (any, error) {
			return a.Note, nil
		},
	)

	// The service may omit arguments entirely for no-arg calls.
	result, err := tool.Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != "" {
		t.Errorf("result = %v", result)
	}
}
