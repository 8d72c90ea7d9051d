// Copyright (c) Microsoft. All rights reserved.

package estimator_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contoso/pizzabot/estimator"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name      string
		partySize int
		appetite  estimator.Appetite
		want      int
	}{
		{"heavy group of six", 6, estimator.AppetiteHeavy, 9},
		{"average group of six", 6, estimator.AppetiteAverage, 6},
		{"light group of five rounds up", 5, estimator.AppetiteLight, 3},
		{"light group of four is exact", 4, estimator.AppetiteLight, 2},
		{"unknown appetite falls back to average", 1, "bogus", 1},
		{"single light eater still gets a pizza", 1, estimator.AppetiteLight, 1},
		{"heavy single eater rounds up", 1, estimator.AppetiteHeavy, 2},
		{"empty appetite falls back to average", 3, "", 3},
		{"uppercase appetite is normalized", 6, "HEAVY", 9},
		{"surrounding whitespace is trimmed", 5, "  light ", 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := estimator.Estimate(estimator.Request{
				PartySize: tc.partySize,
				Appetite:  tc.appetite,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.PizzasNeeded)
		})
	}
}

func TestEstimate_PartySizeTooSmall(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		_, err := estimator.Estimate(estimator.Request{PartySize: size, Appetite: estimator.AppetiteAverage})
		require.ErrorIs(t, err, estimator.ErrPartySize, "party size %d", size)
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	req := estimator.Request{PartySize: 7, Appetite: estimator.AppetiteHeavy}

	first, err := estimator.Estimate(req)
	require.NoError(t, err)
	second, err := estimator.Estimate(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEstimate_AtLeastOnePizza(t *testing.T) {
	for size := 1; size <= 20; size++ {
		for _, appetite := range []estimator.Appetite{estimator.AppetiteLight, estimator.AppetiteAverage, estimator.AppetiteHeavy, "bogus"} {
			res, err := estimator.Estimate(estimator.Request{PartySize: size, Appetite: appetite})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.PizzasNeeded, 1, "size=%d appetite=%s", size, appetite)
		}
	}
}

func TestTool_Invoke(t *testing.T) {
	tool := estimator.Tool()
	require.Equal(t, estimator.ToolName, tool.Name())

	result, err := tool.Invoke(context.Background(), json.RawMessage(`{"party_size":6,"appetite":"heavy"}`))
	require.NoError(t, err)

	m, ok := result.(map[string]any)
	require.True(t, ok, "result type = %T", result)
	assert.Equal(t, 9, m["pizzas_needed"])
}

func TestTool_InvalidPartySize(t *testing.T) {
	tool := estimator.Tool()

	_, err := tool.Invoke(context.Background(), json.RawMessage(`{"party_size":0,"appetite":"light"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, estimator.ErrPartySize)
}

func TestTool_Schema(t *testing.T) {
	tool := estimator.Tool()

	var schema map[string]any
	require.NoError(t, json.Unmarshal(tool.Parameters(), &schema))
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "party_size")
	assert.Contains(t, props, "appetite")
}
