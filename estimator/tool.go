// Copyright (c) Microsoft. All rights reserved.

package estimator

import (
	"context"

	"github.com/contoso/pizzabot/tools"
)

// ToolName is the function name the agent sees.
const ToolName = "estimate_pizzas"

// Tool returns the estimator wrapped as a function tool for the agent.
func Tool() tools.Tool {
	return tools.NewTypedTool(ToolName,
		"Estimate how many pizzas to order for a group of people.",
		func(ctx context.Context, args struct {
			PartySize int    `json:"party_size" jsonschema:"description=Number of people eating,required"`
			Appetite  string `json:"appetite"   jsonschema:"description=How hungry the group is,enum=light|average|heavy"`
		}) (any, error) {
			res, err := Estimate(Request{
				PartySize: args.PartySize,
				Appetite:  Appetite(args.Appetite),
			})
			if err != nil {
				return nil, &tools.ToolError{
					ToolName: ToolName,
					Message:  err.Error(),
					Err:      err,
				}
			}
			return map[string]any{"pizzas_needed": res.PizzasNeeded}, nil
		},
	)
}
