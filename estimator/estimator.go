// Copyright (c) Microsoft. All rights reserved.

// Package estimator computes how many pizzas to order for a group.
//
// The estimate is a pure function of the party size and an appetite
// category: pizzas = ceil(partySize × factor). Appetite values outside the
// known set fall back to [AppetiteAverage] rather than failing, so the
// agent can pass through whatever the model produced without a guard.
package estimator

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Appetite is a categorical proxy for per-person pizza consumption.
type Appetite string

const (
	AppetiteLight   Appetite = "light"
	AppetiteAverage Appetite = "average"
	AppetiteHeavy   Appetite = "heavy"
)

// per-person pizza factors by appetite
const (
	factorLight   = 0.5
	factorAverage = 1.0
	factorHeavy   = 1.5
)

// ErrPartySize is returned when the party size is below one.
var ErrPartySize = errors.New("party size must be at least 1")

// Request holds the inputs for an estimate.
type Request struct {
	PartySize int      `json:"party_size"`
	Appetite  Appetite `json:"appetite"`
}

// Result holds the computed pizza count. PizzasNeeded is always >= 1 for a
// valid request.
type Result struct {
	PizzasNeeded int `json:"pizzas_needed"`
}

// Estimate computes the number of pizzas to order.
//
// The appetite is trimmed of surrounding whitespace and lowercased before
// matching; any value that still does not match a known category uses the
// average factor. A party size below 1 is the only error condition.
func Estimate(req Request) (Result, error) {
	if req.PartySize < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrPartySize, req.PartySize)
	}

	pizzas := math.Ceil(float64(req.PartySize) * factor(req.Appetite))
	return Result{PizzasNeeded: int(pizzas)}, nil
}

// factor maps an appetite category to its per-person multiplier.
func factor(a Appetite) float64 {
	switch normalize(a) {
	case AppetiteLight:
		return factorLight
	case AppetiteHeavy:
		return factorHeavy
	default:
		// Unknown values deliberately fall back to average.
		return factorAverage
	}
}

// normalize applies the documented matching policy: trim and lowercase.
func normalize(a Appetite) Appetite {
	return Appetite(strings.ToLower(strings.TrimSpace(string(a))))
}
