// Package batch models the production-batch values consumed from the
// recipe/costing collaborator: yields, scaling options, and labor estimates.
//
// The package is deliberately value-only. Recipe costing itself (ingredient
// prices, unit conversion) happens upstream; a Batch arrives here with its
// RecipeCost already resolved.
package batch

import "fmt"

// Batch carries the costing collaborator's view of one production batch.
type Batch struct {
	// ID is a unique identifier for the batch.
	ID string `json:"id" yaml:"id"`

	// Name is the display name of the batch.
	Name string `json:"name" yaml:"name"`

	// RecipeName is the name of the recipe the batch produces.
	RecipeName string `json:"recipe_name" yaml:"recipe_name"`

	// Category groups batches for display and icon selection.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// RecipeCost is the resolved ingredient cost of one full batch.
	RecipeCost float64 `json:"recipe_cost" yaml:"recipe_cost"`

	// VariableYield marks batches whose output cannot be predicted from the
	// recipe (the worker records the made amount instead).
	VariableYield bool `json:"variable_yield" yaml:"variable_yield"`

	// YieldAmount and YieldUnit describe the output of one full batch.
	YieldAmount float64 `json:"yield_amount" yaml:"yield_amount"`
	YieldUnit   string  `json:"yield_unit" yaml:"yield_unit"`

	// EstimatedLaborMinutes is the planned hands-on time for one full batch.
	EstimatedLaborMinutes float64 `json:"estimated_labor_minutes" yaml:"estimated_labor_minutes"`

	// HourlyLaborRate is the rate used for estimated labor costing.
	HourlyLaborRate float64 `json:"hourly_labor_rate" yaml:"hourly_labor_rate"`

	// CanBeScaled enables the scale options listed in Scales.
	CanBeScaled bool `json:"can_be_scaled" yaml:"can_be_scaled"`

	// Scales lists the enabled scale keys beyond "full".
	Scales []string `json:"scales,omitempty" yaml:"scales,omitempty"`
}

// ScaleOption describes one selectable production scale.
type ScaleOption struct {
	Key    string  `json:"key"`
	Factor float64 `json:"factor"`
	Label  string  `json:"label"`
}

// scaleTable is the fixed set of recognized scale keys, in display order.
var scaleTable = []ScaleOption{
	{Key: "full", Factor: 1.0, Label: "Full Batch"},
	{Key: "double", Factor: 2.0, Label: "Double Batch (2x)"},
	{Key: "triple", Factor: 3.0, Label: "Triple Batch (3x)"},
	{Key: "quadruple", Factor: 4.0, Label: "Quadruple Batch (4x)"},
	{Key: "three_quarters", Factor: 0.75, Label: "Three-Quarter Batch (3/4)"},
	{Key: "two_thirds", Factor: 0.6667, Label: "Two-Thirds Batch (2/3)"},
	{Key: "half", Factor: 0.5, Label: "Half Batch (1/2)"},
	{Key: "quarter", Factor: 0.25, Label: "Quarter Batch (1/4)"},
	{Key: "eighth", Factor: 0.125, Label: "Eighth Batch (1/8)"},
	{Key: "sixteenth", Factor: 0.0625, Label: "Sixteenth Batch (1/16)"},
}

// ScaleKeys returns all recognized scale keys in display order.
func ScaleKeys() []string {
	keys := make([]string, 0, len(scaleTable))
	for _, option := range scaleTable {
		keys = append(keys, option.Key)
	}
	return keys
}

// ScaleFactor returns the multiplier for a scale key.
// Unrecognized keys fall back to 1.0 (a full batch).
func ScaleFactor(key string) float64 {
	for _, option := range scaleTable {
		if option.Key == key {
			return option.Factor
		}
	}
	return 1.0
}

// KnownScaleKey reports whether key is in the fixed scale table.
func KnownScaleKey(key string) bool {
	for _, option := range scaleTable {
		if option.Key == key {
			return true
		}
	}
	return false
}

// EstimatedLaborCost returns the planned labor cost of one full batch.
func (b *Batch) EstimatedLaborCost() float64 {
	return b.EstimatedLaborMinutes / 60 * b.HourlyLaborRate
}

// EstimatedCost returns recipe cost plus estimated labor for one full batch.
func (b *Batch) EstimatedCost() float64 {
	return b.RecipeCost + b.EstimatedLaborCost()
}

// ScaledYield returns the yield amount for a scale factor.
// Variable-yield batches have no predictable output and return 0.
func (b *Batch) ScaledYield(factor float64) float64 {
	if b.VariableYield {
		return 0
	}
	return b.YieldAmount * factor
}

// YieldText formats the scaled yield for display.
func (b *Batch) YieldText(factor float64) string {
	if b.VariableYield {
		return "Variable yield"
	}
	return fmt.Sprintf("%g %s", b.ScaledYield(factor), b.YieldUnit)
}

// ScaleOptions returns the scales available for this batch. A full batch is
// always available; the rest follow the batch's enabled scale keys, in the
// fixed table order.
func (b *Batch) ScaleOptions() []ScaleOption {
	options := []ScaleOption{scaleTable[0]}
	if !b.CanBeScaled {
		return options
	}

	enabled := make(map[string]bool, len(b.Scales))
	for _, key := range b.Scales {
		enabled[key] = true
	}

	for _, option := range scaleTable[1:] {
		if enabled[option.Key] {
			options = append(options, option)
		}
	}
	return options
}
