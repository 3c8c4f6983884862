package batch

import (
	"math"
	"testing"
)

func TestScaleFactor(t *testing.T) {
	cases := []struct {
		key  string
		want float64
	}{
		{key: "full", want: 1.0},
		{key: "double", want: 2.0},
		{key: "triple", want: 3.0},
		{key: "quadruple", want: 4.0},
		{key: "three_quarters", want: 0.75},
		{key: "two_thirds", want: 0.6667},
		{key: "half", want: 0.5},
		{key: "quarter", want: 0.25},
		{key: "eighth", want: 0.125},
		{key: "sixteenth", want: 0.0625},
		{key: "bogus", want: 1.0},
		{key: "", want: 1.0},
	}

	for _, tc := range cases {
		if got := ScaleFactor(tc.key); got != tc.want {
			t.Fatalf("ScaleFactor(%q): expected %v, got %v", tc.key, tc.want, got)
		}
	}
}

func TestKnownScaleKey(t *testing.T) {
	if !KnownScaleKey("half") {
		t.Fatalf("expected half to be known")
	}
	if KnownScaleKey("bogus") {
		t.Fatalf("expected bogus to be unknown")
	}
}

func TestScaleOptionsFullAlwaysFirst(t *testing.T) {
	b := Batch{ID: "b1", Name: "Marinara", CanBeScaled: true, Scales: []string{"double", "half"}}

	options := b.ScaleOptions()
	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(options))
	}
	if options[0].Key != "full" {
		t.Fatalf("expected full first, got %s", options[0].Key)
	}
	// Enabled scales come out in table order, not day-file order.
	if options[1].Key != "double" || options[2].Key != "half" {
		t.Fatalf("unexpected order: %s, %s", options[1].Key, options[2].Key)
	}
}

func TestScaleOptionsUnscalableBatch(t *testing.T) {
	b := Batch{ID: "b1", Name: "Marinara", Scales: []string{"double", "half"}}

	options := b.ScaleOptions()
	if len(options) != 1 || options[0].Key != "full" {
		t.Fatalf("expected only full for unscalable batch, got %v", options)
	}
}

func TestEstimatedCost(t *testing.T) {
	b := Batch{
		ID:                    "b1",
		Name:                  "Marinara",
		RecipeCost:            14,
		EstimatedLaborMinutes: 90,
		HourlyLaborRate:       20,
	}

	if got := b.EstimatedLaborCost(); math.Abs(got-30.0) > 1e-9 {
		t.Fatalf("expected labor cost 30, got %v", got)
	}
	if got := b.EstimatedCost(); math.Abs(got-44.0) > 1e-9 {
		t.Fatalf("expected total cost 44, got %v", got)
	}
}

func TestYield(t *testing.T) {
	b := Batch{ID: "b1", Name: "Marinara", YieldAmount: 12, YieldUnit: "qt"}

	if got := b.ScaledYield(0.5); got != 6 {
		t.Fatalf("expected scaled yield 6, got %v", got)
	}
	if got := b.YieldText(0.5); got != "6 qt" {
		t.Fatalf("expected \"6 qt\", got %q", got)
	}

	variable := Batch{ID: "b2", Name: "Trim Stock", VariableYield: true, YieldAmount: 12, YieldUnit: "qt"}
	if got := variable.ScaledYield(2); got != 0 {
		t.Fatalf("expected 0 for variable yield, got %v", got)
	}
}
