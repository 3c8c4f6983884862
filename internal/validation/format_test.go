package validation

import (
	"errors"
	"testing"
)

func TestFormatValidValues(t *testing.T) {
	type status string

	const (
		notStarted status = "not_started"
		inProgress status = "in_progress"
	)

	got := FormatValidValues([]status{notStarted, inProgress})
	want := "not_started, in_progress"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatInvalidValueError(t *testing.T) {
	type status string

	const (
		notStarted status = "not_started"
		inProgress status = "in_progress"
	)

	base := errors.New("invalid status")
	err := FormatInvalidValueError(base, status("bad"), []status{notStarted, inProgress})
	if !errors.Is(err, base) {
		t.Fatalf("expected error to wrap %v", base)
	}

	want := "invalid status: \"bad\" (valid: not_started, in_progress)"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
