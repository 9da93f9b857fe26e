package util

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationBuilder(t *testing.T) {
	var v ValidationBuilder
	v.Add(true, "should not appear")
	v.Add(false, "condition failed")
	v.AddError("unconditional")
	v.AddErrorf("formatted %d", 42)

	if !v.HasErrors() {
		t.Fatal("builder should have errors")
	}
	if v.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", v.Count())
	}

	err := v.Build()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Build() returned %T, want *ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("got %d errors, want 3", len(verr.Errors))
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Error("ValidationError should unwrap to ErrValidationFailed")
	}
}

func TestValidationBuilderEmpty(t *testing.T) {
	var v ValidationBuilder
	if v.Build() != nil {
		t.Error("empty builder should build nil")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	single := NewValidationError("only one")
	if single.Error() != "validation failed: only one" {
		t.Errorf("unexpected single-error message: %q", single.Error())
	}

	multi := NewValidationError("first", "second")
	msg := multi.Error()
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Errorf("multi-error message missing entries: %q", msg)
	}
}

func TestDeviceError(t *testing.T) {
	err := NewDeviceError("leaf1", ErrUnreachable)
	if !errors.Is(err, ErrUnreachable) {
		t.Error("DeviceError should unwrap to the underlying error")
	}
	if !strings.Contains(err.Error(), "leaf1") {
		t.Errorf("DeviceError message missing device: %q", err.Error())
	}
}
