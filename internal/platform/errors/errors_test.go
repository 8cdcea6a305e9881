package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesByCode(t *testing.T) {
	t.Parallel()

	base := New(CodeNotFound, "record not found")
	wrapped := fmt.Errorf("get campaign: %w", New(CodeNotFound, "campaign missing"))

	if !errors.Is(wrapped, base) {
		t.Fatal("expected errors with the same code to match")
	}

	other := New(CodeUniquenessViolation, "duplicate")
	if errors.Is(wrapped, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := Wrap(CodeUnknown, "write failed", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "write failed" {
		t.Fatalf("message = %q, want %q", err.Error(), "write failed")
	}
}

func TestWithMetadataCarriesContext(t *testing.T) {
	t.Parallel()

	err := WithMetadata(CodeConstraintViolation, "name required", map[string]string{"field": "name"})
	if err.Metadata["field"] != "name" {
		t.Fatalf("metadata field = %q, want %q", err.Metadata["field"], "name")
	}
}
