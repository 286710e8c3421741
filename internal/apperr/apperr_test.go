package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	base := errors.New("connection refused")
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{name: "validation", err: Required("title"), is: IsValidation},
		{name: "not found", err: NotFound("template", "x"), is: IsNotFound},
		{name: "network", err: Network("list models", base), is: IsNetwork},
		{name: "malformed", err: &MalformedImportError{Missing: []string{"title"}}, is: IsMalformedImport},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tc.err)
			if !tc.is(wrapped) {
				t.Fatalf("predicate did not match wrapped %T", tc.err)
			}
		})
	}
}

func TestNetworkUnwrapsCause(t *testing.T) {
	base := errors.New("boom")
	err := Network("fetch", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected errors.Is to find the cause")
	}
	if Network("fetch", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}

func TestMalformedImportMessageListsMissingFields(t *testing.T) {
	err := &MalformedImportError{Missing: []string{"title", "sections"}}
	want := "invalid template structure: missing title, sections"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}
