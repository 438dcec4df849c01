package tagger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/databricks/databricks-sdk-go/apierr"
)

func TestTagError_Error_FullMessage(t *testing.T) {
	cause := fmt.Errorf("PERMISSION_DENIED: User does not have CAN_MANAGE")
	te := newTagError("edit", KindCluster, "etl-shared", cause)

	msg := te.Error()
	for _, want := range []string{"edit", string(KindCluster), "etl-shared", "PERMISSION_DENIED", "hint:"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in message, got %q", want, msg)
		}
	}
}

func TestTagError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	te := &TagError{
		Operation:  "get",
		Kind:       KindWarehouse,
		Identifier: "bi",
		Cause:      cause,
	}

	if !errors.Is(te, cause) {
		t.Error("expected Unwrap to return cause")
	}
}

func TestAsTagError(t *testing.T) {
	te := newTagError("get", KindWarehouse, "bi", fmt.Errorf("something went wrong"))

	if got := AsTagError(te); got == nil || got.Identifier != "bi" {
		t.Fatalf("AsTagError(direct) = %v", got)
	}

	wrapped := fmt.Errorf("outer: %w", te)
	if got := AsTagError(wrapped); got == nil {
		t.Fatal("expected TagError through wrapping")
	}

	if got := AsTagError(errors.New("plain")); got != nil {
		t.Errorf("expected nil for plain error, got %v", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{"nil", nil, ErrCategoryResource},
		{"not found", fmt.Errorf("x: %w", ErrNotFound), ErrCategoryResource},
		{"sdk permission", fmt.Errorf("wrapped: %w", apierr.ErrPermissionDenied), ErrCategoryPermission},
		{"sdk unauthenticated", apierr.ErrUnauthenticated, ErrCategoryPermission},
		{"sdk invalid param", apierr.ErrInvalidParameterValue, ErrCategoryConfiguration},
		{"context deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrCategoryTimeout},
		{"context canceled", context.Canceled, ErrCategoryTimeout},
		{"forbidden text", errors.New("403 Forbidden"), ErrCategoryPermission},
		{"invalid token text", errors.New("Invalid access token"), ErrCategoryPermission},
		{"dns failure", errors.New("dial tcp: lookup x: no such host"), ErrCategoryNetwork},
		{"timed out text", errors.New("request timed out"), ErrCategoryTimeout},
		{"malformed", errors.New("malformed request body"), ErrCategoryConfiguration},
		{"unknown", errors.New("something odd"), ErrCategoryResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := classifyError(tt.err)
			if got != tt.category {
				t.Errorf("classifyError() category = %q, want %q", got, tt.category)
			}
		})
	}
}

func TestNewTagError_NilCause(t *testing.T) {
	te := newTagError("get", KindCluster, "x", nil)
	if te.Message != "" {
		t.Errorf("Message = %q, want empty", te.Message)
	}
	if te.Category != ErrCategoryResource {
		t.Errorf("Category = %q, want resource", te.Category)
	}
}

func TestDiagnosticSummary(t *testing.T) {
	if got := DiagnosticSummary(nil); got != "" {
		t.Errorf("expected empty summary for no errors, got %q", got)
	}

	errs := []error{
		newTagError("resolve", KindCluster, "a", fmt.Errorf("missing: %w", ErrNotFound)),
		newTagError("edit", KindCluster, "b", errors.New("boom")),
	}
	got := DiagnosticSummary(errs)
	if !strings.Contains(got, "2 error(s)") {
		t.Errorf("expected error count in summary, got %q", got)
	}
	if !strings.Contains(got, "1. resolve cluster \"a\"") || !strings.Contains(got, "2. edit cluster \"b\"") {
		t.Errorf("expected numbered entries, got %q", got)
	}
}
