package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(CodeConflict)
	if meta.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409 for conflict, got %d", meta.HTTPStatus)
	}
	if meta.Retryable {
		t.Fatal("conflicts are terminal outcomes, not retryable")
	}

	meta = MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should fall back to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("row locked")
	err := Wrap(CodeDependency, cause, "commit transaction")
	if err.Unwrap() != cause {
		t.Fatal("expected wrapped cause to unwrap")
	}
	if !Retryable(err) {
		t.Fatal("dependency errors should be retryable")
	}

	outer := fmt.Errorf("placing order: %w", err)
	if !HasCode(outer, CodeDependency) {
		t.Fatal("HasCode should see through wrapping")
	}
	if As(outer) == nil {
		t.Fatal("As should find the typed error in the chain")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeConflict, "insufficient stock").
		WithDetails(map[string]any{"item": "iced latte", "available": 2})
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["available"] != 2 {
		t.Fatalf("details lost: %+v", details)
	}
}

func TestDumpChain(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeConflict, fmt.Errorf("balance 20 below 50"), "debit wallet")
	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}
