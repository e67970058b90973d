package gcs

import (
	"context"
	"testing"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), "  ", "", nil); err == nil {
		t.Fatalf("New() error = nil, want bucket required")
	}
}
