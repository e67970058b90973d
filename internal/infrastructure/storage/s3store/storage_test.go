package s3store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/simplycomply/compliance-api/internal/infrastructure/resilience"
)

type fakeBucket struct {
	mu       sync.Mutex
	objects  map[string]string
	failures int
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	switch r.Method {
	case http.MethodPut:
		raw, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = string(raw)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(b.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStorage(t *testing.T, bucket *fakeBucket) *Storage {
	t.Helper()
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)
	exec := resilience.NewExecutor(resilience.Config{
		Retry: resilience.RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond},
	})
	store, err := New(Config{
		Bucket:          "docs",
		Endpoint:        srv.URL,
		Region:          "eu-west-2",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	}, exec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestPutRetriesAndDelete(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{}, failures: 1}
	store := newTestStorage(t, bucket)
	ctx := context.Background()

	if err := store.Put(ctx, "private-documents/a.txt", strings.NewReader("hello"), 5, "text/plain"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got := bucket.objects["/docs/private-documents/a.txt"]; !strings.Contains(got, "hello") {
		t.Fatalf("object body = %q", got)
	}
	if err := store.Delete(ctx, "private-documents/a.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(bucket.objects) != 0 {
		t.Fatalf("objects left after delete: %v", bucket.objects)
	}
}

func TestPresignGetCarriesExpiry(t *testing.T) {
	store := newTestStorage(t, &fakeBucket{objects: map[string]string{}})
	url, err := store.PresignGet(context.Background(), "private-documents/a.pdf", 300*time.Second)
	if err != nil {
		t.Fatalf("PresignGet() error = %v", err)
	}
	if !strings.Contains(url, "/docs/private-documents/a.pdf") || !strings.Contains(url, "X-Amz-Expires=300") {
		t.Fatalf("unexpected presigned url %q", url)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatalf("New() error = nil, want missing bucket")
	}
}
