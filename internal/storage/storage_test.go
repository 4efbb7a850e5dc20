package storage

import (
	"context"
	"errors"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("create file store: %v", err)
	}

	return map[string]Store{
		"mem":  NewMemStore(1),
		"file": fs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			blob := []byte("serialized circuit bytes")

			handle, err := s.Put(ctx, blob)
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if handle != ComputeHandle(blob) {
				t.Errorf("handle mismatch")
			}

			got, err := s.Get(ctx, handle)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != string(blob) {
				t.Errorf("got %q, want %q", got, blob)
			}

			// Identical content maps to the same handle.
			again, err := s.Put(ctx, blob)
			if err != nil {
				t.Fatalf("put again: %v", err)
			}
			if again != handle {
				t.Errorf("dedup broken: %s != %s", again, handle)
			}

			if err := s.Delete(ctx, handle); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := s.Get(ctx, handle); !errors.Is(err, ErrNotFound) {
				t.Errorf("get after delete: got %v, want ErrNotFound", err)
			}
			if err := s.Delete(ctx, handle); !errors.Is(err, ErrNotFound) {
				t.Errorf("double delete: got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestMemStoreCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(0)

	if _, err := s.Put(ctx, []byte("x")); !errors.Is(err, ErrStorageFull) {
		t.Errorf("put over capacity: got %v, want ErrStorageFull", err)
	}
}
