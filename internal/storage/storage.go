// Package storage provides content-addressed storage for circuit and
// ciphertext blobs exchanged between clients and evaluation workers.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Common errors.
var (
	ErrNotFound    = errors.New("blob not found")
	ErrStorageFull = errors.New("storage capacity exceeded")
)

// Handle uniquely identifies a stored blob by content hash. Identical
// blobs, such as a circuit submitted with many input vectors, share one
// handle.
type Handle string

// ComputeHandle derives the handle for a blob.
func ComputeHandle(data []byte) Handle {
	hash := sha256.Sum256(data)
	return Handle(hex.EncodeToString(hash[:]))
}

// Store is the interface evaluation workers load circuits and ciphertext
// vectors through, and store results back into.
type Store interface {
	// Put saves a blob and returns its handle.
	Put(ctx context.Context, data []byte) (Handle, error)
	// Get retrieves a blob by handle.
	Get(ctx context.Context, handle Handle) ([]byte, error)
	// Delete removes a blob.
	Delete(ctx context.Context, handle Handle) error
	// Close closes the store.
	Close() error
}

// MemStore is an in-memory Store with a byte-capacity bound.
type MemStore struct {
	mu       sync.RWMutex
	blobs    map[Handle][]byte
	capacity int64
	size     int64
}

// NewMemStore creates an in-memory store holding at most capacityMB.
func NewMemStore(capacityMB int64) *MemStore {
	return &MemStore{
		blobs:    make(map[Handle][]byte),
		capacity: capacityMB * 1024 * 1024,
	}
}

func (s *MemStore) Put(ctx context.Context, data []byte) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := ComputeHandle(data)
	if _, ok := s.blobs[handle]; ok {
		return handle, nil // Dedup by content hash.
	}

	if s.size+int64(len(data)) > s.capacity {
		return "", ErrStorageFull
	}

	s.blobs[handle] = append([]byte(nil), data...)
	s.size += int64(len(data))

	return handle, nil
}

func (s *MemStore) Get(ctx context.Context, handle Handle) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[handle]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), data...), nil
}

func (s *MemStore) Delete(ctx context.Context, handle Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[handle]
	if !ok {
		return ErrNotFound
	}

	s.size -= int64(len(data))
	delete(s.blobs, handle)
	return nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs = nil
	s.size = 0
	return nil
}

// FileStore is a file-backed Store, sharded by handle prefix.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a file-backed store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// path shards by the first two handle characters so a large job backlog does
// not pile every blob into one directory.
func (s *FileStore) path(handle Handle) string {
	h := string(handle)
	if len(h) < 4 {
		return filepath.Join(s.baseDir, h)
	}
	return filepath.Join(s.baseDir, h[:2], h)
}

func (s *FileStore) Put(ctx context.Context, data []byte) (Handle, error) {
	handle := ComputeHandle(data)
	path := s.path(handle)

	if _, err := os.Stat(path); err == nil {
		return handle, nil // Dedup by content hash.
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("create shard dir: %w", err)
	}

	// Write atomically via temp file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	return handle, nil
}

func (s *FileStore) Get(ctx context.Context, handle Handle) ([]byte, error) {
	data, err := os.ReadFile(s.path(handle))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *FileStore) Delete(ctx context.Context, handle Handle) error {
	if err := os.Remove(s.path(handle)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
