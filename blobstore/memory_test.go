package blobstore

import (
	"context"
	"errors"
	"testing"
)

func TestReadDICOMReturnsStoredBytes(t *testing.T) {
	store := NewMemoryStore()
	store.Put("instance-1", []byte("hello"))

	data, err := store.ReadDICOM(context.Background(), "instance-1")
	if err != nil {
		t.Fatalf("ReadDICOM: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadDICOM = %q, want %q", data, "hello")
	}
}

func TestReadDICOMUnknownInstanceFails(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.ReadDICOM(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFailTransientFiresExactlyOnce(t *testing.T) {
	store := NewMemoryStore()
	store.Put("instance-1", []byte("hello"))
	store.FailTransient("instance-1")

	if _, err := store.ReadDICOM(context.Background(), "instance-1"); !errors.Is(err, ErrTransient) {
		t.Fatalf("first read error = %v, want ErrTransient", err)
	}

	data, err := store.ReadDICOM(context.Background(), "instance-1")
	if err != nil {
		t.Fatalf("second read should succeed, got error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("second read = %q, want %q", data, "hello")
	}
}
