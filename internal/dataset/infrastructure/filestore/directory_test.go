package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirectory_Put(t *testing.T) {
	root := t.TempDir()
	dir, err := NewDirectory(filepath.Join(root, "out"))
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}
	location, err := dir.Put(context.Background(), "20240101T00/processed.csv", "text/csv", strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	want := filepath.Join(root, "out", "20240101T00", "processed.csv")
	if location != want {
		t.Fatalf("location = %q, want %q", location, want)
	}
	data, err := os.ReadFile(location)
	if err != nil || string(data) != "a,b\n" {
		t.Fatalf("content = %q, %v", data, err)
	}
}

func TestDirectory_PutStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	dir, err := NewDirectory(root)
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}
	location, err := dir.Put(context.Background(), "../escape.csv", "", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if location != filepath.Join(root, "escape.csv") {
		t.Fatalf("location = %q escaped root", location)
	}
}
