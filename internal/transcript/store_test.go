package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	if ok, err := store.Exists(ctx, "p1"); err != nil || ok {
		t.Fatalf("expected no transcript yet, ok=%v err=%v", ok, err)
	}

	content := "Patient Interview Transcript\nPatient ID: p1\n"
	if err := store.Write(ctx, "p1", content); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Read(ctx, "p1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != content {
		t.Fatalf("read back %q, want %q", got, content)
	}

	if ok, err := store.Exists(ctx, "p1"); err != nil || !ok {
		t.Fatalf("expected transcript to exist, ok=%v err=%v", ok, err)
	}

	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Read(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := store.Write(context.Background(), "p1", "text"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// One {patientID}.txt per patient under the Interview folder.
	if _, err := os.Stat(filepath.Join(dir, "Interview", "p1.txt")); err != nil {
		t.Fatalf("expected Interview/p1.txt: %v", err)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	if err := store.Write(ctx, "p1", "old"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.Write(ctx, "p1", "new"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := store.Read(ctx, "p1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "new" {
		t.Fatalf("expected latest transcript to win, got %q", got)
	}
}

func TestFileStoreRejectsPathEscapes(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	for _, id := range []string{"", "../outside", "a/b", `a\b`} {
		if err := store.Write(ctx, id, "x"); err == nil {
			t.Fatalf("expected invalid id %q to be rejected", id)
		}
	}
}

func TestFileStoreDeleteMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
