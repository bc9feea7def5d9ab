package main

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveUploadPathHTTPUpload(t *testing.T) {
	base := t.TempDir()
	t.Setenv("UPLOAD_BASE", base)
	touch(t, filepath.Join(base, "2026-08", "receipt.jpg"))

	got := resolveUploadPath("inbox", "receipt.jpg", "2026-08/receipt.jpg")
	want := filepath.Join(base, "2026-08", "receipt.jpg")
	if got != want {
		t.Fatalf("resolveUploadPath = %q, want %q", got, want)
	}
}

func TestResolveUploadPathInboxScanner(t *testing.T) {
	t.Setenv("UPLOAD_BASE", t.TempDir()) // base exists but holds nothing
	root := t.TempDir()
	dir := filepath.Join(root, "inbox")
	touch(t, filepath.Join(dir, "receipt.jpg"))

	got := resolveUploadPath(dir, "receipt.jpg", "inbox/receipt.jpg")
	want := filepath.Join(root, "inbox", "receipt.jpg")
	if got != want {
		t.Fatalf("resolveUploadPath = %q, want %q", got, want)
	}
}

func TestResolveUploadPathFallsBackToDir(t *testing.T) {
	t.Setenv("UPLOAD_BASE", t.TempDir())
	dir := filepath.Join(t.TempDir(), "inbox")

	if got, want := resolveUploadPath(dir, "a.jpg", ""), filepath.Join(dir, "a.jpg"); got != want {
		t.Fatalf("no store path: got %q, want %q", got, want)
	}
	// store path that resolves nowhere on disk keeps the old behavior
	if got, want := resolveUploadPath(dir, "a.jpg", "2026-08/a.jpg"), filepath.Join(dir, "a.jpg"); got != want {
		t.Fatalf("missing store file: got %q, want %q", got, want)
	}
}
