package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFileAtomicCreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.txt")

	if err := WriteFileAtomic(path, []byte("first\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second\n" {
		t.Fatalf("content = %q, want second", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file after rewrite, got %d", len(entries))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")
	if err := WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestNewestFile(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.webm")
	recent := filepath.Join(dir, "recent.mp4")
	partial := filepath.Join(dir, "later.mp4.part")
	hidden := filepath.Join(dir, ".ytscribe.lock")
	for _, p := range []string{old, recent, partial, hidden} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	base := time.Now().Add(-time.Hour)
	mustChtimes(t, old, base)
	mustChtimes(t, recent, base.Add(time.Minute))
	mustChtimes(t, partial, base.Add(2*time.Minute))
	mustChtimes(t, hidden, base.Add(3*time.Minute))
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := NewestFile(dir, ".part")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != recent {
		t.Fatalf("NewestFile = %q (%v), want %q", got, ok, recent)
	}
}

func TestNewestFileEmptyDir(t *testing.T) {
	_, ok, err := NewestFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no candidate in empty directory")
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.mp3")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	size, err := FileSize(path)
	if err != nil || size != 5 {
		t.Fatalf("FileSize = %d, %v", size, err)
	}
	if _, err := FileSize(dir); err == nil {
		t.Fatal("expected error for directory")
	}
	if _, err := FileSize(filepath.Join(dir, "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func mustChtimes(t *testing.T, path string, ts time.Time) {
	t.Helper()
	if err := os.Chtimes(path, ts, ts); err != nil {
		t.Fatal(err)
	}
}
