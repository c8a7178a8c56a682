package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Tree\nrecords\n")
	if err := s.Write("outputs/records_tree.txt", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("outputs/records_tree.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("runs/2026-02-05/context_bundle.json", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("runs/2026-02-05/context_bundle.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("outputs/records_index.md", []byte("old"))
	if err := s.Write("outputs/records_index.md", []byte("new")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("outputs/records_index.md")
	if string(got) != "new" {
		t.Errorf("content = %q, want new", got)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Read("../outside.md"); err == nil {
		t.Error("expected traversal rejection on read")
	}
	if err := s.Write("../outside.md", []byte("x")); err == nil {
		t.Error("expected traversal rejection on write")
	}
	if err := s.Write("/abs/path.md", []byte("x")); err == nil {
		t.Error("expected absolute path rejection")
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("outputs/map_cache.json", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, "outputs"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".ansuz-tmp-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestNewFS_MissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}
