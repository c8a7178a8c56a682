package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "sources.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadRegistry(t *testing.T) {
	root := writeRegistry(t, "sources:\n  - name: hq\n    path: hq\n  - name: fixtures\n    path: fixtures\n    ignore: true\n")
	reg, err := LoadRegistry(root, "sources.yaml")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("len = %d, want 2", len(reg.All()))
	}
	hq, ok := reg.Lookup("hq")
	if !ok || hq.Ignore {
		t.Errorf("hq = %+v, ok=%v", hq, ok)
	}
	fx, ok := reg.Lookup("fixtures")
	if !ok || !fx.Ignore {
		t.Errorf("fixtures should be ignorable")
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Error("unknown source should not resolve")
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	root := t.TempDir()
	if _, err := LoadRegistry(root, "sources.yaml"); err == nil {
		t.Fatal("missing registry file must be fatal")
	}
}

func TestLoadRegistry_DuplicateName(t *testing.T) {
	root := writeRegistry(t, "sources:\n  - name: hq\n    path: a\n  - name: hq\n    path: b\n")
	_, err := LoadRegistry(root, "sources.yaml")
	if err == nil || !strings.Contains(err.Error(), "listed twice") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestLoadRegistry_ReservedOutputs(t *testing.T) {
	root := writeRegistry(t, "sources:\n  - name: outputs\n    path: anywhere\n")
	if _, err := LoadRegistry(root, "sources.yaml"); err == nil {
		t.Fatal("outputs is reserved and must be rejected")
	}
}

func TestSourceRoot(t *testing.T) {
	root := writeRegistry(t, "sources:\n  - name: hq\n    path: content/hq\n")
	reg, err := LoadRegistry(root, "sources.yaml")
	if err != nil {
		t.Fatal(err)
	}
	src, _ := reg.Lookup("hq")
	want := filepath.Join(reg.Root(), "content", "hq")
	if got := reg.SourceRoot(src); got != want {
		t.Errorf("SourceRoot = %q, want %q", got, want)
	}
}
