package curation

import (
	"errors"
	"strings"
	"testing"

	"github.com/holtvik/ansuz/internal/apperr"
	"github.com/holtvik/ansuz/internal/bundle"
	"github.com/holtvik/ansuz/internal/catalog"
	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/mapgen"
	"github.com/holtvik/ansuz/internal/testutil"
)

func newService(t *testing.T) (*Service, *testutil.Project) {
	t.Helper()
	p := testutil.NewProject(t)
	p.AddSource("hq", false)
	p.WriteFile("hq", "profiles/analyst.md", "---\nid: analyst\ntype: profile\n---\nProfile body.\n")
	p.WriteFile("hq", "skills/summarize.md", "---\nid: summarize\ntype: skill\ntags:\n  - summary\n---\n")
	p.WriteFile("hq", "data/2026-02-05_standup.md", "---\nid: standup\ntype: data\nsummary_1: Standup notes.\n---\n")

	svc := New(p.Registry(), p.Store(), testutil.Logger(),
		curator.DefaultLimits(), mapgen.Options{}, catalog.Options{})
	return svc, p
}

func TestService_CatalogBeforeReload(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Catalog(); err == nil {
		t.Fatal("expected error before first reload")
	}
	if _, err := svc.Curate("anything", nil); err == nil {
		t.Fatal("Curate must fail before first reload")
	}
}

func TestService_Reload(t *testing.T) {
	svc, p := newService(t)
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	cat, err := svc.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 3 {
		t.Errorf("Len = %d, want 3", cat.Len())
	}

	// A reload swaps in new entities; the old snapshot stays usable.
	p.WriteFile("hq", "tools/calc.md", "---\nid: calc\ntype: tool\n---\n")
	if err := svc.Reload(); err != nil {
		t.Fatal(err)
	}
	fresh, _ := svc.Catalog()
	if cat.Len() != 3 || fresh.Len() != 4 {
		t.Errorf("lens = %d, %d; want 3, 4", cat.Len(), fresh.Len())
	}
}

func TestService_EntityAndContent(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.Reload(); err != nil {
		t.Fatal(err)
	}

	e, err := svc.Entity("analyst")
	if err != nil {
		t.Fatalf("Entity: %v", err)
	}
	if e.ID != "analyst" {
		t.Errorf("entity = %+v", e)
	}

	_, content, err := svc.Content("analyst")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if !strings.Contains(string(content), "Profile body.") {
		t.Errorf("content = %q", content)
	}

	if _, err := svc.Entity("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing entity: got %v", err)
	}
}

func TestService_Curate(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.Reload(); err != nil {
		t.Fatal(err)
	}

	sel, err := svc.Curate("give me a summary", nil)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Profile == nil || sel.Profile.Entity.ID != "analyst" {
		t.Errorf("profile = %+v", sel.Profile)
	}
	if len(sel.Skills) != 1 || sel.Skills[0].Entity.ID != "summarize" {
		t.Errorf("skills = %+v", sel.Skills)
	}

	// Explicit limits override the service defaults.
	sel, err = svc.Curate("give me a summary", &curator.Limits{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Skills) != 0 {
		t.Errorf("zero limits must select nothing, got %+v", sel.Skills)
	}
}

func TestService_BuildMaps(t *testing.T) {
	svc, p := newService(t)
	if err := svc.Reload(); err != nil {
		t.Fatal(err)
	}

	res, err := svc.BuildMaps(nil)
	if err != nil {
		t.Fatalf("BuildMaps: %v", err)
	}
	if len(res.Maps) != 2 {
		t.Errorf("maps = %v", res.Maps)
	}
	if _, err := p.Store().Read("outputs/records_tree.txt"); err != nil {
		t.Errorf("tree not written: %v", err)
	}
	if _, err := p.Store().Read("outputs/records_index.md"); err != nil {
		t.Errorf("index not written: %v", err)
	}
}

func TestService_BuildBundle(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.Reload(); err != nil {
		t.Fatal(err)
	}

	b, err := svc.BuildBundle(bundle.Params{Request: "give me a summary"})
	if err != nil {
		t.Fatalf("BuildBundle: %v", err)
	}
	if b.OriginalRequest != "give me a summary" {
		t.Errorf("request = %q", b.OriginalRequest)
	}
	if b.Profile == nil {
		t.Error("expected a profile")
	}
	if len(b.ContextReadOrder) == 0 {
		t.Error("expected a read order")
	}
}
