package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/holtvik/ansuz/internal/catalog"
	"github.com/holtvik/ansuz/internal/curation"
	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/mapgen"
	"github.com/holtvik/ansuz/internal/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := newTestService(t)
	srv := httptest.NewServer(NewRouter(svc, false, "", nil))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T) *curation.Service {
	t.Helper()
	p := testutil.NewProject(t)
	p.AddSource("hq", false)
	p.WriteFile("hq", "profiles/analyst.md", "---\nid: analyst\ntype: profile\n---\nProfile body.\n")
	p.WriteFile("hq", "skills/summarize.md", "---\nid: summarize\ntype: skill\ntags:\n  - summary\n---\n")
	p.WriteFile("hq", "skills/schedule.md", "---\nid: schedule\ntype: skill\n---\n")
	p.WriteFile("hq", "data/2026-02-05_standup.md", "---\nid: standup\ntype: data\nsummary_1: Standup notes.\n---\n")

	svc := curation.New(p.Registry(), p.Store(), testutil.Logger(),
		curator.DefaultLimits(), mapgen.Options{}, catalog.Options{})
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return svc
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestListCatalog(t *testing.T) {
	srv := newServer(t)

	resp := get(t, srv, "/catalog")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body CatalogResponse
	decode(t, resp, &body)
	if body.Total != 4 {
		t.Errorf("total = %d, want 4", body.Total)
	}
}

func TestListCatalog_TypeFilter(t *testing.T) {
	srv := newServer(t)

	resp := get(t, srv, "/catalog?type=skill")
	var body CatalogResponse
	decode(t, resp, &body)
	if body.Total != 2 {
		t.Errorf("total = %d, want 2", body.Total)
	}
	for _, e := range body.Entities {
		if e.Type != "skill" {
			t.Errorf("unexpected entity %+v", e)
		}
	}

	resp = get(t, srv, "/catalog?type=bogus")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus type status = %d", resp.StatusCode)
	}
}

func TestGetEntity(t *testing.T) {
	srv := newServer(t)

	resp := get(t, srv, "/entities/analyst")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body EntityResponse
	decode(t, resp, &body)
	if body.Entity.ID != "analyst" {
		t.Errorf("entity = %+v", body.Entity)
	}
	if !strings.Contains(body.Content, "Profile body.") {
		t.Errorf("content = %q", body.Content)
	}

	resp = get(t, srv, "/entities/nope")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing entity status = %d", resp.StatusCode)
	}
}

func TestCurate(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "/curate", `{"request":"give me a summary"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body CurateResponse
	decode(t, resp, &body)
	if body.Profile == nil || body.Profile.Entity.ID != "analyst" {
		t.Errorf("profile = %+v", body.Profile)
	}
	if len(body.Skills) != 2 || body.Skills[0].Entity.ID != "summarize" {
		t.Errorf("skills = %+v", body.Skills)
	}
	if len(body.Notes) == 0 {
		t.Error("expected notes")
	}
}

func TestCurate_LimitOverrides(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "/curate", `{"request":"anything","max_skills":1}`)
	var body CurateResponse
	decode(t, resp, &body)
	if len(body.Skills) != 1 {
		t.Errorf("skills = %d, want 1", len(body.Skills))
	}
}

func TestCurate_BadRequests(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "/curate", `{not json`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", resp.StatusCode)
	}

	resp = post(t, srv, "/curate", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty request status = %d", resp.StatusCode)
	}
}

func TestBuildMaps(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "/maps", ``)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body MapsResponse
	decode(t, resp, &body)
	if len(body.Maps) != 2 {
		t.Errorf("maps = %v", body.Maps)
	}
}

func TestBuildBundle(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "/bundle", `{"request":"give me a summary"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	decode(t, resp, &body)
	if body["original_request"] != "give me a summary" {
		t.Errorf("original_request = %v", body["original_request"])
	}
	if _, ok := body["context_read_order"]; !ok {
		t.Error("context_read_order missing")
	}
}

func TestAuth(t *testing.T) {
	svc := newTestService(t)
	srv := httptest.NewServer(NewRouter(svc, true, "secret", nil))
	t.Cleanup(srv.Close)

	resp := get(t, srv, "/catalog")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/catalog", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token status = %d", resp.StatusCode)
	}
}
