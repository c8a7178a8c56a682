package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/holtvik/ansuz/internal/catalog"
	"github.com/holtvik/ansuz/internal/curation"
	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/mapgen"
	"github.com/holtvik/ansuz/internal/models"
	"github.com/holtvik/ansuz/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	p := testutil.NewProject(t)
	p.AddSource("hq", false)
	p.WriteFile("hq", "profiles/analyst.md", "---\nid: analyst\ntype: profile\n---\nProfile body.\n")
	p.WriteFile("hq", "skills/summarize.md", "---\nid: summarize\ntype: skill\ntags:\n  - summary\n---\n")
	p.WriteFile("hq", "data/2026-02-05_standup.md", "---\nid: standup\ntype: data\nsummary_1: Standup notes.\n---\nMeeting body.\n")

	svc := curation.New(p.Registry(), p.Store(), testutil.Logger(),
		curator.DefaultLimits(), mapgen.Options{}, catalog.Options{})
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are invoked
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "curate_context":
		result, err = srv.curateContext(ctx, req)
	case "list_catalog":
		result, err = srv.listCatalog(ctx, req)
	case "read_entity":
		result, err = srv.readEntity(ctx, req)
	case "build_maps":
		result, err = srv.buildMaps(ctx, req)
	case "get_entity_contract":
		result, err = srv.getEntityContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCurateContext(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "curate_context", map[string]interface{}{
		"request": "give me a summary",
	})
	if r.IsError {
		t.Fatalf("tool errored: %s", resultText(r))
	}

	var b models.ContextBundle
	if err := json.Unmarshal([]byte(resultText(r)), &b); err != nil {
		t.Fatalf("result is not a bundle: %v", err)
	}
	if b.Profile == nil || b.Profile.ID != "analyst" {
		t.Errorf("profile = %+v", b.Profile)
	}
	if len(b.Skills) != 1 || b.Skills[0].ID != "summarize" {
		t.Errorf("skills = %+v", b.Skills)
	}
	if len(b.Maps) != 2 {
		t.Errorf("maps = %v", b.Maps)
	}
}

func TestCurateContext_LimitOverrides(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "curate_context", map[string]interface{}{
		"request":     "anything",
		"max_records": float64(0),
	})
	var b models.ContextBundle
	if err := json.Unmarshal([]byte(resultText(r)), &b); err != nil {
		t.Fatal(err)
	}
	if len(b.Records) != 0 {
		t.Errorf("records = %+v, want none", b.Records)
	}
}

func TestCurateContext_MissingRequest(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "curate_context", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without request argument")
	}
}

func TestListCatalog(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_catalog", map[string]interface{}{})
	text := resultText(r)
	for _, id := range []string{"analyst", "summarize", "standup"} {
		if !strings.Contains(text, id) {
			t.Errorf("listing missing %q: %q", id, text)
		}
	}

	r = callTool(t, srv, "list_catalog", map[string]interface{}{"type": "skill"})
	text = resultText(r)
	if !strings.Contains(text, "summarize") || strings.Contains(text, "analyst") {
		t.Errorf("filtered listing = %q", text)
	}

	r = callTool(t, srv, "list_catalog", map[string]interface{}{"type": "bogus"})
	if !r.IsError {
		t.Error("expected error for unknown type")
	}
}

func TestReadEntity(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_entity", map[string]interface{}{"id": "standup"})
	if !strings.Contains(resultText(r), "Meeting body.") {
		t.Errorf("content = %q", resultText(r))
	}

	r = callTool(t, srv, "read_entity", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing entity")
	}
}

func TestBuildMaps(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "build_maps", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("tool errored: %s", resultText(r))
	}
	var res mapgen.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Maps) != 2 {
		t.Errorf("maps = %v", res.Maps)
	}
}

func TestGetEntityContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_entity_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "frontmatter") {
		t.Errorf("contract = %q", resultText(r))
	}
}

func TestReadEntityResource(t *testing.T) {
	srv := testServer(t)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ansuz://hq/data/standup"
	contents, err := srv.readEntityResource(context.Background(), req)
	if err != nil {
		t.Fatalf("readEntityResource: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, "Meeting body.") {
		t.Errorf("contents = %+v", contents)
	}
}

func TestReadEntityResource_MapFile(t *testing.T) {
	srv := testServer(t)
	if _, err := srv.svc.BuildMaps(nil); err != nil {
		t.Fatal(err)
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ansuz://outputs/map/records_tree.txt"
	contents, err := srv.readEntityResource(context.Background(), req)
	if err != nil {
		t.Fatalf("readEntityResource: %v", err)
	}
	tc := contents[0].(mcp.TextResourceContents)
	if !strings.HasPrefix(tc.Text, "# Data Records") {
		t.Errorf("map content = %q", tc.Text)
	}
}

func TestParseResourceURI(t *testing.T) {
	source, segment, name, err := parseResourceURI("ansuz://hq/skills/summarize")
	if err != nil {
		t.Fatal(err)
	}
	if source != "hq" || segment != "skills" || name != "summarize" {
		t.Errorf("parsed = %q %q %q", source, segment, name)
	}

	for _, uri := range []string{"http://x/y/z", "ansuz://toofew/parts", "ansuz:///a/b"} {
		if _, _, _, err := parseResourceURI(uri); err == nil {
			t.Errorf("expected error for %q", uri)
		}
	}
}
