// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the Ansuz curation pipeline for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/holtvik/ansuz/internal/bundle"
	"github.com/holtvik/ansuz/internal/curation"
	"github.com/holtvik/ansuz/internal/curator"
	"github.com/holtvik/ansuz/internal/mapgen"
	"github.com/holtvik/ansuz/internal/models"
	"github.com/holtvik/ansuz/internal/sources"
)

// Server wraps the MCP server with Ansuz curation tools.
type Server struct {
	mcp *server.MCPServer
	svc *curation.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *curation.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("curate_context",
		mcp.WithDescription("Curate a context bundle for a free-text request: one profile, "+
			"ranked skills, tools, and data records, plus generated maps and an ordered "+
			"reading list. Maps always precede full record content in the read order."),
		mcp.WithString("request", mcp.Required(), mcp.Description("Free-text request to curate context for")),
		mcp.WithNumber("max_skills", mcp.Description("Maximum skills to select (default 3)")),
		mcp.WithNumber("max_tools", mcp.Description("Maximum tools to select (default 3)")),
		mcp.WithNumber("max_records", mcp.Description("Maximum data records to select (default 8)")),
		mcp.WithString("run_dir", mcp.Description("Optional directory (relative to the project root) to persist the bundle JSON under")),
	), s.curateContext)

	s.mcp.AddTool(mcp.NewTool("list_catalog",
		mcp.WithDescription("List the entity catalog, optionally filtered by type."),
		mcp.WithString("type", mcp.Description("Optional entity type: profile, skill, tool, or data")),
	), s.listCatalog)

	s.mcp.AddTool(mcp.NewTool("read_entity",
		mcp.WithDescription("Read the full Markdown content of a catalog entity by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
	), s.readEntity)

	s.mcp.AddTool(mcp.NewTool("build_maps",
		mcp.WithDescription("Regenerate the records tree and index map artifacts and return their references."),
	), s.buildMaps)

	s.mcp.AddTool(mcp.NewTool("get_entity_contract",
		mcp.WithDescription("Returns the canonical Ansuz entity format contract. "+
			"Call this before authoring catalog documents to ensure correct frontmatter."),
	), s.getEntityContract)

	// Resource: entity format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://entity-format", "Entity Format Contract",
			mcp.WithResourceDescription("Canonical Markdown entity format that all catalog documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	// Resource template: individual entities and generated map files.
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate("ansuz://{source}/{type}/{id}", "Catalog Entity",
			mcp.WithTemplateDescription("A single catalog entity, addressed by source, type, and id. "+
				"The outputs source addresses generated map files as ansuz://outputs/map/{filename}."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.readEntityResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) curateContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request, err := req.RequireString("request")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limits := curator.DefaultLimits()
	limits.MaxSkills = intArg(req, "max_skills", limits.MaxSkills)
	limits.MaxTools = intArg(req, "max_tools", limits.MaxTools)
	limits.MaxRecords = intArg(req, "max_records", limits.MaxRecords)

	b, err := s.svc.BuildBundle(bundle.Params{
		Request: request,
		Limits:  limits,
		RunDir:  req.GetString("run_dir", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.MarshalIndent(b, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := s.svc.Catalog()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var ents []models.Entity
	if t := models.Type(req.GetString("type", "")); t != "" {
		if !t.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown entity type: %s", t)), nil
		}
		ents = cat.ByType(t)
	} else {
		ents = cat.All()
	}

	var sb strings.Builder
	for _, e := range ents {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", e.ID, e.Type, e.Ref)
	}
	if sb.Len() == 0 {
		return mcp.NewToolResultText("catalog is empty"), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) readEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, content, err := s.svc.Content(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) buildMaps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.BuildMaps(nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getEntityContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntityFormatContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://entity-format",
			MIMEType: "text/markdown",
			Text:     EntityFormatContract,
		},
	}, nil
}

// readEntityResource serves ansuz://<source>/<type>/<id> for catalog
// entities and ansuz://outputs/map/<filename> for generated maps.
func (s *Server) readEntityResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	source, kind, name, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	var content []byte
	switch {
	case source == sources.OutputsSource && kind == "map":
		content, err = s.svc.Resolver().Resolve(models.Ref{
			Source: sources.OutputsSource,
			Path:   path.Join(mapgen.OutputDir, name),
		})
	default:
		_, content, err = s.svc.Content(name)
	}
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     string(content),
		},
	}, nil
}

// parseResourceURI splits ansuz://<source>/<segment>/<name>.
func parseResourceURI(uri string) (source, segment, name string, err error) {
	const scheme = "ansuz://"
	if !strings.HasPrefix(uri, scheme) {
		return "", "", "", fmt.Errorf("unsupported resource uri: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("malformed resource uri: %s", uri)
	}
	return parts[0], parts[1], parts[2], nil
}

// intArg extracts an integer argument, returning defaultVal if the key is
// missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
