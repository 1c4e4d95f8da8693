// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Lesa reading library for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lesa/internal/docservice"
)

// Server wraps the MCP server with Lesa tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Lesa tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lesa",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List documents in the library with title, tags, word count and estimated reading time."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document split into sections. Each section carries its heading, "+
			"slug id, level and word count. Use read_section to fetch one section at a time "+
			"for long documents."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. guides/setup.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("read_section",
		mcp.WithDescription("Read a single section of a document by its slug id. "+
			"Section ids are listed by read_document and list_documents."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
		mcp.WithString("section_id", mcp.Required(), mcp.Description("Slug id of the section (e.g. installation)")),
	), s.readSection)

	s.mcp.AddTool(mcp.NewTool("search_sections",
		mcp.WithDescription("Full-text search across document sections. Returns the matching "+
			"section ids with context snippets."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchSections)

	s.mcp.AddTool(mcp.NewTool("reading_stats",
		mcp.WithDescription("Get the reading-progress estimate for a document: time spent, "+
			"percent complete and estimated words read."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.readingStats)

	// Resource: document format description.
	s.mcp.AddResource(
		mcp.NewResource("lesa://document-format", "Document Format",
			mcp.WithResourceDescription("How Lesa documents are structured and sectioned."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
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

// listDocumentsLimit caps a single listing. The total is always reported so
// consumers can tell when a library is larger than one page.
const listDocumentsLimit = 500

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if t, err := req.RequireString("tag"); err == nil {
		tag = t
	}

	items, total, err := s.svc.ListDocuments(ctx, listDocumentsLimit, 0, tag, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload := map[string]any{
		"total":     total,
		"documents": items,
	}
	if total > len(items) {
		payload["truncated"] = true
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sectionID, err := req.RequireString("section_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sec, err := s.svc.GetSection(ctx, path, sectionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s#%s", path, sectionID)), nil
	}
	return mcp.NewToolResultText(sec.Content), nil
}

func (s *Server) searchSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prog, err := s.svc.GetProgress(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(prog, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "lesa://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
