// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the record tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/recall/internal/archive"
	"github.com/starford/recall/internal/recordservice"
)

const formatURI = "recall://summary-format"

// Server wraps the MCP server with the record tools.
type Server struct {
	mcp      *server.MCPServer
	records  *recordservice.Service
	archiver *archive.Engine
}

// New creates a new MCP server with all record tools registered.
func New(records *recordservice.Service, archiver *archive.Engine) *Server {
	s := &Server{records: records, archiver: archiver}

	s.mcp = server.NewMCPServer(
		"recall",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_record",
		mcp.WithDescription("Create a new memory record with template summary and full-log documents. "+
			"Fill the summary following the recall://summary-format resource, then call rebuild_index."),
		mcp.WithString("name", mcp.Description("Optional record id (mem-YYYYMMDD-HHMMSS); defaults to the current time")),
	), s.createRecord)

	s.mcp.AddTool(mcp.NewTool("read_record",
		mcp.WithDescription("Read the summary document of an active or archived record."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record id")),
	), s.readRecord)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Case-insensitive search over record ids, topics, keywords and full logs in both partitions."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Substring to look for")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("rebuild_index",
		mcp.WithDescription("Regenerate INDEX.md and the skill keyword line from the active records."),
	), s.rebuildIndex)

	s.mcp.AddTool(mcp.NewTool("list_archived",
		mcp.WithDescription("List archived records with their topic and date."),
	), s.listArchived)

	s.mcp.AddTool(mcp.NewTool("reactivate_record",
		mcp.WithDescription("Move an archived record back to the active partition."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record id")),
	), s.reactivateRecord)

	s.mcp.AddTool(mcp.NewTool("archive_records",
		mcp.WithDescription("Apply the archival policy: records past the age threshold or over capacity move to the archive."),
		mcp.WithBoolean("dry_run", mcp.Description("Only report candidates")),
		mcp.WithBoolean("force", mcp.Description("Archive the oldest remaining record regardless of capacity")),
	), s.archiveRecords)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Report partition sizes and how many records are due for archival."),
	), s.getStats)

	// Resource: summary format contract.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Summary Format",
			mcp.WithResourceDescription("Labels the metadata extractor recognizes in summary documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.records.Create(req.GetString("name", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", rec.ID)), nil
}

func (s *Server) readRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, data, err := s.records.Read(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword, err := req.RequireString("keyword")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.records.Search(keyword)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no records found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) rebuildIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.records.Rebuild()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) listArchived(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.records.ListArchived()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("no archived records"), nil
	}
	return jsonResult(list)
}

func (s *Server) reactivateRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.records.Reactivate(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", out, name)), nil
}

func (s *Server) archiveRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := archive.Apply
	if req.GetBool("dry_run", false) {
		mode = archive.DryRun
	}
	rep, err := s.archiver.Run(mode, req.GetBool("force", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

func (s *Server) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.archiver.Stats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     SummaryFormatContract,
		},
	}, nil
}
