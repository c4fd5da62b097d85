// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the compile subsystem to automated thread participants
// via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nikolaef43/brenner-bot-sub013/internal/compilesvc"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
	"github.com/nikolaef43/brenner-bot-sub013/internal/thread"
)

// Server wraps the MCP server with compile tools.
type Server struct {
	mcp *server.MCPServer
	svc *compilesvc.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *compilesvc.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"brenner-bot",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("thread_status",
		mcp.WithDescription("Derive the round, phase, per-role completion, and pending acknowledgements for a thread."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread identifier")),
	), s.threadStatus)

	s.mcp.AddTool(mcp.NewTool("preview_artifact",
		mcp.WithDescription("Recompute the thread's artifact from its message history and return the rendered markdown plus merge/lint diagnostics. Records nothing."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread identifier")),
	), s.previewArtifact)

	s.mcp.AddTool(mcp.NewTool("compile_artifact",
		mcp.WithDescription("Compile the thread's artifact, record the compile, and publish it back to the thread as a COMPILED message with ack required."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread identifier")),
	), s.compileArtifact)

	s.mcp.AddTool(mcp.NewTool("extract_deltas",
		mcp.WithDescription("Extract and validate the fenced delta blocks from a message body. "+
			"Delta blocks MUST follow the canonical format; read it first via the "+
			"get_delta_contract tool or the brenner://delta-format resource."),
		mcp.WithString("body", mcp.Required(), mcp.Description("Message body to scan")),
	), s.extractDeltas)

	s.mcp.AddTool(mcp.NewTool("classify_subject",
		mcp.WithDescription("Classify a message subject line into the thread state-machine vocabulary."),
		mcp.WithString("subject", mcp.Required(), mcp.Description("Subject line to classify")),
	), s.classifySubject)

	s.mcp.AddTool(mcp.NewTool("get_delta_contract",
		mcp.WithDescription("Returns the canonical delta block format contract. "+
			"Call this before posting delta messages to ensure correct structure."),
	), s.getDeltaContract)

	// Resource: delta format contract.
	s.mcp.AddResource(
		mcp.NewResource("brenner://delta-format", "Delta Format Contract",
			mcp.WithResourceDescription("Canonical delta block format that all edit messages must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDeltaFormatResource,
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

func (s *Server) threadStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("thread_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Status(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("thread %s: %v", id, err)), nil
	}
	out, _ := json.MarshalIndent(st, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) previewArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("thread_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Preview(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("thread %s: %v", id, err)), nil
	}
	return mcp.NewToolResultText(res.Rendered), nil
}

func (s *Server) compileArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("thread_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Compile(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("thread %s: %v", id, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"compiled v%d (message %d): %d applied, %d skipped, lint errors %d",
		res.Artifact.Metadata.Version, res.MessageID, res.Applied, res.Skipped,
		res.Report.Summary.Errors)), nil
}

func (s *Server) extractDeltas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(delta.Extract(body), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) classifySubject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, err := req.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(thread.Classify(subject), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDeltaContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DeltaFormatContract), nil
}

func (s *Server) readDeltaFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "brenner://delta-format",
			MIMEType: "text/markdown",
			Text:     DeltaFormatContract,
		},
	}, nil
}
