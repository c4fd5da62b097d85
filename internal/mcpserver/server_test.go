package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nikolaef43/brenner-bot-sub013/internal/compilesvc"
	"github.com/nikolaef43/brenner-bot-sub013/internal/mailbox"
	"github.com/nikolaef43/brenner-bot-sub013/internal/testutil"
)

const threadID = "exp-001"

func testServer(t *testing.T) (*Server, *mailbox.Memory) {
	t.Helper()
	mb := mailbox.NewMemory()
	svc := compilesvc.NewService(mb, testutil.TestLog(t))
	return New(svc), mb
}

func seed(mb *mailbox.Memory) {
	testutil.SeedThread(mb,
		testutil.Msg(threadID, 1, "alice", "KICKOFF: does caching help?", "Let's find out."),
		testutil.Msg(threadID, 2, "alice", "[DELTA][thread-lead] round 1",
			testutil.DeltaBody(`{"operation":"ADD","section":"research_thread","payload":{"statement":"Does caching help?"}}`)),
		testutil.Msg(threadID, 3, "bob", "[DELTA][hypothesis-lead] round 1",
			testutil.DeltaBody(`{"operation":"ADD","section":"hypothesis","payload":{"statement":"Caching halves latency"}}`)),
	)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "thread_status":
		result, err = srv.threadStatus(ctx, req)
	case "preview_artifact":
		result, err = srv.previewArtifact(ctx, req)
	case "compile_artifact":
		result, err = srv.compileArtifact(ctx, req)
	case "extract_deltas":
		result, err = srv.extractDeltas(ctx, req)
	case "classify_subject":
		result, err = srv.classifySubject(ctx, req)
	case "get_delta_contract":
		result, err = srv.getDeltaContract(ctx, req)
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

func TestThreadStatusTool(t *testing.T) {
	srv, mb := testServer(t)
	seed(mb)

	r := callTool(t, srv, "thread_status", map[string]interface{}{"thread_id": threadID})
	text := resultText(r)
	if !strings.Contains(text, `"phase": "drafting"`) {
		t.Errorf("status = %s", text)
	}
}

func TestThreadStatusTool_MissingThread(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "thread_status", map[string]interface{}{"thread_id": "nope"})
	if !r.IsError {
		t.Error("expected error result")
	}
}

func TestPreviewArtifactTool(t *testing.T) {
	srv, mb := testServer(t)
	seed(mb)

	r := callTool(t, srv, "preview_artifact", map[string]interface{}{"thread_id": threadID})
	text := resultText(r)
	if !strings.HasPrefix(text, "# Research Artifact: exp-001") {
		t.Errorf("preview = %q", text)
	}

	// Preview must not publish anything.
	msgs, _ := mb.ListMessages(context.Background(), threadID)
	if len(msgs) != 3 {
		t.Errorf("preview published: %d messages", len(msgs))
	}
}

func TestCompileArtifactTool(t *testing.T) {
	srv, mb := testServer(t)
	seed(mb)

	r := callTool(t, srv, "compile_artifact", map[string]interface{}{"thread_id": threadID})
	text := resultText(r)
	if !strings.Contains(text, "compiled v1") || !strings.Contains(text, "2 applied") {
		t.Errorf("compile = %q", text)
	}

	msgs, _ := mb.ListMessages(context.Background(), threadID)
	if len(msgs) != 4 || msgs[3].Subject != "COMPILED: v1 artifact" {
		t.Errorf("published messages = %+v", msgs)
	}
}

func TestExtractDeltasTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "extract_deltas", map[string]interface{}{
		"body": testutil.DeltaBody(`{"operation":"ADD","section":"hypothesis","payload":{"statement":"H"}}`),
	})
	text := resultText(r)
	if !strings.Contains(text, `"valid_count": 1`) {
		t.Errorf("extract = %s", text)
	}
}

func TestClassifySubjectTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "classify_subject", map[string]interface{}{"subject": "COMPILED: v2 artifact"})
	text := resultText(r)
	if !strings.Contains(text, `"type": "compiled"`) || !strings.Contains(text, `"version": 2`) {
		t.Errorf("classify = %s", text)
	}
}

func TestGetDeltaContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_delta_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "```delta") {
		t.Errorf("contract = %q", text)
	}
}

func TestMissingArgument(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "thread_status", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing thread_id")
	}
}
