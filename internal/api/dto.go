package api

import (
	"github.com/nikolaef43/brenner-bot-sub013/internal/compilelog"
	"github.com/nikolaef43/brenner-bot-sub013/internal/compilesvc"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
	"github.com/nikolaef43/brenner-bot-sub013/internal/thread"
)

// ExtractRequest is the request body for POST /deltas/extract.
type ExtractRequest struct {
	Body string `json:"body"`
}

// ClassifyRequest is the request body for POST /classify.
type ClassifyRequest struct {
	Subject string `json:"subject"`
}

// CompileResult is the response for compile and preview operations
// (aliased from the service layer).
type CompileResult = compilesvc.Result

// ThreadStatus is the derived status response (aliased from the
// domain layer).
type ThreadStatus = thread.Status

// ParsedMessage is the extraction response (aliased from the domain
// layer).
type ParsedMessage = delta.ParsedMessage

// HistoryResponse wraps a thread's compile history.
type HistoryResponse struct {
	Compiles []compilelog.Record `json:"compiles"`
}
