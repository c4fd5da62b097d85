package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nikolaef43/brenner-bot-sub013/internal/apperr"
	"github.com/nikolaef43/brenner-bot-sub013/internal/compilesvc"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
	"github.com/nikolaef43/brenner-bot-sub013/internal/sse"
	"github.com/nikolaef43/brenner-bot-sub013/internal/thread"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *compilesvc.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil when SSE is not
// wired (tests, one-shot tools).
func NewHandler(svc *compilesvc.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

func threadID(r *http.Request) string {
	return chi.URLParam(r, "threadID")
}

// Status handles GET /threads/{threadID}/status.
//
//	@Summary		Derived round/phase/ack status for a thread
//	@Tags			threads
//	@Produce		json
//	@Param			threadID	path		string	true	"Thread identifier"
//	@Success		200			{object}	ThreadStatus
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/threads/{threadID}/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id := threadID(r)
	st, err := h.svc.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("thread not found"))
			return
		}
		slog.Error("status failed", slog.String("thread", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Artifact handles GET /threads/{threadID}/artifact. It recomputes the
// artifact from history without recording anything. With
// ?format=markdown the canonical rendered document is returned as-is.
//
//	@Summary		Preview the compiled artifact for a thread
//	@Tags			threads
//	@Produce		json
//	@Param			threadID	path		string	true	"Thread identifier"
//	@Param			format		query		string	false	"Response format"	Enums(json, markdown)
//	@Success		200			{object}	CompileResult
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/threads/{threadID}/artifact [get]
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	id := threadID(r)
	res, err := h.svc.Preview(r.Context(), id)
	if err != nil {
		h.compileError(w, id, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("ETag", `"`+res.Checksum+`"`)
		_, _ = w.Write([]byte(res.Rendered))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Compile handles POST /threads/{threadID}/compile: recompute, record
// in the compile log, and publish the compiled artifact to the thread.
//
//	@Summary		Compile and publish a thread's artifact
//	@Tags			threads
//	@Produce		json
//	@Param			threadID	path		string	true	"Thread identifier"
//	@Success		201			{object}	CompileResult
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/threads/{threadID}/compile [post]
func (h *Handler) Compile(w http.ResponseWriter, r *http.Request) {
	id := threadID(r)
	res, err := h.svc.Compile(r.Context(), id)
	if err != nil {
		h.compileError(w, id, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishCompiled(id, res.Artifact.Metadata.Version)
	}
	writeJSON(w, http.StatusCreated, res)
}

// Report handles GET /threads/{threadID}/report: the lint report for
// the thread's current artifact state.
//
//	@Summary		Lint report for a thread's artifact
//	@Tags			threads
//	@Produce		json
//	@Param			threadID	path		string	true	"Thread identifier"
//	@Success		200			{object}	lint.Report
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/threads/{threadID}/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id := threadID(r)
	res, err := h.svc.Preview(r.Context(), id)
	if err != nil {
		h.compileError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Report)
}

// History handles GET /threads/{threadID}/compiles.
//
//	@Summary		Recorded compile history for a thread
//	@Tags			threads
//	@Produce		json
//	@Param			threadID	path		string	true	"Thread identifier"
//	@Param			limit		query		int		false	"Max records"
//	@Success		200			{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/threads/{threadID}/compiles [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := threadID(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.svc.History(r.Context(), id, limit)
	if err != nil {
		slog.Error("history failed", slog.String("thread", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Compiles: recs})
}

// Extract handles POST /deltas/extract, used by the presentation layer
// to render per-message delta badges.
//
//	@Summary		Extract delta blocks from a message body
//	@Tags			deltas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExtractRequest	true	"Message body to scan"
//	@Success		200		{object}	ParsedMessage
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deltas/extract [post]
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, delta.Extract(req.Body))
}

// Classify handles POST /classify.
//
//	@Summary		Classify a subject line
//	@Tags			deltas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClassifyRequest	true	"Subject to classify"
//	@Success		200		{object}	thread.Classification
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/classify [post]
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, thread.Classify(req.Subject))
}

func (h *Handler) compileError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("thread not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("version already recorded"))
	case errors.Is(err, apperr.ErrMergeFailed):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error("compile failed", slog.String("thread", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
