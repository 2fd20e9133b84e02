// Package httpapi exposes the chat endpoint over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driving"
	"github.com/oswaldlabs/sitechat/internal/logger"
)

// Options configures the chat handler.
type Options struct {
	// Origin is the site base URL warmed up before retrieval.
	Origin string

	// Paths are the site paths warmed into the index.
	Paths []string

	// TopK is how many sources a chat response carries.
	TopK int
}

// Handler serves the chat API.
type Handler struct {
	ingest    driving.IngestionService
	retriever driving.RetrievalService
	answerer  driven.Answerer  // optional, nil disables answers
	analytics driven.Analytics // optional, nil disables capture
	opts      Options
}

// NewHandler creates the chat API handler. answerer and analytics may be nil.
func NewHandler(
	ingest driving.IngestionService,
	retriever driving.RetrievalService,
	answerer driven.Answerer,
	analytics driven.Analytics,
	opts Options,
) *Handler {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	return &Handler{
		ingest:    ingest,
		retriever: retriever,
		answerer:  answerer,
		analytics: analytics,
		opts:      opts,
	}
}

// Router returns the HTTP routes.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", h.handleChat)
	mux.HandleFunc("/healthz", h.handleHealthz)
	return mux
}

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse is the POST /api/chat reply. Answer is omitted when no
// answerer is configured or it fails.
type chatResponse struct {
	Answer  string          `json:"answer,omitempty"`
	Sources []domain.Source `json:"sources"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	h.warmUp(ctx)

	results, err := h.retriever.Retrieve(ctx, req.Message, h.opts.TopK)
	if err != nil {
		// Retrieval degradation is non-fatal: answer with no sources.
		logger.Warn("chat: retrieval failed: %v", err)
		results = nil
	}

	resp := chatResponse{Sources: make([]domain.Source, 0, len(results))}
	for _, res := range results {
		resp.Sources = append(resp.Sources, res.Citation())
	}

	if h.answerer != nil {
		answer, err := h.answerer.Answer(ctx, req.Message, results)
		switch {
		case errors.Is(err, domain.ErrAnswererUnavailable):
			logger.Warn("chat: answerer unavailable: %v", err)
		case err != nil:
			logger.Warn("chat: answer generation failed: %v", err)
		default:
			resp.Answer = answer
		}
	}

	h.capture(r, req.Message, len(resp.Sources), resp.Answer != "")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("chat: write response: %v", err)
	}
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// warmUp runs the three ensure operations. Failures are logged and never
// fail the request: retrieval works against whatever is indexed so far.
func (h *Handler) warmUp(ctx context.Context) {
	if err := h.ingest.EnsureFAQDocs(ctx); err != nil {
		logger.Warn("chat: faq warm-up failed: %v", err)
	}
	if err := h.ingest.EnsureFAQMarkdown(ctx); err != nil {
		logger.Warn("chat: faq markdown warm-up failed: %v", err)
	}
	if h.opts.Origin != "" && len(h.opts.Paths) > 0 {
		if err := h.ingest.EnsureSiteIndexed(ctx, h.opts.Origin, h.opts.Paths); err != nil {
			logger.Warn("chat: site warm-up failed: %v", err)
		}
	}
}

// capture records a chat event. Fire and forget.
func (h *Handler) capture(r *http.Request, message string, sources int, answered bool) {
	if h.analytics == nil {
		return
	}
	h.analytics.Capture("chat_request", map[string]any{
		"message_len": len(message),
		"sources":     sources,
		"answered":    answered,
	}, r.RemoteAddr)
}
