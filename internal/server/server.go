package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"chainlens-backend/internal/blockscout"
	"chainlens-backend/internal/config"
	"chainlens-backend/internal/ens"
	"chainlens-backend/internal/intent"
	"chainlens-backend/internal/llm"
	"chainlens-backend/internal/normalize"
	"chainlens-backend/internal/orchestrator"
	"chainlens-backend/internal/types"
)

// Deps are the remote collaborators a Server talks to.
type Deps struct {
	Completer llm.Completer
	Caller    blockscout.Caller
	Names     ens.NameReplacer
}

type Server struct {
	router    *chi.Mux
	cfg       config.Config
	completer llm.Completer
	orch      *orchestrator.Orchestrator
	names     ens.NameReplacer
}

// NewServer wires the production clients from cfg.
func NewServer(cfg config.Config) (*Server, error) {
	prompt, err := llm.LoadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt: %w", err)
	}
	completer := llm.NewClient(llm.ClientConfig{
		APIKey:       cfg.OpenAIAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		HistoryLimit: cfg.HistoryLimit,
		Timeout:      cfg.CompletionTimeout,
	}, prompt)
	return New(cfg, Deps{
		Completer: completer,
		Caller:    blockscout.NewClient(cfg.BlockscoutURL, cfg.BlockscoutAPIKey, cfg.BlockscoutTimeout),
		Names:     ens.NewResolver(cfg.ENSSubgraphURL, 0, cfg.ENSCacheSize, cfg.ENSCacheTTL),
	}), nil
}

func New(cfg config.Config, deps Deps) *Server {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	s := &Server{
		router:    r,
		cfg:       cfg,
		completer: deps.Completer,
		orch:      orchestrator.New(deps.Caller, normalize.New()),
		names:     deps.Names,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Get("/api/chains", s.handleChains)
	s.router.Post("/api/ens/resolve", s.handleENSResolve)
	// Direct operation calls, no LLM involved
	s.router.Get("/api/tools", s.handleTools)
	s.router.Get("/api/tools/{tool}", s.handleToolCall)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if s.cfg.OpenAIAPIKey == "" || s.completer == nil {
		s.writeError(w, http.StatusInternalServerError, "OpenAI API key not configured")
		return
	}
	ctx := r.Context()
	rid := getRequestID(ctx)

	message := req.Message
	var ensResult *ens.Result
	if s.cfg.ENSPreresolve && s.names != nil {
		res := s.names.ReplaceNames(ctx, message)
		message = res.Text
		ensResult = &res
	}

	raw, err := s.completer.Complete(ctx, req.History, message)
	if err != nil {
		log.Printf("[chat] %s completion failed: %v", rid, err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	d := intent.Parse(raw)
	log.Printf("[chat] %s directive %T", rid, d)
	res := s.orch.Execute(ctx, d)

	resp := chatResponse(res)
	if ensResult != nil {
		resp.ENSReplacements = ensResult.Replacements
		resp.ENSWarnings = ensResult.Errors
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChains(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"chains": types.SupportedChains})
}

func (s *Server) handleENSResolve(w http.ResponseWriter, r *http.Request) {
	var req types.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if s.names == nil {
		s.writeError(w, http.StatusServiceUnavailable, "ENS resolution is not configured")
		return
	}
	s.writeJSON(w, http.StatusOK, s.names.ReplaceNames(r.Context(), req.Text))
}

func chatResponse(res orchestrator.Result) types.ChatResponse {
	return types.ChatResponse{
		Response:      res.Text,
		Data:          res.Data,
		Type:          res.Type,
		Tool:          res.Tool,
		Visualization: res.Visualization,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}
