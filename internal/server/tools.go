package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chainlens-backend/internal/blockscout"
	"chainlens-backend/internal/types"
)

// GET /api/tools
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, types.ToolsResponse{Tools: blockscout.Tools()})
}

// GET /api/tools/{tool}?chain_id=1&address=0x...
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	spec, ok := blockscout.Lookup(chi.URLParam(r, "tool"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown tool")
		return
	}
	params := blockscout.Params{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if err := blockscout.Validate(spec.Name, params); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.orch.Fetch(r.Context(), spec.Name, params)
	if err != nil {
		log.Printf("[tools] %s %s failed: %v", getRequestID(r.Context()), spec.Name, err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, chatResponse(res))
}
