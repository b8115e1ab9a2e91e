package api

import (
	"encoding/json"
	"net/http"

	"github.com/psisco/zakladki/internal/config"
	"github.com/psisco/zakladki/internal/database"
)

type Server struct {
	config *config.Config
	store  *database.Store
}

func NewServer(cfg *config.Config, store *database.Store) *Server {
	return &Server{
		config: cfg,
		store:  store,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type ErrorResponse struct {
	Detail string `json:"detail" example:"Bookmark not found"`
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, ErrorResponse{Detail: detail})
}

// @Summary      Health check
// @Description  Reports whether the service and its database are reachable.
// @Tags         misc
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {string}  string "Service Unavailable"
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
