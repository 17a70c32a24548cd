package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gator-post/internal/api"
	"gator-post/internal/database"
	"gator-post/internal/engine"
	"gator-post/internal/middleware"
	"gator-post/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Store          database.Store
	Tokens         *middleware.TokenManager
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	engine *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
	tokens *middleware.TokenManager,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         engine,
		Metrics:        metrics,
		Store:          store,
		Tokens:         tokens,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAppError maps an AppError to its HTTP status and writes it
func (s *Server) writeAppError(w http.ResponseWriter, appErr *utils.AppError) {
	s.Metrics.IncrementErrors()
	writeJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), api.ErrorResponse{Error: appErr.Message})
}

// respond writes an actor result, routing AppErrors to their status codes
func (s *Server) respond(w http.ResponseWriter, result interface{}) {
	if appErr, ok := result.(*utils.AppError); ok {
		s.writeAppError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
