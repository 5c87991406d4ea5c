package simstub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

const DefaultPort = 8080

// NewRouter exposes the world over JSON/HTTP. Responses are gzip encoded
// when the client accepts it.
func NewRouter(world *World) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/grid", HandleGetGrid(world)).Methods(http.MethodGet)
	r.HandleFunc("/entities", HandleListEntities(world)).Methods(http.MethodGet)
	r.HandleFunc("/tiles", HandleCreateTile(world)).Methods(http.MethodPost)
	r.HandleFunc("/tiles/{x}/{y}", HandleDeleteTile(world)).Methods(http.MethodDelete)
	r.HandleFunc("/entities/{id}/move", HandleMove(world)).Methods(http.MethodPost)
	r.HandleFunc("/entities/{id}/attack", HandleAttack(world)).Methods(http.MethodPost)
	r.HandleFunc("/entities/{id}/refresh", HandleRefresh(world)).Methods(http.MethodPost)
	return gzhttp.GzipHandler(r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, ErrExhausted):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed: %v", err)
	} else {
		log.Debug("request rejected: %v", err)
	}
	writeJSON(w, status, types.ErrorResponse{Error: err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode body: %v", ErrInvalid, err)
	}
	return nil
}

func HandleGetGrid(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid, err := world.FetchGrid(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, grid)
	}
}

func HandleListEntities(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entities, err := world.FetchEntities(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.EntitiesResponse{Entities: entities})
	}
}

func HandleCreateTile(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tile := types.Tile{}
		if err := decode(r, &tile); err != nil {
			writeError(w, err)
			return
		}
		created, err := world.CreateTile(r.Context(), tile)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func HandleDeleteTile(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		x, errX := strconv.Atoi(vars["x"])
		y, errY := strconv.Atoi(vars["y"])
		if errX != nil || errY != nil {
			writeError(w, fmt.Errorf("%w: invalid tile coordinates %s,%s", ErrInvalid, vars["x"], vars["y"]))
			return
		}
		if err := world.DeleteTile(r.Context(), types.Cell{X: x, Y: y}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleMove(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := types.MoveRequest{}
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		resp, err := world.MoveEntity(r.Context(), mux.Vars(r)["id"], req.Target)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleAttack(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := types.AttackRequest{}
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		resp, err := world.ExecuteAttack(r.Context(), mux.Vars(r)["id"], req.TargetID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleRefresh(world *World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := world.RefreshActionEconomy(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Server serves a world over HTTP.
type Server struct {
	server *http.Server
}

type NewServerOptions struct {
	Port  int
	World *World
}

func NewServer(opts NewServerOptions) *Server {
	port := opts.Port
	if port <= 0 {
		port = DefaultPort
	}
	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: NewRouter(opts.World),
		},
	}
}

// Start serves until the server is stopped.
func (s *Server) Start() {
	log.Info("Simulation stub listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("Simulation stub closed")
			return
		}
		log.Error("Simulation stub error: %v", err)
	}
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
