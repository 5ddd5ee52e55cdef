package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/logger"
)

// Server publishes snapshots. Publish is called from the render loop; the
// HTTP handlers read the latest published copy.
type Server struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewServer creates a server with an empty snapshot.
func NewServer() *Server {
	return &Server{}
}

// Publish replaces the served snapshot.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns the served snapshot.
func (s *Server) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Handler returns the routes of the inspector.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/frame", s.handleFrame).Methods(http.MethodGet)
	api.HandleFunc("/entities", s.handleEntities).Methods(http.MethodGet)
	api.HandleFunc("/entities/{index:[0-9]+}", s.handleEntity).Methods(http.MethodGet)
	api.HandleFunc("/models", s.handleModels).Methods(http.MethodGet)
	api.HandleFunc("/shadows", s.handleShadows).Methods(http.MethodGet)

	var h http.Handler = r
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	return h
}

// ListenAndServe serves the inspector on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	log := logger.Named("inspect")
	access, err := zap.NewStdLogAt(log, zap.DebugLevel)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.LoggingHandler(access.Writer(), s.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "inspector")
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		Frame    int     `json:"frame"`
		Time     float64 `json:"time"`
		Entities int     `json:"entities"`
		Render   any     `json:"render"`
	}{snap.Frame, snap.Time, len(snap.Entities), snap.Render})
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot().Entities)
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	for _, e := range s.Snapshot().Entities {
		if e.Index == index {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeError(w, http.StatusNotFound, errors.Errorf("entity %d not found", index))
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot().Models)
}

func (s *Server) handleShadows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot().Shadows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{err.Error()})
}
