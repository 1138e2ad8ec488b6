// Package inspect serves read-only views of a running scene over HTTP.
package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/pkg/geom"
)

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Dump renders v with spew for human inspection.
func Dump(v interface{}) string {
	return spewConfig.Sdump(v)
}

// Server publishes the latest scene snapshot. The scene goroutine calls
// Publish; HTTP handlers only ever read published snapshots.
type Server struct {
	mu   sync.RWMutex
	snap *Snapshot

	log    *zap.Logger
	router *mux.Router
}

// NewServer creates a server with no snapshot published yet.
func NewServer() *Server {
	s := &Server{log: logger.Named("inspect")}

	r := mux.NewRouter()
	r.HandleFunc("/scene", s.handleScene).Methods(http.MethodGet)
	r.HandleFunc("/nodes/{id:[0-9]+}", s.handleNode).Methods(http.MethodGet)
	r.HandleFunc("/lights", s.handleLights).Methods(http.MethodGet)
	r.HandleFunc("/pick", s.handlePick).Methods(http.MethodGet)
	r.HandleFunc("/dump", s.handleDump).Methods(http.MethodGet)
	s.router = r
	return s
}

// Publish replaces the served snapshot.
func (s *Server) Publish(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns the last published snapshot, or nil.
func (s *Server) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Handler returns the routed handler with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	stdLog := zap.NewStdLog(s.log)
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(stdLog))(s.router)
	return handlers.LoggingHandler(stdLog.Writer(), h)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("inspector listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "inspector")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "inspector shutdown")
	}
	return nil
}

func (s *Server) current(w http.ResponseWriter) *Snapshot {
	snap := s.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no frame published yet"))
	}
	return snap
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if snap := s.current(w); snap != nil {
		writeJSON(w, snap)
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	snap := s.current(w)
	if snap == nil {
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "node id"))
		return
	}
	n, ok := snap.Node(uint32(id))
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("node %d not found", id))
		return
	}
	writeJSON(w, n)
}

func (s *Server) handleLights(w http.ResponseWriter, r *http.Request) {
	if snap := s.current(w); snap != nil {
		writeJSON(w, snap.Lights)
	}
}

// handlePick casts a ray and reports the nearest node hit. The ray is either
// given in world space (ox, oy, oz, dx, dy, dz) or through a pixel of a
// camera's viewport (camera, x, y, w, h).
func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	snap := s.current(w)
	if snap == nil {
		return
	}
	ray, err := pickRay(snap, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	hit, ok := snap.Pick(ray)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("nothing hit"))
		return
	}
	writeJSON(w, hit)
}

func pickRay(snap *Snapshot, q url.Values) (geom.Ray, error) {
	floats := func(keys ...string) ([]float32, error) {
		out := make([]float32, len(keys))
		for i, k := range keys {
			v, err := strconv.ParseFloat(q.Get(k), 32)
			if err != nil {
				return nil, errors.Wrapf(err, "parameter %q", k)
			}
			out[i] = float32(v)
		}
		return out, nil
	}

	if q.Has("camera") {
		slot, err := strconv.Atoi(q.Get("camera"))
		if err != nil {
			return geom.Ray{}, errors.Wrap(err, "parameter \"camera\"")
		}
		cam, ok := snap.Camera(slot)
		if !ok {
			return geom.Ray{}, errors.Errorf("camera %d not found", slot)
		}
		v, err := floats("x", "y", "w", "h")
		if err != nil {
			return geom.Ray{}, err
		}
		if v[2] <= 0 || v[3] <= 0 {
			return geom.Ray{}, errors.New("viewport size must be positive")
		}
		inv := cam.Projection.Mul4(cam.View).Inv()
		return geom.ScreenRay(v[0], v[1], v[2], v[3], inv), nil
	}

	v, err := floats("ox", "oy", "oz", "dx", "dy", "dz")
	if err != nil {
		return geom.Ray{}, err
	}
	return geom.NewRay(mgl32.Vec3{v[0], v[1], v[2]}, mgl32.Vec3{v[3], v[4], v[5]}), nil
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	if snap := s.current(w); snap != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(Dump(snap)))
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
