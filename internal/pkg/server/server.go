package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

var errNoData = errors.New("no DAM data available yet")

type coordinator interface {
	Data() *model.Snapshot
	Status() model.Status
}

type server struct {
	coord  coordinator
	stream http.Handler
	logger *zap.Logger
}

// New serves the latest snapshot read from coord. stream, when not nil,
// handles websocket subscriptions.
func New(coord coordinator, stream http.Handler) *server {
	return &server{coord: coord, stream: stream, logger: zap.L()}
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/prices", s.GetPrices)
	mux.HandleFunc("GET /api/v1/status", s.GetStatus)
	mux.HandleFunc("GET /healthz", s.GetHealth)
	if s.stream != nil {
		mux.Handle("GET /api/v1/ws", s.stream)
	}
	return LoggingMiddleware(mux)
}

func (s *server) GetPrices(w http.ResponseWriter, r *http.Request) {
	snap := s.coord.Data()
	if snap == nil {
		handleError(w, http.StatusServiceUnavailable, errNoData)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.Status())
}

func (s *server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		handleError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func handleError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	w.Write([]byte(err.Error()))
}
