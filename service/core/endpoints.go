package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	dm "github.com/labib-r/portfolio-risk/data/models"
	sm "github.com/labib-r/portfolio-risk/service/models"
)

const (
	DefaultAddr = ":8080"

	maxRequestBytes = 8 << 20
)

type pingResponse struct {
	Message string `json:"message"`
	History bool   `json:"history"`
}

// GetRouter builds the api routes, every request gets its own copy of sc bound to the request context
func GetRouter(sc *ServiceContext) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(sc.Logger))

	router.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) { ping(w, sc) })
	router.Post("/api/analysis", func(w http.ResponseWriter, r *http.Request) { postAnalysis(w, r, sc.forRequest(r)) })
	router.Get("/api/analysis/{id}", func(w http.ResponseWriter, r *http.Request) { getAnalysisRun(w, r, sc.forRequest(r)) })

	return router
}

func GetHttpServer(sc *ServiceContext, addr string) *http.Server {
	if addr == "" {
		addr = DefaultAddr
	}

	server := &http.Server{
		Addr:           addr,
		Handler:        GetRouter(sc),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

func (sc *ServiceContext) forRequest(r *http.Request) *ServiceContext {
	rsc := *sc
	rsc.Context = r.Context()
	return &rsc
}

func ping(w http.ResponseWriter, sc *ServiceContext) {
	writeJSON(w, sc.Logger, http.StatusOK, sm.GetServiceResponseOk(&pingResponse{
		Message: "pong",
		History: sc.History != nil,
	}))
}

func postAnalysis(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	var req sm.AnalysisRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, sc.Logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := sc.RunAnalysis(req)
	if err != nil {
		writeError(w, sc.Logger, statusFor(err), err)
		return
	}

	writeJSON(w, sc.Logger, http.StatusOK, sm.GetServiceResponseOk(res))
}

func getAnalysisRun(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, sc.Logger, http.StatusBadRequest, fmt.Errorf("invalid run id: %w", err))
		return
	}

	res, err := sc.GetAnalysisRun(id)
	if err != nil {
		writeError(w, sc.Logger, statusFor(err), err)
		return
	}

	writeJSON(w, sc.Logger, http.StatusOK, sm.GetServiceResponseOk(res))
}

// statusFor maps pipeline errors onto http statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrHistoryUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrMalformedInput),
		errors.Is(err, ErrInsufficientHistory),
		errors.Is(err, ErrAllocation),
		errors.Is(err, ErrAssetMismatch),
		errors.Is(err, ErrLimitExceeded),
		errors.Is(err, ErrDataUnavailable),
		errors.Is(err, dm.ErrDuplicateAsset):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *log.Logger, status int, err error) {
	writeJSON(w, logger, status, sm.GetServiceResponseError(err))
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, v any) {
	// encode first so a failure can still become a 500
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error().Err(err).Msg("error encoding response")
		http.Error(w, `{"data":null,"error":"error encoding response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
