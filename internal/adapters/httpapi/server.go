package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/razavidev/dea-detector/internal/core"
	"github.com/razavidev/dea-detector/internal/ports"
	"go.uber.org/zap"
)

// Server is the HTTP front end of the risk engine
type Server struct {
	assessor       ports.Assessor
	store          core.BlacklistRepository
	logger         *zap.Logger
	listenAddr     string
	requestTimeout time.Duration
	server         *http.Server
}

// NewServer creates a new HTTP front end. store is only used by the
// health check and may be nil.
func NewServer(
	assessor ports.Assessor,
	store core.BlacklistRepository,
	logger *zap.Logger,
	listenAddr string,
	requestTimeout time.Duration,
) *Server {
	return &Server{
		assessor:       assessor,
		store:          store,
		logger:         logger,
		listenAddr:     listenAddr,
		requestTimeout: requestTimeout,
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.requestTimeout > 0 {
		r.Use(middleware.Timeout(s.requestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Post("/dea-detector", s.handleDetect)
	r.Get("/v1/assess", s.handleAssess)

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP front end starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the HTTP server down
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type detectRequest struct {
	Value string `json:"value"`
}

type detectResponse struct {
	Value string               `json:"value"`
	Data  *core.RiskAssessment `json:"data"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Value == "" {
		respondError(w, http.StatusBadRequest, "Value is required")
		return
	}

	result := s.assessor.Assess(r.Context(), req.Value, core.AssessOptions{})
	respondJSON(w, http.StatusOK, detectResponse{Value: req.Value, Data: result})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email := q.Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	opts := core.AssessOptions{
		ProbeCatchAll: queryBool(q.Get("catch_all")),
		VerifyMailbox: queryBool(q.Get("verify")),
	}

	respondJSON(w, http.StatusOK, s.assessor.Assess(r.Context(), email, opts))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":    "ok",
		"threshold": s.assessor.Threshold(),
	}

	if s.store != nil {
		count, err := s.store.Count(r.Context())
		if err != nil {
			s.logger.Warn("Health check could not count blacklist", zap.Error(err))
			resp["status"] = "degraded"
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp["blacklistedDomains"] = count
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func queryBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
