// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"awsexpert/platform/crew"
	"awsexpert/platform/shared/logger"
)

const serviceName = "aws-expert-gateway"
const serviceVersion = "1.0.0"

// Prometheus metrics
var (
	promQueryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awsexpert_gateway_query_requests_total",
			Help: "Total number of /query requests processed",
		},
		[]string{"status"},
	)
	promQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "awsexpert_gateway_query_duration_milliseconds",
			Help:    "/query request duration in milliseconds",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
		},
	)
)

var metricsOnce sync.Once

func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(promQueryRequests)
		prometheus.MustRegister(promQueryDuration)
	})
}

// Executor runs one pipeline input to completion. *crew.Adapter
// satisfies it.
type Executor interface {
	Execute(ctx context.Context, input crew.PipelineInput) (string, error)
}

// Server is the HTTP facade over the crew.
type Server struct {
	executor Executor
	log      *logger.Logger

	startTime       time.Time
	totalRequests   int64
	successRequests int64
	failedRequests  int64
}

// NewServer creates a Server around an executor.
func NewServer(executor Executor) *Server {
	registerMetrics()
	return &Server{
		executor:  executor,
		log:       logger.New("gateway"),
		startTime: time.Now(),
	}
}

// Router builds the full HTTP handler, CORS included. All origins are
// allowed; the facade carries no credentials of its own.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/query", s.handleQuery).Methods("POST")
	r.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, RootResponse{
		Message: "AWS Expert Crew API",
		Endpoints: map[string]string{
			"POST /query": "Run an AWS question through the expert pipeline",
			"GET /health": "Liveness check",
		},
	})
}

// handleHealth reports liveness only. It must never touch the executor
// so a wedged pipeline cannot take the health check down with it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   serviceVersion,
	})
}

// handleQuery runs the pipeline. The transport answer is always 200;
// failures are reported inside the envelope.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	atomic.AddInt64(&s.totalRequests, 1)

	requestID := uuid.New().String()
	w.Header().Set("X-Request-ID", requestID)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn(requestID, "invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		s.finishQuery(w, requestID, startTime, QueryResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	if req.Query == "" {
		s.finishQuery(w, requestID, startTime, QueryResponse{
			Success: false,
			Error:   "query is required",
		})
		return
	}

	s.log.Info(requestID, "query received", map[string]interface{}{
		"query_length": len(req.Query),
	})

	result, err := s.executor.Execute(r.Context(), crew.NewPipelineInput(req.Query, req.Topic))
	if err != nil {
		s.log.Error(requestID, "pipeline failed", map[string]interface{}{
			"error": err.Error(),
		})
		s.finishQuery(w, requestID, startTime, QueryResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.finishQuery(w, requestID, startTime, QueryResponse{
		Success: true,
		Result:  result,
	})
}

func (s *Server) finishQuery(w http.ResponseWriter, requestID string, startTime time.Time, resp QueryResponse) {
	status := "success"
	if resp.Success {
		atomic.AddInt64(&s.successRequests, 1)
	} else {
		atomic.AddInt64(&s.failedRequests, 1)
		status = "error"
	}

	latencyMs := time.Since(startTime).Milliseconds()
	promQueryRequests.WithLabelValues(status).Inc()
	promQueryDuration.Observe(float64(latencyMs))
	s.log.InfoWithDuration(requestID, "query completed", float64(latencyMs), map[string]interface{}{
		"success": resp.Success,
	})

	writeJSON(w, resp)
}

// handleMetrics returns service counters as JSON. Prometheus exposition
// lives on /prometheus.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	total := atomic.LoadInt64(&s.totalRequests)
	success := atomic.LoadInt64(&s.successRequests)
	failed := atomic.LoadInt64(&s.failedRequests)

	successRate := 100.0
	if total > 0 {
		successRate = float64(success) * 100.0 / float64(total)
	}

	writeJSON(w, map[string]interface{}{
		"service":          serviceName,
		"uptime_seconds":   time.Since(s.startTime).Seconds(),
		"total_requests":   total,
		"success_requests": success,
		"failed_requests":  failed,
		"success_rate":     successRate,
		"timestamp":        time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Run is the exported entry point for the gateway service. It builds
// the crew from the environment and serves until the process exits.
func Run() {
	port := getEnv("PORT", "8080")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	adapter, err := crew.NewAdapterFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize crew: %v", err)
	}

	server := NewServer(adapter)
	log.Printf("AWS Expert gateway listening on port %s", port)
	if err := http.ListenAndServe(":"+port, server.Router()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
