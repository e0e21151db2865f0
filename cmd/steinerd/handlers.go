package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/paulmach/orb/geojson"

	"steiner-planner/internal/config"
	"steiner-planner/internal/export"
	"steiner-planner/internal/steiner"
)

// NetworkResponse is the reply of POST /network and GET /network/latest.
type NetworkResponse struct {
	Success      bool                       `json:"success"`
	Message      string                     `json:"message,omitempty"`
	Length       float64                    `json:"length"`
	LowerBound   float64                    `json:"lowerBound,omitempty"`
	Partial      bool                       `json:"partial"`
	Unreached    []int                      `json:"unreached,omitempty"`
	MissingPairs [][2]int                   `json:"missingPairs,omitempty"`
	NumNodes     int                        `json:"numNodes,omitempty"`
	NumEdges     int                        `json:"numEdges,omitempty"`
	ElapsedMs    int64                      `json:"elapsedMs,omitempty"`
	Network      *geojson.FeatureCollection `json:"network,omitempty"`
}

// server holds the base configuration and the most recent network.
type server struct {
	base   *config.Config
	logger *log.Logger

	mu     sync.RWMutex
	latest *steiner.Snapshot
}

func newServer(base *config.Config, logger *log.Logger) *server {
	if logger == nil {
		logger = log.Default()
	}
	return &server{base: base, logger: logger}
}

func (s *server) setLatest(snap *steiner.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
}

func (s *server) getLatest() *steiner.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/network", corsMiddleware(s.networkHandler))
	mux.HandleFunc("/network/latest", corsMiddleware(s.latestHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	mux.HandleFunc("/stream", s.streamHandler)
	return mux
}

// maxBodyBytes caps a posted configuration.
const maxBodyBytes = 1 << 20

// requestConfig decodes a configuration from the body. An empty body means
// the server's base configuration.
func (s *server) requestConfig(w http.ResponseWriter, r *http.Request) (*config.Config, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return s.base, nil
	}
	return config.Parse(data)
}

// runConfig builds the network described by cfg and stores it as the latest.
func (s *server) runConfig(cfg *config.Config, progress steiner.ProgressFunc) (*steiner.Result, error) {
	scene, err := cfg.Scene(s.logger)
	if err != nil {
		return nil, err
	}
	opts := cfg.Options(s.logger)
	opts.Progress = progress

	res, err := steiner.Build(scene, opts)
	if err != nil {
		return nil, err
	}
	s.setLatest(res.Snapshot())
	return res, nil
}

func resultResponse(res *steiner.Result) NetworkResponse {
	resp := NetworkResponse{
		Success:    true,
		Length:     res.Network.Length,
		LowerBound: res.Stats.LowerBound,
		Partial:    res.Network.Partial,
		Unreached:  res.Network.Unreached,
		NumNodes:   res.Stats.Nodes,
		NumEdges:   res.Stats.Edges,
		ElapsedMs:  res.Stats.Elapsed.Milliseconds(),
		Network:    export.FeatureCollection(res.Snapshot()),
	}
	for _, m := range res.Closure.Missing {
		resp.MissingPairs = append(resp.MissingPairs, [2]int{m.A, m.B})
	}
	if resp.Partial {
		resp.Message = "network does not reach every terminal"
	}
	return resp
}

// errorStatus maps pipeline errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, steiner.ErrGeometry):
		return http.StatusBadRequest
	case errors.Is(err, steiner.ErrGenerationExhausted):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// POST /network - Build a network from the posted configuration
func (s *server) networkHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Println("========================================")
	s.logger.Println("🗺️  Network request received")
	defer s.logger.Println("========================================")

	if r.Method != http.MethodPost {
		s.logger.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := s.requestConfig(w, r)
	if err != nil {
		s.logger.Printf("❌ Invalid request body: %v\n", err)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, NetworkResponse{Message: err.Error()})
		return
	}

	res, err := s.runConfig(cfg, nil)
	if err != nil {
		s.logger.Printf("❌ Network build failed: %v\n", err)
		writeJSON(w, errorStatus(err), NetworkResponse{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resultResponse(res))
}

// GET /network/latest - Return the most recently built network
func (s *server) latestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.getLatest()
	if snap == nil {
		writeJSON(w, http.StatusNotFound, NetworkResponse{Message: "no network built yet. POST /network first"})
		return
	}

	writeJSON(w, http.StatusOK, NetworkResponse{
		Success:   true,
		Length:    snap.Length,
		Partial:   snap.Partial,
		Unreached: snap.Unreached,
		NumEdges:  len(snap.Edges),
		Network:   export.FeatureCollection(snap),
	})
}

// GET /health - Health check endpoint
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.getLatest()

	status := "ready"
	numTerminals := 0
	if snap == nil {
		status = "waiting for network"
	} else {
		numTerminals = len(snap.Terminals)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"hasNetwork":   snap != nil,
		"numTerminals": numTerminals,
	})
}
