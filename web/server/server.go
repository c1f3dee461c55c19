// Package server exposes rendering over HTTP, streaming progress with
// server-sent events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/config"
	"github.com/df07/go-photon-raytracer/pkg/log"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

var logger = log.New("server")

// Request limits
const (
	maxImageSize = 2000
	maxPhotons   = 10000000
	maxJitter    = 16
	maxNearest   = 10000
)

// Server handles web requests for the photon raytracer
type Server struct {
	port     int
	defaults config.RenderConfig
	mux      *http.ServeMux
}

// NewServer creates a new web server. Requests start from defaults and
// override individual settings with query parameters.
func NewServer(port int, defaults config.RenderConfig) *Server {
	s := &Server{port: port, defaults: defaults, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves requests until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Noticef("starting web server on http://localhost%s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "web server")
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListScenes())
}

// parseRenderRequest applies the query parameters on top of the server
// defaults and validates the result
func (s *Server) parseRenderRequest(values url.Values) (config.RenderConfig, error) {
	cfg := s.defaults

	if name := values.Get("scene"); name != "" {
		cfg.Scene = name
	}
	if kind := values.Get("accel"); kind != "" {
		cfg.Accel.Kind = kind
	}
	if mode := values.Get("mode"); mode != "" {
		cfg.Photons.Mode = mode
	}

	var err error
	if cfg.Width, err = parseIntParam(values, "width", cfg.Width, 1, maxImageSize); err != nil {
		return cfg, err
	}
	if cfg.Height, err = parseIntParam(values, "height", cfg.Height, 1, maxImageSize); err != nil {
		return cfg, err
	}
	if cfg.Jitter[0], err = parseIntParam(values, "jitter", cfg.Jitter[0], 1, maxJitter); err != nil {
		return cfg, err
	}
	if values.Has("jitter") {
		cfg.Jitter = [3]int{cfg.Jitter[0], cfg.Jitter[0], 1}
	}
	if cfg.Photons.Count, err = parseIntParam(values, "photons", cfg.Photons.Count, 0, maxPhotons); err != nil {
		return cfg, err
	}
	if cfg.Photons.Nearest, err = parseIntParam(values, "nearest", cfg.Photons.Nearest, 1, maxNearest); err != nil {
		return cfg, err
	}
	if cfg.Photons.Radius, err = parseFloatParam(values, "radius", cfg.Photons.Radius, 1e-6, 100); err != nil {
		return cfg, err
	}
	seed, err := parseIntParam(values, "seed", int(cfg.Seed), 0, 1<<31-1)
	if err != nil {
		return cfg, err
	}
	cfg.Seed = uint64(seed)

	return cfg, cfg.Validate()
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("encoding response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON error message
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
