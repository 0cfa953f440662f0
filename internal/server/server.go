// Package server implements the pass-image-api HTTP handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/joepeeples/sdlc-gitops-sample-stack/internal/api"
	"github.com/joepeeples/sdlc-gitops-sample-stack/internal/geo"
	"github.com/joepeeples/sdlc-gitops-sample-stack/internal/tiles"
)

// Limits on the image endpoint's path parameters.
const (
	maxRadiusKm = 100.0
	maxSizePx   = 4096
)

// Server handles the pass-image-api endpoints.
type Server struct {
	snapshotter *tiles.Snapshotter
	sources     map[string]tiles.Source
	startTime   time.Time
	version     string
}

// NewServer creates a server backed by snapshotter, serving the
// built-in tile sources.
func NewServer(snapshotter *tiles.Snapshotter, version string) *Server {
	return &Server{
		snapshotter: snapshotter,
		sources:     tiles.DefaultSources(),
		startTime:   time.Now(),
		version:     version,
	}
}

// Routes mounts the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Get("/image/{lat}/{lon}/{radius}/{size}", s.GetImage)
}

// GetHealth implements the health check endpoint.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    int(time.Since(s.startTime).Seconds()),
		Version:   s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Error encoding health response")
	}
}

// GetImage implements the centered map snapshot endpoint. The response
// body is a PNG whose dimensions exactly equal the requested size.
func (s *Server) GetImage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	center, radiusKm, sizePx, err := parseImageParams(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), "", requestID)
		return
	}

	sourceName := r.URL.Query().Get("tileset")
	if sourceName == "" {
		sourceName = string(tiles.TileSetOSM)
	}
	src, ok := s.sources[sourceName]
	if !ok {
		s.writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("unknown tile set %q", sourceName), "", requestID)
		return
	}

	// Request-scoped logger travels with the context into the fetch
	// fan-out.
	logger := log.Ctx(r.Context()).With().Str("request_id", requestID).Logger()
	ctx := logger.WithContext(r.Context())

	imageData, err := s.snapshotter.Snapshot(ctx, src, center, radiusKm, sizePx)
	if err != nil {
		s.handleSnapshotError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("Content-Length", strconv.Itoa(len(imageData)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(imageData); err != nil {
		logger.Error().Err(err).Msg("Error writing image response")
	}
}

// parseImageParams validates the image endpoint's path parameters.
func parseImageParams(r *http.Request) (geo.Point, float64, int, error) {
	lat, err := strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	if err != nil {
		return geo.Point{}, 0, 0, fmt.Errorf("invalid lat: %v", err)
	}
	lon, err := strconv.ParseFloat(chi.URLParam(r, "lon"), 64)
	if err != nil {
		return geo.Point{}, 0, 0, fmt.Errorf("invalid lon: %v", err)
	}
	radiusKm, err := strconv.ParseFloat(chi.URLParam(r, "radius"), 64)
	if err != nil {
		return geo.Point{}, 0, 0, fmt.Errorf("invalid radius: %v", err)
	}
	sizePx, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil {
		return geo.Point{}, 0, 0, fmt.Errorf("invalid size: %v", err)
	}

	if lat < -85.0511 || lat > 85.0511 {
		return geo.Point{}, 0, 0, fmt.Errorf("lat must be between -85.0511 and 85.0511")
	}
	if lon < -180 || lon > 180 {
		return geo.Point{}, 0, 0, fmt.Errorf("lon must be between -180 and 180")
	}
	if radiusKm <= 0 || radiusKm > maxRadiusKm {
		return geo.Point{}, 0, 0, fmt.Errorf("radius must be between 0 and %g km", maxRadiusKm)
	}
	if sizePx < 1 || sizePx > maxSizePx {
		return geo.Point{}, 0, 0, fmt.Errorf("size must be between 1 and %d pixels", maxSizePx)
	}

	return geo.Point{Lat: lat, Lon: lon}, radiusKm, sizePx, nil
}

// handleSnapshotError maps snapshot failures onto response statuses:
// upstream tile failures are 502, timeouts 504, everything else 500.
func (s *Server) handleSnapshotError(w http.ResponseWriter, err error, requestID string) {
	var (
		transportErr   *tiles.TransportError
		statusErr      *tiles.UpstreamStatusError
		contentTypeErr *tiles.ContentTypeError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "TILE_SOURCE_TIMEOUT",
			"Tile source requests timed out", "", requestID)
	case errors.As(err, &statusErr):
		s.writeErrorResponse(w, http.StatusBadGateway, "TILE_SOURCE_ERROR",
			err.Error(), statusErr.URL, requestID)
	case errors.As(err, &contentTypeErr):
		s.writeErrorResponse(w, http.StatusBadGateway, "TILE_SOURCE_ERROR",
			err.Error(), contentTypeErr.URL, requestID)
	case errors.As(err, &transportErr):
		s.writeErrorResponse(w, http.StatusBadGateway, "TILE_SOURCE_ERROR",
			err.Error(), transportErr.URL, requestID)
	default:
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			err.Error(), "", requestID)
	}
}

// writeErrorResponse writes the standard error envelope.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message, url, requestID string) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		URL:       url,
		RequestID: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Error encoding error response")
	}
}
