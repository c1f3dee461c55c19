package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/df07/go-photon-raytracer/pkg/renderer"
)

// PhaseUpdate announces the start of a render phase
type PhaseUpdate struct {
	Phase     string `json:"phase"` // "photons" or "render"
	ElapsedMs int64  `json:"elapsedMs"`
}

// TileProgress reports finished tiles
type TileProgress struct {
	TilesDone  int   `json:"tilesDone"`
	TotalTiles int   `json:"totalTiles"`
	ElapsedMs  int64 `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	Tiles          int     `json:"tiles"`
	Workers        int     `json:"workers"`
	PhotonsEmitted int     `json:"photonsEmitted"`
	PhotonsStored  int     `json:"photonsStored"`
}

// CompleteUpdate carries the finished image
type CompleteUpdate struct {
	JobID     string `json:"jobId"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// eventStream writes server-sent events. Pending console messages are sent
// ahead of every event.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	console <-chan ConsoleMessage
}

func (es *eventStream) send(event string, v any) error {
	for drained := false; !drained; {
		select {
		case msg := <-es.console:
			if err := es.write("console", msg); err != nil {
				return err
			}
		default:
			drained = true
		}
	}
	return es.write(event, v)
}

func (es *eventStream) write(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(es.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	es.flusher.Flush()
	return nil
}

// sendError reports a failed render. The stream ends afterwards, so a write
// failure is only logged.
func (es *eventStream) sendError(message string) {
	if err := es.send("error", map[string]string{"error": message}); err != nil {
		logger.Warningf("render stream closed before error %q: %v", message, err)
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// handleRender traces the photon map and renders the image, streaming phase
// and tile progress, then the PNG, via SSE. A failed write means the client
// is gone, so the render is cancelled and nothing more is sent.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	setSSEHeaders(w)

	consoleChan := make(chan ConsoleMessage, 50)
	stream := &eventStream{w: w, flusher: flusher, console: consoleChan}
	webLogger := NewWebLogger(uuid.NewString(), consoleChan)

	cfg, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		stream.sendError(fmt.Sprintf("Invalid request: %v", err))
		return
	}

	startTime := time.Now()
	sc, err := cfg.BuildScene()
	if err != nil {
		webLogger.Errorf("scene setup failed: %v", err)
		stream.sendError(err.Error())
		return
	}
	webLogger.Infof("scene %s ready: %d primitives, %s acceleration", cfg.Scene, sc.PrimitiveCount(), cfg.Accel.Kind)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	pr := renderer.NewPhotonRenderer(sc, cfg.RendererConfig(), cfg.PhotonConfig())

	if pr.PhotonConfig().Mode != renderer.PhotonModeOff {
		if err := stream.send("phase", PhaseUpdate{Phase: "photons", ElapsedMs: time.Since(startTime).Milliseconds()}); err != nil {
			logger.Warningf("render stream closed: %v", err)
			return
		}
		if err := pr.InitializeRenderer(ctx); err != nil {
			webLogger.Errorf("photon pass failed: %v", err)
			stream.sendError(err.Error())
			return
		}
		traced := pr.TraceStats()
		webLogger.Infof("photon map ready: %d stored of %d emitted", traced.Stored, traced.Emitted)
	}

	if err := stream.send("phase", PhaseUpdate{Phase: "render", ElapsedMs: time.Since(startTime).Milliseconds()}); err != nil {
		logger.Warningf("render stream closed: %v", err)
		return
	}

	var streamErr error
	pr.SetProgressCallback(func(tilesDone, totalTiles int) {
		if streamErr != nil {
			return
		}
		streamErr = stream.send("progress", TileProgress{
			TilesDone:  tilesDone,
			TotalTiles: totalTiles,
			ElapsedMs:  time.Since(startTime).Milliseconds(),
		})
		if streamErr != nil {
			cancel()
		}
	})

	img, stats, err := pr.Render(ctx)
	if streamErr != nil {
		logger.Warningf("render stream closed: %v", streamErr)
		return
	}
	if err != nil {
		webLogger.Warningf("render stopped: %v", err)
		stream.sendError(fmt.Sprintf("Render error: %v", err))
		return
	}

	imageData, err := imageToBase64PNG(img)
	if err != nil {
		stream.sendError(fmt.Sprintf("failed to encode image: %v", err))
		return
	}

	traced := pr.TraceStats()
	err = stream.send("complete", CompleteUpdate{
		JobID:     stats.JobID,
		ImageData: imageData,
		Stats: Stats{
			TotalPixels:    stats.TotalPixels,
			TotalSamples:   stats.TotalSamples,
			AverageSamples: stats.AverageSamples,
			MinSamples:     stats.MinSamples,
			MaxSamplesUsed: stats.MaxSamplesUsed,
			Tiles:          stats.Tiles,
			Workers:        stats.Workers,
			PhotonsEmitted: traced.Emitted,
			PhotonsStored:  traced.Stored,
		},
		ElapsedMs: time.Since(startTime).Milliseconds(),
	})
	if err != nil {
		logger.Warningf("render stream closed: %v", err)
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
