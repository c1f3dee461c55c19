package server

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/config"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

type sseEvent struct {
	name string
	data string
}

// readEvents splits a recorded SSE body into events
func readEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var event sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				event.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				event.data = strings.TrimPrefix(line, "data: ")
			}
		}
		if event.name == "" {
			t.Fatalf("Malformed event block %q", block)
		}
		events = append(events, event)
	}
	return events
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, NewServer(0, config.Default()), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, NewServer(0, config.Default()), "/api/scenes")
	var scenes []scene.SceneInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &scenes); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if diff := cmp.Diff(scene.ListScenes(), scenes); diff != "" {
		t.Errorf("Scene list mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRenderRequest(t *testing.T) {
	s := NewServer(0, config.Default())

	values := url.Values{}
	values.Set("scene", "plane")
	values.Set("accel", "grid")
	values.Set("width", "64")
	values.Set("jitter", "2")
	values.Set("photons", "1000")
	values.Set("mode", "estimate")
	values.Set("radius", "0.5")
	values.Set("nearest", "20")
	values.Set("seed", "9")

	cfg, err := s.parseRenderRequest(values)
	if err != nil {
		t.Fatalf("parseRenderRequest failed: %v", err)
	}

	want := config.Default()
	want.Scene = "plane"
	want.Accel.Kind = "grid"
	want.Width = 64
	want.Jitter = [3]int{2, 2, 1}
	want.Photons.Count = 1000
	want.Photons.Mode = "estimate"
	want.Photons.Radius = 0.5
	want.Photons.Nearest = 20
	want.Seed = 9
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Request config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRenderRequest_Errors(t *testing.T) {
	s := NewServer(0, config.Default())

	tests := []struct {
		name  string
		query string
	}{
		{"width not a number", "width=wide"},
		{"width too large", "width=5000"},
		{"zero height", "height=0"},
		{"jitter too large", "jitter=64"},
		{"negative photons", "photons=-1"},
		{"radius not a number", "radius=big"},
		{"radius zero", "radius=0"},
		{"nearest zero", "nearest=0"},
		{"unknown accel", "accel=octree"},
		{"unknown mode", "mode=caustics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			if _, err := s.parseRenderRequest(values); err == nil {
				t.Errorf("Expected an error for %q", tt.query)
			}
		})
	}
}

func TestHandleRender(t *testing.T) {
	rec := get(t, NewServer(0, config.Default()),
		"/api/render?scene=plane&width=8&height=6&jitter=1&photons=500&mode=estimate&radius=0.5")

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected an event stream, got %q", ct)
	}

	events := readEvents(t, rec.Body.String())
	var names []string
	for _, event := range events {
		if event.name != "console" {
			names = append(names, event.name)
		}
	}
	// One 32px tile covers the whole image
	want := []string{"phase", "phase", "progress", "complete"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("Event sequence mismatch (-want +got):\n%s", diff)
	}
	if events[0].name != "console" {
		t.Errorf("Expected the scene setup message first, got %q", events[0].name)
	}

	var complete CompleteUpdate
	if err := json.Unmarshal([]byte(events[len(events)-1].data), &complete); err != nil {
		t.Fatalf("Invalid complete event: %v", err)
	}
	if complete.JobID == "" {
		t.Error("Expected a job id")
	}
	if complete.Stats.TotalPixels != 48 || complete.Stats.PhotonsEmitted != 500 {
		t.Errorf("Unexpected stats %+v", complete.Stats)
	}

	data, err := base64.StdEncoding.DecodeString(complete.ImageData)
	if err != nil {
		t.Fatalf("Invalid base64 image: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("Expected an 8x6 image, got %v", b)
	}
}

func TestHandleRender_PhotonsOff(t *testing.T) {
	rec := get(t, NewServer(0, config.Default()), "/api/render?scene=plane&width=4&height=4&jitter=1&mode=off")

	for _, event := range readEvents(t, rec.Body.String()) {
		if event.name == "phase" && strings.Contains(event.data, "photons") {
			t.Error("Expected no photon phase with photons off")
		}
		if event.name == "error" {
			t.Errorf("Unexpected error event %s", event.data)
		}
	}
}

// brokenStream fails every write of the named event, as if the client
// disconnected, and records all attempted writes
type brokenStream struct {
	header   http.Header
	failOn   string
	attempts []string
}

func (b *brokenStream) Header() http.Header  { return b.header }
func (b *brokenStream) WriteHeader(code int) {}
func (b *brokenStream) Flush()               {}

func (b *brokenStream) Write(p []byte) (int, error) {
	b.attempts = append(b.attempts, string(p))
	if strings.HasPrefix(string(p), "event: "+b.failOn+"\n") {
		return 0, errors.New("connection reset")
	}
	return len(p), nil
}

func TestHandleRender_StopsAfterFailedWrite(t *testing.T) {
	for _, failOn := range []string{"phase", "progress"} {
		t.Run(failOn, func(t *testing.T) {
			w := &brokenStream{header: http.Header{}, failOn: failOn}
			req := httptest.NewRequest(http.MethodGet,
				"/api/render?scene=plane&width=8&height=6&jitter=1&photons=200&mode=estimate&radius=0.5", nil)
			NewServer(0, config.Default()).Handler().ServeHTTP(w, req)

			last := w.attempts[len(w.attempts)-1]
			if !strings.HasPrefix(last, "event: "+failOn) {
				t.Errorf("Expected the failed %s write to be the last, got %q", failOn, last)
			}
			for _, attempt := range w.attempts {
				if strings.HasPrefix(attempt, "event: complete") {
					t.Error("Expected no image after a failed write")
				}
			}
		})
	}
}

func TestHandleRender_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"bad request", "/api/render?width=0", "Invalid request"},
		{"unknown scene", "/api/render?scene=nonexistent", "nonexistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := readEvents(t, get(t, NewServer(0, config.Default()), tt.target).Body.String())
			last := events[len(events)-1]
			if last.name != "error" || !strings.Contains(last.data, tt.want) {
				t.Errorf("Expected an error event mentioning %q, got %+v", tt.want, last)
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	s := NewServer(0, config.Default())

	rec := get(t, s, "/api/inspect?scene=plane&width=80&height=60&x=40&y=30")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var hit InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &hit); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if !hit.Hit || hit.Object != "plane" || hit.GeometryType != "triangle" || hit.MaterialType != "blinn_phong" {
		t.Errorf("Expected the plane triangle at the image center, got %+v", hit)
	}
	// The camera sits at (0, -2, 2) looking at the origin
	if hit.Distance < 2.5 || hit.Distance > 3.2 {
		t.Errorf("Expected a hit near the origin, got distance %f", hit.Distance)
	}
	if hit.Normal != [3]float64{0, 0, 1} {
		t.Errorf("Expected normal +Z, got %v", hit.Normal)
	}

	object, ok := hit.Properties["object"].(map[string]interface{})
	if !ok || object["name"] != "plane" || object["accel"] != "bvh" {
		t.Errorf("Expected the plane object built with a bvh, got %v", hit.Properties["object"])
	}

	rec = get(t, s, "/api/inspect?scene=plane&width=80&height=60&x=0&y=0")
	var miss InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &miss); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if miss.Hit {
		t.Errorf("Expected the top-left corner to miss, got %+v", miss)
	}
}

func TestHandleInspect_GridObject(t *testing.T) {
	rec := get(t, NewServer(0, config.Default()), "/api/inspect?scene=plane&accel=grid&width=80&height=60&x=40&y=30")
	var hit InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &hit); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	object, _ := hit.Properties["object"].(map[string]interface{})
	if object["accel"] != "grid" {
		t.Fatalf("Expected a grid object, got %v", hit.Properties["object"])
	}
	want := []interface{}{10.0, 10.0, 10.0}
	if diff := cmp.Diff(want, object["gridResolution"]); diff != "" {
		t.Errorf("Grid resolution mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleInspect_Errors(t *testing.T) {
	s := NewServer(0, config.Default())

	tests := []struct {
		name   string
		target string
	}{
		{"missing x", "/api/inspect?y=1"},
		{"bad y", "/api/inspect?x=1&y=up"},
		{"out of bounds", "/api/inspect?width=10&height=10&x=10&y=0"},
		{"bad params", "/api/inspect?accel=octree&x=0&y=0"},
		{"unknown scene", "/api/inspect?scene=nonexistent&x=0&y=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, s, tt.target); rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
		})
	}
}
