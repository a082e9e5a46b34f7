package web

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geoclip-service/application/housekeeping"
	"geoclip-service/application/trim"
	"geoclip-service/domain/geo"
	"geoclip-service/domain/source"
	"geoclip-service/domain/storage"
	"geoclip-service/domain/video"
	"geoclip-service/infrastructure/filesystem"
	"geoclip-service/infrastructure/logging"

	"github.com/gin-gonic/gin"
)

// --- Mock implementations for testing ---

// mockTrimmer implements Trimmer for testing
type mockTrimmer struct {
	inputs []trim.Input
	result *trim.Result
	err    error
}

func (m *mockTrimmer) Trim(ctx context.Context, input trim.Input) (*trim.Result, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &trim.Result{Filename: "0123456789abcdef0123456789abcdef.mp4"}, nil
}

// mockHousekeeper implements Housekeeper for testing
type mockHousekeeper struct {
	count int
	names []string
	err   error
}

func (m *mockHousekeeper) Count(ctx context.Context) (int, error) {
	return m.count, m.err
}

func (m *mockHousekeeper) PurgeAll(ctx context.Context) (*storage.PurgeResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := &storage.PurgeResult{}
	for _, n := range m.names {
		result.DeletedFiles = append(result.DeletedFiles, storage.DeletedFile{Name: n})
	}
	return result, nil
}

func newRouter(trimmer Trimmer, housekeeper Housekeeper, cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Dependencies{
		Trimmer:     trimmer,
		Housekeeper: housekeeper,
		ClipStore:   &mockStore{},
		Logger:      logging.Discard(),
	}, cfg)
}

type mockStore struct{}

func (m *mockStore) Path(name string) string { return filepath.Join(os.TempDir(), "no-such-dir", name) }
func (m *mockStore) List(ctx context.Context) ([]storage.FileInfo, error) {
	return nil, nil
}
func (m *mockStore) DeleteAll(ctx context.Context) (*storage.PurgeResult, error) {
	return &storage.PurgeResult{}, nil
}

func doJSON(r http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if k == "Host" {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestTrim_Success(t *testing.T) {
	trimmer := &mockTrimmer{}
	r := newRouter(trimmer, &mockHousekeeper{}, RouterConfig{})

	w, resp := doJSON(r, http.MethodPost, "/trim",
		`{"source":"L2","start_lat":1.5,"start_lon":"2.5","end_lat":" 3 ","end_lon":4}`,
		map[string]string{"Host": "clips.example.com"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	want := "http://clips.example.com/video/0123456789abcdef0123456789abcdef.mp4"
	if resp["video_url"] != want {
		t.Errorf("video_url = %v, want %s", resp["video_url"], want)
	}

	got := trimmer.inputs[0]
	wantInput := trim.Input{Source: "L2", StartLat: 1.5, StartLon: 2.5, EndLat: 3, EndLon: 4}
	if got != wantInput {
		t.Errorf("input = %+v, want %+v", got, wantInput)
	}
}

func TestTrim_BaseURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RouterConfig
		headers map[string]string
		prefix  string
	}{
		{
			name:    "configured base url",
			cfg:     RouterConfig{PublicBaseURL: "https://cdn.example.com/"},
			headers: map[string]string{"X-Forwarded-Host": "ignored.example.com"},
			prefix:  "https://cdn.example.com/video/",
		},
		{
			name:    "forwarded headers",
			headers: map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "proxy.example.com"},
			prefix:  "https://proxy.example.com/video/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&mockTrimmer{}, &mockHousekeeper{}, tt.cfg)
			w, resp := doJSON(r, http.MethodPost, "/trim", `{"source":"L2","start_lat":1,"start_lon":2,"end_lat":3,"end_lon":4}`, tt.headers)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			url, _ := resp["video_url"].(string)
			if !strings.HasPrefix(url, tt.prefix) {
				t.Errorf("video_url = %q, want prefix %q", url, tt.prefix)
			}
		})
	}
}

func TestTrim_UnusableCoordinatesBecomeNaN(t *testing.T) {
	trimmer := &mockTrimmer{err: &trim.ClientInputError{Message: trim.MsgInvalidCoordinates}}
	r := newRouter(trimmer, &mockHousekeeper{}, RouterConfig{})

	w, resp := doJSON(r, http.MethodPost, "/trim", `{"source":"L2","start_lat":"north","start_lon":null,"end_lat":[1],"end_lon":4}`, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp["error"] != trim.MsgInvalidCoordinates {
		t.Errorf("error = %v", resp["error"])
	}

	in := trimmer.inputs[0]
	if !math.IsNaN(in.StartLat) || !math.IsNaN(in.StartLon) || !math.IsNaN(in.EndLat) {
		t.Errorf("unusable coordinates should be NaN, got %+v", in)
	}
	if in.EndLon != 4 {
		t.Errorf("EndLon = %v, want 4", in.EndLon)
	}
}

func TestTrim_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "client input",
			err:        &trim.ClientInputError{Message: trim.MsgInvalidSource},
			wantStatus: http.StatusBadRequest,
			wantError:  trim.MsgInvalidSource,
		},
		{
			name:       "timeout",
			err:        &trim.ProcessingError{Message: trim.MsgTimeout, Err: video.ErrExtractTimeout},
			wantStatus: http.StatusInternalServerError,
			wantError:  trim.MsgTimeout,
		},
		{
			name:       "ffmpeg failure",
			err:        &trim.ProcessingError{Message: "FFmpeg error: L2.mp4: moov atom not found"},
			wantStatus: http.StatusInternalServerError,
			wantError:  "FFmpeg error: L2.mp4: moov atom not found",
		},
		{
			name:       "unexpected",
			err:        errors.New("open /srv/secret/L2.mp4: permission denied"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&mockTrimmer{err: tt.err}, &mockHousekeeper{}, RouterConfig{})
			w, resp := doJSON(r, http.MethodPost, "/trim", `{"source":"L2","start_lat":1,"start_lon":2,"end_lat":3,"end_lon":4}`, nil)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if resp["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", resp["error"], tt.wantError)
			}
		})
	}
}

func TestTrim_BadBody(t *testing.T) {
	trimmer := &mockTrimmer{}
	r := newRouter(trimmer, &mockHousekeeper{}, RouterConfig{MaxBodyBytes: 64})

	w, _ := doJSON(r, http.MethodPost, "/trim", `{"source":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}

	big := `{"source":"` + strings.Repeat("x", 200) + `"}`
	w, _ = doJSON(r, http.MethodPost, "/trim", big, nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body status = %d, want 413", w.Code)
	}

	if len(trimmer.inputs) != 0 {
		t.Errorf("trimmer called %d times, want 0", len(trimmer.inputs))
	}
}

func TestHousekeeping(t *testing.T) {
	r := newRouter(&mockTrimmer{}, &mockHousekeeper{count: 3, names: []string{"a.mp4", "b.mp4"}}, RouterConfig{})

	w, resp := doJSON(r, http.MethodGet, "/trimmed/count", "", nil)
	if w.Code != http.StatusOK || resp["count"] != float64(3) {
		t.Errorf("count = %d %v, want 200 {count:3}", w.Code, resp)
	}

	w, resp = doJSON(r, http.MethodDelete, "/trimmed/delete-all", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete-all status = %d, want 200", w.Code)
	}
	if resp["message"] != "Deleted 2 videos" {
		t.Errorf("message = %v", resp["message"])
	}
	deleted, _ := resp["deleted"].([]any)
	if len(deleted) != 2 || deleted[0] != "a.mp4" {
		t.Errorf("deleted = %v", resp["deleted"])
	}
}

func TestHousekeeping_Errors(t *testing.T) {
	r := newRouter(&mockTrimmer{}, &mockHousekeeper{err: errors.New("open /srv/clips: permission denied")}, RouterConfig{})

	w, resp := doJSON(r, http.MethodGet, "/trimmed/count", "", nil)
	if w.Code != http.StatusInternalServerError || resp["error"] != "Error counting videos" {
		t.Errorf("count = %d %v", w.Code, resp)
	}

	w, resp = doJSON(r, http.MethodDelete, "/trimmed/delete-all", "", nil)
	if w.Code != http.StatusInternalServerError || resp["error"] != "Error deleting videos" {
		t.Errorf("delete-all = %d %v", w.Code, resp)
	}
}

func TestPingAndCORS(t *testing.T) {
	r := newRouter(&mockTrimmer{}, &mockHousekeeper{}, RouterConfig{})

	w, resp := doJSON(r, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK || resp["message"] != "pong" {
		t.Errorf("ping = %d %v", w.Code, resp)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin")
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	w, _ = doJSON(r, http.MethodOptions, "/trim", "", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Range") {
		t.Errorf("Expose-Headers = %q", w.Header().Get("Access-Control-Expose-Headers"))
	}
}

// writingExtractor implements video.ClipExtractor by writing a fixed payload
type writingExtractor struct {
	payload []byte
	calls   int
}

func (e *writingExtractor) Extract(ctx context.Context, req *video.ClipRequest, outputPath string) error {
	e.calls++
	return os.WriteFile(outputPath, e.payload, 0644)
}

// staticLogReader implements geo.LogReader with a single in-memory log
type staticLogReader struct {
	log *geo.CoordinateLog
}

func (s *staticLogReader) Read(ctx context.Context, path string) (*geo.CoordinateLog, error) {
	return s.log, nil
}

func TestTrimThenServe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	videoPath := filepath.Join(dir, "L2.mp4")
	if err := os.WriteFile(videoPath, []byte("source"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	store, err := filesystem.NewClipStore(filepath.Join(dir, "trimmed"))
	if err != nil {
		t.Fatalf("NewClipStore() unexpected error: %v", err)
	}
	catalog, err := source.NewCatalog(source.Source{ID: "L2", VideoPath: videoPath, CoordinatesPath: "coordinates.csv"})
	if err != nil {
		t.Fatalf("NewCatalog() unexpected error: %v", err)
	}

	pt := func(v float64) *float64 { return &v }
	reader := &staticLogReader{log: &geo.CoordinateLog{Samples: []geo.Sample{
		{Lat: pt(10), Lon: pt(10), TimestampSec: pt(5)},
		{Lat: pt(20), Lon: pt(20), TimestampSec: pt(50)},
	}}}
	extractor := &writingExtractor{payload: clipBytes(300)}

	logger := logging.Discard()
	r := NewRouter(Dependencies{
		Trimmer:     trim.NewService(catalog, reader, extractor, filesystem.NewChecker(), store, trim.WithLogger(logger)),
		Housekeeper: housekeeping.NewService(store, logger),
		ClipStore:   store,
		Logger:      logger,
	}, RouterConfig{PublicBaseURL: "http://localhost:8000"})

	w, resp := doJSON(r, http.MethodPost, "/trim", `{"source":"L2","start_lat":10,"start_lon":10,"end_lat":20,"end_lon":20}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("trim status = %d (%s)", w.Code, w.Body.String())
	}
	url, _ := resp["video_url"].(string)
	path := strings.TrimPrefix(url, "http://localhost:8000")

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Range", "bytes=100-199")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent || w.Body.Len() != 100 {
		t.Errorf("range fetch = %d with %d bytes, want 206 with 100", w.Code, w.Body.Len())
	}

	w, resp = doJSON(r, http.MethodGet, "/trimmed/count", "", nil)
	if resp["count"] != float64(1) {
		t.Errorf("count = %v, want 1", resp["count"])
	}

	// Start after end is rejected without touching the extractor
	w, resp = doJSON(r, http.MethodPost, "/trim", `{"source":"L2","start_lat":20,"start_lon":20,"end_lat":10,"end_lon":10}`, nil)
	if w.Code != http.StatusBadRequest || resp["error"] != trim.MsgUnresolvable {
		t.Errorf("reversed trim = %d %v", w.Code, resp)
	}
	w, resp = doJSON(r, http.MethodPost, "/trim", `{"source":"C","start_lat":10,"start_lon":10,"end_lat":20,"end_lon":20}`, nil)
	if w.Code != http.StatusBadRequest || resp["error"] != trim.MsgInvalidSource {
		t.Errorf("unknown source = %d %v", w.Code, resp)
	}
	if extractor.calls != 1 {
		t.Errorf("extractor called %d times, want 1", extractor.calls)
	}
}
