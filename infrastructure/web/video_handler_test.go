package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"geoclip-service/infrastructure/filesystem"
	"geoclip-service/infrastructure/logging"

	"github.com/gin-gonic/gin"
)

func newVideoRouter(t *testing.T, files map[string][]byte) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	store, err := filesystem.NewClipStore(dir)
	if err != nil {
		t.Fatalf("NewClipStore() unexpected error: %v", err)
	}

	return NewRouter(Dependencies{
		Trimmer:     &mockTrimmer{},
		Housekeeper: &mockHousekeeper{},
		ClipStore:   store,
		Logger:      logging.Discard(),
	}, RouterConfig{})
}

func clipBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestServeVideo_Ranges(t *testing.T) {
	data := clipBytes(1000)
	r := newVideoRouter(t, map[string][]byte{"clip.mp4": data})

	tests := []struct {
		name        string
		rangeHeader string
		wantStatus  int
		wantRange   string
		wantBody    []byte
		wantLenHdr  string
	}{
		{
			name:       "no range",
			wantStatus: http.StatusOK,
			wantBody:   data,
			wantLenHdr: "1000",
		},
		{
			name:        "explicit range",
			rangeHeader: "bytes=0-99",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 0-99/1000",
			wantBody:    data[0:100],
			wantLenHdr:  "100",
		},
		{
			name:        "open ended range",
			rangeHeader: "bytes=500-",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 500-999/1000",
			wantBody:    data[500:],
			wantLenHdr:  "500",
		},
		{
			name:        "whole file as range",
			rangeHeader: "bytes=0-",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 0-999/1000",
			wantBody:    data,
			wantLenHdr:  "1000",
		},
		{
			name:        "end clamped",
			rangeHeader: "bytes=900-2000",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 900-999/1000",
			wantBody:    data[900:],
			wantLenHdr:  "100",
		},
		{
			name:        "suffix",
			rangeHeader: "bytes=-10",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 990-999/1000",
			wantBody:    data[990:],
			wantLenHdr:  "10",
		},
		{
			name:        "malformed header ignored",
			rangeHeader: "bytes=abc",
			wantStatus:  http.StatusOK,
			wantBody:    data,
			wantLenHdr:  "1000",
		},
		{
			name:        "start beyond file",
			rangeHeader: "bytes=1000-",
			wantStatus:  http.StatusRequestedRangeNotSatisfiable,
			wantRange:   "bytes */1000",
		},
		{
			name:        "start after end",
			rangeHeader: "bytes=500-100",
			wantStatus:  http.StatusRequestedRangeNotSatisfiable,
			wantRange:   "bytes */1000",
		},
		{
			name:        "multiple ranges",
			rangeHeader: "bytes=0-1,5-6",
			wantStatus:  http.StatusRequestedRangeNotSatisfiable,
			wantRange:   "bytes */1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/video/clip.mp4", nil)
			if tt.rangeHeader != "" {
				req.Header.Set("Range", tt.rangeHeader)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Content-Range"); got != tt.wantRange {
				t.Errorf("Content-Range = %q, want %q", got, tt.wantRange)
			}
			if got := w.Header().Get("Accept-Ranges"); got != "bytes" {
				t.Errorf("Accept-Ranges = %q, want bytes", got)
			}
			if tt.wantBody != nil {
				if got := w.Header().Get("Content-Type"); got != "video/mp4" {
					t.Errorf("Content-Type = %q, want video/mp4", got)
				}
				if got := w.Header().Get("Content-Length"); got != tt.wantLenHdr {
					t.Errorf("Content-Length = %q, want %q", got, tt.wantLenHdr)
				}
				if !bytes.Equal(w.Body.Bytes(), tt.wantBody) {
					t.Errorf("body has %d bytes, want %d matching bytes", w.Body.Len(), len(tt.wantBody))
				}
			}
		})
	}
}

func TestServeVideo_Head(t *testing.T) {
	r := newVideoRouter(t, map[string][]byte{"clip.mp4": clipBytes(1000)})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodHead, "/video/clip.mp4", nil)
	req.Header.Set("Range", "bytes=10-19")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", w.Code)
	}
	if got := w.Header().Get("Content-Length"); got != "10" {
		t.Errorf("Content-Length = %q, want 10", got)
	}
	if w.Body.Len() != 0 {
		t.Errorf("HEAD returned %d body bytes", w.Body.Len())
	}
}

func TestServeVideo_NotFound(t *testing.T) {
	r := newVideoRouter(t, map[string][]byte{"clip.mp4": clipBytes(10)})

	paths := []string{
		"/video/missing.mp4",
		"/video/..",
		"/video/..%2Fconfig.yaml",
		"/video/a..b",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, p, nil)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("GET %s status = %d, want 404", p, w.Code)
			}
		})
	}
}

func TestServeVideo_EmptyFile(t *testing.T) {
	r := newVideoRouter(t, map[string][]byte{"empty.mp4": {}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/video/empty.mp4", nil)
	req.Header.Set("Range", "bytes=0-")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Errorf("status = %d, want 416", w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes */0" {
		t.Errorf("Content-Range = %q, want bytes */0", got)
	}
}
