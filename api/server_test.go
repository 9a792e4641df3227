package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acoustlab/strudelize/strudel"
	"github.com/acoustlab/strudelize/transcode"
)

// stubDecoder returns a fixed signal, or the decode sentinel when failing
type stubDecoder struct {
	fail bool
}

func (d *stubDecoder) DecodeFile(ctx context.Context, path string) (strudel.AudioSignal, error) {
	if d.fail {
		return strudel.AudioSignal{}, transcode.ErrDecode
	}
	return strudel.AudioSignal{Samples: make([]float64, 4096), SampleRate: 44100}, nil
}

func newTestServer(decoder strudel.SignalDecoder) *Server {
	config := strudel.DefaultPipelineConfig()
	config.EnableStems = false
	pipeline := strudel.NewPipeline(config, decoder, nil, nil, nil)
	return NewServer(DefaultServerConfig(), pipeline, nil, nil)
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte("not real audio")); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&stubDecoder{})
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestConvertSuccess(t *testing.T) {
	server := newTestServer(&stubDecoder{})
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, uploadRequest(t, "track.wav"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var result strudel.StrudelResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(result.Code, "stack(") {
		t.Errorf("response code missing stack():\n%s", result.Code)
	}
	if result.Key == "" {
		t.Error("response missing key")
	}
}

func TestConvertUnsupportedFormat(t *testing.T) {
	server := newTestServer(&stubDecoder{})
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, uploadRequest(t, "notes.txt"))

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
}

func TestConvertDecodeFailure(t *testing.T) {
	server := newTestServer(&stubDecoder{fail: true})
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, uploadRequest(t, "track.wav"))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestConvertMissingFile(t *testing.T) {
	server := newTestServer(&stubDecoder{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", strings.NewReader(""))
	server.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestConvertURLDisabled(t *testing.T) {
	server := newTestServer(&stubDecoder{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert/url",
		strings.NewReader(`{"url": "https://example.com/a"}`))
	req.Header.Set("Content-Type", "application/json")
	server.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
