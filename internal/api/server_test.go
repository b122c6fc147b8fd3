package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/qcrop/internal/config"
	"github.com/dgallion1/qcrop/internal/cropper"
	"github.com/dgallion1/qcrop/internal/imageio"
	"github.com/dgallion1/qcrop/internal/ocr"
	"github.com/dgallion1/qcrop/internal/question"
)

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	dir := t.TempDir()

	src := image.NewRGBA(image.Rect(0, 0, 80, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 80; x++ {
			src.Set(x, y, color.Gray{Y: uint8(y)})
		}
	}
	pagePath := filepath.Join(dir, "exam_page_1.png")
	if err := imageio.SavePNG(pagePath, src); err != nil {
		t.Fatal(err)
	}

	idx := question.NewIndex()
	idx.Add(question.PageResult{Page: 1, ImagePath: pagePath, Entries: []question.Entry{
		{QNum: 4, ImagePath: pagePath, Region: question.Region{QNum: 4, X1: 0, Y1: 20, X2: 80, Y2: 120}},
	}})
	idx.Add(question.PageResult{Page: 2, Err: errors.New("ocr timeout")})
	report := &question.Report{Pages: []question.PageResult{
		{Page: 1, ImagePath: pagePath},
		{Page: 2, Err: errors.New("ocr timeout")},
	}}

	stats := ocr.NewStats(0)
	stats.Record(120, false)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{APIKey: apiKey, OCREngine: "tesseract"}
	return NewServer(idx, report, cropper.NewExtractor(filepath.Join(dir, "crops")), stats, log, cfg)
}

func do(srv http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, "secret"), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, "secret")

	if rec := do(srv, http.MethodGet, "/api/index", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(srv, http.MethodGet, "/api/index", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
	if rec := do(srv, http.MethodGet, "/api/index", "secret"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	if rec := do(newTestServer(t, ""), http.MethodGet, "/api/index", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 without api key configured, got %d", rec.Code)
	}
}

func TestIndex(t *testing.T) {
	rec := do(newTestServer(t, ""), http.MethodGet, "/api/index", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Pages []struct {
			Page    int              `json:"page"`
			Entries []question.Entry `json:"entries"`
			Error   string           `json:"error"`
		} `json:"pages"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 {
		t.Errorf("expected total 1, got %d", body.Total)
	}
	if len(body.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(body.Pages))
	}
	if body.Pages[0].Entries[0].Region.Y2 != 120 {
		t.Errorf("expected region y2 120, got %d", body.Pages[0].Entries[0].Region.Y2)
	}
	if body.Pages[1].Error != "ocr timeout" {
		t.Errorf("expected page 2 error, got %q", body.Pages[1].Error)
	}
}

func TestReport(t *testing.T) {
	rec := do(newTestServer(t, ""), http.MethodGet, "/api/report", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %s", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<table>", "<h1>Question index</h1>", "ocr timeout"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, body)
		}
	}
}

func TestCrop(t *testing.T) {
	rec := do(newTestServer(t, ""), http.MethodGet, "/api/pages/1/questions/4/crop", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `inline; filename="page1_Q4.png"` {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if strings.Contains(rec.Header().Get("Content-Disposition"), string(filepath.Separator)) {
		t.Error("expected no directory in content disposition")
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 100 {
		t.Errorf("expected 80x100 crop, got %v", img.Bounds())
	}
}

func TestCropErrors(t *testing.T) {
	srv := newTestServer(t, "")
	cases := []struct {
		path   string
		status int
	}{
		{"/api/pages/x/questions/4/crop", http.StatusBadRequest},
		{"/api/pages/1/questions/q/crop", http.StatusBadRequest},
		{"/api/pages/9/questions/4/crop", http.StatusNotFound},
		{"/api/pages/1/questions/5/crop", http.StatusNotFound},
		{"/api/pages/2/questions/1/crop", http.StatusNotFound},
	}
	for _, tc := range cases {
		if rec := do(srv, http.MethodGet, tc.path, ""); rec.Code != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.status, rec.Code)
		}
	}
}

func TestOCRStats(t *testing.T) {
	rec := do(newTestServer(t, ""), http.MethodGet, "/api/stats/ocr", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Engine string            `json:"engine"`
		Stats  ocr.StatsSnapshot `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Engine != "tesseract" || body.Stats.Count != 1 {
		t.Errorf("unexpected stats body: %+v", body)
	}
}

func TestOCRStatsUnavailable(t *testing.T) {
	srv := newTestServer(t, "")
	srv.stats = nil
	if rec := do(srv, http.MethodGet, "/api/stats/ocr", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestCropConcurrentRequests(t *testing.T) {
	srv := newTestServer(t, "")

	const n = 200
	var wg sync.WaitGroup
	failures := make(chan string, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := do(srv, http.MethodGet, "/api/pages/1/questions/4/crop", "")
			if rec.Code != http.StatusOK {
				failures <- fmt.Sprintf("status %d", rec.Code)
				return
			}
			img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
			if err != nil {
				failures <- "decode: " + err.Error()
				return
			}
			if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 100 {
				failures <- fmt.Sprintf("bounds %v", img.Bounds())
			}
		}()
	}
	wg.Wait()
	close(failures)
	for f := range failures {
		t.Errorf("expected a complete 80x100 png, got %s", f)
	}
}
