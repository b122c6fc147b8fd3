package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dgallion1/qcrop/internal/cropper"
	"github.com/dgallion1/qcrop/internal/question"
	"github.com/dgallion1/qcrop/internal/shell"
	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type pageView struct {
	Page    int              `json:"page"`
	Entries []question.Entry `json:"entries"`
	Error   string           `json:"error,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	failed := make(map[int]string)
	if s.report != nil {
		for _, res := range s.report.Failed() {
			failed[res.Page] = res.Err.Error()
		}
	}

	pages := make([]pageView, 0, len(s.index.Pages()))
	for _, n := range s.index.Pages() {
		entries, _ := s.index.Page(n)
		pages = append(pages, pageView{Page: n, Entries: entries, Error: failed[n]})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"pages": pages,
		"total": s.index.Total(),
	})
}

var reportMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	src := shell.MarkdownReport(s.index, s.report)
	if err := reportMarkdown.Convert([]byte(src), &buf); err != nil {
		jsonError(w, "render report: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleCrop(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		jsonError(w, "invalid page number", http.StatusBadRequest)
		return
	}
	qnum, err := strconv.Atoi(chi.URLParam(r, "qnum"))
	if err != nil {
		jsonError(w, "invalid question number", http.StatusBadRequest)
		return
	}

	path, err := s.extractor.Extract(s.index, page, qnum)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cropper.ErrPageNotIndexed) || errors.Is(err, cropper.ErrQuestionNotFound) {
			status = http.StatusNotFound
		}
		if status == http.StatusInternalServerError {
			s.log.Error("crop failed", "page", page, "qnum", qnum, "error", err)
		}
		jsonError(w, err.Error(), status)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		jsonError(w, "read crop: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filepath.Base(path)))
	w.Write(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
