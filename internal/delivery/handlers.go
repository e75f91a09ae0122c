package delivery

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/slide_render/internal/convert"
	"github.com/Vovarama1992/slide_render/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadBytes = 50 << 20

type ConvertHandler struct {
	service convert.Service
	store   ports.ArtifactStore
	ttl     time.Duration
	log     *logger.ZapLogger
}

func NewConvertHandler(service convert.Service, store ports.ArtifactStore, ttl time.Duration, log *logger.ZapLogger) *ConvertHandler {
	return &ConvertHandler{
		service: service,
		store:   store,
		ttl:     ttl,
		log:     log,
	}
}

func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload: "+err.Error(), http.StatusInternalServerError)
		return
	}

	outcome, err := h.service.Convert(r.Context(), convert.ConversionRequest{
		OriginalName: header.Filename,
		Data:         data,
		RequestID:    uuid.NewString(),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if convert.IsClientError(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	type slideResp struct {
		SlideNumber int    `json:"slide_number"`
		ImageURL    string `json:"image_url"`
	}
	slides := make([]slideResp, 0, outcome.SlideCount)
	for _, p := range outcome.Pages {
		slides = append(slides, slideResp{SlideNumber: p.Page, ImageURL: p.URL})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":            "success",
		"message":           fmt.Sprintf("Successfully converted %d slides", outcome.SlideCount),
		"slide_count":       outcome.SlideCount,
		"batch":             outcome.Batch,
		"slides":            slides,
		"original_filename": outcome.OriginalName,
		"note":              fmt.Sprintf("Images will be automatically cleaned up after %s", h.ttl),
	})
}

func (h *ConvertHandler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Presentation to JPEG converter service is running",
		"status":  "healthy",
	})
}

func (h *ConvertHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "healthy",
		"service": "slide_render",
	})
}

func (h *ConvertHandler) DebugStatic(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.store.List(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "store list failed", Error: err})
		http.Error(w, "store list failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		names = append(names, a.Name)
	}
	if len(names) > 10 {
		names = names[:10]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"files_count": len(artifacts),
		"files":       names,
	})
}

func (h *ConvertHandler) DebugStaticFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	// любая ошибка Stat (локальная или от S3) трактуется как "файла нет"
	info, err := h.store.Stat(r.Context(), name)
	exists := err == nil

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"filename": name,
		"exists":   exists,
		"size":     info.Size,
	})
}
