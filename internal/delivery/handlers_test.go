package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/slide_render/internal/convert"
	"github.com/Vovarama1992/slide_render/internal/infra"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	outcome *convert.ConversionOutcome
	err     error
	gotReq  convert.ConversionRequest
}

func (s *stubService) Convert(ctx context.Context, req convert.ConversionRequest) (*convert.ConversionOutcome, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func newTestRouter(t *testing.T, svc convert.Service) (chi.Router, string) {
	t.Helper()
	staticDir := t.TempDir()
	store, err := infra.NewLocalStore(staticDir, "")
	require.NoError(t, err)

	h := NewConvertHandler(svc, store, time.Hour, logger.NewZapLogger(zap.NewNop().Sugar()))
	r := chi.NewRouter()
	RegisterRoutes(r, h, staticDir)
	return r, staticDir
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestConvertEndpointSuccess(t *testing.T) {
	svc := &stubService{outcome: &convert.ConversionOutcome{
		Batch:        "ab12cd34",
		SlideCount:   3,
		OriginalName: "deck.pptx",
		Pages: []convert.PageArtifact{
			{Batch: "ab12cd34", Page: 1, Name: "ab12cd34_001.jpg", URL: "/static/ab12cd34_001.jpg"},
			{Batch: "ab12cd34", Page: 2, Name: "ab12cd34_002.jpg", URL: "/static/ab12cd34_002.jpg"},
			{Batch: "ab12cd34", Page: 3, Name: "ab12cd34_003.jpg", URL: "/static/ab12cd34_003.jpg"},
		},
	}}
	r, _ := newTestRouter(t, svc)

	body, contentType := multipartUpload(t, "file", "deck.pptx", []byte("pptx-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/convert/pptx-to-jpeg", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status     string `json:"status"`
		SlideCount int    `json:"slide_count"`
		Slides     []struct {
			SlideNumber int    `json:"slide_number"`
			ImageURL    string `json:"image_url"`
		} `json:"slides"`
		OriginalFilename string `json:"original_filename"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 3, resp.SlideCount)
	require.Len(t, resp.Slides, 3)
	assert.Equal(t, 1, resp.Slides[0].SlideNumber)
	assert.Equal(t, "/static/ab12cd34_001.jpg", resp.Slides[0].ImageURL)
	assert.Equal(t, "deck.pptx", resp.OriginalFilename)

	assert.Equal(t, "deck.pptx", svc.gotReq.OriginalName)
	assert.NotEmpty(t, svc.gotReq.RequestID)
	assert.Equal(t, []byte("pptx-bytes"), svc.gotReq.Data)
}

func TestConvertEndpointMissingFile(t *testing.T) {
	r, _ := newTestRouter(t, &stubService{})

	body, contentType := multipartUpload(t, "wrong_field", "deck.pptx", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/convert/pptx-to-jpeg", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertEndpointUnsupportedFormat(t *testing.T) {
	svc := &stubService{err: &convert.Error{
		Kind:    convert.KindUnsupportedFormat,
		Stage:   convert.StageReceived,
		Message: `unsupported file extension ".txt"`,
	}}
	r, _ := newTestRouter(t, svc)

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/convert/pptx-to-jpeg", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file extension")
}

func TestConvertEndpointToolFailure(t *testing.T) {
	svc := &stubService{err: &convert.Error{
		Kind:       convert.KindNormalizationFailed,
		Stage:      convert.StageNormalizing,
		Message:    "normalization failed: soffice exited with code 1",
		Diagnostic: "soffice: cannot open",
	}}
	r, _ := newTestRouter(t, svc)

	body, contentType := multipartUpload(t, "file", "deck.pptx", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/convert/pptx-to-jpeg", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "soffice: cannot open")
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, &stubService{})

	for _, path := range []string{"/", "/health"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "healthy")
	}
}

func TestStaticServing(t *testing.T) {
	r, staticDir := newTestRouter(t, &stubService{})
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "ab12cd34_001.jpg"), []byte("jpeg"), 0o644))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/ab12cd34_001.jpg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/nope.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugEndpoints(t *testing.T) {
	r, staticDir := newTestRouter(t, &stubService{})
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "ab12cd34_001.jpg"), []byte("jpeg"), 0o644))

	t.Run("List", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/static", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			FilesCount int      `json:"files_count"`
			Files      []string `json:"files"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.FilesCount)
		assert.Contains(t, resp.Files, "ab12cd34_001.jpg")
	})

	t.Run("StatExisting", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/static/ab12cd34_001.jpg", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Exists bool  `json:"exists"`
			Size   int64 `json:"size"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Exists)
		assert.Equal(t, int64(4), resp.Size)
	})

	t.Run("StatMissing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/static/nope.jpg", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Exists bool `json:"exists"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Exists)
	})
}
