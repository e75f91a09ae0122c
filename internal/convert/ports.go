package convert

import (
	"context"
	"time"

	"github.com/Vovarama1992/slide_render/internal/ports"
)

// ConversionRequest живёт один запрос: создаётся на входе,
// выбрасывается после release рабочей директории.
type ConversionRequest struct {
	OriginalName string
	Data         []byte
	RequestID    string
}

type PageArtifact struct {
	Batch string `json:"batch"`
	Page  int    `json:"page"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

type ConversionOutcome struct {
	Batch        string
	SlideCount   int
	OriginalName string
	Pages        []PageArtifact
}

type Service interface {
	Convert(ctx context.Context, req ConversionRequest) (*ConversionOutcome, error)
}

// Normalizer — stage 1: произвольная презентация -> канонический PDF
// внутри workspace.
type Normalizer interface {
	Normalize(ctx context.Context, ws ports.Workspace, inputPath string) (pdfPath string, err error)
}

// Rasterizer — stage 2: PDF -> упорядоченный список сырых JPEG,
// по одному на страницу.
type Rasterizer interface {
	Rasterize(ctx context.Context, ws ports.Workspace, pdfPath string) ([]string, error)
}

// RetentionScheduler — отложенное удаление опубликованного батча.
// Fire-and-forget: вызов не блокирует запрос.
type RetentionScheduler interface {
	Schedule(batch string, names []string, ttl time.Duration)
}

// Notifier — опциональное оповещение админа об отказах пайплайна.
type Notifier interface {
	Notify(ctx context.Context, requestID string, err error, details string) error
}
