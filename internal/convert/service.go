package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/slide_render/internal/ports"
)

type service struct {
	cfg        Config
	workspaces ports.WorkspaceManager
	normalizer Normalizer
	rasterizer Rasterizer
	store      ports.ArtifactStore
	retention  RetentionScheduler
	notify     Notifier // nil — оповещения выключены
	log        *logger.ZapLogger

	// потолок одновременных внешних процессов на весь сервис
	slots chan struct{}
}

func NewService(
	cfg Config,
	workspaces ports.WorkspaceManager,
	normalizer Normalizer,
	rasterizer Rasterizer,
	store ports.ArtifactStore,
	retention RetentionScheduler,
	notify Notifier,
	log *logger.ZapLogger,
) Service {
	return &service{
		cfg:        cfg,
		workspaces: workspaces,
		normalizer: normalizer,
		rasterizer: rasterizer,
		store:      store,
		retention:  retention,
		notify:     notify,
		log:        log,
		slots:      make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Convert — весь пайплайн одного запроса:
// Received -> Normalizing -> Rasterizing -> Publishing -> Completed.
// Любой отказ терминален, ретраев нет. Workspace убирается на каждом
// пути выхода до возврата результата.
func (s *service) Convert(ctx context.Context, req ConversionRequest) (*ConversionOutcome, error) {
	if !SupportedExtension(req.OriginalName) {
		return nil, s.fail(ctx, req, failf(KindUnsupportedFormat, StageReceived, "",
			"unsupported file extension %q, only .ppt, .pptx and .odp are accepted",
			filepath.Ext(req.OriginalName)))
	}
	if len(req.Data) == 0 {
		return nil, s.fail(ctx, req, failf(KindUnsupportedFormat, StageReceived, "",
			"uploaded file is empty"))
	}

	// отвязываемся от контекста запроса: если клиент отвалился,
	// уборка и уже идущая конвертация всё равно должны дойти до конца
	ctx = context.WithoutCancel(ctx)

	ws, err := s.workspaces.Acquire()
	if err != nil {
		e := failf(KindInternal, StageReceived, "", "acquire workspace: %v", err)
		e.Err = err
		return nil, s.fail(ctx, req, e)
	}
	defer func() {
		if rerr := s.workspaces.Release(ws); rerr != nil {
			s.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "failed to release workspace " + ws.Dir,
				Service: "slide_render",
				Error:   rerr,
			})
		}
	}()

	inputPath := ws.Join(SanitizeFilename(req.OriginalName))
	if err := os.WriteFile(inputPath, req.Data, 0o644); err != nil {
		e := failf(KindInternal, StageReceived, "", "write upload into workspace: %v", err)
		e.Err = err
		return nil, s.fail(ctx, req, e)
	}

	s.slots <- struct{}{}
	pdf, err := s.normalizer.Normalize(ctx, ws, inputPath)
	<-s.slots
	if err != nil {
		return nil, s.fail(ctx, req, err)
	}

	s.slots <- struct{}{}
	rawPages, err := s.rasterizer.Rasterize(ctx, ws, pdf)
	<-s.slots
	if err != nil {
		return nil, s.fail(ctx, req, err)
	}

	outcome, err := s.publish(ctx, req.OriginalName, rawPages)
	if err != nil {
		return nil, s.fail(ctx, req, err)
	}

	names := make([]string, len(outcome.Pages))
	for i, p := range outcome.Pages {
		names[i] = p.Name
	}
	s.retention.Schedule(outcome.Batch, names, s.cfg.ArtifactTTL)

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("converted %q: %d pages, batch %s", req.OriginalName, outcome.SlideCount, outcome.Batch),
		Service: "slide_render",
	})
	return outcome, nil
}

// publish переносит сырые страницы в публичное хранилище под финальными
// именами. При любом сбое уже опубликованная часть батча откатывается:
// наружу никогда не отдаётся половина набора.
func (s *service) publish(ctx context.Context, originalName string, rawPages []string) (*ConversionOutcome, error) {
	batch := NewBatchID()
	total := len(rawPages)

	pages := make([]PageArtifact, 0, total)
	for i, raw := range rawPages {
		name := PageName(batch, i+1, total, s.cfg.PageWidth)
		url, err := s.store.Publish(ctx, name, raw)
		if err != nil {
			for _, p := range pages {
				_ = s.store.Remove(ctx, p.Name)
			}
			e := failf(KindPublishFailed, StagePublishing, "", "publish page %d of %d: %v", i+1, total, err)
			e.Err = err
			return nil, e
		}
		pages = append(pages, PageArtifact{Batch: batch, Page: i + 1, Name: name, URL: url})
	}

	return &ConversionOutcome{
		Batch:        batch,
		SlideCount:   total,
		OriginalName: originalName,
		Pages:        pages,
	}, nil
}

func (s *service) fail(ctx context.Context, req ConversionRequest, err error) error {
	var cerr *Error
	if !errors.As(err, &cerr) {
		cerr = &Error{Kind: KindInternal, Stage: StageReceived, Message: err.Error(), Err: err}
	}

	level := "error"
	if cerr.Kind == KindUnsupportedFormat {
		level = "warn"
	}
	s.log.Log(logger.LogEntry{
		Level:   level,
		Message: fmt.Sprintf("conversion of %q failed at stage %s", req.OriginalName, cerr.Stage),
		Service: "slide_render",
		Error:   cerr,
	})

	if s.notify != nil && cerr.Kind != KindUnsupportedFormat {
		if nerr := s.notify.Notify(ctx, req.RequestID, cerr, cerr.Diagnostic); nerr != nil {
			s.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "failed to notify about conversion error",
				Service: "slide_render",
				Error:   nerr,
			})
		}
	}
	return cerr
}
