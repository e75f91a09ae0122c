package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
)

// Scheduler удаляет опубликованные батчи по истечении TTL. Задачи —
// отменяемые таймеры с ключом по batch id, а не sleep-потоки.
//
// Известное ограничение: таймеры живут в памяти процесса. Рестарт их
// теряет, гарантий сверх best-effort нет — осиротевшие файлы добирает
// SweepOrphans на следующем старте.
type Scheduler struct {
	store Store
	log   *logger.ZapLogger

	mu     sync.Mutex
	tasks  map[string]*time.Timer
	closed bool
}

func NewScheduler(store Store, log *logger.ZapLogger) *Scheduler {
	return &Scheduler{
		store: store,
		log:   log,
		tasks: make(map[string]*time.Timer),
	}
}

// Schedule ставит батч на удаление через ttl. Не блокирует вызывающего.
func (s *Scheduler) Schedule(batch string, names []string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.tasks[batch]; ok {
		t.Stop()
	}
	s.tasks[batch] = time.AfterFunc(ttl, func() {
		s.expire(batch, names)
	})
}

// Cancel снимает батч с удаления. true — таймер ещё не сработал.
func (s *Scheduler) Cancel(batch string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[batch]
	if !ok {
		return false
	}
	delete(s.tasks, batch)
	return t.Stop()
}

// Close останавливает все отложенные удаления.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for batch, t := range s.tasks {
		t.Stop()
		delete(s.tasks, batch)
	}
}

func (s *Scheduler) expire(batch string, names []string) {
	s.mu.Lock()
	delete(s.tasks, batch)
	s.mu.Unlock()

	ctx := context.Background()
	for _, name := range names {
		if err := s.store.Remove(ctx, name); err != nil {
			s.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "retention: failed to remove " + name,
				Service: "slide_render",
				Error:   err,
			})
		}
	}
	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("retention: batch %s expired, %d artifacts removed", batch, len(names)),
		Service: "slide_render",
	})
}

// SweepOrphans убирает из хранилища всё старше maxAge. Зовётся один раз
// на старте и закрывает дыру после рестарта: файлы, чьи таймеры умерли
// вместе с прошлым процессом, не живут дольше одного окна.
func (s *Scheduler) SweepOrphans(ctx context.Context, maxAge time.Duration) (int, error) {
	artifacts, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list artifacts: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, a := range artifacts {
		if a.ModTime.After(cutoff) {
			continue
		}
		if err := s.store.Remove(ctx, a.Name); err != nil {
			s.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "sweep: failed to remove " + a.Name,
				Service: "slide_render",
				Error:   err,
			})
			continue
		}
		removed++
	}
	return removed, nil
}
