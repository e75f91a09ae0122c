package ports

import "path/filepath"

// Workspace — изолированная временная директория одного запроса.
// Все промежуточные файлы конвертации живут только внутри неё.
type Workspace struct {
	Dir string
}

func (w Workspace) Join(name string) string {
	return filepath.Join(w.Dir, filepath.Base(name))
}

// WorkspaceManager выдаёт уникальные директории и гарантированно их убирает.
// Release обязан вызываться ровно один раз на каждый Acquire, на любом
// пути выхода.
type WorkspaceManager interface {
	Acquire() (Workspace, error)
	Release(ws Workspace) error
}
