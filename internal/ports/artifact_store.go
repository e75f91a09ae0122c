package ports

import (
	"context"
	"time"
)

type StoredArtifact struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ArtifactStore — публичное хранилище готовых изображений.
// Publish обязан быть атомарным для одного файла: наполовину скопированный
// артефакт не должен быть доступен по своему финальному имени.
type ArtifactStore interface {
	Publish(ctx context.Context, name, srcPath string) (publicURL string, err error)
	Remove(ctx context.Context, name string) error
	Stat(ctx context.Context, name string) (StoredArtifact, error)
	List(ctx context.Context) ([]StoredArtifact, error)
}
