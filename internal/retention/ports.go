package retention

import (
	"context"

	"github.com/Vovarama1992/slide_render/internal/ports"
)

// Store — минимум от хранилища, который нужен уборке.
type Store interface {
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]ports.StoredArtifact, error)
}
