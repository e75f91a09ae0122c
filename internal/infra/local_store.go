package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/slide_render/internal/ports"
)

type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore — файловое хранилище артефактов, раздаётся по /static/{name}.
// baseURL (например https://host) добавляется к URL, пустой — относительные URL.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create static dir: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// Publish копирует файл под staging-именем и переименовывает на место:
// по финальному имени файл появляется только целиком.
func (s *LocalStore) Publish(ctx context.Context, name, srcPath string) (string, error) {
	name = filepath.Base(name)
	staging := filepath.Join(s.dir, "."+name+".part")
	final := filepath.Join(s.dir, name)

	if err := copyFile(srcPath, staging); err != nil {
		_ = os.Remove(staging)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := os.Rename(staging, final); err != nil {
		_ = os.Remove(staging)
		return "", fmt.Errorf("publish %s: %w", name, err)
	}
	return s.baseURL + "/static/" + name, nil
}

func (s *LocalStore) Remove(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) Stat(ctx context.Context, name string) (ports.StoredArtifact, error) {
	fi, err := os.Stat(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return ports.StoredArtifact{}, err
	}
	return ports.StoredArtifact{Name: fi.Name(), Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (s *LocalStore) List(ctx context.Context) ([]ports.StoredArtifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []ports.StoredArtifact
	for _, e := range entries {
		// staging-файлы и прочие скрытые не считаются опубликованными
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ports.StoredArtifact{Name: fi.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
