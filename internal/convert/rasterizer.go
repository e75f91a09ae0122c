package convert

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/slide_render/internal/ports"
)

const (
	rawPagePrefix  = "page-"
	rawPagePattern = "page-%03d.jpg"
)

type MagickRasterizer struct {
	bin     string
	density int
	quality int
	timeout time.Duration
	runner  ports.Runner
}

func NewMagickRasterizer(runner ports.Runner, cfg Config) *MagickRasterizer {
	return &MagickRasterizer{
		bin:     cfg.ConvertBin,
		density: cfg.Density,
		quality: cfg.Quality,
		timeout: cfg.StageTimeout,
		runner:  runner,
	}
}

// Rasterize раскладывает PDF в page-NNN.jpg внутри workspace и возвращает
// пути в порядке страниц. Сортировка по числу, не по строке — иначе
// страница 10 встаёт перед страницей 2.
func (r *MagickRasterizer) Rasterize(ctx context.Context, ws ports.Workspace, pdfPath string) ([]string, error) {
	res, err := r.runner.Run(ctx, ports.Command{
		Path: r.bin,
		Args: []string{
			"-density", strconv.Itoa(r.density),
			"-quality", strconv.Itoa(r.quality),
			pdfPath,
			ws.Join(rawPagePattern),
		},
		Dir:     ws.Dir,
		Env:     []string{"PATH=" + os.Getenv("PATH")},
		Timeout: r.timeout,
	})
	if err != nil {
		e := failf(KindRasterizationFailed, StageRasterizing, "", "rasterization failed: %v", err)
		e.Err = err
		return nil, e
	}
	if res.TimedOut {
		return nil, failf(KindRasterizationFailed, StageRasterizing, res.Stderr,
			"rasterization timed out after %s", r.timeout)
	}
	if res.ExitCode != 0 {
		return nil, failf(KindRasterizationFailed, StageRasterizing, diag(res),
			"rasterization failed: %s exited with code %d", r.bin, res.ExitCode)
	}

	pages, err := collectPages(ws.Dir)
	if err != nil {
		return nil, failf(KindRasterizationFailed, StageRasterizing, diag(res),
			"list rasterized pages: %v", err)
	}
	if len(pages) == 0 {
		return nil, failf(KindRasterizationFailed, StageRasterizing, diag(res),
			"rasterization produced no pages")
	}
	return pages, nil
}

type rawPage struct {
	num  int
	path string
}

func collectPages(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, rawPagePrefix+"*.jpg"))
	if err != nil {
		return nil, err
	}

	raw := make([]rawPage, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, rawPagePrefix), ".jpg")
		num, err := strconv.Atoi(numStr)
		if err != nil {
			continue // чужой файл, не наша страница
		}
		raw = append(raw, rawPage{num: num, path: m})
	}

	sort.Slice(raw, func(i, j int) bool { return raw[i].num < raw[j].num })

	out := make([]string, len(raw))
	for i, p := range raw {
		out[i] = p.path
	}
	return out, nil
}
