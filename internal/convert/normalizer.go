package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vovarama1992/slide_render/internal/ports"
)

var supportedExt = map[string]bool{
	".ppt":  true,
	".pptx": true,
	".odp":  true,
}

// SupportedExtension проверяется ДО единственного вызова внешнего
// инструмента: мусорный формат не должен стоить нам ни workspace, ни процесса.
func SupportedExtension(name string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(name))]
}

type SofficeNormalizer struct {
	bin     string
	timeout time.Duration
	runner  ports.Runner
}

func NewSofficeNormalizer(runner ports.Runner, cfg Config) *SofficeNormalizer {
	return &SofficeNormalizer{
		bin:     cfg.SofficeBin,
		timeout: cfg.StageTimeout,
		runner:  runner,
	}
}

// Normalize гонит презентацию через soffice в PDF рядом со входным файлом.
// Exit code 0 сам по себе ничего не доказывает: успехом считается только
// непустой PDF на ожидаемом пути.
func (n *SofficeNormalizer) Normalize(ctx context.Context, ws ports.Workspace, inputPath string) (string, error) {
	// своя UserInstallation, иначе в контейнере soffice дерётся за лок профиля
	profile := ws.Join("soffice_profile")
	if err := os.MkdirAll(profile, 0o755); err != nil {
		return "", failf(KindInternal, StageNormalizing, "", "create soffice profile: %v", err)
	}

	res, err := n.runner.Run(ctx, ports.Command{
		Path: n.bin,
		Args: []string{
			"-env:UserInstallation=file://" + profile,
			"--headless",
			"--convert-to", "pdf",
			"--outdir", ws.Dir,
			inputPath,
		},
		Dir:     ws.Dir,
		Env:     []string{"HOME=" + ws.Dir, "PATH=" + os.Getenv("PATH")},
		Timeout: n.timeout,
	})
	if err != nil {
		e := failf(KindNormalizationFailed, StageNormalizing, "", "normalization failed: %v", err)
		e.Err = err
		return "", e
	}
	if res.TimedOut {
		return "", failf(KindNormalizationFailed, StageNormalizing, res.Stderr,
			"normalization timed out after %s", n.timeout)
	}
	if res.ExitCode != 0 {
		return "", failf(KindNormalizationFailed, StageNormalizing, diag(res),
			"normalization failed: %s exited with code %d", n.bin, res.ExitCode)
	}

	base := filepath.Base(inputPath)
	pdf := ws.Join(strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf")
	fi, statErr := os.Stat(pdf)
	if statErr != nil || fi.Size() == 0 {
		return "", failf(KindNormalizationFailed, StageNormalizing, diag(res),
			"normalization produced no PDF at %s", pdf)
	}
	return pdf, nil
}

func diag(res ports.RunResult) string {
	return strings.TrimSpace(res.Stderr + "\n" + res.Stdout)
}
