package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/Vovarama1992/slide_render/internal/ports"
)

// Сколько ждём смерти процесса после SIGKILL, прежде чем бросить его.
const killGrace = 5 * time.Second

type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run запускает команду в собственной process group, чтобы по таймауту
// убить и её потомков (soffice любит форкаться). Stdout/stderr собираются
// целиком даже при убийстве.
func (r *ExecRunner) Run(ctx context.Context, c ports.Command) (ports.RunResult, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// пустой slice, а не nil: nil означал бы "наследуй всё окружение"
	cmd.Env = c.Env
	if cmd.Env == nil {
		cmd.Env = []string{}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return ports.RunResult{}, fmt.Errorf("start %s: %w", c.Path, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		select {
		case waitErr = <-done:
		case <-time.After(killGrace):
			waitErr = fmt.Errorf("%s did not exit after SIGKILL", c.Path)
		}
	}

	res := ports.RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if res.TimedOut {
			res.ExitCode = -1
			return res, nil
		}
		return res, fmt.Errorf("wait %s: %w", c.Path, waitErr)
	}

	return res, nil
}
