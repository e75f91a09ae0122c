package ports

import (
	"context"
	"time"
)

// Команда для внешнего инструмента. Окружение родителя наследуется
// только через явный Env — ничего лишнего ребёнку не утекает.
type Command struct {
	Path    string
	Args    []string
	Dir     string
	Env     []string
	Timeout time.Duration
}

type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}

// Runner запускает внешний процесс с жёстким дедлайном.
// Ненулевой exit code — это не error: error возвращается только если
// процесс не удалось запустить или дождаться.
type Runner interface {
	Run(ctx context.Context, cmd Command) (RunResult, error)
}
