package convert

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnsupportedFormat   ErrorKind = "unsupported_format"
	KindNormalizationFailed ErrorKind = "normalization_failed"
	KindRasterizationFailed ErrorKind = "rasterization_failed"
	KindPublishFailed       ErrorKind = "publish_failed"
	KindInternal            ErrorKind = "internal_error"
)

// Stage — этап пайплайна, на котором случился отказ.
type Stage string

const (
	StageReceived    Stage = "received"
	StageNormalizing Stage = "normalizing"
	StageRasterizing Stage = "rasterizing"
	StagePublishing  Stage = "publishing"
	StageCompleted   Stage = "completed"
)

// Error — тегированный отказ конвертации. Diagnostic хранит перехваченный
// stdout/stderr упавшего инструмента и не теряется при прокидывании наверх.
type Error struct {
	Kind       ErrorKind
	Stage      Stage
	Message    string
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Diagnostic)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failf(kind ErrorKind, stage Stage, diagnostic, format string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Stage:      stage,
		Message:    fmt.Sprintf(format, args...),
		Diagnostic: diagnostic,
	}
}

// KindOf достаёт ErrorKind из любой ошибки; всё нераспознанное — internal.
func KindOf(err error) ErrorKind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindInternal
}

// IsClientError — true для отказов, в которых виноват вход, а не сервис.
func IsClientError(err error) bool {
	return KindOf(err) == KindUnsupportedFormat
}
