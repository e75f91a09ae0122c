package convert

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// batchIDLen — 8 hex-символов, 32 бита случайности на батч.
const batchIDLen = 8

const maxStemLen = 100

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// NewBatchID возвращает уникальный токен батча: первые 8 hex-символов
// случайного UUID. Генерация вместо локов — коллизии пренебрежимы.
func NewBatchID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:batchIDLen]
}

// SanitizeFilename превращает недоверенное имя файла в безопасное для
// шелла и ФС: не-ASCII и спецсимволы заменяются на "_". Расширение
// сохраняется — по нему конвертер определяет формат. Оригинальное имя
// остаётся только в метаданных ответа.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	stem = unsafeChars.ReplaceAllString(stem, "_")
	ext = unsafeChars.ReplaceAllString(strings.ToLower(ext), "_")

	if stem == "" || stem == "." || len(stem) > maxStemLen {
		stem = "file_" + NewBatchID()
	}
	return stem + ext
}

// PageName строит финальное имя страницы: {batch}_{page:0Nd}.jpg.
// Если страниц больше, чем влезает в width разрядов, поле расширяется
// до фактического числа разрядов — имена никогда не обрезаются.
func PageName(batch string, page, total, width int) string {
	if d := digits(total); d > width {
		width = d
	}
	return fmt.Sprintf("%s_%0*d.jpg", batch, width, page)
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
