package convert

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config — настройки пайплайна. Диапазоны проверяются на старте:
// кривое значение валит процесс сразу, а не молча клампится.
type Config struct {
	SofficeBin string
	ConvertBin string

	Density int // DPI растеризации
	Quality int // JPEG quality

	StageTimeout  time.Duration // на каждый внешний инструмент
	ArtifactTTL   time.Duration // сколько живут опубликованные картинки
	PageWidth     int           // минимальная ширина номера страницы в имени
	MaxConcurrent int           // потолок одновременных внешних процессов
}

func DefaultConfig() Config {
	return Config{
		SofficeBin:    "soffice",
		ConvertBin:    "convert",
		Density:       150,
		Quality:       80,
		StageTimeout:  300 * time.Second,
		ArtifactTTL:   time.Hour,
		PageWidth:     3,
		MaxConcurrent: 4,
	}
}

func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SOFFICE_BIN"); v != "" {
		cfg.SofficeBin = v
	}
	if v := os.Getenv("CONVERT_BIN"); v != "" {
		cfg.ConvertBin = v
	}

	var err error
	if cfg.Density, err = envInt("CONVERT_DENSITY", cfg.Density); err != nil {
		return Config{}, err
	}
	if cfg.Quality, err = envInt("CONVERT_QUALITY", cfg.Quality); err != nil {
		return Config{}, err
	}
	if cfg.PageWidth, err = envInt("PAGE_INDEX_WIDTH", cfg.PageWidth); err != nil {
		return Config{}, err
	}
	if cfg.MaxConcurrent, err = envInt("CONVERT_MAX_CONCURRENT", cfg.MaxConcurrent); err != nil {
		return Config{}, err
	}
	if cfg.StageTimeout, err = envDuration("CONVERT_STAGE_TIMEOUT", cfg.StageTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ArtifactTTL, err = envDuration("ARTIFACT_TTL", cfg.ArtifactTTL); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Density < 50 || c.Density > 600 {
		return fmt.Errorf("density %d out of range [50,600]", c.Density)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality %d out of range [1,100]", c.Quality)
	}
	if c.StageTimeout <= 0 {
		return fmt.Errorf("stage timeout must be positive, got %s", c.StageTimeout)
	}
	if c.ArtifactTTL <= 0 {
		return fmt.Errorf("artifact ttl must be positive, got %s", c.ArtifactTTL)
	}
	if c.PageWidth < 1 || c.PageWidth > 6 {
		return fmt.Errorf("page index width %d out of range [1,6]", c.PageWidth)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	return nil
}

func envInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	// голое число трактуем как секунды
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
