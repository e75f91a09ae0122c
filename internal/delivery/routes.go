package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(r chi.Router, h *ConvertHandler, staticDir string) {
	// --- health ---
	r.With(httputil.RecoverMiddleware).Get("/", h.Root)
	r.With(httputil.RecoverMiddleware).Get("/health", h.Health)

	// --- конвертация ---
	r.Route("/convert", func(cr chi.Router) {
		cr.Use(
			httputil.RecoverMiddleware,
			httprate.LimitByIP(30, time.Minute),
		)
		cr.Post("/pptx-to-jpeg", h.Convert)
	})

	// --- debug ---
	r.With(httputil.RecoverMiddleware).Get("/debug/static", h.DebugStatic)
	r.With(httputil.RecoverMiddleware).Get("/debug/static/{filename}", h.DebugStaticFile)

	// --- статика ---
	// при S3-хранилище файлы раздаёт сам бакет, staticDir пуст
	if staticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}
}
