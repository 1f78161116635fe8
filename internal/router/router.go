package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arko-chat/geobridge/components/assets"
	"github.com/arko-chat/geobridge/internal/handlers"
	"github.com/arko-chat/geobridge/internal/middleware"
)

type Options struct {
	// Quiet disables request logging.
	Quiet bool
	// AllowedOrigins are extra browser origins that may call the API.
	AllowedOrigins []string
}

func New(h *handlers.Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	if !opts.Quiet {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assets.Global.FS()))))

	r.Get("/", h.HandleIndex)
	r.Get("/healthz", h.HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LocalOrigin(opts.AllowedOrigins...))

		r.Get("/ws", h.HandleWS)
		r.Route("/api", func(r chi.Router) {
			r.Get("/commands", h.HandleCommands)
			r.Post("/{command}", h.HandleCall)
		})
	})

	return r
}
