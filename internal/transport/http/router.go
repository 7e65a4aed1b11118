package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"holdem-core/internal/config"
	"holdem-core/internal/spectator"
	"holdem-core/internal/store"
	"holdem-core/internal/table"
	"holdem-core/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// NewRouter wires the table API. st may be nil.
func NewRouter(st *store.Store, cfg config.ServerConfig, reg *table.Registry, stream *ws.Server) *chi.Mux {
	tableHandlers := NewTableHandlers(reg, stream, PlayerAuth(cfg.PlayerKeys))
	adminHandlers := NewAdminHandlers(st, reg)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Route("/tables/{table_id}", func(r chi.Router) {
			r.Post("/seats", tableHandlers.SitDown())
			r.Delete("/seats/{player_id}", tableHandlers.StandUp())
			r.Post("/reconnect", tableHandlers.Reconnect())
			r.Post("/hands", tableHandlers.StartHand())
			r.Post("/actions", tableHandlers.Act())
			r.Post("/reveal", tableHandlers.Reveal())
			r.Get("/logs", tableHandlers.Logs())
			r.Get("/snapshot", tableHandlers.Snapshot())
			r.Get("/archive", tableHandlers.Archive())
			r.Get("/ws", tableHandlers.Stream())
			r.Get("/events", spectator.EventsHandler(reg))
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/admin/tables/{table_id}/force_end", adminHandlers.ForceEnd())
			r.Get("/admin/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
