package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apppublic "orevein/internal/app/public"
	"orevein/internal/config"
	"orevein/internal/energy"
	"orevein/internal/events"
	"orevein/internal/mining"
	"orevein/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, ecfg energy.Config, coord *mining.Coordinator, hub *events.Hub) *chi.Mux {
	publicSvc := apppublic.NewService(st, ecfg)

	publicHandlers := NewPublicHandlers(publicSvc, st)
	miningHandlers := NewMiningHandlers(coord, hub)
	adminHandlers := NewAdminHandlers(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/public/scenes", publicHandlers.Scenes())
		r.Get("/public/leaderboard", publicHandlers.Leaderboard())
		r.Post("/players/register", publicHandlers.Register())

		r.Group(func(r chi.Router) {
			r.Use(PlayerAuthMiddleware(st))
			r.Get("/me", publicHandlers.Me())
			r.Get("/me/sessions", publicHandlers.MySessions())
			r.Post("/mining/start", miningHandlers.Start())
			r.Get("/mining/estimate", miningHandlers.Estimate())
			r.Post("/mining/stop", miningHandlers.Stop())
			r.Get("/mining/events", miningHandlers.Events())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/players", adminHandlers.Players())
			r.Get("/ledger", adminHandlers.Ledger())
			r.Post("/topup", adminHandlers.Topup())
			r.Post("/scenes", adminHandlers.CreateScene())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
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
