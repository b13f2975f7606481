package routes

import (
	"runlab/stride/internal/api"
	"runlab/stride/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func registerAPIRoutes(r chi.Router, deps *api.Dependencies, log *zap.SugaredLogger) {
	h := api.NewHandlers(deps.Analytics, log)

	r.Get("/auth/status", h.AuthStatus())

	r.Route("/api", func(r chi.Router) {
		r.Get("/cockpit", h.Cockpit())
		r.Get("/volume/{mode}", h.Volume())

		r.Route("/performance", func(r chi.Router) {
			r.Get("/records", h.Records())
			r.Get("/best-by-year", h.BestByYear())
		})
		r.Get("/projections", h.Projections())

		r.Route("/segments", func(r chi.Router) {
			r.Get("/local-legends", h.LocalLegends())
			r.Get("/prs", h.SegmentPRs())
			r.Get("/heatmap", h.Heatmap())
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/pace-stability", h.PaceStability())
			r.Get("/cardiac-decoupling", h.CardiacDecoupling())
			r.Get("/volume-vs-performance", h.VolumeVsPerformance())
		})
	})

	// Sync mutates the store and spends Strava quota, so it sits behind
	// the operator token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OperatorAuthMiddleware(deps.Signer, log))
		r.Post("/sync", api.SyncHandler(deps.SyncJob, log))
		r.Get("/sync", api.SyncHandler(deps.SyncJob, log))
		r.Get("/sync/status", api.SyncStatusHandler(deps.SyncJob))
	})
}
