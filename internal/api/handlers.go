package api

import (
	"context"
	"net/http"
	"strconv"

	"runlab/stride/internal/analytics"
	"runlab/stride/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AnalyticsReader is implemented by services.AnalyticsService.
type AnalyticsReader interface {
	Cockpit(ctx context.Context) (*services.CockpitResponse, error)
	WeeklyVolume(ctx context.Context, years []string) ([]services.WeeklyVolume, error)
	MonthlyVolume(ctx context.Context) ([]analytics.PeriodVolume, error)
	YearlyVolume(ctx context.Context) ([]analytics.PeriodVolume, error)
	RollingVolume(ctx context.Context, days int) ([]analytics.RollingPoint, error)
	Records(ctx context.Context) (map[string][]services.RecordEntry, error)
	BestByYear(ctx context.Context) (map[string][]services.YearBest, error)
	Projections(ctx context.Context) (*services.ProjectionsResponse, error)
	LocalLegends(ctx context.Context) (*services.LocalLegendsResponse, error)
	SegmentPRs(ctx context.Context) (*services.SegmentPRsResponse, error)
	Heatmap(ctx context.Context) ([]services.HeatmapSegment, error)
	PaceStability(ctx context.Context) ([]services.PacePoint, error)
	CardiacDecoupling(ctx context.Context) ([]services.CardiacPoint, error)
	VolumeVsPerformance(ctx context.Context) ([]services.VolumePerfPoint, error)
	AuthStatus(ctx context.Context) (*services.AuthStatus, error)
}

type Handlers struct {
	reader AnalyticsReader
	log    *zap.SugaredLogger
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(reader AnalyticsReader, log *zap.SugaredLogger) *Handlers {
	return &Handlers{reader: reader, log: log}
}

// serve adapts a read operation to a handler answering 200 with the
// enveloped result, or 500.
func serve[T any](h *Handlers, name string, load func(r *http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := load(r)
		if err != nil {
			h.log.Errorw("Failed to serve "+name, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to load "+name)
			return
		}
		respondWithSuccess(w, http.StatusOK, &data)
	}
}

// Cockpit handles GET /api/cockpit
func (h *Handlers) Cockpit() http.HandlerFunc {
	return serve(h, "cockpit", func(r *http.Request) (*services.CockpitResponse, error) {
		return h.reader.Cockpit(r.Context())
	})
}

// Volume handles GET /api/volume/{mode}
func (h *Handlers) Volume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch mode := chi.URLParam(r, "mode"); mode {
		case "weekly":
			years, err := services.ParseYears(r.URL.Query().Get("years"))
			if err != nil {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			serve(h, "weekly volume", func(r *http.Request) ([]services.WeeklyVolume, error) {
				return h.reader.WeeklyVolume(ctx, years)
			})(w, r)
		case "monthly":
			serve(h, "monthly volume", func(r *http.Request) ([]analytics.PeriodVolume, error) {
				return h.reader.MonthlyVolume(ctx)
			})(w, r)
		case "yearly":
			serve(h, "yearly volume", func(r *http.Request) ([]analytics.PeriodVolume, error) {
				return h.reader.YearlyVolume(ctx)
			})(w, r)
		case "rolling":
			days := services.DefaultRollingDays
			if raw := r.URL.Query().Get("days"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 || n > services.MaxRollingDays {
					respondWithError(w, http.StatusBadRequest, "days must be an integer between 1 and "+strconv.Itoa(services.MaxRollingDays))
					return
				}
				days = n
			}
			serve(h, "rolling volume", func(r *http.Request) ([]analytics.RollingPoint, error) {
				return h.reader.RollingVolume(ctx, days)
			})(w, r)
		default:
			respondWithError(w, http.StatusNotFound, "unknown volume mode "+mode)
		}
	}
}

// Records handles GET /api/performance/records
func (h *Handlers) Records() http.HandlerFunc {
	return serve(h, "records", func(r *http.Request) (map[string][]services.RecordEntry, error) {
		return h.reader.Records(r.Context())
	})
}

// BestByYear handles GET /api/performance/best-by-year
func (h *Handlers) BestByYear() http.HandlerFunc {
	return serve(h, "best by year", func(r *http.Request) (map[string][]services.YearBest, error) {
		return h.reader.BestByYear(r.Context())
	})
}

// Projections handles GET /api/projections
func (h *Handlers) Projections() http.HandlerFunc {
	return serve(h, "projections", func(r *http.Request) (*services.ProjectionsResponse, error) {
		return h.reader.Projections(r.Context())
	})
}

// LocalLegends handles GET /api/segments/local-legends
func (h *Handlers) LocalLegends() http.HandlerFunc {
	return serve(h, "local legends", func(r *http.Request) (*services.LocalLegendsResponse, error) {
		return h.reader.LocalLegends(r.Context())
	})
}

// SegmentPRs handles GET /api/segments/prs
func (h *Handlers) SegmentPRs() http.HandlerFunc {
	return serve(h, "segment PRs", func(r *http.Request) (*services.SegmentPRsResponse, error) {
		return h.reader.SegmentPRs(r.Context())
	})
}

// Heatmap handles GET /api/segments/heatmap
func (h *Handlers) Heatmap() http.HandlerFunc {
	return serve(h, "heatmap", func(r *http.Request) ([]services.HeatmapSegment, error) {
		return h.reader.Heatmap(r.Context())
	})
}

func (h *Handlers) PaceStability() http.HandlerFunc {
	return serve(h, "pace stability", func(r *http.Request) ([]services.PacePoint, error) {
		return h.reader.PaceStability(r.Context())
	})
}

func (h *Handlers) CardiacDecoupling() http.HandlerFunc {
	return serve(h, "cardiac decoupling", func(r *http.Request) ([]services.CardiacPoint, error) {
		return h.reader.CardiacDecoupling(r.Context())
	})
}

func (h *Handlers) VolumeVsPerformance() http.HandlerFunc {
	return serve(h, "volume vs performance", func(r *http.Request) ([]services.VolumePerfPoint, error) {
		return h.reader.VolumeVsPerformance(r.Context())
	})
}

// AuthStatus handles GET /auth/status
func (h *Handlers) AuthStatus() http.HandlerFunc {
	return serve(h, "auth status", func(r *http.Request) (*services.AuthStatus, error) {
		return h.reader.AuthStatus(r.Context())
	})
}
