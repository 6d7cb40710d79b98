package public

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/interfaces/http/common"
	"github.com/sngm3741/offer-finder/api/internal/source"
)

// Handler wires the public dataset endpoints to a data source.
type Handler struct {
	logger  *zap.Logger
	stores  source.Source
	health  func(ctx context.Context) error
	timeout time.Duration
	now     func() time.Time
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger *zap.Logger
	Stores source.Source
	// Health reports backend reachability for /healthz. Nil means always
	// healthy.
	Health  func(ctx context.Context) error
	Timeout time.Duration
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Handler{
		logger:  logger,
		stores:  cfg.Stores,
		health:  cfg.Health,
		timeout: timeout,
		now:     time.Now,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.healthHandler())
	r.Get("/stores", h.storeListHandler())
	r.Get("/companies", h.companyListHandler())
	r.Get("/companies/{companyID}/stores.json", h.companyDatasetHandler())
}

func (h *Handler) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := h.health(ctx); err != nil {
				common.WriteJSON(h.logger, w, http.StatusServiceUnavailable, healthResponse{
					Status: "degraded",
					Error:  err.Error(),
				})
				return
			}
		}
		common.WriteJSON(h.logger, w, http.StatusOK, healthResponse{
			Status: "ok",
			Time:   h.now().Format(time.RFC3339),
		})
	}
}
