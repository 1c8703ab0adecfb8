package system

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/futapay/relay/internal/http/api"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Info struct {
	Name    string
	Version string
	Storage string
}

type Handler struct {
	info    Info
	db      Pinger
	started time.Time
}

// NewHandler builds the liveness endpoints. db may be nil when no database
// is in use.
func NewHandler(info Info, db Pinger) *Handler {
	return &Handler{info: info, db: db, started: time.Now()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/version", h.version)
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Storage string `json:"storage"`
	Uptime  string `json:"uptime"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{OK: true, Storage: h.info.Storage, Uptime: time.Since(h.started).Round(time.Second).String()}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			resp.OK = false
			resp.Error = "database unreachable"

			api.JSON(w, http.StatusServiceUnavailable, resp)

			return
		}
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{
		"name":    h.info.Name,
		"version": h.info.Version,
	})
}
