package api

import (
	"net/http"

	"github.com/charmbracelet/log"
)

// Route paths relative to the base path.
const (
	RouteState       = "/state"
	RouteAddHeart    = "/hearts/add"
	RouteRemoveHeart = "/hearts/remove"
	RouteToggleAudio = "/audio/toggle"
	RouteReset       = "/reset"
	RouteHistory     = "/history"
	RouteHealth      = "/healthz"
)

// RouterConfig configures the HTTP router.
type RouterConfig struct {
	BasePath       string   // e.g. "/api/pet"; empty mounts at the root
	AllowedOrigins []string // CORS origins, "*" allows any
}

// RegisterRoutes wires the pet routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler, basePath string) {
	if mux == nil || h == nil {
		return
	}
	mux.HandleFunc("GET "+basePath+RouteState, h.GetState)
	mux.HandleFunc("PUT "+basePath+RouteState, h.UpdateState)
	mux.HandleFunc("POST "+basePath+RouteAddHeart, h.AddHeart)
	mux.HandleFunc("POST "+basePath+RouteRemoveHeart, h.RemoveHeart)
	mux.HandleFunc("POST "+basePath+RouteToggleAudio, h.ToggleAudio)
	mux.HandleFunc("POST "+basePath+RouteReset, h.Reset)
	if h.history != nil {
		mux.HandleFunc("GET "+basePath+RouteHistory, h.History)
	}
	mux.HandleFunc("GET "+RouteHealth, h.Health)
}

// NewRouter builds the full HTTP handler: routes plus middleware.
func NewRouter(h *Handler, cfg RouterConfig, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h, cfg.BasePath)

	var handler http.Handler = mux
	handler = corsMiddleware(cfg.AllowedOrigins)(handler)
	handler = recoverMiddleware(logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware(handler)
	return handler
}
