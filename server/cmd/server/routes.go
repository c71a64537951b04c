package main

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/datapipeline/pipelinemanager/server/internal/api"
	"github.com/datapipeline/pipelinemanager/server/internal/config"
	"github.com/datapipeline/pipelinemanager/server/internal/middleware"
	"github.com/datapipeline/pipelinemanager/server/internal/ws"
)

// uiPrefix is where the optional front-end is mounted.
const uiPrefix = "/ui/"

// newRouter combines the REST API, the WebSocket stream (when hub is non-nil)
// and the optional static UI behind the shared middleware chain. CORS checks
// consult origins on every request, so reloading it needs no new router.
func newRouter(cfg config.ServerConfig, logger *slog.Logger, h *api.Handler, hub *ws.Hub, origins *middleware.Origins) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", h)
	if hub != nil {
		mux.Handle("/ws/stream", hub)
	}
	if cfg.UIDir != "" {
		mux.Handle(uiPrefix, http.StripPrefix(strings.TrimSuffix(uiPrefix, "/"), spa(cfg.UIDir)))
		logger.Info("serving UI static files", "dir", cfg.UIDir, "prefix", uiPrefix)
	}

	cors := middleware.DefaultCORSConfig()
	cors.Origins = origins

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recovery(logger),
		middleware.CORS(cors),
	)
}

// spa serves files from dir, falling back to index.html for any path that
// does not name an existing file so client-side routes resolve.
func spa(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if fi, err := os.Stat(name); err != nil || fi.IsDir() && r.URL.Path != "/" {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}
