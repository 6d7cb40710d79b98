package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/config"
	publichttp "github.com/sngm3741/offer-finder/api/internal/interfaces/http/public"
	"github.com/sngm3741/offer-finder/api/internal/source"
)

// Server は HTTP サーバーのライフサイクルを管理し、データソースを公開ハンドラへ接続するコンポジションルート。
type Server struct {
	logger         *zap.Logger
	stores         source.Source
	health         func(ctx context.Context) error
	addr           string
	allowedOrigins []string
	fetchTimeout   time.Duration
	onShutdown     []func(ctx context.Context) error
}

// Option customises a Server.
type Option func(*Server)

// WithHealthCheck sets the backend probe used by /healthz.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.health = check }
}

// OnShutdown registers a hook run after the HTTP server stopped, e.g. to
// disconnect a database client.
func OnShutdown(hook func(ctx context.Context) error) Option {
	return func(s *Server) { s.onShutdown = append(s.onShutdown, hook) }
}

// New は Config とデータソースから Server を組み立てる。
func New(cfg config.Config, logger *zap.Logger, stores source.Source, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		logger:         logger,
		stores:         stores,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		fetchTimeout:   cfg.FetchTimeout,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Router builds the HTTP handler with middleware and public routes.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:  s.logger,
		Stores:  s.stores,
		Health:  s.health,
		Timeout: s.fetchTimeout,
	})
	publicHandler.Register(router)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP サーバー起動", zap.String("addr", s.addr))
		errChan <- httpServer.ListenAndServe()
	}()

	return s.waitForShutdown(ctx, httpServer, errChan)
}

// waitForShutdown は ListenAndServe の終了とコンテキストのキャンセルを監視し、graceful shutdown を実現する。
func (s *Server) waitForShutdown(ctx context.Context, httpServer *http.Server, errChan <-chan error) error {
	var serveErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		s.logger.Info("サーバー停止処理を開始します")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("サーバー停止時にエラー", zap.Error(err))
		}
	}

	s.shutdown(context.Background())
	return serveErr
}

// shutdown はフックをタイムアウト付きで実行する。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, hook := range s.onShutdown {
		if err := hook(shutdownCtx); err != nil {
			s.logger.Warn("shutdown hook failed", zap.Error(err))
		}
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}
