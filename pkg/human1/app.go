// pkg/human1/app.go
package human1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/models"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Application is what the SDK needs from a host web application: a way to
// add middleware, register routes by method and serve.
type Application interface {
	Use(mw ...Middleware)
	Handle(method, path string, h http.Handler)
	Listen(ctx context.Context, addr string) error
}

type route struct {
	method  string
	path    string
	handler http.Handler
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// App is a minimal net/http application. Routes are matched in registration
// order on exact method and path; the first match wins and duplicates are
// kept.
type App struct {
	mu         sync.RWMutex
	routes     []route
	middleware []Middleware

	logger          logger.Logger
	shutdownTimeout time.Duration
}

type AppOption func(*App)

func WithAppLogger(log logger.Logger) AppOption {
	return func(a *App) {
		if log != nil {
			a.logger = log
		}
	}
}

func WithShutdownTimeout(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

func NewApp(opts ...AppOption) *App {
	a := &App{
		logger:          logger.NewNoOpLogger(),
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Use(mw ...Middleware) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range mw {
		if m != nil {
			a.middleware = append(a.middleware, m)
		}
	}
}

func (a *App) Handle(method, path string, h http.Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes = append(a.routes, route{
		method:  strings.ToUpper(method),
		path:    cleanPath(path),
		handler: h,
	})
}

func (a *App) HandleFunc(method, path string, fn http.HandlerFunc) {
	a.Handle(method, path, fn)
}

func (a *App) Get(path string, fn http.HandlerFunc)    { a.Handle(http.MethodGet, path, fn) }
func (a *App) Post(path string, fn http.HandlerFunc)   { a.Handle(http.MethodPost, path, fn) }
func (a *App) Put(path string, fn http.HandlerFunc)    { a.Handle(http.MethodPut, path, fn) }
func (a *App) Patch(path string, fn http.HandlerFunc)  { a.Handle(http.MethodPatch, path, fn) }
func (a *App) Delete(path string, fn http.HandlerFunc) { a.Handle(http.MethodDelete, path, fn) }

// Routes lists registered routes in registration order, duplicates included.
func (a *App) Routes() []RouteInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]RouteInfo, len(a.routes))
	for i, r := range a.routes {
		out[i] = RouteInfo{Method: r.method, Path: r.path}
	}
	return out
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	chain := make([]Middleware, len(a.middleware))
	copy(chain, a.middleware)
	a.mu.RUnlock()

	info := &requestInfo{route: unmatchedRoute}
	r = r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info))

	var h http.Handler = http.HandlerFunc(a.dispatch)
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	h.ServeHTTP(w, r)
}

func (a *App) dispatch(w http.ResponseWriter, r *http.Request) {
	path := cleanPath(r.URL.Path)

	a.mu.RLock()
	var matched *route
	for i := range a.routes {
		rt := &a.routes[i]
		if rt.path == path && rt.method == r.Method {
			matched = rt
			break
		}
	}
	a.mu.RUnlock()

	if matched == nil {
		WriteEnvelope(w, models.Envelope{
			Status: http.StatusNotFound,
			Data:   models.ErrorBody{Error: "Not found", Message: "Cannot " + r.Method + " " + r.URL.Path},
		})
		return
	}

	if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
		info.route = matched.path
	}
	matched.handler.ServeHTTP(w, r)
}

// Listen serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", map[string]interface{}{"address": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down HTTP server", map[string]interface{}{"address": addr})
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const unmatchedRoute = "unmatched"

type requestInfoKey struct{}

// requestInfo is filled in by dispatch so outer middleware can see which
// route served the request.
type requestInfo struct {
	route string
}

// RouteFromContext returns the path pattern that served the request, or
// "unmatched".
func RouteFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		return info.route
	}
	return unmatchedRoute
}

// WriteEnvelope writes env.Data as JSON with env.Status.
func WriteEnvelope(w http.ResponseWriter, env models.Envelope) {
	status := env.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env.Data)
}

// cleanPath drops a trailing slash so "/api/query/" matches "/api/query".
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
