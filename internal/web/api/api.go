// Package api exposes the token engine, the field store and the commit
// manager over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/commit"
	"github.com/splashsync/connector/internal/store"
	"github.com/splashsync/connector/internal/web/middleware"
	"github.com/splashsync/connector/internal/web/ratelimit"
)

// Options wires the API collaborators. Repository and Commits may be nil,
// in which case their routes answer 503.
type Options struct {
	Repository store.Repository
	Commits    *commit.Manager
	// Feed serves GET /ws when set
	Feed http.Handler
	// CommitLimiter throttles commit requests per object type when set
	CommitLimiter ratelimit.Limiter
	Logger        *zap.Logger
	// Prefix mounts every route under a path such as "/api"
	Prefix string
}

// API holds the HTTP handlers
type API struct {
	repo    store.Repository
	commits *commit.Manager
	feed    http.Handler
	limiter ratelimit.Limiter
	logger  *zap.Logger
	prefix  string
}

// New creates the API
func New(opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		repo:    opts.Repository,
		commits: opts.Commits,
		feed:    opts.Feed,
		limiter: opts.CommitLimiter,
		logger:  logger,
		prefix:  opts.Prefix,
	}
}

// Handler returns the routed handler wrapped in the standard middleware
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", a.health)

	r.Route("/tokens", func(r chi.Router) {
		r.Get("/inspect", a.inspectQuery)
		r.Post("/inspect", a.inspectBody)
		r.Post("/resolve", a.resolve)
		r.Post("/encode", a.encode)
	})

	r.Route("/objects/{type}", func(r chi.Router) {
		r.Get("/fields", a.listFields)
		r.Put("/fields", a.saveField)
		r.Get("/fields/{token}", a.getField)
		r.Delete("/fields/{token}", a.deleteField)
		r.Get("/lists", a.listLists)
		r.With(a.commitLimit()).Post("/commits", a.commit)
	})

	r.Get("/commits", a.pendingCommits)
	r.Post("/commits/flush", a.flushCommits)

	if a.feed != nil {
		r.Get("/ws", a.feed.ServeHTTP)
	}

	var root http.Handler = r
	if a.prefix != "" {
		mux := chi.NewRouter()
		mux.Mount(a.prefix, r)
		root = mux
	}

	return middleware.NewChain(
		middleware.RequestID(),
		middleware.Logging(a.logger, "/healthz", a.prefix+"/healthz"),
		middleware.Recovery(a.logger),
	).Then(root)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (a *API) commitLimit() func(http.Handler) http.Handler {
	if a.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(a.limiter, func(r *http.Request) string {
		return "commits:" + chi.URLParam(r, "type")
	}, a.logger)
}
