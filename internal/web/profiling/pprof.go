// Package profiling serves pprof endpoints. They expose goroutine stacks and
// memory contents, so serve them on a private address only.
package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/go-chi/chi/v5"
)

// DefaultPath is where Handler mounts the endpoints
const DefaultPath = "/debug/pprof"

// Config selects the optional runtime profiles
type Config struct {
	Path string
	// BlockRate is passed to runtime.SetBlockProfileRate when > 0
	BlockRate int
	// MutexFraction is passed to runtime.SetMutexProfileFraction when > 0
	MutexFraction int
}

// RegisterRoutes mounts the pprof endpoints on r under cfg.Path
func RegisterRoutes(r chi.Router, cfg Config) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.BlockRate > 0 {
		runtime.SetBlockProfileRate(cfg.BlockRate)
	}
	if cfg.MutexFraction > 0 {
		runtime.SetMutexProfileFraction(cfg.MutexFraction)
	}

	r.Route(cfg.Path, func(r chi.Router) {
		r.HandleFunc("/", pprof.Index)
		r.HandleFunc("/cmdline", pprof.Cmdline)
		r.HandleFunc("/profile", pprof.Profile)
		r.HandleFunc("/symbol", pprof.Symbol)
		r.HandleFunc("/trace", pprof.Trace)
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			r.Handle("/"+name, pprof.Handler(name))
		}
	})
}

// Handler returns a router serving only the pprof endpoints
func Handler(cfg Config) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, cfg)
	return r
}
