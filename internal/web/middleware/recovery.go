package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/web/response"
)

// Recovery turns a panicking handler into a 500 JSON response
func Recovery(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.String("panic", fmt.Sprint(rec)),
						zap.ByteString("stack", debug.Stack()))

					response.RenderErrorWithCode(w, http.StatusInternalServerError,
						fmt.Errorf("an unexpected error occurred"), "internal_server_error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
