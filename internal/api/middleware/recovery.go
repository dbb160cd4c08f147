package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/chessgame-go/internal/api/apierr"
	"github.com/mcoot/chessgame-go/internal/middleware"
)

// Recovery turns a handler panic into a JSON 500 carrying the request id.
// It must run inside middleware.Logging for the id to be set.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalErrorForRequest(middleware.RequestID(r.Context())))
	})
}
