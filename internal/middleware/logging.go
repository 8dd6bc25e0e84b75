package middleware

import (
	"net/http"
	"runtime/debug"

	"storvbox-be/internal/apperr"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/utils"

	"go.uber.org/zap"
)

// Recover turns a handler panic into a logged, generic 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromCtx(r.Context()).Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			utils.WriteJSONError(w, apperr.MsgInternal, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
