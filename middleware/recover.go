package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/hustlehub/authgate/auth"
	"github.com/hustlehub/authgate/utils"
	"go.uber.org/zap"
)

// Recoverer converts panics into the generic 500 envelope. The stack trace
// is included in the body only when exposeStack is set.
func Recoverer(logger *zap.Logger, exposeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := string(debug.Stack())
				logger.Error("panic recovered",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(rec)),
					zap.String("stack", stack))

				var err error
				if exposeStack {
					err = utils.WriteErrorWithStack(w, http.StatusInternalServerError, auth.MsgUnhandled, stack)
				} else {
					err = utils.WriteError(w, http.StatusInternalServerError, auth.MsgUnhandled)
				}
				if err != nil {
					logger.Error("failed to write panic response", zap.Error(err))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
