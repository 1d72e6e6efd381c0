package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the response for a request whose handler panicked
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// Recovery turns handler panics into a response from onPanic. The route
// template is logged instead of the raw path so account ids stay out of logs.
func Recovery(logger *slog.Logger, onPanic PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("handler panic",
						slog.Any("error", err),
						slog.String("method", r.Method),
						slog.String("route", routeTemplate(r)),
						slog.String("stack", string(debug.Stack())),
					)
					onPanic(w, r, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
