package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/estately/api/internal/utils"
)

// Recovery is the outermost boundary for unexpected panics. It logs the
// stack and reports a generic 500 without leaking internal detail.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v %s %s\n%s", err, r.Method, r.URL.Path, debug.Stack())
				utils.ErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
