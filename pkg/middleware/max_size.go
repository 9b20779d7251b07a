package middleware

import (
	"fmt"
	"net/http"

	apperrors "hostbook/pkg/errors"
)

// MaxRequestSize caps request bodies at limit bytes. Declared lengths over the
// limit are refused up front; streamed bodies fail on read.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeAppError(w, apperrors.New(
					apperrors.CodeBadRequest,
					fmt.Sprintf("request body exceeds %d bytes", limit),
					http.StatusRequestEntityTooLarge,
				))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
