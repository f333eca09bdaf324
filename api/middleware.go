package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// LogRequests logs method, path, status, size and duration of each request.
func LogRequests(log Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := &loggingResponseWriter{ResponseWriter: w}

			next.ServeHTTP(lw, r)

			status := lw.status
			if status == 0 {
				status = http.StatusOK
			}
			log.Info(fmt.Sprintf("[API] %s %s status=%d bytes=%d dur=%s from=%s",
				r.Method, r.URL.RequestURI(), status, lw.bytes, time.Since(start), r.RemoteAddr))
		})
	}
}

// loggingResponseWriter captures status code and bytes written.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (lw *loggingResponseWriter) WriteHeader(statusCode int) {
	lw.status = statusCode
	lw.ResponseWriter.WriteHeader(statusCode)
}

func (lw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lw.ResponseWriter.Write(b)
	lw.bytes += int64(n)
	return n, err
}
