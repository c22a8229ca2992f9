package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Dias221467/friendgraph/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// LoggingMiddleware tags each request with an id, logs its outcome and turns panics into 500s.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		entry := logger.Log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		rec := &statusRecorder{ResponseWriter: w}

		defer func() {
			if p := recover(); p != nil {
				entry.WithField("panic", p).Error("Panic recovered")
				rec.Header().Set("Content-Type", "application/json")
				rec.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(rec).Encode(map[string]string{"error": "internal server error"})
			}

			fields := logrus.Fields{
				"status":   rec.Status(),
				"duration": time.Since(start).String(),
			}
			switch {
			case rec.Status() >= http.StatusInternalServerError:
				entry.WithFields(fields).Error("Request completed")
			case rec.Status() >= http.StatusBadRequest:
				entry.WithFields(fields).Warn("Request completed")
			default:
				entry.WithFields(fields).Info("Request completed")
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
