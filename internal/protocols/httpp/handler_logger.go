package httpp

import (
	"net/http"
	"time"

	"github.com/livecast/ingest/internal/logger"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// log requests and responses.
type handlerLogger struct {
	http.Handler
	log logger.Writer
}

func (h *handlerLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w}

	h.Handler.ServeHTTP(sw, r)

	h.log.Log(logger.Debug, "[conn %v] %s %s %d (%d bytes, %s)",
		r.RemoteAddr, r.Method, r.URL.Path, sw.status, sw.size, logger.Elapsed(time.Since(start)))
}
