package mockpay

import (
	"bytes"
	"io"
	"log"
	"net/http"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	body *bytes.Buffer
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	lrw.body.Write(b)
	return lrw.ResponseWriter.Write(b)
}

// LoggingMiddleware dumps every request and response, which is the whole
// point of a mock collaborator.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL)

		var requestBody bytes.Buffer
		tee := io.TeeReader(r.Body, &requestBody)
		body, err := io.ReadAll(tee)
		if err != nil {
			log.Printf("Error reading request body: %v", err)
		}
		r.Body = io.NopCloser(&requestBody)
		if len(body) > 0 {
			log.Printf("Request Body: %s", body)
		}

		lrw := &loggingResponseWriter{ResponseWriter: w, body: &bytes.Buffer{}}
		next.ServeHTTP(lrw, r)

		log.Printf("Response Body: %s", lrw.body.String())
	})
}
