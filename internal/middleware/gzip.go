package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// compressLevel уровень gzip для страницы и ответов API.
const compressLevel = 5

// compressResponse сжимает только HTML-страницу и JSON, ошибки http.Error идут как есть.
var compressResponse = chimw.Compress(compressLevel, "text/html", "application/json")

// GzipMiddleware принимает сжатые тела запросов и сжимает ответы для клиентов с gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return decompressRequest(compressResponse(next))
}

// decompressRequest подменяет тело запроса с Content-Encoding: gzip распакованным.
// Предел размера тела ставят обработчики, он действует на распакованные данные.
func decompressRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(strings.TrimSpace(r.Header.Get("Content-Encoding")), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		body, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "Unable to decompress request", http.StatusBadRequest)
			return
		}
		defer body.Close()

		r.Body = body
		r.Header.Del("Content-Encoding")
		r.Header.Del("Content-Length")
		r.ContentLength = -1
		next.ServeHTTP(w, r)
	})
}
