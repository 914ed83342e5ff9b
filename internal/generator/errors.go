package generator

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// ErrMalformedResponse возвращается, когда успешный ответ не содержит mcp_url.
var ErrMalformedResponse = errors.New("malformed response from generator")

// HTTPError описывает ответ сервиса генерации с кодом вне 2xx.
type HTTPError struct {
	StatusCode int
	// Detail пуст, если тело не удалось разобрать.
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

var (
	detailPolicyOnce sync.Once
	detailPolicy     *bluemonday.Policy
)

// sanitizeDetail убирает разметку из сообщения сервера, оно выводится как текст статуса.
// bluemonday экранирует сущности, а экранированием при выводе занимается шаблон.
func sanitizeDetail(raw string) string {
	detailPolicyOnce.Do(func() {
		detailPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(detailPolicy.Sanitize(raw)))
}
