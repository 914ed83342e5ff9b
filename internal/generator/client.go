// Package generator содержит HTTP-клиент удалённого сервиса генерации MCP-серверов.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Totarae/MCPBuilder/internal/model"
	"go.uber.org/zap"
)

const (
	generatePath = "/generate"
	healthPath   = "/health"
	queryParam   = "openapi_url"

	// ответы сервиса небольшие, больше читать незачем
	maxBodySize = 1 << 20
)

// Client обращается к сервису генерации по базовому адресу.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client, например в тестах.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout задаёт общий таймаут запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New создаёт клиент. Пустой baseURL означает запросы к тому же origin,
// тогда пути остаются относительными и их разрешает вызывающая сторона.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает базовый адрес клиента.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GenerateURL строит адрес запроса генерации для openapiURL.
func (c *Client) GenerateURL(openapiURL string) string {
	q := url.Values{}
	q.Set(queryParam, openapiURL)
	return c.baseURL + generatePath + "?" + q.Encode()
}

// Generate запрашивает генерацию MCP-сервера и возвращает его адрес.
func (c *Client) Generate(ctx context.Context, openapiURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GenerateURL(openapiURL), nil)
	if err != nil {
		return "", fmt.Errorf("generator: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generator: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("generator: read body: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
		c.logger.Warn("generator returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", httpErr.Detail),
		)
		return "", httpErr
	}

	var out model.GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.MCPURL == "" {
		return "", ErrMalformedResponse
	}

	c.logger.Info("MCP server generated",
		zap.String("server_id", out.ServerID),
		zap.String("mcp_url", out.MCPURL),
	)
	return out.MCPURL, nil
}

// Health проверяет, что сервис генерации отвечает на /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("generator: new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("generator: health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &HTTPError{StatusCode: resp.StatusCode}
	}

	var hr model.HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&hr); err != nil {
		return fmt.Errorf("generator: health decode: %w", err)
	}
	if hr.Status != "ok" {
		return fmt.Errorf("generator: unhealthy status %q", hr.Status)
	}
	return nil
}

// parseDetail достаёт строковое поле detail; в остальных случаях пустая строка.
func parseDetail(body []byte) string {
	var er model.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || len(er.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(er.Detail, &detail); err != nil {
		return ""
	}
	return sanitizeDetail(detail)
}
