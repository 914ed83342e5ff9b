// Package form содержит контроллер формы генерации MCP-сервера:
// проверку ввода, вызов сервиса генерации и состояние отображения.
package form

//go:generate mockgen -source=controller.go -destination=mocks/mock_form.go -package=mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Totarae/MCPBuilder/internal/generator"
	"go.uber.org/zap"
)

// DefaultCopyAckDelay сколько держится подпись «Copied!».
const DefaultCopyAckDelay = 1200 * time.Millisecond

// Generator удалённый сервис генерации.
type Generator interface {
	Generate(ctx context.Context, openapiURL string) (string, error)
}

// Clipboard системный буфер обмена.
type Clipboard interface {
	WriteAll(text string) error
}

// Controller управляет состоянием формы.
type Controller struct {
	mu    sync.Mutex
	state State

	gen    Generator
	clip   Clipboard
	logger *zap.Logger

	ackDelay  time.Duration
	afterFunc func(d time.Duration, f func())
	ackSeq    uint64
}

// Option настраивает Controller.
type Option func(*Controller)

// WithLogger задаёт логгер.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithCopyAckDelay задаёт длительность подтверждения копирования.
func WithCopyAckDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.ackDelay = d
	}
}

// WithAfterFunc подменяет таймер сброса подписи, используется в тестах.
func WithAfterFunc(fn func(d time.Duration, f func())) Option {
	return func(c *Controller) {
		c.afterFunc = fn
	}
}

// NewController создаёт контроллер. clip может быть nil, тогда Copy всегда завершается ошибкой.
func NewController(gen Generator, clip Clipboard, opts ...Option) *Controller {
	c := &Controller{
		state:    InitialState(),
		gen:      gen,
		clip:     clip,
		logger:   zap.NewNop(),
		ackDelay: DefaultCopyAckDelay,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State возвращает копию текущего состояния.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Input фиксирует ввод пользователя. Ошибка сбрасывается в idle.
func (c *Controller) Input(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Input = value
	if c.state.Status == StatusError {
		c.state.Status = StatusIdle
		c.state.Message = ""
	}
}

// Submit проверяет ввод и запрашивает генерацию MCP-сервера.
func (c *Controller) Submit(ctx context.Context, input string) (string, error) {
	c.mu.Lock()
	if c.state.SubmitDisabled {
		c.mu.Unlock()
		return "", ErrBusy
	}

	c.state.Input = input
	c.state.ResultURL = ""
	c.state.Copied = false
	c.state.CopyLabel = CopyLabel
	c.state.Status = StatusIdle
	c.state.Message = ""

	if err := validateInput(input); err != nil {
		c.state.Status = StatusError
		c.state.Message = MessageFor(err)
		c.mu.Unlock()
		c.logger.Debug("input rejected", zap.String("input", input), zap.Error(err))
		return "", err
	}

	c.state.Status = StatusLoading
	c.state.Message = loadingMessage
	c.state.SubmitDisabled = true
	c.state.InputBusy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state.SubmitDisabled = false
		c.state.InputBusy = false
		c.mu.Unlock()
	}()

	openapiURL := strings.TrimSpace(input)
	result, err := c.gen.Generate(ctx, openapiURL)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state.Status = StatusError
		c.state.Message = MessageFor(err)
		c.logger.Warn("generation failed", zap.String("openapi_url", openapiURL), zap.Error(err))
		return "", err
	}

	c.state.Status = StatusSuccess
	c.state.Message = successMessage
	c.state.ResultURL = result
	c.logger.Info("generation succeeded", zap.String("openapi_url", openapiURL), zap.String("mcp_url", result))
	return result, nil
}

// Copy копирует url в буфер обмена. При ошибке показанный результат не меняется.
func (c *Controller) Copy(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return c.copyFailed(err)
	}
	if url == "" {
		return c.copyFailed(errors.New("nothing to copy"))
	}
	if c.clip == nil {
		return c.copyFailed(errors.New("clipboard is not available"))
	}
	if err := c.clip.WriteAll(url); err != nil {
		return c.copyFailed(err)
	}

	c.mu.Lock()
	c.ackSeq++
	seq := c.ackSeq
	c.state.Copied = true
	c.state.CopyLabel = CopiedLabel
	c.mu.Unlock()

	c.afterFunc(c.ackDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// более позднее копирование продлевает подтверждение
		if c.ackSeq != seq {
			return
		}
		c.state.Copied = false
		c.state.CopyLabel = CopyLabel
	})
	return nil
}

func (c *Controller) copyFailed(err error) error {
	clipErr := &ClipboardError{Err: err}
	c.mu.Lock()
	c.state.Status = StatusError
	c.state.Message = MessageFor(clipErr)
	c.mu.Unlock()
	c.logger.Warn("copy to clipboard failed", zap.Error(err))
	return clipErr
}

// MessageFor текст статуса для ошибки формы, генератора или буфера обмена.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	var (
		httpErr *generator.HTTPError
		clipErr *ClipboardError
	)
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Please enter an OpenAPI URL."
	case errors.Is(err, ErrInvalidURL):
		return "Please enter a valid http(s) URL."
	case errors.Is(err, ErrBusy):
		return "A request is already in progress."
	case errors.As(err, &httpErr):
		return httpErr.Error()
	case errors.Is(err, generator.ErrMalformedResponse):
		return "Malformed response from server."
	case errors.As(err, &clipErr):
		return "Copy failed: " + clipErr.Err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out."
	default:
		return "Network error: " + err.Error()
	}
}
