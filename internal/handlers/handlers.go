package handlers

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/Totarae/MCPBuilder/internal/auth"
	"github.com/Totarae/MCPBuilder/internal/config"
	"github.com/Totarae/MCPBuilder/internal/form"
	"github.com/Totarae/MCPBuilder/internal/generator"
	"github.com/Totarae/MCPBuilder/internal/model"
	"github.com/Totarae/MCPBuilder/internal/session"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// maxRequestBody предел тела запроса формы и JSON API.
const maxRequestBody = 64 << 10

// Handler обслуживает страницу формы и JSON API.
type Handler struct {
	cfg      *config.Config
	sessions *session.Store
	auth     *auth.Auth
	gen      *generator.Client
	logger   *zap.Logger
}

// NewHandler создаёт обработчики формы. Адрес генератора берётся только из конфигурации.
func NewHandler(cfg *config.Config, sessions *session.Store, authService *auth.Auth, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		auth:     authService,
		gen: generator.New(cfg.GeneratorURL,
			generator.WithTimeout(cfg.RequestTimeout),
			generator.WithLogger(logger),
		),
		logger: logger,
	}
}

// pageData данные шаблона страницы
type pageData struct {
	State         form.State
	StatusClass   string
	Message       string
	CopyAckMillis int64
	CopyLabel     string
	CopiedLabel   string
}

// ShowForm отдаёт страницу с текущим состоянием формы сессии.
// Контроллер создаётся только при первой отправке.
func (h *Handler) ShowForm(res http.ResponseWriter, req *http.Request) {
	sessionID := h.sessionID(res, req)
	st := form.InitialState()
	if ctrl, ok := h.sessions.Get(sessionID); ok {
		st = ctrl.State()
	}
	h.render(res, http.StatusOK, st, "")
}

// SubmitForm обрабатывает отправку формы.
func (h *Handler) SubmitForm(res http.ResponseWriter, req *http.Request) {
	ctrl := h.controller(res, req)

	req.Body = http.MaxBytesReader(res, req.Body, maxRequestBody)
	if err := req.ParseForm(); err != nil {
		http.Error(res, "BadRequest", http.StatusBadRequest)
		return
	}
	input := req.PostFormValue("openapi_url")

	_, err := ctrl.Submit(req.Context(), input)
	if errors.Is(err, form.ErrBusy) {
		// состояние принадлежит запросу, который ещё выполняется
		h.render(res, http.StatusConflict, ctrl.State(), form.MessageFor(err))
		return
	}
	h.render(res, http.StatusOK, ctrl.State(), "")
}

// Generate JSON API: {"url": "..."} -> {"result": "..."}.
func (h *Handler) Generate(res http.ResponseWriter, req *http.Request) {
	var body model.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxRequestBody)).Decode(&body); err != nil {
		detail := "invalid JSON body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detail = "request body too large"
		}
		h.writeJSON(res, http.StatusBadRequest, model.APIError{Detail: detail})
		return
	}

	result, err := h.newController().Submit(req.Context(), body.URL)
	if err != nil {
		h.writeJSON(res, statusFor(err), model.APIError{Detail: form.MessageFor(err)})
		return
	}

	h.writeJSON(res, http.StatusCreated, model.GenerateResult{Result: result})
}

// Health сообщает, что сервис формы жив.
func (h *Handler) Health(res http.ResponseWriter, req *http.Request) {
	h.writeJSON(res, http.StatusOK, model.HealthResponse{Status: "ok"})
}

// Ping проверяет доступность сервиса генерации.
func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if err := h.gen.Health(ctx); err != nil {
		h.logger.Warn("generator is unreachable", zap.String("generator_url", h.gen.BaseURL()), zap.Error(err))
		http.Error(res, "generator is unreachable", http.StatusBadGateway)
		return
	}
	res.WriteHeader(http.StatusOK)
}

// controller возвращает контроллер сессии, выдавая куку при необходимости.
func (h *Handler) controller(res http.ResponseWriter, req *http.Request) *form.Controller {
	return h.sessions.GetOrCreate(h.sessionID(res, req), h.newController)
}

func (h *Handler) sessionID(res http.ResponseWriter, req *http.Request) string {
	sessionID, created := h.auth.SessionID(res, req)
	if created {
		h.logger.Debug("new form session", zap.String("session_id", sessionID))
	}
	return sessionID
}

func (h *Handler) newController() *form.Controller {
	return form.NewController(h.gen, nil,
		form.WithLogger(h.logger),
		form.WithCopyAckDelay(h.cfg.CopyAckDelay),
	)
}

func (h *Handler) render(res http.ResponseWriter, status int, st form.State, notice string) {
	data := pageData{
		State:         st,
		StatusClass:   statusClass(st.Status),
		Message:       st.Message,
		CopyAckMillis: h.cfg.CopyAckDelay.Milliseconds(),
		CopyLabel:     form.CopyLabel,
		CopiedLabel:   form.CopiedLabel,
	}
	if notice != "" {
		data.StatusClass = statusClass(form.StatusError)
		data.Message = notice
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render form page", zap.Error(err))
		http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.WriteHeader(status)
	if _, err := res.Write(buf.Bytes()); err != nil {
		h.logger.Debug("failed to write form page", zap.Error(err))
	}
}

func statusClass(s form.Status) string {
	if s == form.StatusIdle {
		return "status"
	}
	return "status status-" + s.String()
}

// statusFor HTTP-код JSON API для ошибки контроллера.
func statusFor(err error) int {
	switch {
	case errors.Is(err, form.ErrEmptyInput), errors.Is(err, form.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		h.logger.Debug("failed to write JSON response", zap.Error(err))
	}
}
