package model

import "encoding/json"

// GenerateResponse представляет успешный ответ сервиса генерации.
type GenerateResponse struct {
	ServerID string `json:"server_id"`
	MCPURL   string `json:"mcp_url"`
}

// ErrorResponse представляет тело ответа сервиса генерации при ошибке.
// FastAPI отдаёт в detail либо строку, либо список ошибок валидации,
// поэтому поле хранится в сыром виде.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// HealthResponse ответ эндпоинта /health.
type HealthResponse struct {
	Status string `json:"status"`
}
