package model

// GenerateRequest представляет запрос JSON API формы.
type GenerateRequest struct {
	URL string `json:"url"`
}

// GenerateResult представляет ответ JSON API с адресом MCP-сервера.
type GenerateResult struct {
	Result string `json:"result"`
}

// APIError тело ответа JSON API при ошибке.
type APIError struct {
	Detail string `json:"detail"`
}
