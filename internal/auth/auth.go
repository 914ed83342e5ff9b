package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	cookieName = "mcpform_session"
)

// Auth выдаёт и проверяет подписанные куки сессии формы.
type Auth struct {
	SecretKey string
	// MaxAge время жизни куки в секундах, 0 означает сессионную куку браузера.
	MaxAge int
}

func New(secret string) *Auth {
	return &Auth{SecretKey: secret}
}

// Создать подпись
func (a *Auth) sign(sessionID string) string {
	mac := hmac.New(sha256.New, []byte(a.SecretKey))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Выдать куку вида mcpform_session=sessionID:signature
func (a *Auth) issueCookie(w http.ResponseWriter) string {
	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    a.SignCookieValue(sessionID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   a.MaxAge,
	})
	return sessionID
}

// SessionID возвращает идентификатор сессии из куки или выдаёт новую куку.
// Второй результат сообщает, что сессия новая.
func (a *Auth) SessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if id, ok := a.ValidateSessionID(r); ok {
		return id, false
	}
	return a.issueCookie(w), true
}

// ValidateSessionID проверяет наличие и подпись куки сессии
func (a *Auth) ValidateSessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	parts := strings.SplitN(cookie.Value, ":", 2)
	if len(parts) != 2 || !hmac.Equal([]byte(a.sign(parts[0])), []byte(parts[1])) {
		return "", false
	}
	if _, err := uuid.Parse(parts[0]); err != nil {
		return "", false
	}

	return parts[0], true
}

// SignCookieValue значение куки для sessionID, используется и в тестах
func (a *Auth) SignCookieValue(sessionID string) string {
	return fmt.Sprintf("%s:%s", sessionID, a.sign(sessionID))
}

// CookieName имя куки сессии
func CookieName() string {
	return cookieName
}
