package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookie = "session"
	stateCookie   = "oauth_state"

	// SessionTTL is how long a login lasts before the user must
	// re-authenticate.
	SessionTTL = 7 * 24 * time.Hour

	// stateTTL bounds how long an OAuth2 round trip may take.
	stateTTL = 10 * time.Minute
)

// SessionManager issues and verifies the signed session cookie and the OAuth2
// state nonce cookie.
type SessionManager struct {
	secret []byte
	secure bool
}

// NewSessionManager creates a session manager signing with secret. secure
// marks cookies Secure for HTTPS deployments.
func NewSessionManager(secret string, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), secure: secure}
}

type sessionClaims struct {
	DiscordID string `json:"did"`
	jwt.RegisteredClaims
}

// Issue sets a session cookie identifying the Discord user.
func (m *SessionManager) Issue(w http.ResponseWriter, discordID string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		DiscordID: discordID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// UserID extracts the Discord user id from the request's session cookie.
func (m *SessionManager) UserID(r *http.Request) (string, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", fmt.Errorf("no session cookie: %w", err)
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid || claims.DiscordID == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.DiscordID, nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetState generates a random OAuth2 state nonce, stores it in a short-lived
// cookie and returns it for the authorize URL.
func (m *SessionManager) SetState(w http.ResponseWriter) (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := hex.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// CheckState verifies the callback's state against the nonce cookie and
// expires the cookie either way.
func (m *SessionManager) CheckState(w http.ResponseWriter, r *http.Request, state string) bool {
	c, err := r.Cookie(stateCookie)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return err == nil && state != "" && c.Value == state
}
