package site

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the signed session cookie.
const SessionCookie = "planflow_session"

// SessionClaims represents the session token claims
type SessionClaims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

// SessionAuth checks Basic credentials and issues signed session tokens.
type SessionAuth struct {
	user      []byte
	password  []byte
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionAuth creates a session authenticator. An empty secret is
// replaced by a random one, so sessions do not survive a restart.
func NewSessionAuth(user, password, secret string, ttl time.Duration) (*SessionAuth, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}
	return &SessionAuth{
		user:      []byte(user),
		password:  []byte(password),
		secretKey: key,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// CheckBasic reports whether r carries the configured Basic credentials.
// Both fields are always compared so timing does not reveal which one failed.
func (a *SessionAuth) CheckBasic(r *http.Request) (string, bool) {
	user, password, ok := r.BasicAuth()
	if !ok {
		return "", false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), a.user)
	passOK := subtle.ConstantTimeCompare([]byte(password), a.password)
	return user, userOK&passOK == 1
}

// GenerateToken creates a new session token for user
func (a *SessionAuth) GenerateToken(user string) (string, time.Time, error) {
	if user == "" {
		return "", time.Time{}, errors.New("user cannot be empty")
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := SessionClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a session token and returns the claims
func (a *SessionAuth) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token cannot be empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, jwt.WithTimeFunc(a.now))

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims type")
	}
	if subtle.ConstantTimeCompare([]byte(claims.User), a.user) != 1 {
		return nil, errors.New("token user does not match")
	}

	return claims, nil
}
