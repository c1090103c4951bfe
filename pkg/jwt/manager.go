package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims JWT 페이로드
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname,omitempty"`
	Level    int    `json:"level,omitempty"`
}

// Manager signs and verifies HS256 tokens
type Manager struct {
	secretKey []byte
	expiresIn time.Duration
	refreshIn time.Duration
}

// NewManager creates a Manager; expiresIn and refreshIn are seconds
func NewManager(secret string, expiresIn, refreshIn int) *Manager {
	return &Manager{
		secretKey: []byte(secret),
		expiresIn: time.Duration(expiresIn) * time.Second,
		refreshIn: time.Duration(refreshIn) * time.Second,
	}
}

// GenerateAccessToken issues a short-lived access token
func (m *Manager) GenerateAccessToken(userID, nickname string, level int) (string, error) {
	return m.generate(userID, nickname, level, m.expiresIn)
}

// GenerateRefreshToken issues a long-lived refresh token
func (m *Manager) GenerateRefreshToken(userID string) (string, error) {
	return m.generate(userID, "", 0, m.refreshIn)
}

func (m *Manager) generate(userID, nickname string, level int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   userID,
		Nickname: nickname,
		Level:    level,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken validates the signature and expiry and returns the claims
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.UserID == "" {
			claims.UserID = claims.Subject
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
