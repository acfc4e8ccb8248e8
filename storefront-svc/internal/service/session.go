package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const adminSubject = "admin"

type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionIssuer signs and checks the admin session cookie value.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret []byte, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (i *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	i.now = now
	return i
}

func (i *SessionIssuer) Issue() (*Session, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": adminSubject,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": expires.Unix(),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expires}, nil
}

func (i *SessionIssuer) Verify(tokenString string) error {
	if tokenString == "" {
		return ErrUnauthorized
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return errors.Join(ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["sub"] != adminSubject {
		return ErrUnauthorized
	}
	return nil
}
