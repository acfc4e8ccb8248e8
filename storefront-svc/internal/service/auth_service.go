package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/metrics"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/validation"
)

const maxCodeAttempts = 3

type AuthConfig struct {
	PasswordHash    []byte
	RequireApproval bool
	ApprovalTTL     time.Duration
	// PublicURL prefixes the approve and reject links sent to the owner.
	PublicURL string
}

// LoginResult carries either a session, or the id of a login request that
// is waiting for approval.
type LoginResult struct {
	Session   *Session
	RequestID string
}

func (r LoginResult) Pending() bool {
	return r.Session == nil && r.RequestID != ""
}

type AuthService struct {
	cfg      AuthConfig
	requests LoginRequestRepository
	limiter  *ratelimit.Limiter
	sessions *SessionIssuer
	notifier ApprovalNotifier
	now      func() time.Time
}

func NewAuthService(cfg AuthConfig, requests LoginRequestRepository, limiter *ratelimit.Limiter, sessions *SessionIssuer, notifier ApprovalNotifier) *AuthService {
	if cfg.ApprovalTTL <= 0 {
		cfg.ApprovalTTL = 10 * time.Minute
	}
	return &AuthService{
		cfg:      cfg,
		requests: requests,
		limiter:  limiter,
		sessions: sessions,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login checks the admin password. Only failed attempts count against the
// client's quota and a success clears it.
func (s *AuthService) Login(ctx context.Context, clientID, password string) (*LoginResult, error) {
	if err := s.limiter.Check(ctx, clientID); err != nil {
		metrics.RateLimited.WithLabelValues(s.limiter.Policy).Inc()
		metrics.AdminLogins.WithLabelValues("throttled").Inc()
		return nil, err
	}
	if password == "" {
		return nil, validation.Invalid("password", "is required")
	}

	if err := bcrypt.CompareHashAndPassword(s.cfg.PasswordHash, []byte(password)); err != nil {
		s.limiter.Hit(ctx, clientID)
		metrics.AdminLogins.WithLabelValues("failed").Inc()
		log.Printf("[auth] failed login from %s", clientID)
		return nil, ErrUnauthorized
	}
	s.limiter.Reset(ctx, clientID)

	if !s.cfg.RequireApproval {
		session, err := s.sessions.Issue()
		if err != nil {
			return nil, err
		}
		metrics.AdminLogins.WithLabelValues("success").Inc()
		return &LoginResult{Session: session}, nil
	}

	req, err := s.newLoginRequest(clientID)
	if err != nil {
		return nil, err
	}
	if err := s.requests.CreateLoginRequest(ctx, req); err != nil {
		log.Printf("[auth] store login request failed: %v", err)
		return nil, fmt.Errorf("create login request: %w", err)
	}
	approve, reject := s.links(req)
	if err := s.notifier.NotifyLoginRequest(ctx, *req, approve, reject); err != nil {
		log.Printf("[auth] deliver login request %s failed: %v", req.ID, err)
		return nil, fmt.Errorf("deliver login request: %w", err)
	}
	metrics.AdminLogins.WithLabelValues("pending").Inc()
	log.Printf("[auth] login request %s from %s awaiting approval", req.ID, clientID)
	return &LoginResult{RequestID: req.ID}, nil
}

func (s *AuthService) Approve(ctx context.Context, id, token string) error {
	return s.resolve(ctx, id, token, domain.LoginApproved)
}

func (s *AuthService) Reject(ctx context.Context, id, token string) error {
	return s.resolve(ctx, id, token, domain.LoginRejected)
}

func (s *AuthService) resolve(ctx context.Context, id, token string, next domain.LoginStatus) error {
	if !s.cfg.RequireApproval {
		return ErrApprovalDisabled
	}
	req, err := s.requests.GetLoginRequest(ctx, id)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(req.Token), []byte(token)) != 1 {
		return ErrInvalidToken
	}
	if req.Status != domain.LoginPending {
		return ErrRequestResolved
	}
	if req.Expired(s.now()) {
		s.setStatus(ctx, id, domain.LoginPending, domain.LoginRejected)
		return ErrRequestExpired
	}

	ok, err := s.requests.SetLoginRequestStatus(ctx, id, domain.LoginPending, next)
	if err != nil {
		return fmt.Errorf("update login request: %w", err)
	}
	if !ok {
		return ErrRequestResolved
	}
	log.Printf("[auth] login request %s %s", id, next)
	return nil
}

// Verify completes a pending request with its one-time code.
func (s *AuthService) Verify(ctx context.Context, id, code string) (*Session, error) {
	if !s.cfg.RequireApproval {
		return nil, ErrApprovalDisabled
	}
	if id == "" || code == "" {
		return nil, validation.Invalid("code", "is required")
	}
	req, err := s.requests.GetLoginRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.LoginPending {
		return nil, ErrRequestResolved
	}
	if req.Expired(s.now()) {
		s.setStatus(ctx, id, domain.LoginPending, domain.LoginFailed)
		return nil, ErrRequestExpired
	}
	if req.Attempts >= maxCodeAttempts {
		s.setStatus(ctx, id, domain.LoginPending, domain.LoginFailed)
		return nil, ErrTooManyAttempts
	}
	if subtle.ConstantTimeCompare([]byte(req.Code), []byte(strings.TrimSpace(code))) != 1 {
		if _, err := s.requests.IncrementLoginAttempts(ctx, id); err != nil {
			log.Printf("[auth] record attempt on %s failed: %v", id, err)
		}
		metrics.AdminLogins.WithLabelValues("bad_code").Inc()
		return nil, ErrInvalidCode
	}

	ok, err := s.requests.SetLoginRequestStatus(ctx, id, domain.LoginPending, domain.LoginVerified)
	if err != nil {
		return nil, fmt.Errorf("update login request: %w", err)
	}
	if !ok {
		return nil, ErrRequestResolved
	}
	metrics.AdminLogins.WithLabelValues("success").Inc()
	return s.sessions.Issue()
}

// Status is polled by the browser that started the login. An approved
// request is exchanged for a session exactly once.
func (s *AuthService) Status(ctx context.Context, id string) (domain.LoginStatus, *Session, error) {
	req, err := s.requests.GetLoginRequest(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.LoginNotFound, nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	switch req.Status {
	case domain.LoginApproved:
		ok, err := s.requests.SetLoginRequestStatus(ctx, id, domain.LoginApproved, domain.LoginUsed)
		if err != nil {
			return "", nil, fmt.Errorf("update login request: %w", err)
		}
		if !ok {
			return domain.LoginUsed, nil, nil
		}
		session, err := s.sessions.Issue()
		if err != nil {
			return "", nil, err
		}
		metrics.AdminLogins.WithLabelValues("success").Inc()
		return domain.LoginApproved, session, nil
	case domain.LoginRejected, domain.LoginFailed:
		return domain.LoginRejected, nil, nil
	case domain.LoginPending:
		if req.Expired(s.now()) {
			s.setStatus(ctx, id, domain.LoginPending, domain.LoginRejected)
			return domain.LoginRejected, nil, nil
		}
	}
	return req.Status, nil, nil
}

func (s *AuthService) Authenticate(token string) error {
	return s.sessions.Verify(token)
}

func (s *AuthService) setStatus(ctx context.Context, id string, current, next domain.LoginStatus) {
	if _, err := s.requests.SetLoginRequestStatus(ctx, id, current, next); err != nil {
		log.Printf("[auth] mark %s %s failed: %v", id, next, err)
	}
}

func (s *AuthService) newLoginRequest(clientID string) (*domain.LoginRequest, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	now := s.now()
	return &domain.LoginRequest{
		ID:        uuid.NewString(),
		Token:     hex.EncodeToString(token),
		Code:      fmt.Sprintf("%06d", n.Int64()),
		Status:    domain.LoginPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ApprovalTTL),
		IP:        clientID,
	}, nil
}

func (s *AuthService) links(req *domain.LoginRequest) (approve, reject string) {
	q := url.Values{"id": {req.ID}, "token": {req.Token}}.Encode()
	base := strings.TrimRight(s.cfg.PublicURL, "/")
	return base + "/api/admin/approve?" + q, base + "/api/admin/reject?" + q
}

var _ AuthServiceInterface = (*AuthService)(nil)
