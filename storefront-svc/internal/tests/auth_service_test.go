package tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"street-bites/config"
	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/mocks"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/service"
)

const adminPassword = "correct horse"

var adminHash, _ = bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)

type authFixture struct {
	svc      *service.AuthService
	store    *mocks.Store
	notifier *mocks.ApprovalNotifier
	sessions *service.SessionIssuer
}

func newAuthFixture(t *testing.T, requireApproval bool) authFixture {
	store := mocks.NewStore(t)
	notifier := mocks.NewApprovalNotifier(t)
	sessions := service.NewSessionIssuer([]byte("test-secret"), 24*time.Hour).WithClock(clock)
	limiter := ratelimit.NewLimiter("login", config.Policy{Limit: 5, Window: 15 * time.Minute}, ratelimit.NewMemoryStore())
	svc := service.NewAuthService(service.AuthConfig{
		PasswordHash:    adminHash,
		RequireApproval: requireApproval,
		PublicURL:       "https://bites.example",
	}, store, limiter, sessions, notifier).WithClock(clock)
	return authFixture{svc: svc, store: store, notifier: notifier, sessions: sessions}
}

func pendingRequest() *domain.LoginRequest {
	return &domain.LoginRequest{
		ID:        "req-1",
		Token:     "tok",
		Code:      "123456",
		Status:    domain.LoginPending,
		CreatedAt: fixedNow.Add(-time.Minute),
		ExpiresAt: fixedNow.Add(9 * time.Minute),
	}
}

func TestAuthService_Login_Direct(t *testing.T) {
	f := newAuthFixture(t, false)

	result, err := f.svc.Login(context.Background(), "10.0.0.1", adminPassword)
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.False(t, result.Pending())
	assert.Equal(t, fixedNow.Add(24*time.Hour), result.Session.ExpiresAt)
	assert.NoError(t, f.svc.Authenticate(result.Session.Token))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(t, false)

	_, err := f.svc.Login(context.Background(), "10.0.0.1", "guess")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_Login_LocksOutAfterFailures(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(ctx, "10.0.0.1", "guess")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	}

	_, err := f.svc.Login(ctx, "10.0.0.1", adminPassword)
	var limited *ratelimit.Error
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, "login", limited.Policy)

	_, err = f.svc.Login(ctx, "10.0.0.2", adminPassword)
	assert.NoError(t, err)
}

func TestAuthService_Login_SuccessResetsFailures(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = f.svc.Login(ctx, "10.0.0.1", "guess")
	}
	_, err := f.svc.Login(ctx, "10.0.0.1", adminPassword)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err = f.svc.Login(ctx, "10.0.0.1", "guess")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	}
}

func TestAuthService_Login_RequiresApproval(t *testing.T) {
	f := newAuthFixture(t, true)

	var stored *domain.LoginRequest
	f.store.On("CreateLoginRequest", mock.Anything, mock.AnythingOfType("*domain.LoginRequest")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.LoginRequest) }).
		Return(nil).Once()
	f.notifier.On("NotifyLoginRequest", mock.Anything, mock.Anything,
		mock.MatchedBy(func(u string) bool { return strings.HasPrefix(u, "https://bites.example/api/admin/approve?") }),
		mock.MatchedBy(func(u string) bool { return strings.HasPrefix(u, "https://bites.example/api/admin/reject?") }),
	).Return(nil).Once()

	result, err := f.svc.Login(context.Background(), "10.0.0.1", adminPassword)
	require.NoError(t, err)
	assert.True(t, result.Pending())
	assert.Nil(t, result.Session)

	require.NotNil(t, stored)
	assert.Equal(t, stored.ID, result.RequestID)
	assert.Equal(t, domain.LoginPending, stored.Status)
	assert.Len(t, stored.Token, 64)
	assert.Len(t, stored.Code, 6)
	assert.Equal(t, fixedNow.Add(10*time.Minute), stored.ExpiresAt)
	assert.Equal(t, "10.0.0.1", stored.IP)
}

func TestAuthService_Approve(t *testing.T) {
	tests := []struct {
		name          string
		req           func() *domain.LoginRequest
		token         string
		prepareMocks  func(store *mocks.Store)
		expectedError error
	}{
		{
			name:  "approved",
			req:   pendingRequest,
			token: "tok",
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginApproved).Return(true, nil).Once()
			},
		},
		{
			name:          "wrong token",
			req:           pendingRequest,
			token:         "forged",
			prepareMocks:  func(*mocks.Store) {},
			expectedError: service.ErrInvalidToken,
		},
		{
			name: "already resolved",
			req: func() *domain.LoginRequest {
				req := pendingRequest()
				req.Status = domain.LoginUsed
				return req
			},
			token:         "tok",
			prepareMocks:  func(*mocks.Store) {},
			expectedError: service.ErrRequestResolved,
		},
		{
			name: "expired",
			req: func() *domain.LoginRequest {
				req := pendingRequest()
				req.ExpiresAt = fixedNow.Add(-time.Second)
				return req
			},
			token: "tok",
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginRejected).Return(true, nil).Once()
			},
			expectedError: service.ErrRequestExpired,
		},
		{
			name:  "raced by another link",
			req:   pendingRequest,
			token: "tok",
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginApproved).Return(false, nil).Once()
			},
			expectedError: service.ErrRequestResolved,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newAuthFixture(t, true)
			f.store.On("GetLoginRequest", mock.Anything, "req-1").Return(testCase.req(), nil).Once()
			testCase.prepareMocks(f.store)

			err := f.svc.Approve(context.Background(), "req-1", testCase.token)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAuthService_Reject(t *testing.T) {
	f := newAuthFixture(t, true)
	f.store.On("GetLoginRequest", mock.Anything, "req-1").Return(pendingRequest(), nil).Once()
	f.store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginRejected).Return(true, nil).Once()

	assert.NoError(t, f.svc.Reject(context.Background(), "req-1", "tok"))
}

func TestAuthService_ApproveDisabled(t *testing.T) {
	f := newAuthFixture(t, false)
	assert.ErrorIs(t, f.svc.Approve(context.Background(), "req-1", "tok"), service.ErrApprovalDisabled)
}

func TestAuthService_Verify(t *testing.T) {
	tests := []struct {
		name          string
		req           func() *domain.LoginRequest
		code          string
		prepareMocks  func(store *mocks.Store)
		expectedError error
	}{
		{
			name: "right code",
			req:  pendingRequest,
			code: "123456",
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginVerified).Return(true, nil).Once()
			},
		},
		{
			name: "wrong code records the attempt",
			req:  pendingRequest,
			code: "000000",
			prepareMocks: func(store *mocks.Store) {
				store.On("IncrementLoginAttempts", mock.Anything, "req-1").Return(1, nil).Once()
			},
			expectedError: service.ErrInvalidCode,
		},
		{
			name: "third failure locks the request",
			req: func() *domain.LoginRequest {
				req := pendingRequest()
				req.Attempts = 3
				return req
			},
			code: "123456",
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginFailed).Return(true, nil).Once()
			},
			expectedError: service.ErrTooManyAttempts,
		},
		{
			name: "expired",
			req: func() *domain.LoginRequest {
				req := pendingRequest()
				req.ExpiresAt = fixedNow.Add(-time.Second)
				return req
			},
			code: "123456",
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginFailed).Return(true, nil).Once()
			},
			expectedError: service.ErrRequestExpired,
		},
		{
			name: "already verified",
			req: func() *domain.LoginRequest {
				req := pendingRequest()
				req.Status = domain.LoginVerified
				return req
			},
			code:          "123456",
			prepareMocks:  func(*mocks.Store) {},
			expectedError: service.ErrRequestResolved,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newAuthFixture(t, true)
			f.store.On("GetLoginRequest", mock.Anything, "req-1").Return(testCase.req(), nil).Once()
			testCase.prepareMocks(f.store)

			session, err := f.svc.Verify(context.Background(), "req-1", testCase.code)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.Token)
		})
	}
}

func TestAuthService_Status(t *testing.T) {
	tests := []struct {
		name         string
		stored       *domain.LoginRequest
		storeErr     error
		prepareMocks func(store *mocks.Store)
		wantStatus   domain.LoginStatus
		wantSession  bool
	}{
		{
			name:       "unknown request",
			storeErr:   domain.ErrNotFound,
			wantStatus: domain.LoginNotFound,
		},
		{
			name:       "still pending",
			stored:     pendingRequest(),
			wantStatus: domain.LoginPending,
		},
		{
			name: "approved is exchanged once",
			stored: func() *domain.LoginRequest {
				req := pendingRequest()
				req.Status = domain.LoginApproved
				return req
			}(),
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginApproved, domain.LoginUsed).Return(true, nil).Once()
			},
			wantStatus:  domain.LoginApproved,
			wantSession: true,
		},
		{
			name: "approved but raced",
			stored: func() *domain.LoginRequest {
				req := pendingRequest()
				req.Status = domain.LoginApproved
				return req
			}(),
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginApproved, domain.LoginUsed).Return(false, nil).Once()
			},
			wantStatus: domain.LoginUsed,
		},
		{
			name: "failed reads as rejected",
			stored: func() *domain.LoginRequest {
				req := pendingRequest()
				req.Status = domain.LoginFailed
				return req
			}(),
			wantStatus: domain.LoginRejected,
		},
		{
			name: "pending past expiry",
			stored: func() *domain.LoginRequest {
				req := pendingRequest()
				req.ExpiresAt = fixedNow.Add(-time.Minute)
				return req
			}(),
			prepareMocks: func(store *mocks.Store) {
				store.On("SetLoginRequestStatus", mock.Anything, "req-1", domain.LoginPending, domain.LoginRejected).Return(true, nil).Once()
			},
			wantStatus: domain.LoginRejected,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newAuthFixture(t, true)
			f.store.On("GetLoginRequest", mock.Anything, "req-1").Return(testCase.stored, testCase.storeErr).Once()
			if testCase.prepareMocks != nil {
				testCase.prepareMocks(f.store)
			}

			status, session, err := f.svc.Status(context.Background(), "req-1")
			require.NoError(t, err)
			assert.Equal(t, testCase.wantStatus, status)
			assert.Equal(t, testCase.wantSession, session != nil)
		})
	}
}

func TestSessionIssuer_Verify(t *testing.T) {
	issuer := service.NewSessionIssuer([]byte("test-secret"), time.Hour).WithClock(clock)
	session, err := issuer.Issue()
	require.NoError(t, err)

	tests := []struct {
		name    string
		issuer  *service.SessionIssuer
		token   string
		wantErr bool
	}{
		{name: "valid", issuer: issuer, token: session.Token},
		{name: "empty", issuer: issuer, token: "", wantErr: true},
		{name: "garbage", issuer: issuer, token: "not.a.jwt", wantErr: true},
		{
			name:    "other secret",
			issuer:  service.NewSessionIssuer([]byte("other"), time.Hour).WithClock(clock),
			token:   session.Token,
			wantErr: true,
		},
		{
			name: "expired",
			issuer: service.NewSessionIssuer([]byte("test-secret"), time.Hour).WithClock(func() time.Time {
				return fixedNow.Add(2 * time.Hour)
			}),
			token:   session.Token,
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.issuer.Verify(testCase.token)
			if testCase.wantErr {
				assert.ErrorIs(t, err, service.ErrUnauthorized)
				return
			}
			assert.NoError(t, err)
		})
	}
}
