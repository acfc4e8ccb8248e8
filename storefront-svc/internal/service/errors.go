package service

import "errors"

var (
	ErrStatusConflict   = errors.New("order status changed concurrently")
	ErrUnauthorized     = errors.New("invalid credentials")
	ErrInvalidToken     = errors.New("invalid approval token")
	ErrRequestResolved  = errors.New("login request already resolved")
	ErrRequestExpired   = errors.New("login request expired")
	ErrInvalidCode      = errors.New("invalid code")
	ErrTooManyAttempts  = errors.New("too many failed attempts")
	ErrApprovalDisabled = errors.New("login approval is not enabled")
)
