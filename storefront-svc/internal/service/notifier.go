package service

import (
	"context"
	"log"

	"street-bites/pkg/domain"
)

// LogApprovalNotifier writes login approval details to the service log,
// where the owner picks them up.
type LogApprovalNotifier struct{}

func (LogApprovalNotifier) NotifyLoginRequest(_ context.Context, req domain.LoginRequest, approveURL, rejectURL string) error {
	log.Printf("[auth] login request %s from %s expires %s", req.ID, req.IP, req.ExpiresAt.Format("15:04:05"))
	log.Printf("[auth]   approve: %s", approveURL)
	log.Printf("[auth]   reject:  %s", rejectURL)
	log.Printf("[auth]   code:    %s", req.Code)
	return nil
}

var _ ApprovalNotifier = LogApprovalNotifier{}
