package domain

import "time"

type LoginStatus string

const (
	LoginPending  LoginStatus = "pending"
	LoginApproved LoginStatus = "approved"
	LoginRejected LoginStatus = "rejected"
	LoginVerified LoginStatus = "verified"
	LoginUsed     LoginStatus = "used"
	LoginFailed   LoginStatus = "failed"
	// LoginNotFound is only reported to pollers; it is never stored.
	LoginNotFound LoginStatus = "not_found"
)

// Terminal reports whether a poller waiting on the request can stop.
// Only a pending request can still change.
func (s LoginStatus) Terminal() bool {
	return s != LoginPending
}

// LoginRequest is a pending admin sign-in waiting on an approval link or a
// one-time code.
type LoginRequest struct {
	ID        string      `json:"id" bson:"id"`
	Token     string      `json:"token" bson:"token"`
	Code      string      `json:"code" bson:"code"`
	Status    LoginStatus `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt" bson:"expiresAt"`
	Attempts  int         `json:"attempts" bson:"attempts"`
	IP        string      `json:"ip,omitempty" bson:"ip,omitempty"`
}

func (r LoginRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
