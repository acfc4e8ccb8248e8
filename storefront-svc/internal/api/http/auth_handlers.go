package httpapi

import (
	"net/http"
	"time"

	"street-bites/storefront-svc/internal/service"
	"street-bites/storefront-svc/internal/validation"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Status           string `json:"status"`
	RequiresApproval bool   `json:"requiresApproval,omitempty"`
	RequestID        string `json:"requestId,omitempty"`
}

type verifyRequest struct {
	RequestID string `json:"requestId"`
	Code      string `json:"code"`
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session *service.Session) {
	maxAge := int(session.ExpiresAt.Sub(h.now()).Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decodeBody(w, r, &body) {
		return
	}
	result, err := h.Auth.Login(r.Context(), ClientIP(r), body.Password)
	if err != nil {
		writeError(w, err, true)
		return
	}
	if result.Pending() {
		writeJSON(w, http.StatusAccepted, loginResponse{
			Status:           "pending",
			RequiresApproval: true,
			RequestID:        result.RequestID,
		})
		return
	}
	h.setSessionCookie(w, result.Session)
	writeJSON(w, http.StatusOK, loginResponse{Status: "ok"})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Status: "logged_out"})
}

func (h *Handler) approveLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.Auth.Approve(r.Context(), q.Get("id"), q.Get("token")); err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Status: "approved"})
}

func (h *Handler) rejectLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.Auth.Reject(r.Context(), q.Get("id"), q.Get("token")); err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Status: "rejected"})
}

func (h *Handler) verifyLogin(w http.ResponseWriter, r *http.Request) {
	var body verifyRequest
	if !decodeBody(w, r, &body) {
		return
	}
	session, err := h.Auth.Verify(r.Context(), body.RequestID, body.Code)
	if err != nil {
		writeError(w, err, true)
		return
	}
	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, loginResponse{Status: "verified"})
}

func (h *Handler) loginStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, validation.Invalid("id", "is required"), true)
		return
	}
	status, session, err := h.Auth.Status(r.Context(), id)
	if err != nil {
		writeError(w, err, true)
		return
	}
	if session != nil {
		h.setSessionCookie(w, session)
	}
	writeJSON(w, http.StatusOK, loginResponse{Status: string(status)})
}
