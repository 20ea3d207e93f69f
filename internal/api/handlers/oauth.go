package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hugh/miwanzo/internal/api/dto"
	"github.com/hugh/miwanzo/internal/auth"
	"github.com/hugh/miwanzo/pkg/crypto"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

// OAuthHandler runs the Google sign-in redirect flow. The state value is
// sealed into a short-lived cookie and compared on the callback.
type OAuthHandler struct {
	authService  auth.Authenticator
	google       auth.GoogleProvider
	encryptor    *crypto.Encryptor
	frontendURL  string
	secureCookie bool
	logger       *slog.Logger
}

func NewOAuthHandler(
	authService auth.Authenticator,
	google auth.GoogleProvider,
	encryptor *crypto.Encryptor,
	frontendURL string,
	secureCookie bool,
	logger *slog.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		authService:  authService,
		google:       google,
		encryptor:    encryptor,
		frontendURL:  frontendURL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// GoogleLogin handles GET /api/auth/google
func (h *OAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil || h.encryptor == nil {
		writeError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state, err := crypto.GenerateRandomString(32)
	if err != nil {
		h.logger.Error("generating oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start Google sign-in")
		return
	}
	sealed, err := h.encryptor.Seal(state, stateTTL)
	if err != nil {
		h.logger.Error("sealing oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start Google sign-in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    sealed,
		Path:     "/api/auth/google",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback
func (h *OAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil || h.encryptor == nil {
		writeError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	if !h.validState(r) {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/api/auth/google",
		HttpOnly: true,
		Secure:   h.secureCookie,
		MaxAge:   -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("google exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to contact Google")
		return
	}

	resp, err := h.authService.LoginWithGoogle(r.Context(), profile)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrGoogleProfile):
			writeError(w, http.StatusBadRequest, "Google account has no email address")
			return
		case errors.Is(err, auth.ErrGoogleUnverified):
			writeError(w, http.StatusForbidden, "Google email address is not verified")
			return
		}
		h.logger.Error("google login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	user, err := json.Marshal(dto.ToUserDTO(resp.User))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	q := url.Values{}
	q.Set("token", resp.Token)
	q.Set("user", string(user))
	http.Redirect(w, r, h.frontendURL+"/auth/google/callback?"+q.Encode(), http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	if state == "" {
		return false
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return false
	}
	expected, err := h.encryptor.Open(cookie.Value)
	if err != nil {
		return false
	}
	return expected == state
}
