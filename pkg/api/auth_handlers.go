package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/httputil"
	"github.com/pixelforge/studio/pkg/identity"
)

// AuthHandlers handles account sign up, sign in and sign out.
type AuthHandlers struct {
	manager *identity.Manager
	logger  *logrus.Logger
}

// NewAuthHandlers creates a new AuthHandlers
func NewAuthHandlers(manager *identity.Manager, logger *logrus.Logger) *AuthHandlers {
	return &AuthHandlers{manager: manager, logger: logger}
}

// RegisterRoutes registers auth routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/signup", h.SignUp).Methods("POST")
	router.HandleFunc("/auth/signin", h.SignIn).Methods("POST")
	router.HandleFunc("/auth/signout", h.SignOut).Methods("POST")
}

// SignUpRequest is the payload for account creation.
type SignUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SignInRequest is the payload for signing in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse carries the bearer token for subsequent requests.
type SignInResponse struct {
	Token   string            `json:"token"`
	Session *identity.Session `json:"session"`
}

// SignUp creates an account and immediately signs it in.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.manager.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	token, session, err := h.manager.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to sign in new account")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	httputil.WriteCreated(w, SignInResponse{Token: token, Session: session})
}

// SignIn exchanges credentials for a bearer token.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	token, session, err := h.manager.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteUnauthorized(w, "invalid email or password")
		return
	}

	httputil.WriteSuccess(w, SignInResponse{Token: token, Session: session})
}

// SignOut revokes the caller's session. Missing or malformed tokens are
// treated as already signed out.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	token := httputil.BearerToken(r)
	if err := h.manager.SignOut(r.Context(), token); err != nil {
		h.logger.WithError(err).Error("Failed to revoke session")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	httputil.WriteNoContent(w)
}
