package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/services"
)

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the safe user representation returned to clients.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt string `json:"created_at"`
}

// RegisterResponse is the payload for a successful registration.
type RegisterResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// LoginResponse is the payload for a successful login.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	LoginTime string       `json:"loginTime"`
}

// AuthHandler handles registration and login endpoints.
type AuthHandler struct {
	service  services.AuthService
	tokenTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler. tokenTTL controls the lifetime
// of the token cookie set on login.
func NewAuthHandler(svc services.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: svc, tokenTTL: tokenTTL}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
		return
	}

	result, err := h.service.Register(r.Context(), services.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, RegisterResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	}, "account created")
}

// Login handles POST /api/auth/login requests. The token is returned in
// the body and also set as an HttpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_REQUEST")
		return
	}

	result, err := h.service.Login(r.Context(), services.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, LoginResponse{
		User:      toUserResponse(result.User),
		Token:     result.Token,
		LoginTime: result.LoginTime.Format(time.RFC3339),
	}, "login successful")
}

// toUserResponse strips the password hash from a user entity.
func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
