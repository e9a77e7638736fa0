package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shortr/shortr/internal/metrics"
	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/token"
)

// TokenCookieName is the cookie checked when no Authorization header is set.
const TokenCookieName = "token"

// IdentityKey is the context key for the authenticated identity.
const IdentityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID    int64
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// GetIdentity retrieves the authenticated identity from context.
func GetIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*Identity)
	return id, ok
}

// TokenVerifier verifies a signed token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// UserLoader re-loads the user behind a verified token.
type UserLoader interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// authErrorResponse is the JSON body for rejected requests.
type authErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Auth returns a middleware that requires a valid bearer token. The token
// is taken from the Authorization header or the token cookie; the user it
// names must still exist. On success the identity is placed in context.
func Auth(verifier TokenVerifier, users UserLoader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				metrics.RecordAuthFailure("no_token")
				writeAuthError(w, "authentication token is required", "NO_TOKEN_PROVIDED")
				return
			}

			claims, err := verifier.Verify(tokenString)
			if err != nil {
				metrics.RecordAuthFailure("invalid_token")
				// Expired vs malformed is safe to reveal here: the caller
				// already holds a token, this is not an enumeration path.
				msg := "invalid authentication token"
				if errors.Is(err, token.ErrTokenExpired) {
					msg = "authentication token has expired"
				}
				writeAuthError(w, msg, "INVALID_TOKEN")
				return
			}

			user, err := users.GetByEmail(r.Context(), claims.Email)
			if err != nil {
				metrics.RecordAuthFailure("user_not_found")
				writeAuthError(w, "user for this token no longer exists", "USER_NOT_FOUND")
				return
			}

			identity := &Identity{
				UserID: user.ID,
				Email:  user.Email,
				Name:   user.Name,
			}
			if claims.IssuedAt != nil {
				identity.IssuedAt = claims.IssuedAt.Time
			}
			if claims.ExpiresAt != nil {
				identity.ExpiresAt = claims.ExpiresAt.Time
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the bearer token from the Authorization header,
// falling back to the token cookie.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		// Not Bearer-shaped; the cookie may still carry a token
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

func writeAuthError(w http.ResponseWriter, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(authErrorResponse{
		Success: false,
		Message: message,
		Error:   code,
	})
}
