package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"complaintdesk/models"
	"complaintdesk/service"
)

type contextKey string

const (
	actorKey contextKey = "actor"
)

// AuthMiddleware validates JWT tokens and resolves the calling user.
type AuthMiddleware struct {
	userService *service.UserService
	jwtSecret   []byte
	cronSecret  string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(userService *service.UserService, jwtSecret []byte, cronSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		jwtSecret:   jwtSecret,
		cronSecret:  cronSecret,
	}
}

// ActorFromContext returns the authenticated actor stored by RequireAuth.
func ActorFromContext(ctx context.Context) (service.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(service.Actor)
	return actor, ok
}

// RequireAuth validates the bearer token and sets the actor in the request
// context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authorization header required. Expected: Bearer <token>")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token claims.")
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid token: user_id not found.")
			return
		}
		userID := int64(userIDFloat)

		// Resolve the user so role changes and deletions take effect
		// immediately, not at token expiry.
		user, err := m.userService.Get(userID)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "User not found.")
			return
		}

		actor := service.Actor{
			UserID: user.UserID,
			Name:   user.Name,
			Role:   user.Role,
		}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows only ADMIN-role actors through. Must be chained after
// RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required.")
			return
		}
		if actor.Role != models.RoleAdmin {
			respondWithError(w, http.StatusForbidden, "Forbidden", "Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCron authenticates scheduler callbacks with the shared cron secret.
func (m *AuthMiddleware) RequireCron(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret, ok := bearerToken(r)
		if !ok || m.cronSecret == "" || secret != m.cronSecret {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid cron secret.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Helper function for error responses
func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	body := fmt.Sprintf(`{"error":"%s","message":"%s","code":%d}`, errorType, message, statusCode)
	w.Write([]byte(body))
}
