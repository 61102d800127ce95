// Package auth validates bearer tokens issued by the external session
// service and exposes the caller's identity to handlers. Session issuance,
// password flows, and user storage live outside this service; this package
// only verifies what arrives on the wire.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	UserEmailKey  contextKey = "user_email"
	UserRoleKey   contextKey = "user_role"
	PracticeIDKey contextKey = "practice_id"
)

// Roles recognised on incoming tokens.
const (
	RolePatient  = "patient"
	RolePractice = "practice"
	RoleAdmin    = "admin"
)

// Claims is the token payload issued by the session service.
type Claims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	PracticeID string `json:"practice_id,omitempty"`
	jwt.RegisteredClaims
}

// Middleware returns echo middleware that validates the Authorization bearer
// token against the shared HS256 secret and stores the caller's identity on
// the request context. Requests without a valid token are rejected.
func Middleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			ctx = context.WithValue(ctx, PracticeIDKey, claims.PracticeID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRole returns middleware that allows only the listed roles. Admin
// passes every gate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil when the
// subject is absent or malformed.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	s, _ := ctx.Value(UserIDKey).(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// EmailFromContext returns the authenticated user's email address.
func EmailFromContext(ctx context.Context) string {
	s, _ := ctx.Value(UserEmailKey).(string)
	return s
}

// RoleFromContext returns the authenticated user's role.
func RoleFromContext(ctx context.Context) string {
	s, _ := ctx.Value(UserRoleKey).(string)
	return s
}

// PracticeIDFromContext returns the practice a staff token belongs to, or
// uuid.Nil for patient/admin tokens.
func PracticeIDFromContext(ctx context.Context) uuid.UUID {
	s, _ := ctx.Value(PracticeIDKey).(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
