package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// Context keys set by RequireSession for downstream handlers.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextUser   = "user"
)

// UserResolver looks up the user a session token refers to. Satisfied by
// services.UserServicer.
type UserResolver interface {
	GetUserByID(id string) (*models.User, error)
}

// getJWTKey returns the session signing key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// SessionClaims represents the claims carried in the session token
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session token for the given user id and email.
func GenerateSessionToken(userID, email string) (string, error) {
	cfg := config.Get()
	claims := &SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.SessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "fintrack-api",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// ParseSessionToken verifies a session token and returns its claims.
func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

// SetSessionCookie writes the session token as an HTTP-only cookie on the response.
func SetSessionCookie(c *gin.Context, token string) {
	cfg := config.Get()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, int(cfg.SessionExpiry.Seconds()), "/", "", cfg.CookieSecure, true)
}

// ClearSessionCookie expires the session cookie, logging the client out.
func ClearSessionCookie(c *gin.Context) {
	cfg := config.Get()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.CookieSecure, true)
}

// RequireSession verifies the session cookie, confirms the referenced user
// still exists, and sets the resolved user in the context. A missing,
// malformed, or expired token yields 401, as does a token for a user that
// has since been deleted.
func RequireSession(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(config.Get().CookieName)
		if err != nil || tokenString == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := ParseSessionToken(tokenString)
		if err != nil {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		user, err := users.GetUserByID(claims.UserID)
		if err != nil {
			// A stale cookie for a deleted account is an auth failure,
			// not a lookup failure.
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
				abortWithError(c, apperrors.ErrUnauthorized)
				return
			}
			abortWithError(c, apperrors.ErrInternalServer)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextEmail, user.Email)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// abortWithError stops the chain with the standard error envelope.
func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
