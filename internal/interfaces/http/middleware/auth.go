package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/infrastructure/auth"
	"github.com/civicwatch/civicwatch/internal/shared/constants"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

type tokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier tokenVerifier
	logger   logger.Interface
}

func NewAuthMiddleware(verifier tokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireStaff admits requests carrying a valid staff bearer token and puts
// the staff identity on the context.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing authorization token"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err, "client_ip", c.ClientIP())
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyStaffID, claims.StaffID)
		c.Set(constants.ContextKeyStaffName, staffDisplayName(claims))

		c.Next()
	}
}

func staffDisplayName(claims *auth.Claims) string {
	if claims.StaffName != "" {
		return claims.StaffName
	}
	return claims.StaffID
}

// StaffName returns the acting staff member recorded by RequireStaff.
func StaffName(c *gin.Context) string {
	return c.GetString(constants.ContextKeyStaffName)
}
