package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/jwt"
	"bridge-gate.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// CallerAddressKey is the context key for the authenticated chain address
	CallerAddressKey = "callerAddress"
	// TokenIDKey is the context key for the token id (jti)
	TokenIDKey = "tokenId"
)

// AuthMiddleware authenticates the caller from a bearer token carrying its chain address
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Warn(ctx, "Authorization header is missing", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			logger.Warn(ctx, "Invalid authorization format", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Warn(ctx, "Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		caller, err := claims.CallerAddress()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(CallerAddressKey, caller)
		c.Set(TokenIDKey, claims.ID)

		c.Next()
	}
}

// GetCallerAddress gets the authenticated address from context
func GetCallerAddress(c *gin.Context) (crosschain.Address, bool) {
	v, exists := c.Get(CallerAddressKey)
	if !exists {
		return nil, false
	}
	addr, ok := v.(crosschain.Address)
	if !ok || addr.IsEmpty() {
		return nil, false
	}
	return addr, true
}
