package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TenantIDKey is the key used to store the caller's tenant in the context
	TenantIDKey = "tenant_id"
	// UserIDKey is the key used to store the caller's user id in the context
	UserIDKey = "user_id"
)

// Claims is the bearer token payload. The subject is the user id.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token and returns its claims
func ParseToken(secret, issuer, tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Auth middleware resolves the caller's tenant and user from a bearer token.
// A missing or invalid token is rejected with 401, a token without a tenant with 403.
func Auth(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "not authenticated")
			return
		}

		claims, err := ParseToken(secret, issuer, tokenStr)
		if err != nil {
			message := "not authenticated"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "token expired"
			}
			abortWithError(c, http.StatusUnauthorized, "UNAUTHENTICATED", message)
			return
		}

		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil || tenantID == uuid.Nil {
			abortWithError(c, http.StatusForbidden, "TENANT_NOT_FOUND", "no tenant associated with the caller")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

// GetTenantID retrieves the caller's tenant from the gin context if present
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(TenantIDKey); exists {
		if tenantID, ok := v.(uuid.UUID); ok && tenantID != uuid.Nil {
			return tenantID, true
		}
	}
	return uuid.Nil, false
}

// GetUserID retrieves the caller's user id from the gin context if present
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortWithError(c *gin.Context, status int, code, message string) {
	response := gin.H{
		"error": message,
		"code":  code,
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(status, response)
}
