package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/smane4123/PitchPulse/pkg/response"
)

const (
	// AuthorizationHeader is the header carrying the bearer token
	AuthorizationHeader = "Authorization"
	// ContextKeyUserID is the gin context key for the authenticated user
	ContextKeyUserID = "user_id"
	// ContextKeyUserRole is the gin context key for the user's role
	ContextKeyUserRole = "user_role"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claims is the JWT payload the engine accepts
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig holds JWT verification settings
type AuthConfig struct {
	Secret string
	Issuer string
}

// AuthMiddleware verifies the bearer token and stores the user identity
// in the request context.
func AuthMiddleware(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c)
		if err != nil {
			c.Abort()
			response.Unauthorized(c, err.Error())
			return
		}

		claims, err := parseToken(token, cfg)
		if err != nil {
			c.Abort()
			response.Unauthorized(c, ErrInvalidToken.Error())
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUserRole, claims.Role)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthorizationHeader)
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}

func parseToken(tokenStr string, cfg *AuthConfig) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserID extracts the authenticated user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetUserRole extracts the authenticated user's role from gin context
func GetUserRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

// MustGetUserID returns the user ID or aborts with 401. Handlers behind
// AuthMiddleware can call this without re-checking presence.
func MustGetUserID(c *gin.Context) (string, bool) {
	id, ok := GetUserID(c)
	if !ok {
		c.Abort()
		response.Unauthorized(c, ErrMissingToken.Error())
		return "", false
	}
	return id, true
}
