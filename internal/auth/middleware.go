package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const callerKey = "caller"

// Claims is the token payload accepted by the API
type Claims struct {
	CompanyID string `json:"companyId"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Caller converts the claims to the principal used by the services
func (c *Claims) Caller() business.Caller {
	return business.Caller{
		CompanyID: c.CompanyID,
		Name:      c.Name,
		Email:     c.Email,
		IsAdmin:   c.IsAdmin,
	}
}

// Authenticator validates HS256 bearer tokens
type Authenticator struct {
	secret []byte
	// localCompany is used as the caller when no secret is configured
	localCompany string
}

// NewAuthenticator creates an authenticator for secret. With an empty secret
// every request is attributed to localCompany, which is only meant for local runs.
func NewAuthenticator(secret, localCompany string) *Authenticator {
	return &Authenticator{secret: []byte(secret), localCompany: localCompany}
}

// IssueToken signs a token for caller valid for ttl
func (a *Authenticator) IssueToken(caller business.Caller, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", ErrSigningKeyAbsent
	}
	now := time.Now()
	claims := Claims{
		CompanyID: caller.CompanyID,
		Name:      caller.Name,
		Email:     caller.Email,
		IsAdmin:   caller.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.CompanyID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateToken parses and verifies a bearer token
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.CompanyID == "" && !claims.IsAdmin {
		return nil, ErrMissingCompany
	}
	return claims, nil
}

// EnsureValidToken is a middleware that rejects requests without a valid
// bearer token and stores the resulting caller on the context
func (a *Authenticator) EnsureValidToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(a.secret) == 0 {
			c.Set(callerKey, business.Caller{CompanyID: a.localCompany, IsAdmin: true})
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrNoToken.Error()})
			c.Abort()
			return
		}

		claims, err := a.ValidateToken(authHeader)
		if err != nil {
			logger.Log.Debug("Token validation failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(callerKey, claims.Caller())
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin claim
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := CallerFromContext(c)
		if err != nil || !caller.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFromContext returns the caller stored by EnsureValidToken
func CallerFromContext(c *gin.Context) (business.Caller, error) {
	v, ok := c.Get(callerKey)
	if !ok {
		return business.Caller{}, ErrNoCallerInCtx
	}
	caller, ok := v.(business.Caller)
	if !ok {
		return business.Caller{}, ErrNoCallerInCtx
	}
	return caller, nil
}
