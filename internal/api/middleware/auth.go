package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIDKey is the key used to store the authenticated user ID in the context
	UserIDKey = "user_id"

	// UserRolesKey is the key used to store the authenticated user's roles
	UserRolesKey = "user_roles"
)

// Staff roles recognized by the clinic. Tokens are issued by an external
// identity provider; this service only verifies them.
const (
	RoleReceptionist = "Receptionist"
	RoleDoctor       = "Doctor"
	RoleSystemAdmin  = "SystemAdmin"
)

// Claims is the JWT payload issued for clinic staff
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Authenticate verifies the Bearer token on every request and stores the
// subject and roles in the gin context. Requests without a valid token get 401.
func Authenticate(logger *slog.Logger, secret, issuer string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Missing Authorization header")
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			logger.Warn("Rejected invalid token",
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRolesKey, claims.Roles)

		c.Next()
	}
}

// RequireRoles allows the request through when the authenticated user holds at
// least one of the given roles. Must run after Authenticate.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles := GetUserRoles(c)
		for _, have := range userRoles {
			for _, want := range roles {
				if have == want {
					c.Next()
					return
				}
			}
		}

		correlationID := GetCorrelationID(c)
		response := gin.H{
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient permissions",
			},
		}
		if correlationID != "" {
			response["correlation_id"] = correlationID
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response)
	}
}

// GetUserID retrieves the authenticated user ID from the gin context
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return ""
}

// GetUserRoles retrieves the authenticated user's roles from the gin context
func GetUserRoles(c *gin.Context) []string {
	if r, exists := c.Get(UserRolesKey); exists {
		if roles, ok := r.([]string); ok {
			return roles
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, message string) {
	correlationID := GetCorrelationID(c)
	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	}
	if correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
