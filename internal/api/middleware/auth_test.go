package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-signing-secret"
	testIssuer = "clinic-identity"
)

func signToken(t *testing.T, secret, issuer, subject string, roles []string, expiresIn time.Duration) string {
	t.Helper()
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter() *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Authenticate(logger, testSecret, testIssuer))
	router.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.DELETE("/privileged", RequireRoles(RoleSystemAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("ValidTokenPassesAndExposesSubject", func(t *testing.T) {
		router := newAuthRouter()
		token := signToken(t, testSecret, testIssuer, "user-42", []string{RoleReceptionist}, time.Hour)

		req, _ := http.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "user-42")
	})

	t.Run("MissingHeaderReturns401", func(t *testing.T) {
		router := newAuthRouter()
		req, _ := http.NewRequest(http.MethodGet, "/open", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
	})

	t.Run("WrongSchemeReturns401", func(t *testing.T) {
		router := newAuthRouter()
		req, _ := http.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("WrongSignatureReturns401", func(t *testing.T) {
		router := newAuthRouter()
		token := signToken(t, "other-secret", testIssuer, "user-42", []string{RoleReceptionist}, time.Hour)

		req, _ := http.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ExpiredTokenReturns401", func(t *testing.T) {
		router := newAuthRouter()
		token := signToken(t, testSecret, testIssuer, "user-42", []string{RoleReceptionist}, -time.Minute)

		req, _ := http.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("WrongIssuerReturns401", func(t *testing.T) {
		router := newAuthRouter()
		token := signToken(t, testSecret, "someone-else", "user-42", []string{RoleReceptionist}, time.Hour)

		req, _ := http.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("MatchingRolePasses", func(t *testing.T) {
		router := newAuthRouter()
		token := signToken(t, testSecret, testIssuer, "admin-1", []string{RoleSystemAdmin}, time.Hour)

		req, _ := http.NewRequest(http.MethodDelete, "/privileged", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("MissingRoleReturns403", func(t *testing.T) {
		router := newAuthRouter()
		token := signToken(t, testSecret, testIssuer, "user-42", []string{RoleReceptionist, RoleDoctor}, time.Hour)

		req, _ := http.NewRequest(http.MethodDelete, "/privileged", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "FORBIDDEN")
	})
}
