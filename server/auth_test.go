package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/entities"
)

const testJWTSecret = "test-jwt-secret"

func mintToken(t *testing.T, secret string, userID int64, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", authMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": callerID(c), "role": c.GetString(ctxRoleKey)})
	})
	r.GET("/admin", authMiddleware(secret), requireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doAuthedRequest(t *testing.T, r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := newAuthRouter(testJWTSecret)

	w := doAuthedRequest(t, r, "/me", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "unauthorized", body.Code)
	assert.Equal(t, "missing authorization header", body.Message)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := newAuthRouter(testJWTSecret)
	token := mintToken(t, testJWTSecret, 7, string(entities.RoleUser), time.Hour)

	for _, header := range []string{"Token " + token, token, "Bearer"} {
		w := doAuthedRequest(t, r, "/me", header)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Equal(t, "malformed authorization header", decodeError(t, w).Message, "header %q", header)
	}
}

func TestAuthMiddleware_RejectsInvalidTokens(t *testing.T) {
	r := newAuthRouter(testJWTSecret)

	wrongSecret := mintToken(t, "some-other-secret", 7, string(entities.RoleUser), time.Hour)
	expired := mintToken(t, testJWTSecret, 7, string(entities.RoleUser), -time.Hour)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": wrongSecret,
		"expired":      expired,
		"alg none":     unsigned,
		"garbage":      "not.a.jwt",
	} {
		w := doAuthedRequest(t, r, "/me", "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Equal(t, "invalid token", decodeError(t, w).Message, name)
	}
}

func TestAuthMiddleware_ValidTokenSetsCaller(t *testing.T) {
	r := newAuthRouter(testJWTSecret)
	token := mintToken(t, testJWTSecret, 42, string(entities.RoleUser), time.Hour)

	w := doAuthedRequest(t, r, "/me", "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.UserID)
	assert.Equal(t, string(entities.RoleUser), body.Role)
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	r := newAuthRouter(testJWTSecret)
	token := mintToken(t, testJWTSecret, 7, string(entities.RoleUser), time.Hour)

	w := doAuthedRequest(t, r, "/me", "bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newAuthRouter(testJWTSecret)

	userToken := mintToken(t, testJWTSecret, 7, string(entities.RoleUser), time.Hour)
	w := doAuthedRequest(t, r, "/admin", "Bearer "+userToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "admin role required", decodeError(t, w).Message)

	adminToken := mintToken(t, testJWTSecret, 1, string(entities.RoleAdmin), time.Hour)
	w = doAuthedRequest(t, r, "/admin", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
