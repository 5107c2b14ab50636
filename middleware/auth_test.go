package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	var seenUserID int
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		seenUserID = id
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authenticate(testSecret)(RequireRole(RoleAdmin)(final))

	valid := jwt.MapClaims{"user_id": 42, "role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", valid), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"user_id": 42, "role": RoleAdmin, "exp": time.Now().Add(-time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "role": "player"}), http.StatusUnauthorized},
		{"role not allowed", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "role": RoleOperator}), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, testSecret, valid), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/editions/1/run", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, 42, seenUserID)
}

func TestRejectsNonHMACTokens(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": RoleAdmin})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = parseToken(signed, []byte(testSecret))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
