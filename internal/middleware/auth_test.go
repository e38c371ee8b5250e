package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primefinance/backend/internal/auth"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())
		w.Write([]byte(userID))
	})
}

func TestAuthMiddleware(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret")
	token, err := auth.IssueToken("user-1", []byte("test-secret"), time.Hour, time.Now())
	require.NoError(t, err)

	db, mock := redismock.NewClientMock()
	InitAuthMiddleware(db)
	defer InitAuthMiddleware(nil)

	t.Run("valid token", func(t *testing.T) {
		mock.ExpectExists(BlacklistKey(token)).SetVal(0)

		r := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		AuthMiddleware(echoUser()).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", w.Body.String())
	})

	t.Run("blacklisted token", func(t *testing.T) {
		mock.ExpectExists(BlacklistKey(token)).SetVal(1)

		r := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		AuthMiddleware(echoUser()).ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		AuthMiddleware(echoUser()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		r.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		AuthMiddleware(echoUser()).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		forged, err := auth.IssueToken("user-1", []byte("other"), time.Hour, time.Now())
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		r.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()
		AuthMiddleware(echoUser()).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternalAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	viper.Set("internal.api_key", "")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/internal/loans/l1/repaid", nil)
	r.Header.Set("X-Internal-Key", "")
	InternalAuth(ok).ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code, "unset key never matches")

	viper.Set("internal.api_key", "k3y")
	w = httptest.NewRecorder()
	r.Header.Set("X-Internal-Key", "k3y")
	InternalAuth(ok).ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.Header.Set("X-Internal-Key", "wrong")
	InternalAuth(ok).ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
