package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primefinance/backend/internal/auth"
	mW "github.com/primefinance/backend/internal/middleware"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes []AuthStateChange
}

func (c *changeRecorder) listen(_ context.Context, change AuthStateChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, change)
}

func (c *changeRecorder) events() []AuthEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AuthEvent, 0, len(c.changes))
	for _, ch := range c.changes {
		out = append(out, ch.Event)
	}
	return out
}

func TestAuthService_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setupAuthConfig()

	service := NewAuthService(db, nil, quietLogger())
	service.now = func() time.Time { return testNow }
	recorder := &changeRecorder{}
	service.OnAuthStateChange(recorder.listen)

	t.Run("successful registration", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "ada@example.com", "ada", sqlmock.AnyArg(), testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		body, _ := json.Marshal(RegisterRequest{Email: "Ada@Example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "ada@example.com", response.User.Email)
		assert.Equal(t, "ada", response.User.DisplayName)

		claims, err := auth.ParseToken(response.Token, jwtSecret())
		require.NoError(t, err)
		assert.Equal(t, response.User.ID, claims.UserID)

		assert.Equal(t, []AuthEvent{AuthSignedUp}, recorder.events())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email already registered", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505"})

		body, _ := json.Marshal(RegisterRequest{Email: "ada@example.com", Password: "password123", DisplayName: "Ada"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Len(t, recorder.events(), 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("connection reset"))

		body, _ := json.Marshal(RegisterRequest{Email: "bob@example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("invalid request body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer([]byte("invalid")))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		body, _ := json.Marshal(RegisterRequest{Email: "bob@example.com", Password: "123"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.Details, "Password")
	})
}

func TestAuthService_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setupAuthConfig()

	service := NewAuthService(db, nil, quietLogger())
	recorder := &changeRecorder{}
	service.OnAuthStateChange(recorder.listen)

	hashedPassword, err := hashPassword("password123")
	require.NoError(t, err)
	columns := []string{"id", "email", "display_name", "password_hash", "created_at"}

	t.Run("successful login", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, display_name, password_hash, created_at FROM users").
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("user-1", "ada@example.com", "Ada", hashedPassword, testNow))

		body, _ := json.Marshal(LoginRequest{Email: "ada@example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "user-1", response.User.ID)
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, []AuthEvent{AuthSignedIn}, recorder.events())
	})

	t.Run("wrong password", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, display_name, password_hash, created_at FROM users").
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("user-1", "ada@example.com", "Ada", hashedPassword, testNow))

		body, _ := json.Marshal(LoginRequest{Email: "ada@example.com", Password: "wrongpassword"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Len(t, recorder.events(), 1)
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, display_name, password_hash, created_at FROM users").
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(columns))

		body, _ := json.Marshal(LoginRequest{Email: "nobody@example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Logout(t *testing.T) {
	setupAuthConfig()

	rdb, rmock := redismock.NewClientMock()
	service := NewAuthService(nil, rdb, quietLogger())
	recorder := &changeRecorder{}
	service.OnAuthStateChange(recorder.listen)

	issuedAt := time.Now().Truncate(time.Second)
	service.now = func() time.Time { return issuedAt }
	token, err := auth.IssueToken("user-1", jwtSecret(), time.Hour, issuedAt)
	require.NoError(t, err)

	t.Run("blacklists the token for its remaining lifetime", func(t *testing.T) {
		rmock.ExpectSet(mW.BlacklistKey(token), "1", time.Hour).SetVal("OK")

		r := httptest.NewRequest("POST", "/auth/logout", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		service.Logout(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, recorder.changes, 1)
		assert.Equal(t, AuthSignedOut, recorder.changes[0].Event)
		assert.Equal(t, "user-1", recorder.changes[0].User.ID)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("without a token", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/logout", nil)
		w := httptest.NewRecorder()

		service.Logout(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, recorder.events(), 1)
	})
}

func TestAuthService_OnAuthStateChange_Unsubscribe(t *testing.T) {
	service := NewAuthService(nil, nil, quietLogger())
	recorder := &changeRecorder{}
	unsubscribe := service.OnAuthStateChange(recorder.listen)

	service.notify(context.Background(), AuthStateChange{Event: AuthSignedIn})
	unsubscribe()
	service.notify(context.Background(), AuthStateChange{Event: AuthSignedOut})

	assert.Equal(t, []AuthEvent{AuthSignedIn}, recorder.events())
}

func TestAuthService_Me(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAuthService(db, nil, quietLogger())

	t.Run("returns the profile", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, display_name, created_at FROM users WHERE id = \\$1").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "created_at"}).
				AddRow("user-1", "ada@example.com", "Ada", testNow))

		w := httptest.NewRecorder()
		service.Me(w, newRequest("GET", "/auth/me", "", "user-1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"displayName":"Ada"`)
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, display_name, created_at FROM users WHERE id = \\$1").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "created_at"}))

		w := httptest.NewRecorder()
		service.Me(w, newRequest("GET", "/auth/me", "", "ghost"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		service.Me(w, newRequest("GET", "/auth/me", "", ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_LookupEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAuthService(db, nil, quietLogger())

	mock.ExpectQuery("SELECT email, display_name FROM users WHERE id = \\$1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"email", "display_name"}).AddRow("ada@example.com", "Ada"))

	address, name, err := service.LookupEmail(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", address)
	assert.Equal(t, "Ada", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordHashing(t *testing.T) {
	setupAuthConfig()

	hashed, err := hashPassword("password123")
	require.NoError(t, err)

	assert.True(t, verifyPassword("password123", hashed))
	assert.False(t, verifyPassword("password124", hashed))
	assert.False(t, verifyPassword("password123", "not-a-hash"))
	assert.False(t, verifyPassword("password123", "$"))

	again, err := hashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "salt must differ per hash")
}
