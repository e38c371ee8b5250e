package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"

	"github.com/primefinance/backend/internal/auth"
	mW "github.com/primefinance/backend/internal/middleware"
	"github.com/primefinance/backend/internal/models"
)

// AuthEvent names a change in a user's session state.
type AuthEvent string

const (
	AuthSignedUp  AuthEvent = "SIGNED_UP"
	AuthSignedIn  AuthEvent = "SIGNED_IN"
	AuthSignedOut AuthEvent = "SIGNED_OUT"
)

// AuthStateChange is delivered to every listener registered with
// OnAuthStateChange.
type AuthStateChange struct {
	Event AuthEvent
	User  models.User
}

type AuthStateListener func(ctx context.Context, change AuthStateChange)

type AuthService struct {
	db        *sql.DB
	redis     *redis.Client
	validator *validator.Validate
	log       logrus.FieldLogger
	now       func() time.Time

	mu           sync.RWMutex
	listeners    map[int]AuthStateListener
	nextListener int
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"` // User email address
	Password string `json:"password" validate:"required,min=6" example:"password123"`   // User password
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email" example:"user@example.com"` // User email address
	Password    string `json:"password" validate:"required,min=6" example:"password123"`   // User password
	DisplayName string `json:"displayName" validate:"omitempty,max=80" example:"Ada"`      // Name shown in the app
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	User  models.User `json:"user"`                                                    // User information
}

func NewAuthService(db *sql.DB, redisClient *redis.Client, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		validator: validator.New(),
		log:       log,
		now:       time.Now,
		listeners: make(map[int]AuthStateListener),
	}
}

// OnAuthStateChange registers fn to run after every sign-up, sign-in and
// sign-out. Listeners run synchronously and in no particular order. The
// returned function removes the listener.
func (s *AuthService) OnAuthStateChange(fn AuthStateListener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *AuthService) notify(ctx context.Context, change AuthStateChange) {
	s.mu.RLock()
	listeners := make([]AuthStateListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, change)
	}
}

func (s *AuthService) sendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	SendErrorResponse(w, message, statusCode, validationErr)
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new user with email and password. New users get the default accounts.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 200 {object} AuthResponse "Registration successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	s.log.Infof("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	var req RegisterRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.log.WithError(err).Warn("[AUTH] Registration failed - invalid request")
		s.sendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.sendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		s.log.WithError(err).Errorf("[AUTH] Password hashing failed for %s", req.Email)
		s.sendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	user := models.User{
		ID:          uuid.NewString(),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName: strings.TrimSpace(req.DisplayName),
		CreatedAt:   s.now().UTC(),
	}
	if user.DisplayName == "" {
		user.DisplayName = strings.SplitN(user.Email, "@", 2)[0]
	}

	_, err = s.db.ExecContext(r.Context(),
		"INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)",
		user.ID, user.Email, user.DisplayName, hashedPassword, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			s.log.Infof("[AUTH] Email already registered: %s", user.Email)
			s.sendErrorResponse(w, "Email Already Exists", http.StatusConflict, nil)
			return
		}
		s.log.WithError(err).Errorf("[AUTH] User creation failed for %s", user.Email)
		s.sendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	s.log.Infof("[AUTH] User created successfully - ID: %s, Email: %s", user.ID, user.Email)

	token, err := generateJWT(user.ID, s.now())
	if err != nil {
		s.log.WithError(err).Errorf("[AUTH] JWT generation failed for user %s", user.ID)
		s.sendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	s.notify(context.WithoutCancel(r.Context()), AuthStateChange{Event: AuthSignedUp, User: user})

	SendJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	s.log.Infof("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	var req LoginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.sendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.sendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	var hashedPassword string
	err := s.db.QueryRowContext(r.Context(),
		"SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = $1", email).
		Scan(&user.ID, &user.Email, &user.DisplayName, &hashedPassword, &user.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.WithError(err).Error("[AUTH] User lookup failed")
		}
		s.sendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	if !verifyPassword(req.Password, hashedPassword) {
		s.log.Infof("[AUTH] Invalid password for user: %s", user.ID)
		s.sendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	token, err := generateJWT(user.ID, s.now())
	if err != nil {
		s.log.WithError(err).Errorf("[AUTH] JWT generation failed for user %s", user.ID)
		s.sendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	s.notify(context.WithoutCancel(r.Context()), AuthStateChange{Event: AuthSignedIn, User: user})

	s.log.Infof("[AUTH] Login successful for user %s", user.ID)
	SendJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout user and blacklist token until it expires
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := mW.BearerToken(r); ok {
		claims, err := auth.ParseToken(token, jwtSecret())
		if err == nil {
			if s.redis != nil {
				expiry := claims.ExpiresAt.Sub(s.now())
				if expiry < time.Second {
					expiry = time.Second
				}
				if err := s.redis.Set(r.Context(), mW.BlacklistKey(token), "1", expiry).Err(); err != nil {
					s.log.WithError(err).Error("[AUTH] Failed to blacklist token")
				}
			}
			s.notify(context.WithoutCancel(r.Context()), AuthStateChange{Event: AuthSignedOut, User: models.User{ID: claims.UserID}})
		}
	}

	SendJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the signed-in user
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User "Current user"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/me [get]
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.sendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var user models.User
	err := s.db.QueryRowContext(r.Context(),
		"SELECT id, email, display_name, created_at FROM users WHERE id = $1", userID).
		Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.sendErrorResponse(w, "User not found", http.StatusNotFound, nil)
			return
		}
		s.log.WithError(err).Errorf("[AUTH] Failed to fetch user details for ID %s", userID)
		s.sendErrorResponse(w, "Failed to fetch user details", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, user)
}

// LookupEmail returns the mailbox and display name registered for userID.
func (s *AuthService) LookupEmail(ctx context.Context, userID string) (string, string, error) {
	var email, name string
	err := s.db.QueryRowContext(ctx, "SELECT email, display_name FROM users WHERE id = $1", userID).Scan(&email, &name)
	if err != nil {
		return "", "", err
	}
	return email, name, nil
}

func jwtSecret() []byte {
	return []byte(viper.GetString("jwt.secret_key"))
}

func generateJWT(userID string, now time.Time) (string, error) {
	ttl := time.Duration(intOr("jwt.expiry_hours", 24)) * time.Hour
	return auth.IssueToken(userID, jwtSecret(), ttl, now)
}

func intOr(key string, def int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return def
}

func argon2Key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt,
		uint32(intOr("argon2.time", 1)),
		uint32(intOr("argon2.memory", 64*1024)),
		uint8(intOr("argon2.threads", 4)),
		uint32(intOr("argon2.key_length", 32)))
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, intOr("argon2.salt_length", 16))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2Key(password, salt)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(hash) == 0 {
		return false
	}

	return subtle.ConstantTimeCompare(hash, argon2Key(password, salt)) == 1
}
