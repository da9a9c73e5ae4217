package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ManagementScope is granted to every admin token
const ManagementScope = "management"

const minPasswordLength = 8

// bcryptCost is lowered by tests
var bcryptCost = bcrypt.DefaultCost

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	numericPattern  = regexp.MustCompile(`^\d+$`)
)

// Claims are the claims of a management access token
type Claims struct {
	Role  string `json:"role"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed access token with its expiry
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenID     string    `json:"-"`
}

// AuthService authenticates admins and manages their credentials
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens TokenStore
	now    func() time.Time
}

// NewAuthService wires the auth service; a nil token store means logout cannot revoke
func NewAuthService(db *gorm.DB, cfg *config.Config, tokens TokenStore) *AuthService {
	return &AuthService{db: db, cfg: cfg, tokens: tokens, now: time.Now}
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks an admin's credentials and issues an access token.
// Non-admin accounts get the same error as a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*IssuedToken, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		logger.Get().Warn("failed login", "username", username)
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsAdmin() {
		logger.Get().Warn("non-admin login refused", "username", username)
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, nil, err
	}
	logger.Get().Info("admin logged in", "user_id", user.ID)
	return token, &user, nil
}

// IssueToken signs an HS256 access token for user
func (s *AuthService) IssueToken(user *models.User) (*IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	tokenID := uuid.NewString()

	claims := Claims{
		Role:  user.Role,
		Scope: ManagementScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWTIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Audience:  jwt.ClaimStrings{s.cfg.JWTAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
		ExpiresAt:   expiresAt,
		TokenID:     tokenID,
	}, nil
}

// Logout revokes a token id until the token's own expiry
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.tokens == nil || tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if err := s.tokens.Revoke(ctx, tokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetUser loads an account by id
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ChangeUsername renames an account; usernames are unique
func (s *AuthService) ChangeUsername(ctx context.Context, userID uint, username string) (*models.User, error) {
	if username == "" || len(username) > 150 || !usernamePattern.MatchString(username) {
		return nil, NewValidationError("username", "enter a valid username of letters, digits and @/./+/-/_ only")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, userID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	if err := s.db.WithContext(ctx).Model(user).Update("username", username).Error; err != nil {
		return nil, err
	}
	logger.Get().Info("username changed", "user_id", userID)
	return s.GetUser(ctx, userID)
}

// ChangePassword replaces a password after checking the old one and the confirmation
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword1, newPassword2 string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	verr := &ValidationError{}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		verr.Add("old_password", "your old password was entered incorrectly")
	}
	if newPassword1 != newPassword2 {
		verr.Add("new_password2", "the two password fields didn't match")
	}
	if msg := checkPasswordStrength(newPassword1); msg != "" {
		verr.Add("new_password1", msg)
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword1)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return err
	}
	logger.Get().Info("password changed", "user_id", userID)
	return nil
}

func checkPasswordStrength(password string) string {
	switch {
	case len(password) < minPasswordLength:
		return fmt.Sprintf("this password is too short, it must contain at least %d characters", minPasswordLength)
	case numericPattern.MatchString(password):
		return "this password is entirely numeric"
	}
	return ""
}

// EnsureAdmin creates the admin account if no user has that username yet.
// An existing account keeps its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err == nil {
		if !user.IsAdmin() {
			return nil, fmt.Errorf("%w: %s", ErrNotAdmin, username)
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if msg := checkPasswordStrength(password); msg != "" {
		return nil, NewValidationError("password", msg)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user = models.User{Username: username, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	logger.Get().Info("admin account created", "user_id", user.ID, "username", username)
	return &user, nil
}
