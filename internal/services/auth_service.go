package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// AdminClaims are the claims carried by an admin token.
type AdminClaims struct {
	AdminID  string
	Username string
}

// AuthService handles admin registration, login and token checks.
type AuthService struct {
	admins    repositories.AdminRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *zap.Logger
}

// NewAuthService creates a new AuthService issuing tokens valid for 24 hours.
func NewAuthService(admins repositories.AdminRepository, jwtSecret string, log *zap.Logger) *AuthService {
	return &AuthService{
		admins:    admins,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
		log:       log,
	}
}

// RegisterAdmin hashes the password of admin and stores the account.
func (s *AuthService) RegisterAdmin(ctx context.Context, admin *models.Admin) error {
	admin.Username = strings.TrimSpace(admin.Username)
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	if err := validateStruct(admin); err != nil {
		return err
	}

	if _, err := s.admins.GetByUsername(ctx, admin.Username); err == nil {
		return fmt.Errorf("%w: username '%s'", ErrAccountTaken, admin.Username)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if _, err := s.admins.GetByEmail(ctx, admin.Email); err == nil {
		return fmt.Errorf("%w: email '%s'", ErrAccountTaken, admin.Email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin.Password = string(hashed)

	if err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to register admin: %w", err)
	}
	s.log.Info("admin registered", zap.String("id", admin.ID), zap.String("username", admin.Username))
	return nil
}

// RegistrationOpen reports whether an admin may register without a token,
// which is only the case while no admin account exists.
func (s *AuthService) RegistrationOpen(ctx context.Context) (bool, error) {
	n, err := s.admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check admin accounts: %w", err)
	}
	return n == 0, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.admins.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": admin.ID,
		"username": admin.Username,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and returns its admin claims.
func (s *AuthService) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	id, _ := claims["admin_id"].(string)
	username, _ := claims["username"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: missing admin_id", ErrInvalidToken)
	}
	return &AdminClaims{AdminID: id, Username: username}, nil
}
