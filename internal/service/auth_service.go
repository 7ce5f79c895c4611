package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"saasadmin/internal/config"
	"saasadmin/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const tokenTTL = 12 * time.Hour

// AuthService handles organization admin authentication
type AuthService struct {
	username     string
	passwordHash []byte
	orgID        int64
	jwtSecret    []byte
	now          func() time.Time
}

// NewAuthService creates a new auth service. Without a configured hash the
// development password "admin123" is accepted.
func NewAuthService(cfg config.Config) (*AuthService, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		log.Println("[Auth] ADMIN_PASSWORD_HASH not set, using development password")
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost); err != nil {
			return nil, fmt.Errorf("hash development password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
	}

	return &AuthService{
		username:     cfg.AdminUsername,
		passwordHash: hash,
		orgID:        cfg.AdminOrganizationID,
		jwtSecret:    []byte(cfg.JWTSecret),
		now:          time.Now,
	}, nil
}

// Login validates credentials and returns a signed admin token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	adminID := "admin_" + username
	claims := &model.AdminClaims{
		AdminID:        adminID,
		OrganizationID: s.orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:          tokenString,
		AdminID:        adminID,
		OrganizationID: s.orgID,
	}, nil
}

// ValidateAdminToken validates an admin JWT and returns claims
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
