package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/phonebook-api/internal/models"
	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
)

// AuthConfig holds the operator credentials and token settings.
type AuthConfig struct {
	OperatorEmail        string
	OperatorPasswordHash string
	AccessTokenSecret    string
	AccessTokenExpiry    time.Duration
}

// AuthService signs in the phone book operator and validates issued tokens.
type AuthService struct {
	config    AuthConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(cfg AuthConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AccessTokenExpiry <= 0 {
		cfg.AccessTokenExpiry = 12 * time.Hour
	}
	return &AuthService{config: cfg, validator: validate, logger: logger, now: time.Now}
}

// Login checks the operator credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if s.config.OperatorPasswordHash == "" || !strings.EqualFold(req.Email, s.config.OperatorEmail) {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.OperatorPasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("operator login rejected", zap.String("email", req.Email))
		return nil, appErrors.ErrInvalidCredentials
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(req.Email, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}
	s.logger.Info("operator signed in", zap.String("email", req.Email))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(email string, issuedAt time.Time) (string, error) {
	claims := models.JWTClaims{
		Email: email,
		Role:  models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
