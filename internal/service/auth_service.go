package service

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
	"github.com/noah-isme/sma-dashboard-api/internal/store"
	appErrors "github.com/noah-isme/sma-dashboard-api/pkg/errors"
)

// credentialSource is the read-only view the auth layer gets of the store's
// credential index.
type credentialSource interface {
	LookupCredential(username string) (store.Credential, bool)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// Claims is the JWT payload carrying the viewer identity.
type Claims struct {
	jwt.RegisteredClaims
	Role        models.Role `json:"role"`
	DisplayName string      `json:"name"`
}

// Identity converts the claims into the store's viewer identity.
func (c *Claims) Identity() models.Identity {
	return models.Identity{Role: c.Role, DisplayName: c.DisplayName}
}

// AuthService authenticates against the credential index the record store
// rebuilds on every resync.
type AuthService struct {
	creds     credentialSource
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(creds credentialSource, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Expiration <= 0 {
		config.Expiration = 24 * time.Hour
	}
	return &AuthService{creds: creds, validator: validate, logger: logger, config: config}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the resolved identity.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	Identity    models.Identity `json:"identity"`
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	cred, ok := s.creds.LookupCredential(req.Username)
	if !ok || !verifySecret(cred.Secret, req.Password) {
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(cred)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		Identity:    models.Identity{Role: cred.Role, DisplayName: cred.DisplayName},
	}, nil
}

// verifySecret compares the supplied password against the stored secret.
// Seed secrets may be bcrypt hashes; record-sourced secrets are compared in
// constant time as stored.
func verifySecret(stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func (s *AuthService) issueToken(cred store.Credential) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.Username,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
		},
		Role:        cred.Role,
		DisplayName: cred.DisplayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrUnauthorized
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown role")
	}
	return claims, nil
}
