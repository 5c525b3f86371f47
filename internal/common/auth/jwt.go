package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in access tokens.
const (
	RoleAdmin = "admin"
)

// Token purposes. An approval token must never be accepted as an access token.
const (
	PurposeAccess   = "access"
	PurposeApproval = "admin_approval"
)

// ErrInvalidToken is returned for any token that fails parsing or validation.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload issued by this service.
type Claims struct {
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 tokens.
type JWTManager struct {
	secret      []byte
	accessTTL   time.Duration
	approvalTTL time.Duration
	now         func() time.Time
}

// NewJWTManager creates a JWTManager.
func NewJWTManager(secret string, accessTTL, approvalTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:      []byte(secret),
		accessTTL:   accessTTL,
		approvalTTL: approvalTTL,
		now:         time.Now,
	}
}

// GenerateAccessToken signs an access token for the given principal.
func (m *JWTManager) GenerateAccessToken(subject, email, role string) (string, error) {
	return m.sign(Claims{
		Email:   email,
		Role:    role,
		Purpose: PurposeAccess,
	}, subject, m.accessTTL)
}

// GenerateApprovalToken signs a single-purpose token used in admin approval links.
func (m *JWTManager) GenerateApprovalToken(email string) (string, error) {
	return m.sign(Claims{
		Email:   email,
		Purpose: PurposeApproval,
	}, email, m.approvalTTL)
}

// ValidateAccessToken parses an access token and returns its claims.
func (m *JWTManager) ValidateAccessToken(token string) (*Claims, error) {
	return m.validate(token, PurposeAccess)
}

// ValidateApprovalToken parses an approval token and returns its claims.
func (m *JWTManager) ValidateApprovalToken(token string) (*Claims, error) {
	return m.validate(token, PurposeApproval)
}

func (m *JWTManager) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) validate(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
