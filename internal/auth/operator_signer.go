package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OperatorSigner issues and validates HS256 operator tokens.
type OperatorSigner struct {
	secretKey []byte
	now       func() time.Time
}

func NewOperatorSigner(secretKey []byte) *OperatorSigner {
	return &OperatorSigner{secretKey: secretKey, now: time.Now}
}

// Issue signs a token for subject valid for ttl.
func (s *OperatorSigner) Issue(subject string, ttl time.Duration) (string, error) {
	if len(s.secretKey) == 0 {
		return "", errors.New("operator secret is not configured")
	}
	now := s.now()

	claims := jwt.MapClaims{
		"sub": subject,
		"jti": uuid.New().String(),
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses tokenString and returns its claims.
func (s *OperatorSigner) Validate(tokenString string) (*OperatorClaims, error) {
	if len(s.secretKey) == 0 {
		return nil, errors.New("operator secret is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	subject, ok := (*claims)["sub"].(string)
	if !ok || subject == "" {
		return nil, errors.New("missing or invalid sub claim")
	}

	tokenID, ok := (*claims)["jti"].(string)
	if !ok {
		return nil, errors.New("missing or invalid jti claim")
	}

	expFloat, ok := (*claims)["exp"].(float64)
	if !ok {
		return nil, errors.New("missing or invalid exp claim")
	}

	return &OperatorClaims{
		Subject:   subject,
		TokenID:   tokenID,
		ExpiresAt: time.Unix(int64(expFloat), 0),
	}, nil
}
