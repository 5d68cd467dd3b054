package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const verificationPurpose = "email_verification"

// ErrInvalidVerificationCode covers malformed, tampered and expired codes.
var ErrInvalidVerificationCode = errors.New("invalid verification code")

type verificationClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

// VerificationSigner issues and checks the signed codes sent in
// verification emails.
type VerificationSigner struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewVerificationSigner creates a signer. Codes expire after ttl.
func NewVerificationSigner(secret string, ttl time.Duration) *VerificationSigner {
	return &VerificationSigner{secret: []byte(secret), ttl: ttl, issuer: "codesathi"}
}

// Issue creates a code for userID.
func (s *VerificationSigner) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := verificationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:   email,
		Purpose: verificationPurpose,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign verification code: %w", err)
	}
	return token, nil
}

// Verify checks a code and returns the user ID and email it was issued for.
func (s *VerificationSigner) Verify(code string) (userID, email string, err error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	claims := &verificationClaims{}
	token, err := parser.ParseWithClaims(code, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidVerificationCode
	}
	if claims.Purpose != verificationPurpose || claims.Subject == "" {
		return "", "", ErrInvalidVerificationCode
	}
	return claims.Subject, claims.Email, nil
}
