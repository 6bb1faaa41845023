package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"employee-management-system/internal/common"

	"github.com/golang-jwt/jwt/v4"
)

const (
	SessionTokenTTL       = time.Hour
	PasswordResetTokenTTL = time.Hour

	resetTokenBytes = 20
)

// Claims is the payload of a session token.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues session tokens and password reset tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of s that reads the time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	return &TokenService{secret: s.secret, now: now}
}

func (s *TokenService) Now() time.Time {
	return s.now()
}

// IssueSessionToken signs a token for userID valid for SessionTokenTTL.
func (s *TokenService) IssueSessionToken(userID string) (string, error) {
	issued := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(SessionTokenTTL)),
		},
	})
	return token.SignedString(s.secret)
}

// VerifySessionToken returns the user id of a valid token, or
// common.ErrInvalidToken.
func (s *TokenService) VerifySessionToken(tokenString string) (string, error) {
	claims := &Claims{}
	// expiry is checked against the service clock below
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

// GeneratePasswordResetToken returns a random token for the user, the hash
// to store, and the instant the token stops being accepted.
func (s *TokenService) GeneratePasswordResetToken() (plain, hashed string, expiresAt time.Time, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, errors.Join(common.ErrInternal, err)
	}
	plain = hex.EncodeToString(buf)
	return plain, HashPasswordResetToken(plain), s.now().Add(PasswordResetTokenTTL), nil
}

// VerifyPasswordResetToken reports whether plain hashes to storedHash and
// the expiry has not passed.
func (s *TokenService) VerifyPasswordResetToken(plain, storedHash string, storedExpiry *time.Time) bool {
	if plain == "" || storedHash == "" || storedExpiry == nil {
		return false
	}
	if !s.now().Before(*storedExpiry) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashPasswordResetToken(plain)), []byte(storedHash)) == 1
}

// HashPasswordResetToken is the hex SHA-256 of a reset token.
func HashPasswordResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
