package consent

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 7 * 24 * time.Hour

// Tokens signs and verifies the consent links emailed to caregivers.
type Tokens struct {
	secret []byte
}

func NewTokens(secret []byte) *Tokens {
	return &Tokens{secret: secret}
}

// Issue creates a signed verification token for the child account.
func (t *Tokens) Issue(userID int64, parentEmail string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": parentEmail,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign consent token: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature and expiry and returns the child user id.
func (t *Tokens) Verify(tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse consent token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid consent token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid consent token claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid consent token subject")
	}
	return int64(sub), nil
}
