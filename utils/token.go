package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"citycompass/apperror"
	"citycompass/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identify the department a session token was issued to.
type Claims struct {
	ID           uint   `json:"id"`
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	jwt.RegisteredClaims
}

// IsDepartment reports whether the claims name a department at all. A
// correctly signed token without them grants nothing.
func (c *Claims) IsDepartment() bool {
	return c.ID != 0 && c.DepartmentID != ""
}

// TokenIssuer signs and verifies HS256 session tokens. There is no
// revocation list: a token stays valid until it expires, even after the
// client discards it.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of ti that reads time from now.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *ti
	cp.now = now
	return &cp
}

// Issue generates a token for dept that expires after the configured TTL.
func (ti *TokenIssuer) Issue(dept *models.Department) (string, error) {
	if len(ti.secret) == 0 {
		return "", fmt.Errorf("token signing key is not configured")
	}
	now := ti.now()
	claims := &Claims{
		ID:           dept.ID,
		DepartmentID: dept.Code,
		Name:         dept.Name,
		Category:     dept.Category,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(dept.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify checks signature, algorithm and expiry. Every failure is an
// InvalidToken error.
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperror.MissingToken()
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return ti.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, apperror.InvalidToken(err)
	}
	if !token.Valid {
		return nil, apperror.InvalidToken(errors.New("token not valid"))
	}
	return claims, nil
}
