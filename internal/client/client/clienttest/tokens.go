package clienttest

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	TokenType string `json:"typ"`
}

// Secret signs every token the fake backend issues.
const Secret = "clienttest-secret"

// MintToken signs an HS256 token for userID that expires after ttl. A
// negative ttl produces an already expired token.
func MintToken(userID int64, ttl time.Duration) string {
	return mint(userID, typeAccess, ttl)
}

func mint(userID int64, typ string, ttl time.Duration) string {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: typ,
	})
	s, err := tok.SignedString([]byte(Secret))
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	return s
}

func parse(token, typ string) (int64, error) {
	c := &claims{}
	t, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(Secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !t.Valid || c.TokenType != typ {
		return 0, fmt.Errorf("invalid %s token", typ)
	}
	return c.UserID, nil
}
