package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opencal/authcore/internal/common"
)

// Claims is the token claim set: the registered claims carry the subject
// (username) and expiry, HashedPassword binds the token to the password hash
// in force at issuance time. Wire names are load-bearing: "sub",
// "hashed_password" and "exp" must round-trip exactly.
type Claims struct {
	jwt.RegisteredClaims
	HashedPassword string `json:"hashed_password"`
}

// GenerateToken issues a compact signed token for the given subject,
// fingerprinted with the supplied password hash and expiring after
// validityDuration. The method name must be an HMAC variant ("HS256",
// "HS384", "HS512").
func GenerateToken(username, passwordHash string, secretKey []byte, method string, validityDuration time.Duration) (string, error) {
	sm := jwt.GetSigningMethod(method)
	if sm == nil {
		return "", fmt.Errorf("unknown signing method %q", method)
	}

	token := jwt.NewWithClaims(sm, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		HashedPassword: passwordHash,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken decodes and verifies a token, returning its claims. Failures
// are classified: common.ErrTokenMalformed when the string does not parse,
// common.ErrTokenBadSignature when the signature does not verify, and
// common.ErrTokenExpired when the expiry has passed. Signature and expiry
// checks are both mandatory.
func ParseToken(tokenString string, secretKey []byte, method string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{method}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrTokenBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, common.ErrTokenMalformed
		}
	}

	if !token.Valid {
		return nil, common.ErrTokenBadSignature
	}

	return claims, nil
}
