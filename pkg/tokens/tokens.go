package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is how long an issued session token stays valid.
const TTL = 72 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the minimal identity carried inside a session token.
type Claims struct {
	SubjectID string
	UserName  string
}

type sessionClaims struct {
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

type Issuer struct {
	Secret []byte
	TTL    time.Duration
	// Now is the clock used for iat/exp and for validation; nil means time.Now.
	Now func() time.Time
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{Secret: secret, TTL: TTL}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) ttl() time.Duration {
	if i.TTL > 0 {
		return i.TTL
	}
	return TTL
}

func (i *Issuer) Issue(c Claims) (string, error) {
	if strings.TrimSpace(c.SubjectID) == "" {
		return "", errors.New("subject id is required")
	}
	if len(i.Secret) == 0 {
		return "", errors.New("token secret is not configured")
	}

	issuedAt := i.now()
	claims := sessionClaims{
		UserName: c.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.SubjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{SubjectID: claims.Subject, UserName: claims.UserName}, nil
}
