package postgres

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/scoutline/scout-client/internal/providers"
)

const (
	tokenIssuerName = "scout-client"
	defaultTokenTTL = 24 * time.Hour
	codeDigits      = 6
)

// claims is the access token payload.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenIssuer(secret string, ttl time.Duration) (*tokenIssuer, error) {
	if len(secret) < 16 {
		return nil, errors.New("postgres: jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &tokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *tokenIssuer) issue(userID, email string) (string, time.Time, error) {
	now := t.now().UTC()
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    tokenIssuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (t *tokenIssuer) parse(raw string) (*claims, error) {
	if raw == "" {
		return nil, providers.ErrUnauthenticated
	}
	parser := jwt.Parser{SkipClaimsValidation: true}
	var c claims
	_, err := parser.ParseWithClaims(raw, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrUnauthenticated, err)
	}
	if c.Subject == "" || c.Issuer != tokenIssuerName {
		return nil, providers.ErrUnauthenticated
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.Time.After(t.now()) {
		return nil, fmt.Errorf("%w: token expired", providers.ErrUnauthenticated)
	}
	return &c, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func newVerificationCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
