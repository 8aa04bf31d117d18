package security

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"stockroom/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetAudience = "password-reset"

var ErrInvalidUID = errors.New("invalid uid")

// ResetTokenGenerator issues time-boxed password reset tokens bound to the
// user's current state: any password change invalidates outstanding tokens.
type ResetTokenGenerator interface {
	Make(u *model.User) (string, error)
	Check(u *model.User, token string) bool
}

type resetClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// JWTResetTokens signs reset tokens with HS256.
type JWTResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTResetTokens(secret string, ttl time.Duration) *JWTResetTokens {
	return &JWTResetTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source (tests).
func (g *JWTResetTokens) WithClock(now func() time.Time) *JWTResetTokens {
	g.now = now
	return g
}

func (g *JWTResetTokens) Make(u *model.User) (string, error) {
	now := g.now()
	claims := resetClaims{
		Fingerprint: fingerprint(u),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Audience:  jwt.ClaimStrings{resetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

func (g *JWTResetTokens) Check(u *model.User, token string) bool {
	if u == nil || token == "" {
		return false
	}
	claims := &resetClaims{}
	keyFunc := func(*jwt.Token) (interface{}, error) { return g.secret, nil }
	parsed, err := jwt.ParseWithClaims(token, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetAudience),
		jwt.WithSubject(u.ID.String()),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	return claims.Fingerprint == fingerprint(u)
}

// fingerprint changes whenever the password hash or active flag changes.
func fingerprint(u *model.User) string {
	active := "0"
	if u.IsActive {
		active = "1"
	}
	sum := sha256.Sum256([]byte(u.PasswordHash + "|" + active))
	return hex.EncodeToString(sum[:8])
}

// EncodeUID renders a user id as the opaque uid used in reset links.
func EncodeUID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return uuid.Nil, ErrInvalidUID
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidUID
	}
	return id, nil
}
