package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA‑256 hashing for refresh tokens
    "encoding/hex"  // hex encoding of random bytes and digests
    "strconv"       // principal ids travel as decimal strings in "sub"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed JWT access token along with its expiry.  Access
// tokens are short‑lived and sent in the Authorization header.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken is a long‑lived token used to obtain new access tokens.
// Only the SHA‑256 hash of Raw is stored in the database.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// AccessClaims are the application claims carried by an access token.
type AccessClaims struct {
    Kind string `json:"kind"` // principal kind: customer or staff
    Role string `json:"role"` // USER or ADMIN
    jwt.RegisteredClaims
}

// PrincipalID returns the numeric principal id stored in the subject.
func (c AccessClaims) PrincipalID() (int64, error) {
    return strconv.ParseInt(c.Subject, 10, 64)
}

// NewAccessToken builds and signs an HS256 JWT for a principal.  The
// subject is the principal id; kind and role tell the two identity
// sources apart.
func NewAccessToken(secret string, principalID int64, kind, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := AccessClaims{
        Kind: kind,
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatInt(principalID, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies an HS256 token signed with secret and returns
// its claims.  Tokens signed with any other algorithm are rejected.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
    claims := &AccessClaims{}
    _, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil {
        return nil, err
    }
    return claims, nil
}

// NewRefreshToken returns a random raw refresh token valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48) // 48 bytes -> 96 hex chars
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the hex SHA‑256 digest of a raw refresh token.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
