package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
)

// AccessToken is a signed JWT together with the claims it carries.
type AccessToken struct {
    Token string    // serialized JWT
    ID    string    // jti, used to revoke the token on logout
    Exp   time.Time // UTC expiry
}

// Claims is the payload of an access token.  The subject is the username.
type Claims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken signs an HS256 token for username valid for ttlMin
// minutes.  Every token gets a fresh random jti.
func NewAccessToken(secret, username, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    jti := uuid.NewString()
    claims := Claims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   username,
            ID:        jti,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, ID: jti, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry and returns
// the claims.  Any failure is reported as ErrInvalidToken wrapping the
// library error.
func ParseAccessToken(secret, raw string) (*Claims, error) {
    var claims Claims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
    )
    if err != nil {
        return nil, errors.Join(ErrInvalidToken, err)
    }
    if !tok.Valid || claims.Subject == "" || claims.ID == "" {
        return nil, ErrInvalidToken
    }
    return &claims, nil
}
