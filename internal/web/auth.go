package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	sessionCookieName = "prysma_session"
	tokenTypeSession  = "session"
)

var (
	ErrTokenFormat    = errors.New("invalid token format")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenPayload   = errors.New("invalid token payload")
	ErrTokenExpired   = errors.New("token expired")
)

type signedPayload struct {
	Exp int64  `json:"exp"`
	Sub string `json:"sub"` // user id
	Typ string `json:"typ,omitempty"`
	N   string `json:"n,omitempty"`
}

// Claims is what a verified token asserts.
type Claims struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSecret returns a random base64url secret suitable for signing session tokens.
func NewSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "read random")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func signToken(secret []byte, payload signedPayload) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(b)
	return p + "." + sign(secret, p), nil
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verifyToken(secret []byte, token string, now time.Time) (signedPayload, error) {
	p, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || p == "" || sig == "" || strings.Contains(sig, ".") {
		return signedPayload{}, ErrTokenFormat
	}
	if !hmac.Equal([]byte(sign(secret, p)), []byte(sig)) {
		return signedPayload{}, ErrTokenSignature
	}
	raw, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return signedPayload{}, ErrTokenPayload
	}
	var sp signedPayload
	if err := json.Unmarshal(raw, &sp); err != nil {
		return signedPayload{}, ErrTokenPayload
	}
	if sp.Exp == 0 || strings.TrimSpace(sp.Sub) == "" || sp.Typ != tokenTypeSession {
		return signedPayload{}, ErrTokenPayload
	}
	if now.Unix() > sp.Exp {
		return signedPayload{}, ErrTokenExpired
	}
	return sp, nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IssueToken mints a session token for userID valid for ttl.
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, Claims, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", Claims{}, errors.New("missing user id")
	}
	if len(secret) == 0 {
		return "", Claims{}, errors.New("missing session secret")
	}
	n, err := newNonce()
	if err != nil {
		return "", Claims{}, err
	}
	exp := time.Now().Add(ttl)
	tok, err := signToken(secret, signedPayload{
		Typ: tokenTypeSession,
		Sub: userID,
		N:   n,
		Exp: exp.Unix(),
	})
	if err != nil {
		return "", Claims{}, err
	}
	return tok, Claims{UserID: userID, ExpiresAt: time.Unix(exp.Unix(), 0).UTC()}, nil
}

// VerifyToken checks signature and expiry and returns the token's claims.
func VerifyToken(secret []byte, token string) (Claims, error) {
	sp, err := verifyToken(secret, token, time.Now())
	if err != nil {
		return Claims{}, err
	}
	return Claims{UserID: sp.Sub, ExpiresAt: time.Unix(sp.Exp, 0).UTC()}, nil
}

// tokenFromRequest reads a bearer token, falling back to the session cookie.
func tokenFromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
