package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName はブラウザ向けにトークンを保持する Cookie 名
const CookieName = "token"

// RoleAdmin はコンテンツを管理できるロール
const RoleAdmin = "admin"

const minSecretLen = 32

// ErrInvalidToken は不正な形式・期限切れ・改ざんされたトークンで返す
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims はサインイン時に発行する JWT のクレーム。Subject はユーザー ID
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens は HS256 トークンの発行と検証を行う
type Tokens struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokens は secret で署名する Tokens を返す。32 バイト未満の secret は
// HMAC 鍵がその長さを下回らないようゼロ埋めする
func NewTokens(secret string, expiry time.Duration) *Tokens {
	b := []byte(secret)
	if len(b) < minSecretLen {
		padded := make([]byte, minSecretLen)
		copy(padded, b)
		b = padded
	}
	return &Tokens{secret: b, expiry: expiry, now: time.Now}
}

// Expiry は発行するトークンの有効期間
func (t *Tokens) Expiry() time.Duration { return t.expiry }

// Issue は userID と role のトークンに署名し、有効期限とともに返す
func (t *Tokens) Issue(userID, role string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.expiry)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse は tokenString を検証してクレームを返す
func (t *Tokens) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest は Bearer トークンを返す。なければ Cookie から読む
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
