package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
)

// CookieCodec はセッションIDをHMAC-SHA256で署名したCookie値に変換する。
type CookieCodec struct {
	secret []byte
}

// NewCookieCodec は新しいCookieCodecを生成する。
func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

// Encode はセッションIDを "id.signature" 形式にする。
func (c *CookieCodec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode はCookie値を検証し、セッションIDを返す。
func (c *CookieCodec) Decode(value string) (string, error) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" || sig == "" {
		return "", fmt.Errorf("%w: malformed cookie", apperr.ErrSessionInvalid)
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		return "", fmt.Errorf("%w: bad cookie signature", apperr.ErrSessionInvalid)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrSessionInvalid, err)
	}
	return id, nil
}

func (c *CookieCodec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
