// Package lti はLTI 1.1 basic launchの検証を提供する。
package lti

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // OAuth 1.0a HMAC-SHA1はLTI 1.1の必須方式
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SignatureBaseString はRFC 5849 3.4.1に従い署名ベース文字列を生成する。
// paramsにはクエリとフォームの全パラメータを含める。oauth_signatureは除外される。
func SignatureBaseString(method, rawURL string, params url.Values) (string, error) {
	baseURI, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(method) + "&" +
		percentEncode(baseURI) + "&" +
		percentEncode(normalizeParams(params)), nil
}

// Sign はベース文字列をHMAC-SHA1で署名し、base64で返す。
// 鍵は "consumerSecret&tokenSecret"。LTIではtokenSecretは空。
func Sign(baseString, consumerSecret, tokenSecret string) string {
	key := percentEncode(consumerSecret) + "&" + percentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// verifySignature は署名を定数時間で比較する。
func verifySignature(expected, actual string) bool {
	return hmac.Equal([]byte(expected), []byte(actual))
}

// normalizeURL はスキームとホストを小文字化し、デフォルトポートとクエリを除去する。
func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid launch url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid launch url: %q", rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port != "" && !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host += ":" + port
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path, nil
}

// normalizeParams はパラメータをエンコード後のキー・値でソートして連結する。
func normalizeParams(params url.Values) string {
	pairs := make([]string, 0, len(params))
	for k, values := range params {
		if k == "oauth_signature" {
			continue
		}
		ek := percentEncode(k)
		for _, v := range values {
			pairs = append(pairs, ek+"="+percentEncode(v))
		}
	}
	// "k=v" 形式のままソートすると '=' が比較に混ざるため、キーと値を分けて比較する
	sort.Slice(pairs, func(i, j int) bool {
		ki, vi, _ := strings.Cut(pairs[i], "=")
		kj, vj, _ := strings.Cut(pairs[j], "=")
		if ki != kj {
			return ki < kj
		}
		return vi < vj
	})
	return strings.Join(pairs, "&")
}

// percentEncode はRFC 3986の非予約文字以外をすべて%XX形式にエンコードする。
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
