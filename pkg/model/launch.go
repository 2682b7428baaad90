// Package model はサービス間で共有するドメインモデルを定義する。
package model

import (
	"fmt"
	"net/url"
)

// LTI起動パラメータ名
const (
	ParamCourseID       = "custom_canvas_course_id"
	ParamReturnURL      = "launch_presentation_return_url"
	ParamUserID         = "custom_canvas_user_id"
	ParamContextTitle   = "context_title"
	ParamOAuthNonce     = "oauth_nonce"
	ParamOAuthSignature = "oauth_signature"
)

// LaunchPayload は署名検証済みのLTI起動パラメータ一式を表す。
// セッションにコースIDをキーとして保存され、保存後は変更しない。
type LaunchPayload map[string]string

// NewLaunchPayload はフォーム値からLaunchPayloadを生成する。
// 同名パラメータが複数ある場合は先頭の値を採用する。
func NewLaunchPayload(values url.Values) LaunchPayload {
	p := make(LaunchPayload, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// CourseID はCanvasのコースIDを返す。
func (p LaunchPayload) CourseID() string {
	return p[ParamCourseID]
}

// ReturnURL は起動元Canvasインスタンスの戻り先URLを返す。
func (p LaunchPayload) ReturnURL() string {
	return p[ParamReturnURL]
}

// UserID は起動したCanvasユーザーのIDを返す。
func (p LaunchPayload) UserID() string {
	return p[ParamUserID]
}

// ContextTitle はコース名を返す。
func (p LaunchPayload) ContextTitle() string {
	return p[ParamContextTitle]
}

// IsEmpty はペイロードが空かどうかを返す。
func (p LaunchPayload) IsEmpty() bool {
	return len(p) == 0
}

// PlatformOrigin は戻り先URLからスキーム+ホスト部分（例: https://canvas.sfu.ca）を返す。
// Canvas APIとプロフィールURLはこのオリジンから組み立てる。
func (p LaunchPayload) PlatformOrigin() (string, error) {
	raw := p.ReturnURL()
	if raw == "" {
		return "", fmt.Errorf("%s is empty", ParamReturnURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", ParamReturnURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid %s: %q has no scheme or host", ParamReturnURL, raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
