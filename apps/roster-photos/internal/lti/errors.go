package lti

import (
	"errors"
	"fmt"

	"github.com/sfu/roster-photos-lti/pkg/apperr"
)

// 起動検証エラー
var (
	// ErrInvalidSignature は署名・コンシューマーキー・署名方式・タイムスタンプのいずれかが不正な場合のエラー
	ErrInvalidSignature = fmt.Errorf("%w: invalid oauth signature", apperr.ErrLaunchValidation)

	// ErrReplayedNonce は使用済みのnonceで起動された場合のエラー
	ErrReplayedNonce = fmt.Errorf("%w: nonce already used", apperr.ErrLaunchValidation)

	// ErrMissingLaunchParam はLTI起動に必要なパラメータが欠落している場合のエラー
	ErrMissingLaunchParam = errors.New("missing launch parameter")
)

// NonceStoreError はnonceストアとの通信エラーを表す
type NonceStoreError struct {
	Cause error
}

func (e *NonceStoreError) Error() string {
	return fmt.Sprintf("nonce store error: %v", e.Cause)
}

func (e *NonceStoreError) Unwrap() error {
	return e.Cause
}

// missingParam は欠落したパラメータ名を含むErrMissingLaunchParamを返す。
func missingParam(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingLaunchParam, name)
}

// invalidSignature は理由を含むErrInvalidSignatureを返す。
func invalidSignature(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSignature, reason)
}
