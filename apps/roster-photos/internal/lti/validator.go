package lti

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/pkg/logging"
	"github.com/sfu/roster-photos-lti/pkg/model"
)

// OAuth/LTIパラメータ名
const (
	paramConsumerKey     = "oauth_consumer_key"
	paramSignatureMethod = "oauth_signature_method"
	paramTimestamp       = "oauth_timestamp"
	paramVersion         = "oauth_version"
	paramMessageType     = "lti_message_type"
	paramLTIVersion      = "lti_version"
	paramResourceLinkID  = "resource_link_id"
)

const (
	messageTypeBasicLaunch = "basic-lti-launch-request"
	ltiVersion1p0          = "LTI-1p0"
)

// LaunchRequest は検証対象の起動リクエスト。
// URLはツールプロバイダーとして公開されている絶対URL（プロキシ考慮済み）。
type LaunchRequest struct {
	Method string
	URL    string
	Params url.Values
}

// Validator はLTI起動リクエストを検証する。
type Validator struct {
	consumerKey string
	secret      string
	nonces      NonceStore
	window      time.Duration
	now         func() time.Time
}

// NewValidator は新しいValidatorを生成する。
func NewValidator(consumerKey, secret string, nonces NonceStore) *Validator {
	return &Validator{
		consumerKey: consumerKey,
		secret:      secret,
		nonces:      nonces,
		window:      config.NonceWindow,
		now:         time.Now,
	}
}

// Validate は起動リクエストの署名とnonceを検証し、起動パラメータを返す。
// nilエラーの場合のみ呼び出し元はセッションに起動情報を記録してよい。
func (v *Validator) Validate(ctx context.Context, req *LaunchRequest) (model.LaunchPayload, error) {
	params := req.Params
	traceID := logging.TraceIDFromContext(ctx)

	if err := v.checkLTIParams(params); err != nil {
		return nil, err
	}
	if err := v.checkOAuthParams(params); err != nil {
		return nil, err
	}

	base, err := SignatureBaseString(req.Method, req.URL, params)
	if err != nil {
		return nil, invalidSignature(err.Error())
	}
	expected := Sign(base, v.secret, "")
	if !verifySignature(expected, params.Get(model.ParamOAuthSignature)) {
		slog.Debug("signature base string", "trace_id", traceID, "base", base)
		return nil, invalidSignature("signature mismatch")
	}

	claimed, err := v.nonces.Claim(ctx, v.consumerKey, params.Get(model.ParamOAuthNonce), v.window)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrReplayedNonce
	}

	payload := model.NewLaunchPayload(params)
	if payload.CourseID() == "" {
		return nil, missingParam(model.ParamCourseID)
	}
	if _, err := payload.PlatformOrigin(); err != nil {
		return nil, missingParam(model.ParamReturnURL)
	}
	return payload, nil
}

// checkLTIParams はbasic launchとして必須のLTIパラメータを確認する。
func (v *Validator) checkLTIParams(params url.Values) error {
	if params.Get(paramMessageType) != messageTypeBasicLaunch {
		return missingParam(paramMessageType)
	}
	if params.Get(paramLTIVersion) != ltiVersion1p0 {
		return missingParam(paramLTIVersion)
	}
	if params.Get(paramResourceLinkID) == "" {
		return missingParam(paramResourceLinkID)
	}
	return nil
}

// checkOAuthParams は署名計算前にOAuthパラメータを確認する。
func (v *Validator) checkOAuthParams(params url.Values) error {
	for _, name := range []string{
		paramConsumerKey, paramSignatureMethod, paramTimestamp,
		model.ParamOAuthNonce, model.ParamOAuthSignature,
	} {
		if params.Get(name) == "" {
			return invalidSignature("missing " + name)
		}
	}

	if params.Get(paramConsumerKey) != v.consumerKey {
		return invalidSignature("unknown consumer key")
	}
	if params.Get(paramSignatureMethod) != config.SignatureMethod {
		return invalidSignature("unsupported signature method")
	}
	if version := params.Get(paramVersion); version != "" && version != config.OAuthVersion {
		return invalidSignature("unsupported oauth version")
	}

	ts, err := strconv.ParseInt(params.Get(paramTimestamp), 10, 64)
	if err != nil {
		return invalidSignature("malformed timestamp")
	}
	skew := v.now().Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.window {
		return invalidSignature("stale timestamp")
	}
	return nil
}
