package handler

import (
	"context"

	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/lti"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/roster"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/session"
	"github.com/sfu/roster-photos-lti/pkg/model"
)

// LaunchValidator はLTI起動検証のインターフェース。
type LaunchValidator interface {
	Validate(ctx context.Context, req *lti.LaunchRequest) (model.LaunchPayload, error)
}

// SessionSaver はセッション保存のインターフェース。
type SessionSaver interface {
	Save(ctx context.Context, sess *session.Session) error
}

// RosterService は表示用名簿生成のインターフェース。
type RosterService interface {
	CourseRoster(ctx context.Context, launch model.LaunchPayload) (*roster.CourseRoster, error)
}
