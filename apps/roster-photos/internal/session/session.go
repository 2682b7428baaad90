// Package session はブラウザセッションとコースごとの起動情報を管理する。
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/sfu/roster-photos-lti/pkg/model"
)

// Session はブラウザセッションを表す。
// Launchesは検証済み起動情報をコースIDをキーに保持する。
type Session struct {
	ID        string                         `json:"-"`
	Launches  map[string]model.LaunchPayload `json:"launches"`
	CreatedAt time.Time                      `json:"created_at"`
}

// New は新しいセッションを生成する。
func New() *Session {
	return &Session{
		ID:        GenerateSessionID(),
		Launches:  make(map[string]model.LaunchPayload),
		CreatedAt: time.Now().UTC(),
	}
}

// RecordLaunch は検証済みの起動情報をコースに紐付けて記録する。
// 同じコースへの再起動は前回の情報を置き換える。呼び出し元は事前に署名とnonceを検証すること。
func (s *Session) RecordLaunch(courseID string, payload model.LaunchPayload) {
	if s.Launches == nil {
		s.Launches = make(map[string]model.LaunchPayload)
	}
	s.Launches[courseID] = payload
}

// LaunchFor はコースの起動情報を返す。未起動または空の場合はfalse。
func (s *Session) LaunchFor(courseID string) (model.LaunchPayload, bool) {
	if s == nil || courseID == "" {
		return nil, false
	}
	launch, ok := s.Launches[courseID]
	if !ok || launch.IsEmpty() {
		return nil, false
	}
	return launch, true
}

// HasLaunchForCourse はコースの起動情報が存在するかを返す。
func (s *Session) HasLaunchForCourse(courseID string) bool {
	_, ok := s.LaunchFor(courseID)
	return ok
}

// GenerateSessionID はUUID形式のセッションIDを生成する。
func GenerateSessionID() string {
	return uuid.New().String()
}
